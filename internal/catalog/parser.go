// ABOUTME: Parses frame filenames into structured simulation metadata
// ABOUTME: Extracts case, variable, timestamp and the f/t/h2o run parameters
package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/harper/flowscope/internal/models"
)

// Parameter defaults used when a case name carries no label for them
const (
	DefaultPressureRatio = 0.8
	DefaultTemperature   = 565.48
	DefaultWaterFraction = 0.078
)

var (
	variablePattern  = regexp.MustCompile(`_([A-Za-z]+)_`)
	timestampPattern = regexp.MustCompile(`([0-9.]+)ms`)

	// Labels must start a token so "raft0.5" is not read as f=0.5
	pressurePattern    = regexp.MustCompile(`(?:^|_)f([0-9.]+)`)
	temperaturePattern = regexp.MustCompile(`(?:^|_)t([0-9.]+)`)
	waterPattern       = regexp.MustCompile(`(?:^|_)h2o([0-9.]+)`)
)

// Record is one simulation frame: an encoder vector plus the identity parsed from its filename.
// Records are immutable once built; per-run state (labels, centroid flags) and
// annotations live elsewhere, keyed by SourceID.
type Record struct {
	SourceID      string          `json:"source_id"`
	Case          string          `json:"case"`
	Variable      models.Variable `json:"variable"`
	Timestamp     int64           `json:"timestamp"`
	PressureRatio float64         `json:"pressure_ratio"`
	Temperature   float64         `json:"temperature"`
	WaterFraction float64         `json:"water_fraction"`
	Vector        []float64       `json:"-"`
}

// ParseRecord builds a Record from an encoder vector and its source filename
func ParseRecord(vector []float64, sourceID string) (Record, error) {
	variable, err := parseVariable(sourceID)
	if err != nil {
		return Record{}, err
	}

	timestamp, err := parseTimestamp(sourceID)
	if err != nil {
		return Record{}, err
	}

	caseName := CaseOf(sourceID)

	p, err := labeledValue(caseName, pressurePattern, DefaultPressureRatio)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: pressure ratio: %v", models.ErrMalformedIdentifier, sourceID, err)
	}
	t, err := labeledValue(caseName, temperaturePattern, DefaultTemperature)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: temperature: %v", models.ErrMalformedIdentifier, sourceID, err)
	}
	h2o, err := labeledValue(caseName, waterPattern, DefaultWaterFraction)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: water fraction: %v", models.ErrMalformedIdentifier, sourceID, err)
	}

	vec := make([]float64, len(vector))
	copy(vec, vector)

	return Record{
		SourceID:      sourceID,
		Case:          caseName,
		Variable:      models.Variable(variable),
		Timestamp:     timestamp,
		PressureRatio: p,
		Temperature:   t,
		WaterFraction: h2o,
		Vector:        vec,
	}, nil
}

// CaseOf returns the case name: every underscore token except the final two
func CaseOf(sourceID string) string {
	tokens := strings.Split(sourceID, "_")
	if len(tokens) <= 2 {
		return ""
	}
	return strings.Join(tokens[:len(tokens)-2], "_")
}

func parseVariable(sourceID string) (string, error) {
	m := variablePattern.FindStringSubmatch(sourceID)
	if m == nil {
		return "", fmt.Errorf("%w: %s: no variable token", models.ErrMalformedIdentifier, sourceID)
	}
	return m[1], nil
}

func parseTimestamp(sourceID string) (int64, error) {
	m := timestampPattern.FindStringSubmatch(sourceID)
	if m == nil {
		return 0, fmt.Errorf("%w: %s: no millisecond timestamp", models.ErrMalformedIdentifier, sourceID)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: timestamp %q: %v", models.ErrMalformedIdentifier, sourceID, m[1], err)
	}
	return int64(math.Trunc(v)), nil
}

func labeledValue(caseName string, pattern *regexp.Regexp, defaultVal float64) (float64, error) {
	m := pattern.FindStringSubmatch(caseName)
	if m == nil {
		return defaultVal, nil
	}
	return strconv.ParseFloat(m[1], 64)
}
