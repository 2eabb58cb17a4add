// ABOUTME: Typed request schemas for every HTTP operation
// ABOUTME: Bodies are decoded strictly and validated before reaching the explorer
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/harper/flowscope/internal/catalog"
	"github.com/harper/flowscope/internal/core"
	"github.com/harper/flowscope/internal/models"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// decode reads exactly one JSON object into dst, rejecting unknown fields
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", models.ErrInvalidRequest)
	}
	return nil
}

// Interval is a [min, max] pair
type Interval [2]float64

func (iv Interval) toRange() catalog.Range {
	return catalog.Range{Min: iv[0], Max: iv[1]}
}

// CasesRequest filters cases by parameter ranges
type CasesRequest struct {
	PRange   *Interval `json:"pRange"`
	TRange   *Interval `json:"tRange"`
	H2ORange *Interval `json:"h2oRange"`
}

// Ranges validates presence and ordering and converts to catalog ranges
func (r CasesRequest) Ranges() (catalog.CaseRanges, error) {
	if r.PRange == nil || r.TRange == nil || r.H2ORange == nil {
		return catalog.CaseRanges{}, fmt.Errorf("%w: pRange, tRange and h2oRange are required", models.ErrInvalidRequest)
	}
	ranges := catalog.CaseRanges{P: r.PRange.toRange(), T: r.TRange.toRange(), H2O: r.H2ORange.toRange()}
	return ranges, ranges.Validate()
}

// CaseRef names a case either as a bare string or as an object with a "case" field
type CaseRef string

func (c *CaseRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CaseRef(s)
		return nil
	}
	// Objects may carry the summary fields returned by /api/cases.
	var obj struct {
		Case *string `json:"case"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Case == nil {
		return errors.New("case reference object needs a \"case\" field")
	}
	*c = CaseRef(*obj.Case)
	return nil
}

// CoordinatesRequest asks for a projection of the selected cases
type CoordinatesRequest struct {
	SelectedCases     []CaseRef `json:"selectedCases"`
	SelectedComponent string    `json:"selectedComponent"`
	Eps               *float64  `json:"eps"`
	MinSamples        *int      `json:"minSamples"`
}

// ProjectionRequest validates the body and converts it for the explorer
func (r CoordinatesRequest) ProjectionRequest() (core.ProjectionRequest, error) {
	if len(r.SelectedCases) == 0 {
		return core.ProjectionRequest{}, fmt.Errorf("%w: selectedCases must not be empty", models.ErrInvalidRequest)
	}
	v, err := models.ParseVariable(r.SelectedComponent)
	if err != nil {
		return core.ProjectionRequest{}, err
	}
	if r.Eps == nil || r.MinSamples == nil {
		return core.ProjectionRequest{}, fmt.Errorf("%w: eps and minSamples are required", models.ErrInvalidRequest)
	}
	cases := make([]string, len(r.SelectedCases))
	for i, c := range r.SelectedCases {
		if c == "" {
			return core.ProjectionRequest{}, fmt.Errorf("%w: selectedCases[%d] is empty", models.ErrInvalidRequest, i)
		}
		cases[i] = string(c)
	}
	return core.ProjectionRequest{Cases: cases, Variable: v, Eps: *r.Eps, MinSamples: *r.MinSamples}, nil
}

// RecordDescriptionRequest sets or clears a record annotation
type RecordDescriptionRequest struct {
	FileName    string  `json:"fileName"`
	Description *string `json:"description"`
}

func (r RecordDescriptionRequest) Validate() error {
	if r.FileName == "" {
		return fmt.Errorf("%w: fileName is required", models.ErrInvalidRequest)
	}
	if r.Description == nil {
		return fmt.Errorf("%w: description is required (use \"\" to clear)", models.ErrInvalidRequest)
	}
	return nil
}

// CaseDescriptionRequest sets or clears a case annotation for one component
type CaseDescriptionRequest struct {
	CaseName    string  `json:"caseName"`
	Component   string  `json:"component"`
	Description *string `json:"description"`
}

// Parse validates the body and returns the parsed component
func (r CaseDescriptionRequest) Parse() (models.Variable, error) {
	if r.CaseName == "" {
		return "", fmt.Errorf("%w: caseName is required", models.ErrInvalidRequest)
	}
	if r.Description == nil {
		return "", fmt.Errorf("%w: description is required (use \"\" to clear)", models.ErrInvalidRequest)
	}
	return models.ParseVariable(r.Component)
}

// DescribeRecordRequest asks for a caption of one selection record
type DescribeRecordRequest struct {
	SelectionID string `json:"selectionId"`
	Index       *int   `json:"index"`
	Component   string `json:"component"`
}

// Parse validates the body and returns the parsed component
func (r DescribeRecordRequest) Parse() (models.Variable, error) {
	if r.SelectionID == "" {
		return "", fmt.Errorf("%w: selectionId is required", models.ErrInvalidRequest)
	}
	if r.Index == nil {
		return "", fmt.Errorf("%w: index is required", models.ErrInvalidRequest)
	}
	return models.ParseVariable(r.Component)
}

// DescribeCaseRequest asks for a summary of one case in a selection
type DescribeCaseRequest struct {
	SelectionID string `json:"selectionId"`
	CaseName    string `json:"caseName"`
	Component   string `json:"component"`
	CaseIndices []int  `json:"caseIndices"`
}

// Parse validates the body and returns the parsed component
func (r DescribeCaseRequest) Parse() (models.Variable, error) {
	if r.SelectionID == "" {
		return "", fmt.Errorf("%w: selectionId is required", models.ErrInvalidRequest)
	}
	if r.CaseName == "" {
		return "", fmt.Errorf("%w: caseName is required", models.ErrInvalidRequest)
	}
	return models.ParseVariable(r.Component)
}
