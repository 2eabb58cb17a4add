// ABOUTME: Annotation store contract shared by every persistence backend
// ABOUTME: Holds record descriptions by source id and case descriptions by case and component
package storage

import (
	"context"
	"maps"
)

// AnnotationStore persists free-text descriptions. Setting an empty text
// removes the entry. Write failures wrap models.ErrPersistenceIO.
type AnnotationStore interface {
	RecordDescriptions(ctx context.Context) (map[string]string, error)
	SetRecordDescription(ctx context.Context, sourceID, text string) error
	CaseDescriptions(ctx context.Context) (map[string]map[string]string, error)
	SetCaseDescription(ctx context.Context, caseName, component, text string) error
	Close() error
}

// CaseDocument maps case -> component -> description
type CaseDocument map[string]map[string]string

// Clone returns a deep copy
func (d CaseDocument) Clone() CaseDocument {
	out := make(CaseDocument, len(d))
	for k, v := range d {
		out[k] = maps.Clone(v)
	}
	return out
}

// ApplyRecord sets or removes one record description in doc
func ApplyRecord(doc map[string]string, sourceID, text string) {
	if text == "" {
		delete(doc, sourceID)
		return
	}
	doc[sourceID] = text
}

// Apply sets or removes one case description, dropping cases left without components
func (d CaseDocument) Apply(caseName, component, text string) {
	if text == "" {
		if comps, ok := d[caseName]; ok {
			delete(comps, component)
			if len(comps) == 0 {
				delete(d, caseName)
			}
		}
		return
	}
	if d[caseName] == nil {
		d[caseName] = make(map[string]string)
	}
	d[caseName][component] = text
}
