// ABOUTME: Error taxonomy shared by the catalog, pipeline, stores and API layers
// ABOUTME: Callers wrap these sentinels with %w and match them with errors.Is
package models

import "errors"

var (
	// ErrMalformedIdentifier means a frame filename is missing a required token
	ErrMalformedIdentifier = errors.New("malformed identifier")
	// ErrInsufficientSamples means a selection is too small for the projection stage
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrUnknownCase means a case name is not present in the catalog
	ErrUnknownCase = errors.New("unknown case")
	// ErrUnknownRecord means a source id or selection index does not resolve to a record
	ErrUnknownRecord = errors.New("unknown record")
	// ErrUnknownSelection means a selection id has expired or never existed
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrCollaboratorUnavailable means the captioning service failed or returned garbage
	ErrCollaboratorUnavailable = errors.New("captioning service unavailable")
	// ErrPersistenceIO means the annotation store could not be read or written
	ErrPersistenceIO = errors.New("annotation store i/o error")
	// ErrInvalidRequest means a request failed boundary validation
	ErrInvalidRequest = errors.New("invalid request")
)
