package etl

import (
	"errors"
	"fmt"
)

var (
	ErrTransport  = errors.New("http request failed")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrDecode     = errors.New("failed to decode response")

	ErrUnrecognizedShape = errors.New("unrecognized line shape")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrMissingField      = errors.New("missing required field")
	ErrMalformedItem     = errors.New("malformed item")
)

// Skip reasons, used as the metrics label for dropped items.
const (
	ReasonShape        = "unrecognized_shape"
	ReasonNumber       = "bad_number"
	ReasonTimestamp    = "bad_timestamp"
	ReasonMissingField = "missing_field"
	ReasonMalformed    = "malformed_item"
	ReasonOther        = "other"
)

// FetchError describes a failed fetch. Kind is one of ErrTransport,
// ErrHTTPStatus or ErrDecode.
type FetchError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v %d from %s: %v", e.Kind, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("%v from %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// RecordError describes one item the normalizer dropped.
type RecordError struct {
	Index int
	Raw   string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d %q: %v", e.Index, e.Raw, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reason classifies the error for metrics.
func (e *RecordError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrUnrecognizedShape):
		return ReasonShape
	case errors.Is(e.Err, ErrInvalidNumber):
		return ReasonNumber
	case errors.Is(e.Err, ErrInvalidTimestamp):
		return ReasonTimestamp
	case errors.Is(e.Err, ErrMissingField):
		return ReasonMissingField
	case errors.Is(e.Err, ErrMalformedItem):
		return ReasonMalformed
	default:
		return ReasonOther
	}
}

type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// StageError is returned by Pipeline.Run when a stage fails the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
