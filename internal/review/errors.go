package review

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a review failure for presentation.
type ErrorKind string

const (
	KindParse    ErrorKind = "parse"
	KindExternal ErrorKind = "external"
	KindInput    ErrorKind = "input"
	KindUnknown  ErrorKind = "unknown"
)

// ParseError reports a model reply that does not match the expected format.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return "unparsable model output: " + e.Reason
}

// ExternalCallError wraps a failure of a collaborator: the text-generation
// service, the embedding engine, or a document load.
type ExternalCallError struct {
	Op  string
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

// InputError reports malformed input to a pipeline stage.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Kind returns the classification of err, looking through wrapping.
func Kind(err error) ErrorKind {
	var (
		pe *ParseError
		ee *ExternalCallError
		ie *InputError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ie):
		return KindInput
	case errors.As(err, &ee):
		return KindExternal
	default:
		return KindUnknown
	}
}
