package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates chunking, ranking or service settings that cannot work,
	// such as an overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoDocument indicates a question arrived before any document was loaded.
	ErrNoDocument = errors.New("no document loaded")

	// ErrUnsupportedType indicates an uploaded file that is not plain text.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrEmptyDocument indicates a document with no content left after normalization.
	ErrEmptyDocument = errors.New("document is empty")
)

// ServiceErrorKind classifies failures of the remote answer service.
type ServiceErrorKind string

const (
	ServiceTransport ServiceErrorKind = "transport"
	ServiceTimeout   ServiceErrorKind = "timeout"
	ServiceStatus    ServiceErrorKind = "status"
	ServiceMalformed ServiceErrorKind = "malformed"
)

// ServiceError is returned when the answer service call fails.
type ServiceError struct {
	Kind       ServiceErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case ServiceStatus:
		if e.Message != "" {
			return fmt.Sprintf("answer service returned status %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("answer service returned status %d", e.StatusCode)
	case ServiceTimeout:
		return "answer service timed out"
	case ServiceMalformed:
		return "answer service returned a malformed response: " + e.Message
	default:
		if e.Err != nil {
			return "answer service unreachable: " + e.Err.Error()
		}
		return "answer service unreachable"
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceKind reports whether err is a ServiceError of the given kind.
func IsServiceKind(err error, kind ServiceErrorKind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}
