package gridcache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/friendsofgo/errors"
)

// TransportError is a failed network exchange: a non-2xx response, a
// connection failure, a timeout, or an undecodable body. Page loads absorb
// it into retryable controller state; mutations propagate it to the caller
// after rolling back.
type TransportError struct {
	// Op names the failed operation, e.g. "list resources".
	Op string

	// Status is the HTTP status code, or 0 when the request never produced a
	// response (network failure, timeout).
	Status int

	// Message is the server-provided error string, if any.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport failure"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ValidationError carries per-field input violations detected before any
// network call. It never reaches the transport layer.
type ValidationError struct {
	// Fields maps field name to the violated rule.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
