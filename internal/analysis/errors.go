package analysis

import (
	"errors"
	"fmt"
)

// Precondition failures. Nothing is sent to the service when these occur.
var (
	ErrMissingCredential = errors.New("API key is required")
	ErrMissingText       = errors.New("original text and lecture script are required")
)

// ErrNoJSON is returned by ExtractJSON when the reply holds no object.
var ErrNoJSON = errors.New("no JSON object found in response")

// Kind classifies a failed analysis.
type Kind int

const (
	// KindService means the call to the generative-text service failed.
	KindService Kind = iota + 1
	// KindNoJSON means the reply contained no recognizable JSON object.
	KindNoJSON
	// KindMalformedJSON means the isolated object did not parse.
	KindMalformedJSON
	// KindSchema means the object parsed but a required field was missing.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindService:
		return "service error"
	case KindNoJSON:
		return "no JSON found"
	case KindMalformedJSON:
		return "malformed JSON"
	case KindSchema:
		return "schema violation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a terminal analysis failure. The caller retries by running the
// whole pipeline again.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// IsKind reports whether err is an analysis error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
