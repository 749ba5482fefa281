package domain

import "errors"

// Domain errors.
var (
	// ErrUnsupportedURL is returned when a URL matches none of the
	// supported provider patterns.
	ErrUnsupportedURL = errors.New("unsupported URL")

	// ErrEmptyResult is returned when a provider fetch succeeds but
	// yields no media.
	ErrEmptyResult = errors.New("no media information found")

	// ErrRequestNotFound is returned when a request cannot be found.
	ErrRequestNotFound = errors.New("request not found")

	// ErrResolvedURLNotFound is returned when a resolved-URL record
	// cannot be found.
	ErrResolvedURLNotFound = errors.New("resolved URL not found")
)

// FetchError wraps a provider fetch failure with its context. Dispatch
// converts every underlying failure into one of these; callers never see
// a raw provider error.
type FetchError struct {
	Kind URLKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Kind != "" && e.Kind != KindUnsupported {
		return e.Op + " [" + e.Kind.String() + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(kind URLKind, op string, err error) *FetchError {
	return &FetchError{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}
