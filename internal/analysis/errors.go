package analysis

import (
	"errors"
	"fmt"
)

// ErrPrimaryFetch marks a request whose primary comment source produced nothing to analyze
var ErrPrimaryFetch = errors.New("primary comment fetch failed")

var errNoComments = errors.New("no comments left after normalization")

// PrimaryFetchError carries the primary source and the underlying cause
type PrimaryFetchError struct {
	Source string
	Err    error
}

func (e *PrimaryFetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPrimaryFetch, e.Source, e.Err)
}

func (e *PrimaryFetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrPrimaryFetch as matching so callers can use errors.Is
func (e *PrimaryFetchError) Is(target error) bool {
	return target == ErrPrimaryFetch
}
