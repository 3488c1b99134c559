package domain

import (
	"errors"
	"fmt"
)

// ErrEngineClosed is returned for mutations submitted after shutdown.
var ErrEngineClosed = errors.New("engine is shut down")

// SyntaxError reports malformed command text. The store is never touched.
type SyntaxError struct {
	Input string
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

// ValidationError reports a rejected mutation. Nothing of it was applied.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Msg)
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Msg)
}

// FetchError reports a failed price-source call. It is transient.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError reports a failed snapshot read or write.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsUserError reports whether err came from command text or validation and
// should be shown on the command line rather than logged as a failure.
func IsUserError(err error) bool {
	var se *SyntaxError
	var ve *ValidationError
	return errors.As(err, &se) || errors.As(err, &ve)
}
