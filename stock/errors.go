package stock

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSymbolNotFound means the search service answered but listed no ticker.
var ErrSymbolNotFound = errors.New("symbol not found")

// LookupError is a failed call to the search service.
type LookupError struct {
	Name       string
	StatusCode int
	Status     string
	Err        error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("symbol lookup for %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("symbol lookup for %q: received status %s", e.Name, e.Status)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Temporary reports whether another attempt could succeed.
func (e *LookupError) Temporary() bool { return temporaryStatus(e.StatusCode) }

// FetchError is a failed quote page request.
type FetchError struct {
	Symbol     string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch quote page for %s: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("fetch quote page for %s: received status %s", e.Symbol, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Temporary() bool { return temporaryStatus(e.StatusCode) }

// FieldNotFoundError means the quote page lacks one of the required fields.
type FieldNotFoundError struct {
	Symbol string
	Field  string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %s not found for %s", e.Field, e.Symbol)
}

// ParseError means a field was present but its text is not a number.
type ParseError struct {
	Symbol string
	Field  string
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s for %s from %q: %v", e.Field, e.Symbol, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// status 0 is a transport error
func temporaryStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
