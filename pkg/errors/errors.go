package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeFetch covers transport failures and non-success statuses.
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeUpstream covers listing payloads that do not match the expected shape.
	ErrorTypeUpstream ErrorType = "upstream"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// Error represents a crawl error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	if e.URL != "" {
		msg += " [" + e.URL + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewFetchError builds a fetch error for url. code is the HTTP status, or 0
// when no response was received.
func NewFetchError(url string, code int, message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeFetch,
		Message: message,
		Code:    code,
		URL:     url,
		Err:     err,
	}
}

// NewUpstreamError builds an error for a listing response of the wrong shape.
func NewUpstreamError(url string, message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeUpstream,
		Message: message,
		URL:     url,
		Err:     err,
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsType reports whether err's chain holds an *Error of type t.
func IsType(err error, t ErrorType) bool {
	e, ok := As(err)
	return ok && e.Type == t
}

// IsFetch reports whether err is a fetch error.
func IsFetch(err error) bool {
	return IsType(err, ErrorTypeFetch)
}

// IsUpstream reports whether err is an upstream shape error.
func IsUpstream(err error) bool {
	return IsType(err, ErrorTypeUpstream)
}

// IsSuccessStatusCode reports whether an HTTP status counts as a successful fetch.
func IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
