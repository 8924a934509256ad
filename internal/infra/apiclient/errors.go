package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind string

const (
	// KindTransport covers DNS, connection and read failures. Nothing was answered.
	KindTransport Kind = "transport"
	// KindHTTPStatus is a non-2xx answer from the backend.
	KindHTTPStatus Kind = "http_status"
	// KindInvalidRequest is a request that could not be built locally.
	KindInvalidRequest Kind = "invalid_request"
	// KindDecode is a 2xx answer a typed wrapper could not map onto its result.
	KindDecode Kind = "decode"
)

// Error is the single failure shape returned by the client. Error() is the
// human-readable message, suitable for showing to a user as is.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 when the backend never answered.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsStatus(err error, status int) bool {
	return status != 0 && StatusCode(err) == status
}

func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func invalidRequest(method, path, format string, args ...any) *Error {
	return &Error{
		Kind:    KindInvalidRequest,
		Method:  method,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
