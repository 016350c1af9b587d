package web

import (
	"net/http"

	"github.com/pkg/errors"
)

// FieldError names one invalid request field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is an error that already knows its HTTP status.
type Error struct {
	Err    error
	Status int
	Fields []FieldError
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewRequestError wraps err with the status the client should see.
func NewRequestError(err error, status int) error {
	return &Error{Err: err, Status: status}
}

type statusCoder interface {
	HTTPStatus() int
}

type kinder interface {
	Kind() string
}

// statusOf finds the response status for err: an explicit *Error wins, then
// any error in the chain that reports its own status, then 500.
func statusOf(err error) (int, []FieldError) {
	var webErr *Error
	if errors.As(err, &webErr) && webErr.Status != 0 {
		return webErr.Status, webErr.Fields
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus(), nil
	}

	return http.StatusInternalServerError, nil
}

func kindOf(err error) string {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}
