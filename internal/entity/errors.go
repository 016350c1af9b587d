package entity

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error is a terminal failure kind of the attendance engine. Callers wrap
// one of the sentinels below with context and compare with errors.Is.
type Error struct {
	kind   string
	msg    string
	status int
}

func (e *Error) Error() string { return e.msg }

// Kind is the stable name of the failure, surfaced to API clients.
func (e *Error) Kind() string { return e.kind }

// HTTPStatus is the status code the boundary layer answers with.
func (e *Error) HTTPStatus() int { return e.status }

var (
	ErrValidation                = &Error{"ValidationError", "validation failed", http.StatusBadRequest}
	ErrTenantMismatch            = &Error{"TenantMismatch", "record belongs to another tenant", http.StatusForbidden}
	ErrShiftNotConfigured        = &Error{"ShiftNotConfigured", "no shift is configured for the teacher", http.StatusUnprocessableEntity}
	ErrInvalidStudentInBatch     = &Error{"InvalidStudentInBatch", "student is not enrolled in the batch", http.StatusUnprocessableEntity}
	ErrInvalidApprovalTransition = &Error{"InvalidApprovalTransition", "approval transition is not allowed", http.StatusConflict}
	ErrAlreadyApproved           = &Error{"AlreadyApproved", "attendance is already approved", http.StatusConflict}
	ErrNotFound                  = &Error{"NotFound", "not found", http.StatusNotFound}
	ErrStorageUnavailable        = &Error{"StorageUnavailable", "storage is unavailable", http.StatusServiceUnavailable}

	// ErrTransient marks a storage failure worth one retry. It is never
	// returned to API callers: the workflow turns it into ErrStorageUnavailable.
	ErrTransient = &Error{"Transient", "transient storage failure", http.StatusServiceUnavailable}
)

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}
