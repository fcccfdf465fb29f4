package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidDate         = "invalid_date"
	CodeCredentialsMissing  = "credentials_missing"
	CodeSnapshotUnavailable = "snapshot_unavailable"
	CodeSnapshotFailed      = "snapshot_failed"
	CodeInternal            = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From unwraps an *Error or wraps err as a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
