package smclient

import (
	"errors"
	"fmt"
)

// ErrorKind tags the variant carried by an *Error.
type ErrorKind int

const (
	// KindNotLoggedIn is raised locally when a session operation runs while logged out.
	KindNotLoggedIn ErrorKind = iota + 1
	// KindPasswordMismatch is raised locally when the new password and its confirmation differ.
	KindPasswordMismatch
	// KindService is raised when the HTTP status or the application code reports a failure.
	KindService
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotLoggedIn:
		return "not logged in"
	case KindPasswordMismatch:
		return "password mismatch"
	case KindService:
		return "service error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the clients.
// Status, Code and Description are only meaningful for KindService.
type Error struct {
	Kind        ErrorKind
	Status      int        // HTTP status code
	Code        ResultCode // application code, valid when HasCode is set
	HasCode     bool
	Description string
	Cause       error
}

// Sentinels for errors.Is. Comparison is by Kind only.
var (
	ErrNotLoggedIn      = &Error{Kind: KindNotLoggedIn}
	ErrPasswordMismatch = &Error{Kind: KindPasswordMismatch}
	ErrService          = &Error{Kind: KindService}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindService:
		if !e.HasCode {
			if e.Description != "" {
				return fmt.Sprintf("smclient: %s (http %d)", e.Description, e.Status)
			}
			return fmt.Sprintf("smclient: http error %d", e.Status)
		}
		if e.Description != "" {
			return fmt.Sprintf("smclient: %s (code %d, http %d)", e.Description, int(e.Code), e.Status)
		}
		return fmt.Sprintf("smclient: service error (code %d, http %d)", int(e.Code), e.Status)
	case KindNotLoggedIn:
		return "smclient: not logged in"
	case KindPasswordMismatch:
		return "smclient: passwords don't match"
	default:
		return "smclient: unknown error"
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// newServiceError builds the error for a failed call. payload may be nil when
// the body could not be decoded.
func newServiceError(status int, payload *Response, cause error) *Error {
	e := &Error{
		Kind:   KindService,
		Status: status,
		Cause:  cause,
	}
	if payload != nil {
		e.Code = payload.Code
		e.HasCode = payload.HasCode()
		e.Description = payload.Description
	}
	return e
}

// IsUnauthorized reports whether err is a service error with code Unauthorized.
func IsUnauthorized(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindService && e.HasCode && e.Code == Unauthorized
	}
	return false
}

// StatusOf returns the HTTP status carried by a service error, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindService {
		return e.Status
	}
	return 0
}
