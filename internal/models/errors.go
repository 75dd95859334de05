package models

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure independently of the transport that reports it.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error     { return NewError(ErrCodeNotFound, message) }
func Forbidden(message string) *Error    { return NewError(ErrCodeForbidden, message) }
func Conflict(message string) *Error     { return NewError(ErrCodeConflict, message) }
func InvalidState(message string) *Error { return NewError(ErrCodeInvalidState, message) }
func Invalid(message string) *Error      { return NewError(ErrCodeInvalid, message) }

var (
	ErrUserNotFound        = NotFound("user not found")
	ErrSpotNotFound        = NotFound("tourist spot not found")
	ErrGuideNotFound       = NotFound("guide not found")
	ErrReviewNotFound      = NotFound("review not found")
	ErrApplicationNotFound = NotFound("guide application not found")
	ErrEventNotFound       = NotFound("event not found")
	ErrBlogNotFound        = NotFound("blog not found")
	ErrCommentNotFound     = NotFound("comment not found")
	ErrThreadNotFound      = NotFound("chat thread not found")

	ErrAlreadyReviewed    = Conflict("you have already reviewed this item")
	ErrAlreadyRegistered  = Conflict("you are already registered for this event")
	ErrEventFull          = Conflict("not enough places left for this event")
	ErrPendingApplication = Conflict("you already have a pending guide application")

	ErrUnauthorized = NewError(ErrCodeUnauthorized, "unauthorized")
)

// IsDomainError reports whether err carries the given code anywhere in its chain.
func IsDomainError(err error, code ErrorCode) bool {
	return ErrorCodeOf(err) == code
}

// ErrorCodeOf returns the code of the first *Error in the chain, or INTERNAL.
func ErrorCodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
