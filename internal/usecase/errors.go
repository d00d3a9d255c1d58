package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidProvider ErrorCode = "INVALID_PROVIDER"
	ErrorInvalidModel    ErrorCode = "INVALID_MODEL"
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorAgent           ErrorCode = "AGENT_ERROR"
)

// Error is a classified gateway failure. Detail is safe to return to callers.
type Error struct {
	Code   ErrorCode
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Detail)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Detail, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, detail string, err error) *Error {
	return &Error{Code: code, Detail: detail, Err: err}
}
