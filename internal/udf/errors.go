package udf

import (
	"errors"
	"fmt"
)

// BindError reports a configuration problem detected while binding a
// function. A query that fails to bind must not run.
type BindError struct {
	// Code identifies the error category.
	Code BindErrorCode

	// Function is the SQL name of the function being bound.
	Function string

	// Message is a human-readable description.
	Message string
}

// BindErrorCode categorizes bind errors.
type BindErrorCode string

const (
	// ErrCodeArgCount indicates the wrong number of arguments.
	ErrCodeArgCount BindErrorCode = "ARG_COUNT"

	// ErrCodeArgType indicates an argument that cannot be read as its
	// parameter's type.
	ErrCodeArgType BindErrorCode = "ARG_TYPE"

	// ErrCodeNotConstant indicates a per-row argument where a constant is
	// required.
	ErrCodeNotConstant BindErrorCode = "NOT_CONSTANT"

	// ErrCodeTableLength indicates translate tables of different lengths.
	ErrCodeTableLength BindErrorCode = "TABLE_LENGTH"

	// ErrCodeRandomLimit indicates a random byte count above the limit.
	ErrCodeRandomLimit BindErrorCode = "RANDOM_LIMIT"

	// ErrCodeNegativeCount indicates a negative random byte count.
	ErrCodeNegativeCount BindErrorCode = "NEGATIVE_COUNT"

	// ErrCodeUnknownFunction indicates a name no registered function has.
	ErrCodeUnknownFunction BindErrorCode = "UNKNOWN_FUNCTION"
)

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Function, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newBindError(code BindErrorCode, fn, format string, args ...any) *BindError {
	return &BindError{Code: code, Function: fn, Message: fmt.Sprintf(format, args...)}
}

// IsBindError reports whether err is or wraps a *BindError.
func IsBindError(err error) bool {
	var be *BindError
	return errors.As(err, &be)
}

// HasCode reports whether err is or wraps a *BindError with the given code.
func HasCode(err error, code BindErrorCode) bool {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
