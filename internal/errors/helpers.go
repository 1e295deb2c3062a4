package errors

import (
	"context"
	"errors"
)

// As is errors.As narrowed to *Error
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is forwards to the standard library
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the code of err. Bare context errors map to their own
// codes and any other foreign error is Internal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	}
	return CodeInternal
}

// GetMeta returns the metadata of err, if any
func GetMeta(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// GetMessage returns the outermost message of err
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsNotFound(err error) bool           { return GetCode(err) == CodeNotFound }
func IsInvalidArgument(err error) bool    { return GetCode(err) == CodeInvalidArgument }
func IsAlreadyExists(err error) bool      { return GetCode(err) == CodeAlreadyExists }
func IsFailedPrecondition(err error) bool { return GetCode(err) == CodeFailedPrecondition }
func IsInternal(err error) bool           { return GetCode(err) == CodeInternal }
func IsUnavailable(err error) bool        { return GetCode(err) == CodeUnavailable }
func IsUnimplemented(err error) bool      { return GetCode(err) == CodeUnimplemented }
func IsCanceled(err error) bool           { return GetCode(err) == CodeCanceled }
func IsDeadlineExceeded(err error) bool   { return GetCode(err) == CodeDeadlineExceeded }
