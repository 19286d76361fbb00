package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
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

// FromError maps err onto an HTTP status using its domain code.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := domain.CodeOf(err)
	return New(StatusFor(code), string(orInternal(code)), err)
}

func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeMalformedToken:
		return http.StatusBadRequest
	case domain.CodeDuplicateLevel, domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeEmptyStrand, domain.CodeInvariantViolation, domain.CodePreconditionFailed:
		return http.StatusUnprocessableEntity
	case domain.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func orInternal(code domain.ErrorCode) domain.ErrorCode {
	if code == "" {
		return domain.CodeInternal
	}
	return code
}
