package borrowings

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeForbidden            Code = "FORBIDDEN"
	CodeConflict             Code = "CONFLICT"
	CodeInternal             Code = "INTERNAL"
	CodeIneligibleBorrower   Code = "INELIGIBLE_BORROWER"
	CodeBookUnavailable      Code = "BOOK_UNAVAILABLE"
	CodeRenewalLimitExceeded Code = "RENEWAL_LIMIT_EXCEEDED"
	CodeNoOutstandingFine    Code = "NO_OUTSTANDING_FINE"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) *APIError {
	return &APIError{Code: CodeForbidden, Message: msg}
}
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrIneligibleBorrower() *APIError {
	return &APIError{Code: CodeIneligibleBorrower, Message: "cannot borrow books, please pay your outstanding fines"}
}

func ErrBookUnavailable() *APIError {
	return &APIError{Code: CodeBookUnavailable, Message: "book is not available for borrowing"}
}

func ErrRenewalLimit() *APIError {
	return &APIError{Code: CodeRenewalLimitExceeded, Message: "maximum renewals reached"}
}

func ErrNoOutstandingFine() *APIError {
	return &APIError{Code: CodeNoOutstandingFine, Message: "no unpaid fines for this borrowing"}
}

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeIneligibleBorrower, CodeBookUnavailable,
			CodeRenewalLimitExceeded, CodeNoOutstandingFine:
			return 400
		case CodeForbidden:
			return 403
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}
