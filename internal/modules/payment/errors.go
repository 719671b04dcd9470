package payment

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("transaction id already used on this terminal")
	ErrInvalidPayment       = errors.New("invalid payment request")
)

// BadRequestError means the gateway rejected the request as malformed (HTTP
// 400). It is an integration bug and is never retried.
type BadRequestError struct {
	Body string
}

func (e *BadRequestError) Error() string {
	return "gateway rejected request: " + e.Body
}

// UnexpectedResponseError covers statuses and bodies outside the gateway
// contract.
type UnexpectedResponseError struct {
	StatusCode int
	Body       string
	cause      error
}

func (e *UnexpectedResponseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("unexpected gateway response (status %d): %v", e.StatusCode, e.cause)
	}
	return fmt.Sprintf("unexpected gateway response (status %d): %s", e.StatusCode, e.Body)
}

func (e *UnexpectedResponseError) Unwrap() error { return e.cause }
