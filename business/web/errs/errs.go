// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap exposes the wrapped error for errors.Is.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// FromLedger maps a rejection from the ledger to a trusted error carrying the
// matching status. Unknown errors are returned untouched.
func FromLedger(err error) error {
	switch {
	case errors.Is(err, state.ErrAccountNotFound):
		return NewTrusted(err, http.StatusNotFound)
	case errors.Is(err, state.ErrAccountExists):
		return NewTrusted(err, http.StatusConflict)
	case errors.Is(err, state.ErrReservedAccount),
		errors.Is(err, state.ErrInsufficientFunds),
		errors.Is(err, state.ErrSelfTransfer),
		errors.Is(err, state.ErrInvalidAmount):
		return NewTrusted(err, http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTrusted(err, http.StatusGatewayTimeout)
	}
	return err
}
