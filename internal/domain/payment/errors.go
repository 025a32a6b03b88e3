package payment

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrNotFound is returned when a reservation or payment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when a reservation is not payable or a payment
	// is not in a state that allows the requested operation.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyPaid is returned when the reservation already has a succeeded payment.
	ErrAlreadyPaid = errors.New("reservation already paid")

	// ErrValidation is returned for malformed input or an out-of-range refund amount.
	ErrValidation = errors.New("validation failed")

	// ErrProvider is returned when the payment processor rejected or failed an operation.
	ErrProvider = errors.New("payment provider error")

	// ErrAuthentication is returned when a webhook signature is missing or invalid.
	ErrAuthentication = errors.New("webhook authentication failed")

	// ErrConcurrentUpdate is returned when the payment row changed between load and save.
	ErrConcurrentUpdate = errors.New("payment was modified concurrently")

	// ErrPaymentLocked is returned when another unit of work holds the payment lock.
	ErrPaymentLocked = errors.New("payment is locked")
)

// InvalidStateError carries the status that made the operation impossible.
type InvalidStateError struct {
	Status string
	Reason string
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(status, reason string) *InvalidStateError {
	return &InvalidStateError{Status: status, Reason: reason}
}

func (e *InvalidStateError) Error() string {
	if e.Status == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (status: %s)", e.Reason, e.Status)
}

// Is reports whether target is ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ProviderError carries the processor's error code and message.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

// NewProviderError creates a ProviderError.
func NewProviderError(code, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("payment provider error [%s]: %s", e.Code, msg)
	}
	return fmt.Sprintf("payment provider error: %s", msg)
}

// Is reports whether target is ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// Unwrap returns the underlying transport error, if any.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError describes rejected input.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
