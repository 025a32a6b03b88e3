package payment

// Status represents the lifecycle status of a payment.
type Status string

const (
	StatusRequiresPayment Status = "requires_payment"
	StatusRequiresAction  Status = "requires_action"
	StatusProcessing      Status = "processing"
	StatusSucceeded       Status = "succeeded"
	StatusFailed          Status = "failed"
	StatusRefunded        Status = "refunded"
	StatusCanceled        Status = "canceled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a known payment status.
func (s Status) IsValid() bool {
	switch s {
	case StatusRequiresPayment, StatusRequiresAction, StatusProcessing,
		StatusSucceeded, StatusFailed, StatusRefunded, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that end the authorization flow.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled || s == StatusRefunded
}

// IsConfirmable returns true if a payment method may still be confirmed against the intent.
func (s Status) IsConfirmable() bool {
	return s == StatusRequiresPayment || s == StatusRequiresAction
}

// Provider result statuses as reported by the payment processor.
const (
	ProviderStatusSucceeded             = "succeeded"
	ProviderStatusRequiresAction        = "requires_action"
	ProviderStatusProcessing            = "processing"
	ProviderStatusRequiresPaymentMethod = "requires_payment_method"
	ProviderStatusRequiresConfirmation  = "requires_confirmation"
	ProviderStatusCanceled              = "canceled"
	ProviderStatusPending               = "pending"
	ProviderStatusFailed                = "failed"
)
