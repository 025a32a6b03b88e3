package payment

import "github.com/staybook/payments/internal/app/command"

var (
	_ command.Handler[CreateIntentCommand, *CreateIntentResult]     = (*CreateIntentHandler)(nil)
	_ command.Handler[ConfirmPaymentCommand, *ConfirmPaymentResult] = (*ConfirmPaymentHandler)(nil)
	_ command.Handler[RefundPaymentCommand, *RefundPaymentResult]   = (*RefundPaymentHandler)(nil)
	_ command.Handler[SyncPaymentCommand, *SyncPaymentResult]       = (*SyncPaymentHandler)(nil)
	_ command.Handler[ReconcileEventCommand, *ReconcileEventResult] = (*ReconcileEventHandler)(nil)
)
