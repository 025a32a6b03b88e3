package paymenthttp

import (
	"time"

	"github.com/staybook/payments/internal/domain/payment"
)

// CreateIntentRequest is the body of POST /payments/intents.
type CreateIntentRequest struct {
	ReservationID int64  `json:"reservation_id" binding:"required,gt=0"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Currency      string `json:"currency" binding:"required,len=3"`
}

// CreateIntentResponse carries the client secret the payer needs to finish the payment.
type CreateIntentResponse struct {
	PaymentID       string `json:"payment_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// ConfirmRequest is the body of POST /payments/confirm.
type ConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// ConfirmResponse is the result of a confirmation.
type ConfirmResponse struct {
	Payment        PaymentResponse `json:"payment"`
	ProviderStatus string          `json:"provider_status"`
	RequiresAction bool            `json:"requires_action"`
}

// RefundRequest is the body of POST /payments/:id/refund. An empty body refunds in full.
type RefundRequest struct {
	Amount *int64 `json:"amount"`
	Reason string `json:"reason" binding:"max=500"`
}

// RefundResponse is the result of a refund.
type RefundResponse struct {
	Payment        PaymentResponse `json:"payment"`
	RefundID       string          `json:"refund_id"`
	RefundedAmount int64           `json:"refunded_amount"`
}

// SyncResponse is the result of a provider sync.
type SyncResponse struct {
	Payment        PaymentResponse `json:"payment"`
	ProviderStatus string          `json:"provider_status"`
	Changed        bool            `json:"changed"`
}

// PaymentListResponse lists the payments of a reservation, newest first.
type PaymentListResponse struct {
	Data []PaymentResponse `json:"data"`
}

// PaymentResponse is the API view of a payment. The client secret is never included.
type PaymentResponse struct {
	ID               string     `json:"id"`
	ReservationID    int64      `json:"reservation_id"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	ProviderIntentID string     `json:"provider_intent_id,omitempty"`
	ProviderChargeID string     `json:"provider_charge_id,omitempty"`
	AmountRefunded   int64      `json:"amount_refunded"`
	IsActive         bool       `json:"is_active"`
	ErrorCode        string     `json:"error_code,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	RefundedAt       *time.Time `json:"refunded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID().String(),
		ReservationID:    p.ReservationID(),
		Amount:           p.Amount(),
		Currency:         p.Currency(),
		Status:           p.Status().String(),
		ProviderIntentID: p.ProviderIntentID(),
		ProviderChargeID: p.ProviderChargeID(),
		AmountRefunded:   p.AmountRefunded(),
		IsActive:         p.IsActive(),
		ErrorCode:        p.ErrorCode(),
		ErrorMessage:     p.ErrorMessage(),
		PaidAt:           p.PaidAt(),
		RefundedAt:       p.RefundedAt(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
}

func toPaymentResponses(ps []*payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPaymentResponse(p))
	}
	return out
}
