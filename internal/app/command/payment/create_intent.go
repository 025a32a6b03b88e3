package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// CreateIntentCommand represents a command to open a payment for a reservation.
type CreateIntentCommand struct {
	ReservationID int64
	Amount        int64
	Currency      string
}

// CreateIntentResult is the result of opening a payment.
type CreateIntentResult struct {
	PaymentID    uuid.UUID
	IntentID     string
	ClientSecret string
	Amount       int64
	Currency     string
}

// CreateIntentHandler handles CreateIntentCommand.
type CreateIntentHandler struct {
	repo         outbound.PaymentDatabasePort
	gateway      outbound.PaymentGatewayPort
	reservations outbound.ReservationPort
	logger       *zap.Logger
	now          func() time.Time
}

// NewCreateIntentHandler creates a new handler.
func NewCreateIntentHandler(
	repo outbound.PaymentDatabasePort,
	gateway outbound.PaymentGatewayPort,
	reservations outbound.ReservationPort,
	logger *zap.Logger,
) *CreateIntentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateIntentHandler{
		repo:         repo,
		gateway:      gateway,
		reservations: reservations,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the command.
func (h *CreateIntentHandler) Handle(ctx context.Context, cmd CreateIntentCommand) (*CreateIntentResult, error) {
	// Validate before touching any collaborator
	p, err := payment.NewPayment(cmd.ReservationID, cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}

	res, err := h.reservations.GetReservation(ctx, cmd.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if !res.IsPayable() {
		return nil, payment.NewInvalidStateError(res.Status, "reservation is not payable")
	}

	existing, err := h.repo.FindByReservationID(ctx, cmd.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	for _, e := range existing {
		if e.IsSucceeded() {
			return nil, payment.ErrAlreadyPaid
		}
	}

	reference := strconv.FormatInt(res.ID, 10)
	intent, err := h.gateway.CreateIntent(ctx, outbound.CreateIntentInput{
		Amount:      p.Amount(),
		Currency:    p.Currency(),
		ReferenceID: reference,
		Metadata: map[string]string{
			"reservation_id": reference,
			"owner_id":       strconv.FormatInt(res.OwnerID, 10),
			"room_id":        strconv.FormatInt(res.RoomID, 10),
			"start_date":     res.StartDate.Format(time.DateOnly),
			"end_date":       res.EndDate.Format(time.DateOnly),
			"created_at":     h.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create intent: %w", err)
	}

	if err := p.SetProviderIntent(intent.IntentID, intent.ClientSecret); err != nil {
		return nil, err
	}
	if err := h.repo.Create(ctx, p); err != nil {
		// The intent exists at the provider; a later webhook for it will fail
		// until an operator looks at it.
		h.logger.Error("failed to persist payment after intent creation",
			zap.String("intent_id", intent.IntentID),
			zap.Int64("reservation_id", cmd.ReservationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create payment: %w", err)
	}

	h.logger.Info("payment intent created",
		zap.String("payment_id", p.ID().String()),
		zap.String("intent_id", intent.IntentID),
		zap.Int64("reservation_id", cmd.ReservationID),
	)

	return &CreateIntentResult{
		PaymentID:    p.ID(),
		IntentID:     intent.IntentID,
		ClientSecret: intent.ClientSecret,
		Amount:       p.Amount(),
		Currency:     p.Currency(),
	}, nil
}
