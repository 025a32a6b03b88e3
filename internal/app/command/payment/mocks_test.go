package payment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// --- Mock gateway ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Name() string { return "stripe" }

func (m *MockGateway) CreateIntent(ctx context.Context, in outbound.CreateIntentInput) (*outbound.IntentResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.IntentResult), args.Error(1)
}

func (m *MockGateway) Confirm(ctx context.Context, intentID, paymentMethodID string) (*outbound.IntentResult, error) {
	args := m.Called(ctx, intentID, paymentMethodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.IntentResult), args.Error(1)
}

func (m *MockGateway) GetIntent(ctx context.Context, intentID string) (*outbound.IntentResult, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.IntentResult), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, in outbound.RefundInput) (*outbound.RefundResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.RefundResult), args.Error(1)
}

func (m *MockGateway) ParseEvent(payload []byte, signature string) (*payment.ProviderEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProviderEvent), args.Error(1)
}

// --- Mock reservation service ---

type MockReservations struct {
	mock.Mock
}

func (m *MockReservations) GetReservation(ctx context.Context, id int64) (*outbound.ReservationInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.ReservationInfo), args.Error(1)
}

func (m *MockReservations) Confirm(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservations) MarkCanceledRefunded(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock publisher ---

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event outbound.PaymentOutcomeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Mock locker ---

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// --- In-memory payment store ---

// memoryPayments keeps snapshots and applies the same version check as the
// postgres adapter.
type memoryPayments struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]payment.Snapshot
	updates int
	// failUpdate, when set, is returned by Update.
	failUpdate error
}

func newMemoryPayments() *memoryPayments {
	return &memoryPayments{rows: make(map[uuid.UUID]payment.Snapshot)}
}

func (s *memoryPayments) Create(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if p.ProviderIntentID() != "" && row.ProviderIntentID == p.ProviderIntentID() {
			return payment.NewValidationError("provider_intent_id", "duplicate")
		}
	}
	p.AssignID(uuid.New())
	p.SetVersion(1)
	s.rows[p.ID()] = p.Snapshot()
	return nil
}

func (s *memoryPayments) FindByID(_ context.Context, id uuid.UUID) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return payment.Restore(row), nil
}

func (s *memoryPayments) FindByReservationID(_ context.Context, reservationID int64) ([]*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*payment.Payment
	for _, row := range s.rows {
		if row.ReservationID == reservationID {
			out = append(out, payment.Restore(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (s *memoryPayments) FindByProviderIntentID(_ context.Context, intentID string) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ProviderIntentID == intentID {
			return payment.Restore(row), nil
		}
	}
	return nil, payment.ErrNotFound
}

func (s *memoryPayments) Update(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	row, ok := s.rows[p.ID()]
	if !ok || row.Version != p.Version() {
		return payment.ErrConcurrentUpdate
	}
	p.SetVersion(p.Version() + 1)
	s.rows[p.ID()] = p.Snapshot()
	s.updates++
	return nil
}

// get returns the stored state of a payment.
func (s *memoryPayments) get(id uuid.UUID) *payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payment.Restore(s.rows[id])
}

// seed stores p as if it had been created and returns its id.
func (s *memoryPayments) seed(p *payment.Payment) uuid.UUID {
	_ = s.Create(context.Background(), p)
	return p.ID()
}

// --- In-memory webhook ledger ---

type memoryLedger struct {
	mu   sync.Mutex
	rows map[string]*payment.WebhookEvent
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: make(map[string]*payment.WebhookEvent)}
}

func (l *memoryLedger) FindByEventID(_ context.Context, provider, eventID string) (*payment.WebhookEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.rows[provider+"/"+eventID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return e, nil
}

func (l *memoryLedger) Create(_ context.Context, e *payment.WebhookEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[e.Provider()+"/"+e.EventID()] = e
	return nil
}

func (l *memoryLedger) MarkProcessed(_ context.Context, e *payment.WebhookEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[e.Provider()+"/"+e.EventID()] = e
	return nil
}

// --- Fake archive ---

type recordingArchive struct {
	keys []string
}

func (a *recordingArchive) Archive(_ context.Context, provider, eventID string, _ []byte) error {
	a.keys = append(a.keys, provider+"/"+eventID)
	return nil
}
