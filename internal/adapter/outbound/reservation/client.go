package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/infra/breaker"
	"github.com/staybook/payments/internal/port/outbound"
	"github.com/staybook/payments/internal/utils/requestctx"
)

const maxErrorBody = 4096

// Config holds the booking service client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker breaker.Config
}

// Client implements outbound.ReservationPort over the booking service HTTP API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[any]
	logger     *zap.Logger
}

// NewClient creates a new booking service client.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		cb: breaker.New("reservation", cfg.Breaker, func(err error) bool {
			return err == nil || errors.Is(err, payment.ErrNotFound)
		}),
		logger: logger,
	}
}

type reservationResponse struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	RoomID    int64  `json:"room_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

func (c *Client) GetReservation(ctx context.Context, id int64) (*outbound.ReservationInfo, error) {
	body, err := breaker.Execute(c.cb, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, c.reservationURL(id, ""))
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}

	var resp reservationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode reservation %d: %w", id, err)
	}

	start, err := parseDate(resp.StartDate)
	if err != nil {
		return nil, fmt.Errorf("decode reservation %d start_date: %w", id, err)
	}
	end, err := parseDate(resp.EndDate)
	if err != nil {
		return nil, fmt.Errorf("decode reservation %d end_date: %w", id, err)
	}

	return &outbound.ReservationInfo{
		ID:        resp.ID,
		OwnerID:   resp.OwnerID,
		RoomID:    resp.RoomID,
		StartDate: start,
		EndDate:   end,
		Status:    resp.Status,
	}, nil
}

func (c *Client) Confirm(ctx context.Context, id int64) error {
	return c.notify(ctx, id, "confirm")
}

func (c *Client) MarkCanceledRefunded(ctx context.Context, id int64) error {
	return c.notify(ctx, id, "mark-canceled-refunded")
}

func (c *Client) notify(ctx context.Context, id int64, action string) error {
	_, err := breaker.Execute(c.cb, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, c.reservationURL(id, action))
	})
	if err != nil {
		return fmt.Errorf("reservation %d %s: %w", id, action, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestctx.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, payment.ErrNotFound
	case resp.StatusCode >= 300:
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		c.logger.Warn("Reservation service error",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("reservation service returned status %d", resp.StatusCode)
	}
	return body, nil
}

func (c *Client) reservationURL(id int64, action string) string {
	u := c.baseURL + "/reservations/" + strconv.FormatInt(id, 10)
	if action != "" {
		u += "/" + action
	}
	return u
}

// parseDate accepts plain dates and RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// Compile-time check
var _ outbound.ReservationPort = (*Client)(nil)
