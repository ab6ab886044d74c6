package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the messenger circuit breaker.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxRequests allowed in the half-open state.
	MaxRequests uint32

	// Interval clears the counts while closed. 0 never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultBreakerConfig returns defaults for a gateway breaker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = gobreaker.ErrOpenState

// GatewayError is a non-2xx answer from the chat gateway.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Body)
}

type reply struct {
	status int
	body   []byte
}

// ClientMessenger implements ports.Messenger by calling a chat gateway:
// POST {base}/send and POST {base}/edit. Server errors count against the
// circuit breaker; client errors do not.
type ClientMessenger struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[reply]
	logger  *slog.Logger
}

// ClientOption configures a ClientMessenger.
type ClientOption func(*ClientMessenger)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(m *ClientMessenger) {
		m.client = c
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(m *ClientMessenger) {
		m.logger = logger
	}
}

// NewClientMessenger creates a gateway messenger.
func NewClientMessenger(baseURL string, cfg BreakerConfig, opts ...ClientOption) *ClientMessenger {
	m := &ClientMessenger{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.breaker = gobreaker.NewCircuitBreaker[reply](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return m
}

// State reports the breaker state.
func (m *ClientMessenger) State() gobreaker.State {
	return m.breaker.State()
}

type sendRequest struct {
	ChatID  int64          `json:"chat_id"`
	Message domain.Message `json:"message"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

type editRequest struct {
	Ref     domain.MessageRef `json:"ref"`
	Message domain.Message    `json:"message"`
}

func (m *ClientMessenger) Send(ctx context.Context, chatID int64, msg domain.Message) (domain.MessageRef, error) {
	body, err := m.post(ctx, "/send", sendRequest{ChatID: chatID, Message: msg})
	if err != nil {
		return domain.MessageRef{}, err
	}
	var resp sendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.MessageRef{}, fmt.Errorf("decode send response: %w", err)
	}
	return domain.MessageRef{ChatID: chatID, MessageID: resp.MessageID}, nil
}

func (m *ClientMessenger) Edit(ctx context.Context, ref domain.MessageRef, msg domain.Message) error {
	_, err := m.post(ctx, "/edit", editRequest{Ref: ref, Message: msg})
	return err
}

func (m *ClientMessenger) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	rep, err := m.breaker.Execute(func() (reply, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return reply{}, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.client.Do(req)
		if err != nil {
			return reply{}, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return reply{}, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 500 {
			return reply{}, &GatewayError{Status: resp.StatusCode, Body: string(body)}
		}
		return reply{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			m.logger.WarnContext(ctx, "gateway circuit open", slog.String("path", path))
		}
		return nil, fmt.Errorf("gateway %s: %w", path, err)
	}
	if rep.status >= 300 {
		return nil, fmt.Errorf("gateway %s: %w", path, &GatewayError{Status: rep.status, Body: string(rep.body)})
	}
	return rep.body, nil
}

var _ ports.Messenger = (*ClientMessenger)(nil)
