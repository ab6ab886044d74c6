// Package http exposes the storefront over HTTP: a chi webhook server for
// inbound updates and read APIs, a server-sent event stream of outbound
// messages, and an outbound messenger for an external chat gateway.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UpdateHandler processes one inbound update.
type UpdateHandler interface {
	Handle(ctx context.Context, u domain.Update) error
}

// OrderReader serves the read-only order endpoints.
type OrderReader interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListForActor(ctx context.Context, actorID int64) ([]domain.Order, error)
}

// Server routes HTTP requests to the storefront.
type Server struct {
	updates UpdateHandler
	orders  OrderReader
	streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStreams enables GET /v1/actors/{id}/events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.streams = sm
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(updates UpdateHandler, orders OrderReader, opts ...Option) http.Handler {
	s := &Server{
		updates: updates,
		orders:  orders,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/updates", s.PostUpdate)
		r.Get("/orders/{id}", s.GetOrder)
		r.Get("/actors/{id}/orders", s.ListActorOrders)
		if s.streams != nil {
			r.Get("/actors/{id}/events", s.SubscribeEvents)
		}
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be an integer", domain.ErrInvalidOrder)
	}
	return id, nil
}

// PostUpdate handles POST /v1/updates.
func (s *Server) PostUpdate(w http.ResponseWriter, r *http.Request) {
	var u domain.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body"})
		s.logger.Warn("PostUpdate: invalid request body", "err", err)
		return
	}
	if u.Actor.ID == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Message: "actor.id is required"})
		return
	}

	if err := s.updates.Handle(r.Context(), u); err != nil {
		s.logger.Warn("PostUpdate: update failed", "update_id", u.ID, "actor_id", u.Actor.ID, "err", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GetOrder handles GET /v1/orders/{id}.
func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// ListActorOrders handles GET /v1/actors/{id}/orders.
func (s *Server) ListActorOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.orders.ListForActor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// SubscribeEvents handles GET /v1/actors/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "actor_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
