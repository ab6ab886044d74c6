package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/google/uuid"
)

// StreamManager handles active SSE connections, keyed by chat ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan string]struct{}
	closed      bool
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[int64]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for chatID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(chatID int64) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if sm.closed {
		close(ch)
		return ch, func() {}
	}
	if _, ok := sm.subscribers[chatID]; !ok {
		sm.subscribers[chatID] = make(map[chan string]struct{})
	}
	sm.subscribers[chatID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[chatID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, chatID)
			}
		}
	}
}

// Close ends every open stream and refuses new ones. It lets
// http.Server.Shutdown finish without waiting on idle SSE clients.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.closed {
		return
	}
	sm.closed = true
	for chatID, subs := range sm.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(sm.subscribers, chatID)
	}
}

// Subscribers returns the number of open streams for chatID.
func (sm *StreamManager) Subscribers(chatID int64) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[chatID])
}

// Broadcast sends msg to every subscriber of chatID and reports how many
// received it. Slow subscribers drop the message.
func (sm *StreamManager) Broadcast(chatID int64, msg string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	delivered := 0
	for ch := range sm.subscribers[chatID] {
		select {
		case ch <- msg:
			delivered++
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "chat_id", chatID)
		}
	}
	return delivered
}

// StreamEvent is one outbound message as written to the event stream.
type StreamEvent struct {
	Kind    string            `json:"kind"` // "send" or "edit"
	Ref     domain.MessageRef `json:"ref"`
	Message domain.Message    `json:"message"`
}

// StreamMessenger implements ports.Messenger by publishing to a StreamManager.
// A chat with no open stream counts as a failed delivery.
type StreamMessenger struct {
	streams *StreamManager
}

// NewStreamMessenger creates a messenger on top of sm.
func NewStreamMessenger(sm *StreamManager) *StreamMessenger {
	return &StreamMessenger{streams: sm}
}

// ErrNoSubscriber is returned when nobody is listening on the chat.
var ErrNoSubscriber = errors.New("no open stream for chat")

func (m *StreamMessenger) Send(ctx context.Context, chatID int64, msg domain.Message) (domain.MessageRef, error) {
	ref := domain.MessageRef{ChatID: chatID, MessageID: uuid.NewString()}
	if err := m.publish(StreamEvent{Kind: "send", Ref: ref, Message: msg}); err != nil {
		return domain.MessageRef{}, err
	}
	return ref, nil
}

func (m *StreamMessenger) Edit(ctx context.Context, ref domain.MessageRef, msg domain.Message) error {
	return m.publish(StreamEvent{Kind: "edit", Ref: ref, Message: msg})
}

func (m *StreamMessenger) publish(ev StreamEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}
	if m.streams.Broadcast(ev.Ref.ChatID, string(data)) == 0 {
		return fmt.Errorf("%w %d", ErrNoSubscriber, ev.Ref.ChatID)
	}
	return nil
}

var _ ports.Messenger = (*StreamMessenger)(nil)
