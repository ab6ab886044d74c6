package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aretw0/storefront/pkg/domain"
)

// ErrDeliveryFailed is returned for chats registered with FailFor.
var ErrDeliveryFailed = errors.New("delivery failed")

// Sent is one recorded outbound message.
type Sent struct {
	Ref     domain.MessageRef
	Message domain.Message
	Edits   []domain.Message
}

// Messenger implements ports.Messenger by recording every message.
// It is used by tests and the development server.
type Messenger struct {
	mu      sync.Mutex
	seq     int
	sent    []*Sent
	byID    map[string]*Sent
	failing map[int64]bool
}

// NewMessenger creates an empty recording messenger.
func NewMessenger() *Messenger {
	return &Messenger{
		byID:    make(map[string]*Sent),
		failing: make(map[int64]bool),
	}
}

// FailFor makes every delivery to the given chats fail permanently.
func (m *Messenger) FailFor(chatIDs ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range chatIDs {
		m.failing[id] = true
	}
}

func (m *Messenger) Send(ctx context.Context, chatID int64, msg domain.Message) (domain.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing[chatID] {
		return domain.MessageRef{}, fmt.Errorf("chat %d: %w", chatID, ErrDeliveryFailed)
	}
	m.seq++
	ref := domain.MessageRef{ChatID: chatID, MessageID: strconv.Itoa(m.seq)}
	s := &Sent{Ref: ref, Message: msg}
	m.sent = append(m.sent, s)
	m.byID[ref.MessageID] = s
	return ref, nil
}

func (m *Messenger) Edit(ctx context.Context, ref domain.MessageRef, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[ref.MessageID]
	if !ok || s.Ref.ChatID != ref.ChatID {
		return fmt.Errorf("message %s not found in chat %d", ref.MessageID, ref.ChatID)
	}
	s.Edits = append(s.Edits, msg)
	return nil
}

// To returns the messages delivered to a chat, in order.
func (m *Messenger) To(chatID int64) []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Sent
	for _, s := range m.sent {
		if s.Ref.ChatID == chatID {
			out = append(out, *s)
		}
	}
	return out
}

// Last returns the text of the latest message (or its latest edit) sent to a chat.
func (m *Messenger) Last(chatID int64) string {
	msgs := m.To(chatID)
	if len(msgs) == 0 {
		return ""
	}
	last := msgs[len(msgs)-1]
	if n := len(last.Edits); n > 0 {
		return last.Edits[n-1].Text
	}
	return last.Message.Text
}

// Reset forgets all recorded messages.
func (m *Messenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.byID = make(map[string]*Sent)
}
