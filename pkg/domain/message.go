package domain

// Button is a single keyboard button. Data is sent back as Update.Callback;
// a button without Data sends its Text as a plain message.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`

	// RequestContact asks the client to share the phone number.
	RequestContact bool `json:"request_contact,omitempty"`
}

// Keyboard is a grid of buttons attached to a message.
type Keyboard [][]Button

// Message is an outbound message.
type Message struct {
	Text     string   `json:"text"`
	PhotoRef string   `json:"photo_ref,omitempty"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// MessageRef identifies a delivered message so it can be edited in place.
type MessageRef struct {
	ChatID    int64  `json:"chat_id"`
	MessageID string `json:"message_id"`
}

// Content is free-form broadcast content copied to every recipient.
type Content struct {
	Text     string `json:"text,omitempty"`
	PhotoRef string `json:"photo_ref,omitempty"`
}

// Message converts broadcast content into an outbound message.
func (c Content) Message() Message {
	return Message{Text: c.Text, PhotoRef: c.PhotoRef}
}
