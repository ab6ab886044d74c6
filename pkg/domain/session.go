package domain

import (
	"strconv"
	"time"
)

// WorkflowKind identifies which multi-step process owns a session.
type WorkflowKind string

const (
	WorkflowOrder       WorkflowKind = "order"
	WorkflowAddProduct  WorkflowKind = "add_product"
	WorkflowEditProduct WorkflowKind = "edit_product"
	WorkflowBroadcast   WorkflowKind = "broadcast"
)

// Step is the tag of the active state inside a workflow.
type Step string

const (
	StepIdle               Step = "idle"
	StepCollectingName     Step = "collecting_name"
	StepCollectingPhone    Step = "collecting_phone"
	StepCollectingAddress  Step = "collecting_address"
	StepCollectingQuantity Step = "collecting_quantity"
	StepCompleted          Step = "completed"

	StepProductCategory    Step = "product_category"
	StepProductName        Step = "product_name"
	StepProductPrice       Step = "product_price"
	StepProductDescription Step = "product_description"
	StepProductSize        Step = "product_size"
	StepProductPhoto       Step = "product_photo"
	StepProductEditValue   Step = "product_edit_value"

	StepBroadcastContent Step = "broadcast_content"
)

// Collecting reports whether the step belongs to the customer order form.
func (s Step) Collecting() bool {
	switch s {
	case StepCollectingName, StepCollectingPhone, StepCollectingAddress, StepCollectingQuantity:
		return true
	}
	return false
}

// OrderDraft accumulates the order form fields while the workflow is running.
type OrderDraft struct {
	ProductID    int64  `json:"product_id"`
	CustomerName string `json:"customer_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
}

// ProductDraft accumulates admin input for creating or editing a product.
type ProductDraft struct {
	// ProductID is set when editing an existing product.
	ProductID   int64  `json:"product_id,omitempty"`
	Category    string `json:"category,omitempty"`
	Name        string `json:"name,omitempty"`
	Price       int64  `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	Size        string `json:"size,omitempty"`
	PhotoRef    string `json:"photo_ref,omitempty"`

	// EditField names the product field targeted by the edit workflow.
	EditField ProductFieldKind `json:"edit_field,omitempty"`
}

// ProductFieldKind enumerates the editable product attributes.
type ProductFieldKind string

const (
	ProductFieldName        ProductFieldKind = "name"
	ProductFieldPrice       ProductFieldKind = "price"
	ProductFieldDescription ProductFieldKind = "description"
	ProductFieldSize        ProductFieldKind = "size"
	ProductFieldCategory    ProductFieldKind = "category"
	ProductFieldPhoto       ProductFieldKind = "photo"
)

// Session is the ephemeral per-actor workflow state.
type Session struct {
	ActorID  int64        `json:"actor_id"`
	Workflow WorkflowKind `json:"workflow"`
	Step     Step         `json:"step"`

	Order   *OrderDraft   `json:"order,omitempty"`
	Product *ProductDraft `json:"product,omitempty"`

	// Sealed carries the encrypted session when the store is wrapped by an
	// encryption middleware; the draft fields are then empty.
	Sealed string `json:"sealed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session for the actor positioned at the given step.
func NewSession(actorID int64, workflow WorkflowKind, step Step) *Session {
	now := time.Now().UTC()
	return &Session{
		ActorID:   actorID,
		Workflow:  workflow,
		Step:      step,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves the session to the next step and refreshes UpdatedAt.
func (s *Session) Advance(step Step) {
	s.Step = step
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	if s.Order != nil {
		o := *s.Order
		c.Order = &o
	}
	if s.Product != nil {
		p := *s.Product
		c.Product = &p
	}
	return &c
}

// SessionKey is the store key for an actor's session.
func SessionKey(actorID int64) string {
	return strconv.FormatInt(actorID, 10)
}
