package domain

import (
	"strings"
	"time"
)

// Product is a catalog entry. The order workflow only reads it.
// Price is capped at MaxPrice so order totals cannot overflow.
type Product struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category" validate:"required"`
	Name        string    `json:"name" validate:"required,min=2"`
	Price       int64     `json:"price" validate:"gt=0,lte=92233720368547758"`
	Description string    `json:"description,omitempty"`
	Size        string    `json:"size,omitempty"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	Available   bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is a known chat user; broadcasts go to every user.
type User struct {
	ID        int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// DisplayName returns the @username, the full name, or "unknown".
func (u User) DisplayName() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return "unknown"
}
