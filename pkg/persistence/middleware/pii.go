package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// DefaultPIIPatterns match the customer fields of an order draft.
var DefaultPIIPatterns = []string{"customer_name", "phone", "address"}

// Mask replaces masked values.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a read-only redacting view: sessions loaded
// through it have string fields whose JSON name matches a pattern replaced
// by Mask. Writes pass through unchanged, so the workflow keeps the real
// values; operator tooling reads through the mask.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, key string, s *domain.Session) error {
	return m.next.Save(ctx, key, s)
}

func (m *piiMiddleware) Load(ctx context.Context, key string) (*domain.Session, error) {
	s, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return MaskSession(s, m.patterns)
}

func (m *piiMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// MaskSession returns a masked copy of s. The original is not modified.
func MaskSession(s *domain.Session, patterns []*regexp.Regexp) (*domain.Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	maskMap(m, patterns)

	raw, err = json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal masked session: %w", err)
	}
	var masked domain.Session
	if err := json.Unmarshal(raw, &masked); err != nil {
		return nil, fmt.Errorf("failed to unmarshal masked session: %w", err)
	}
	return &masked, nil
}

// Helpers

// maskMap masks string values of matching keys, recursing into nested maps.
// Non-string values keep their type so the result still decodes.
func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
			continue
		}
		if _, ok := v.(string); !ok {
			continue
		}
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = Mask
				break
			}
		}
	}
}
