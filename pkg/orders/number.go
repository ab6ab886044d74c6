package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberPrefix starts every order number.
const NumberPrefix = "ORD-"

// NumberFunc generates a candidate order number for the given time.
type NumberFunc func(now time.Time) string

// NewNumber returns "ORD-YYMMDD-XXXXXX", where the suffix is six uppercase
// hex characters of a random UUID. Numbers are independent of order IDs.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return NumberPrefix + now.Format("060102") + "-" + suffix
}
