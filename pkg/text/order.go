package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/storefront/pkg/domain"
)

const rule = "━━━━━━━━━━━━━━━━━━━━"

// dateLayout is used for order dates shown to users and admins.
const dateLayout = "2006-01-02 15:04"

// Order form messages.
const (
	ProductNotFound     = "❌ Product not found."
	ProductUnavailable  = "❌ This product is currently out of stock."
	ProductVanished     = "❌ Product not found!\n\nPlease try again."
	OrderNotFound       = "❌ Order not found."
	OrderCancelledShort = "❌ Order cancelled."
	AskAddress          = "📍 Please enter your delivery address:\n\n_Example: Tashkent, Chilonzor district, 12 Bunyodkor street, apt 5_"
	AskQuantity         = "🔢 How many items would you like? (1-100)"
)

// AskName opens the order form for a product.
func AskName(p *domain.Product) string {
	return fmt.Sprintf("🛒 *Placing an order*\n\n📦 Product: *%s*\n💰 Price: *%s*\n\n👤 Please enter your full name:",
		p.Name, Money(p.Price))
}

// AskPhone acknowledges the name and asks for the phone number.
func AskPhone(name string) string {
	return fmt.Sprintf("✅ Name accepted: *%s*\n\n📱 Please enter your phone number or share your contact.\n\n_Format: +998 90 123 45 67_", name)
}

// PhoneAccepted acknowledges the phone number. A non-empty warning is shown
// before the address prompt without blocking it.
func PhoneAccepted(phone, warning string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Phone accepted: *%s*\n\n", phone)
	if warning != "" {
		fmt.Fprintf(&b, "⚠️ %s\n\n", warning)
	}
	b.WriteString(AskAddress)
	return b.String()
}

// AddressAccepted acknowledges the address and asks for the quantity.
func AddressAccepted() string {
	return "✅ Address accepted\n\n" + AskQuantity
}

// Reprompt prefixes a validation message for the step being retried.
func Reprompt(message string) string {
	return "❌ " + message
}

// OrderCancelled is sent when the actor abandons the form.
func OrderCancelled() string {
	return OrderCancelledShort + "\n\nYou can keep browsing the catalog."
}

// PendingSummary asks the customer to confirm a freshly created order.
func PendingSummary(o *domain.Order, p *domain.Product) domain.Message {
	var b strings.Builder
	b.WriteString("✅ *Please confirm your order*\n\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "📦 *PRODUCT:*\n%s\n", p.Name)
	fmt.Fprintf(&b, "💰 Price: %s\n", Money(p.Price))
	fmt.Fprintf(&b, "🔢 Quantity: %d pcs\n", o.Quantity)
	fmt.Fprintf(&b, "💵 *TOTAL:* %s\n\n", Money(o.Total(p.Price)))
	b.WriteString(rule + "\n\n")
	b.WriteString("👤 *CUSTOMER:*\n")
	fmt.Fprintf(&b, "• Name: %s\n• Phone: %s\n• Address: %s\n\n", o.CustomerName, o.Phone, o.Address)
	b.WriteString(rule + "\n\nIs everything correct?")

	return domain.Message{Text: b.String(), Keyboard: OrderDecisionKeyboard(o.ID)}
}

// OrderConfirmed replaces the pending summary once the customer confirms.
func OrderConfirmed(o *domain.Order) string {
	return fmt.Sprintf("✅ Your order has been accepted! An operator will contact you soon.\n\n"+
		"📋 *Order number:* `%s`\n\n📦 Status: *%s*\n📅 Date: %s\n\n"+
		"Order history: %s",
		o.Number, StatusLabel(o.Status), FormatTime(o.CreatedAt), LabelMyOrders)
}

// AdminNotice is the summary delivered to every privileged recipient.
func AdminNotice(o *domain.Order, p *domain.Product) string {
	var b strings.Builder
	b.WriteString("🆕 *NEW ORDER!*\n\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "📋 *Order number:* `%s`\n\n", o.Number)
	b.WriteString("📦 *PRODUCT:*\n")
	fmt.Fprintf(&b, "• Name: %s\n• Category: %s\n• Price: %s\n• Quantity: %d pcs\n• *TOTAL: %s*\n\n",
		p.Name, p.Category, Money(p.Price), o.Quantity, Money(o.Total(p.Price)))
	b.WriteString(rule + "\n\n")
	b.WriteString("👤 *CUSTOMER:*\n")
	fmt.Fprintf(&b, "• Name: %s\n• Phone: %s\n• Address: %s\n\n", o.CustomerName, o.Phone, o.Address)
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "🆔 User ID: `%d`\n👤 User: %s\n📅 Date: %s\n\n", o.ActorID, o.ActorDisplayName, FormatTime(o.CreatedAt))
	b.WriteString(rule + "\n\n⚡️ Please respond quickly!")
	return b.String()
}

// StatusLabel is the customer-facing name of a status, with its marker.
func StatusLabel(s domain.OrderStatus) string {
	switch s {
	case domain.OrderStatusNew:
		return "🆕 New"
	case domain.OrderStatusConfirmed:
		return "✅ Confirmed"
	case domain.OrderStatusShipping:
		return "🚚 Shipping"
	case domain.OrderStatusDelivered:
		return "📦 Delivered"
	case domain.OrderStatusCancelled:
		return "❌ Cancelled"
	default:
		return "❔ " + string(s)
	}
}

// MyOrders lists the actor's orders, newest first. Products may be missing
// from the map if they were deleted.
func MyOrders(orders []domain.Order, products map[int64]*domain.Product) string {
	if len(orders) == 0 {
		return "📭 You have no orders yet."
	}

	var b strings.Builder
	b.WriteString("📦 *Your orders:*\n")
	for i := len(orders) - 1; i >= 0; i-- {
		o := orders[i]
		name := "(deleted product)"
		total := ""
		if p, ok := products[o.ProductID]; ok && p != nil {
			name = p.Name
			total = " • " + Money(o.Total(p.Price))
		}
		fmt.Fprintf(&b, "\n%s `%s`\n%s × %d%s\n📅 %s\n",
			StatusLabel(o.Status), o.Number, name, o.Quantity, total, FormatTime(o.CreatedAt))
	}
	return b.String()
}

// FormatTime renders timestamps in the store's display format.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}
