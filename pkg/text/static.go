package text

import "fmt"

// Default static answers. The FAQ and contact texts are configurable.
const (
	DefaultFAQ = "❓ *Frequently asked questions*\n\n" +
		"🚚 *Delivery:* within Tashkent 15,000 so'm, other regions 25,000 so'm, 1-3 days.\n\n" +
		"💳 *Payment:* cash, card, Payme, Click, Uzum.\n\n" +
		"🔄 *Returns:* within 14 days, unused, with the receipt."
	DefaultContact = "📞 *Contact us*\n\n📱 Phone: +998 90 123 45 67\n📧 Email: info@shop.uz\n⏰ Hours: 9:00 - 21:00"

	Help = "ℹ️ *How to order*\n\n" +
		"1. Open " + LabelCatalog + " and choose a product.\n" +
		"2. Press 🛒 Order and answer the questions.\n" +
		"3. Confirm the order summary.\n\n" +
		"Send /cancel at any time to stop."
)

// Welcome greets the actor on /start.
func Welcome(name string) string {
	return fmt.Sprintf("👋 Welcome, %s!\n\n🛍 This is our online store.\n\nUse the menu to browse products and place orders.", name)
}

// AlreadyProcessed answers a confirm or cancel for an order that is no longer new.
func AlreadyProcessed(number string) string {
	return fmt.Sprintf("ℹ️ Order `%s` has already been processed.", number)
}
