package text

import "github.com/aretw0/storefront/pkg/domain"

// Reply keyboard labels. A pressed label arrives as plain text.
const (
	LabelCatalog      = "🛍 Catalog"
	LabelMyOrders     = "📦 My orders"
	LabelFAQ          = "❓ FAQ"
	LabelContact      = "📞 Contact"
	LabelCancel       = "❌ Cancel"
	LabelShareContact = "📱 Share contact"

	LabelAddProduct = "➕ Add product"
	LabelProducts   = "📋 Products"
	LabelBroadcast  = "📢 Broadcast"
	LabelStats      = "📊 Stats"
)

// CancelCommand aborts the active workflow.
const CancelCommand = "/cancel"

// IsCancel reports whether the input is the cancel signal.
func IsCancel(s string) bool {
	return s == LabelCancel || s == CancelCommand
}

// MainMenu is the customer menu; admins get the management row as well.
func MainMenu(admin bool) domain.Keyboard {
	kb := domain.Keyboard{
		{{Text: LabelCatalog}, {Text: LabelMyOrders}},
		{{Text: LabelFAQ}, {Text: LabelContact}},
	}
	if admin {
		kb = append(kb,
			[]domain.Button{{Text: LabelAddProduct}, {Text: LabelProducts}},
			[]domain.Button{{Text: LabelBroadcast}, {Text: LabelStats}},
		)
	}
	return kb
}

// CancelKeyboard offers only the cancel button.
func CancelKeyboard() domain.Keyboard {
	return domain.Keyboard{{{Text: LabelCancel}}}
}

// ContactKeyboard asks for the phone number as a structured contact.
func ContactKeyboard() domain.Keyboard {
	return domain.Keyboard{
		{{Text: LabelShareContact, RequestContact: true}},
		{{Text: LabelCancel}},
	}
}

// OrderDecisionKeyboard carries the order id on confirm and cancel buttons.
func OrderDecisionKeyboard(orderID int64) domain.Keyboard {
	return domain.Keyboard{{
		{Text: "✅ Confirm", Data: domain.CallbackData(domain.CallbackConfirmOrder, orderID)},
		{Text: "❌ Cancel", Data: domain.CallbackData(domain.CallbackCancelOrder, orderID)},
	}}
}
