package text

import (
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
)

// Catalog and admin messages.
const (
	NoProducts      = "📭 There are no products yet."
	ProductAdded    = "✅ Product added successfully!"
	ProductDeleted  = "🗑 Product deleted."
	ProductUpdated  = "✅ Product updated."
	Forbidden       = "⛔ This action is available to administrators only."
	AskCategory     = "📂 Choose a category for the new product:"
	AskProductName  = "📝 Enter the product name:"
	AskPrice        = "💰 Enter the price (numbers only):"
	AskDescription  = "📄 Enter a description, or \"-\" to skip:"
	AskSize         = "📏 Enter the size or colour, or \"-\" to skip:"
	AskPhoto        = "🖼 Send a product photo, or \"-\" to skip:"
	AddCancelled    = "❌ Adding the product was cancelled."
	EditCancelled   = "❌ Editing was cancelled."
	UnknownInput    = "🤔 I did not understand that. Please use the menu."
	NothingToCancel = "Nothing to cancel."
	ChooseEditField = "✏️ Which field do you want to change?"
	DeleteConfirm   = "⚠️ Delete this product? This cannot be undone."
)

// CatalogList lists products as buttons opening their detail card.
func CatalogList(products []domain.Product) domain.Message {
	if len(products) == 0 {
		return domain.Message{Text: NoProducts}
	}
	kb := make(domain.Keyboard, 0, len(products))
	for _, p := range products {
		kb = append(kb, []domain.Button{{
			Text: fmt.Sprintf("%s • %s", p.Name, Money(p.Price)),
			Data: domain.CallbackData(domain.CallbackProduct, p.ID),
		}})
	}
	return domain.Message{Text: "🛍 *Catalog*\n\nChoose a product:", Keyboard: kb}
}

// ProductCard is the customer product detail with the order button.
func ProductCard(p *domain.Product) domain.Message {
	msg := domain.Message{Text: productBody(p), PhotoRef: p.PhotoRef}
	if p.Available {
		msg.Keyboard = domain.Keyboard{{{
			Text: "🛒 Order",
			Data: domain.CallbackData(domain.CallbackOrder, p.ID),
		}}}
	}
	return msg
}

// AdminProductList lists every product, available or not, for management.
func AdminProductList(products []domain.Product) domain.Message {
	if len(products) == 0 {
		return domain.Message{Text: NoProducts}
	}
	kb := make(domain.Keyboard, 0, len(products))
	for _, p := range products {
		marker := "✅"
		if !p.Available {
			marker = "⛔"
		}
		kb = append(kb, []domain.Button{{
			Text: fmt.Sprintf("%s %s", marker, p.Name),
			Data: domain.CallbackData(domain.CallbackAdminProduct, p.ID),
		}})
	}
	return domain.Message{Text: fmt.Sprintf("📋 *Products* (%d)", len(products)), Keyboard: kb}
}

// AdminProductCard is the management view of a product.
func AdminProductCard(p *domain.Product) domain.Message {
	toggle := "⛔ Mark unavailable"
	if !p.Available {
		toggle = "✅ Mark available"
	}
	return domain.Message{
		Text:     productBody(p) + fmt.Sprintf("\n\n🆔 ID: `%d`\n📅 Added: %s", p.ID, FormatTime(p.CreatedAt)),
		PhotoRef: p.PhotoRef,
		Keyboard: domain.Keyboard{
			{{Text: toggle, Data: domain.CallbackData(domain.CallbackAdminToggle, p.ID)}},
			{{Text: "✏️ Edit", Data: domain.CallbackData(domain.CallbackAdminEdit, p.ID)}},
			{{Text: "🗑 Delete", Data: domain.CallbackData(domain.CallbackAdminDelete, p.ID)}},
			{{Text: "⬅️ Back", Data: domain.CallbackAdminProducts}},
		},
	}
}

// DeleteConfirmation asks before deleting a product.
func DeleteConfirmation(p *domain.Product) domain.Message {
	return domain.Message{
		Text: DeleteConfirm + "\n\n" + p.Name,
		Keyboard: domain.Keyboard{{
			{Text: "🗑 Yes, delete", Data: domain.CallbackData(domain.CallbackAdminConfirmDelete, p.ID)},
			{Text: "⬅️ No", Data: domain.CallbackData(domain.CallbackAdminProduct, p.ID)},
		}},
	}
}

// EditFieldMenu offers one button per editable field.
func EditFieldMenu(p *domain.Product, labels map[domain.ProductFieldKind]string, order []domain.ProductFieldKind) domain.Message {
	kb := make(domain.Keyboard, 0, len(order)+1)
	for _, kind := range order {
		kb = append(kb, []domain.Button{{Text: labels[kind], Data: domain.EditFieldCallback(kind, p.ID)}})
	}
	kb = append(kb, []domain.Button{{Text: "⬅️ Back", Data: domain.CallbackData(domain.CallbackAdminProduct, p.ID)}})
	return domain.Message{Text: ChooseEditField + "\n\n" + p.Name, Keyboard: kb}
}

// AskEditValue prompts for the new value of a field.
func AskEditValue(label string) string {
	return fmt.Sprintf("✏️ Send the new value for *%s*:", label)
}

// CategoryKeyboard offers the configured categories.
func CategoryKeyboard(categories []string) domain.Keyboard {
	kb := make(domain.Keyboard, 0, len(categories))
	for _, c := range categories {
		kb = append(kb, []domain.Button{{Text: c, Data: domain.CallbackAdminCategory + ":" + c}})
	}
	return kb
}

func productBody(p *domain.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *%s*\n\n", p.Name)
	fmt.Fprintf(&b, "📂 Category: %s\n", p.Category)
	fmt.Fprintf(&b, "💰 Price: *%s*\n", Money(p.Price))
	if p.Size != "" {
		fmt.Fprintf(&b, "📏 Size: %s\n", p.Size)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description)
	}
	if !p.Available {
		b.WriteString("\n⛔ Out of stock")
	}
	return strings.TrimRight(b.String(), "\n")
}
