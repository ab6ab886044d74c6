package form

import (
	"strconv"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
)

// Input is one raw user input addressed to a form step.
type Input struct {
	Text     string
	Contact  *domain.Contact
	PhotoRef string
}

// OrderField is one step of the customer order form. Each variant owns its
// validator and the setter for its slot in the draft.
type OrderField interface {
	Step() domain.Step
	Next() domain.Step
	Accept(in Input, draft *domain.OrderDraft) (Result, error)
}

type (
	NameField     struct{}
	PhoneField    struct{}
	AddressField  struct{}
	QuantityField struct{}
)

// OrderFields lists the order form in collection order.
var OrderFields = []OrderField{NameField{}, PhoneField{}, AddressField{}, QuantityField{}}

// OrderFieldFor returns the field collected in the given step.
func OrderFieldFor(step domain.Step) (OrderField, bool) {
	for _, f := range OrderFields {
		if f.Step() == step {
			return f, true
		}
	}
	return nil, false
}

func (NameField) Step() domain.Step { return domain.StepCollectingName }
func (NameField) Next() domain.Step { return domain.StepCollectingPhone }

func (NameField) Accept(in Input, draft *domain.OrderDraft) (Result, error) {
	res, err := ValidateName(in.Text)
	if err != nil {
		return res, err
	}
	draft.CustomerName = res.Value
	return res, nil
}

func (PhoneField) Step() domain.Step { return domain.StepCollectingPhone }
func (PhoneField) Next() domain.Step { return domain.StepCollectingAddress }

// Accept prefers a structured contact over free text.
func (PhoneField) Accept(in Input, draft *domain.OrderDraft) (Result, error) {
	var (
		res Result
		err error
	)
	if in.Contact != nil {
		res, err = NormalizeContactPhone(in.Contact.PhoneNumber)
	} else {
		res, err = NormalizePhone(in.Text)
	}
	if err != nil {
		return res, err
	}
	draft.Phone = res.Value
	return res, nil
}

func (AddressField) Step() domain.Step { return domain.StepCollectingAddress }
func (AddressField) Next() domain.Step { return domain.StepCollectingQuantity }

func (AddressField) Accept(in Input, draft *domain.OrderDraft) (Result, error) {
	res, err := ValidateAddress(in.Text)
	if err != nil {
		return res, err
	}
	draft.Address = res.Value
	return res, nil
}

func (QuantityField) Step() domain.Step { return domain.StepCollectingQuantity }
func (QuantityField) Next() domain.Step { return domain.StepCompleted }

func (QuantityField) Accept(in Input, draft *domain.OrderDraft) (Result, error) {
	q, err := ParseQuantity(in.Text)
	if err != nil {
		return Result{}, err
	}
	draft.Quantity = q
	return Result{Value: strconv.Itoa(q)}, nil
}

// ProductField is one editable product attribute.
type ProductField interface {
	Kind() domain.ProductFieldKind
	Label() string
	// Set validates the input and writes it into the draft.
	Set(in Input, d *domain.ProductDraft) error
	// Apply copies the field from the draft onto the product.
	Apply(d *domain.ProductDraft, p *domain.Product)
}

type (
	ProductNameField        struct{}
	ProductPriceField       struct{}
	ProductDescriptionField struct{}
	ProductSizeField        struct{}
	ProductPhotoField       struct{}
	ProductCategoryField    struct{ Categories []string }
)

// ProductFieldFor returns the variant for a field kind.
func ProductFieldFor(kind domain.ProductFieldKind, categories []string) (ProductField, bool) {
	switch kind {
	case domain.ProductFieldName:
		return ProductNameField{}, true
	case domain.ProductFieldPrice:
		return ProductPriceField{}, true
	case domain.ProductFieldDescription:
		return ProductDescriptionField{}, true
	case domain.ProductFieldSize:
		return ProductSizeField{}, true
	case domain.ProductFieldPhoto:
		return ProductPhotoField{}, true
	case domain.ProductFieldCategory:
		return ProductCategoryField{Categories: categories}, true
	}
	return nil, false
}

func (ProductNameField) Kind() domain.ProductFieldKind { return domain.ProductFieldName }
func (ProductNameField) Label() string                 { return "Name" }

func (ProductNameField) Set(in Input, d *domain.ProductDraft) error {
	res, err := ValidateProductName(in.Text)
	if err != nil {
		return err
	}
	d.Name = res.Value
	return nil
}

func (ProductNameField) Apply(d *domain.ProductDraft, p *domain.Product) { p.Name = d.Name }

func (ProductPriceField) Kind() domain.ProductFieldKind { return domain.ProductFieldPrice }
func (ProductPriceField) Label() string                 { return "Price" }

func (ProductPriceField) Set(in Input, d *domain.ProductDraft) error {
	price, err := ParsePrice(in.Text)
	if err != nil {
		return err
	}
	d.Price = price
	return nil
}

func (ProductPriceField) Apply(d *domain.ProductDraft, p *domain.Product) { p.Price = d.Price }

func (ProductDescriptionField) Kind() domain.ProductFieldKind { return domain.ProductFieldDescription }
func (ProductDescriptionField) Label() string                 { return "Description" }

func (ProductDescriptionField) Set(in Input, d *domain.ProductDraft) error {
	d.Description = Optional(in.Text)
	return nil
}

func (ProductDescriptionField) Apply(d *domain.ProductDraft, p *domain.Product) {
	p.Description = d.Description
}

func (ProductSizeField) Kind() domain.ProductFieldKind { return domain.ProductFieldSize }
func (ProductSizeField) Label() string                 { return "Size/Color" }

func (ProductSizeField) Set(in Input, d *domain.ProductDraft) error {
	d.Size = Optional(in.Text)
	return nil
}

func (ProductSizeField) Apply(d *domain.ProductDraft, p *domain.Product) { p.Size = d.Size }

func (ProductPhotoField) Kind() domain.ProductFieldKind { return domain.ProductFieldPhoto }
func (ProductPhotoField) Label() string                 { return "Photo" }

// Set takes an attached photo, or the skip marker to leave the product without one.
func (ProductPhotoField) Set(in Input, d *domain.ProductDraft) error {
	switch {
	case in.PhotoRef != "":
		d.PhotoRef = in.PhotoRef
	case strings.TrimSpace(in.Text) == SkipMarker:
		d.PhotoRef = ""
	default:
		return reject("photo", ReasonPhotoNeeded, `Please send a photo, or "-" to skip.`)
	}
	return nil
}

func (ProductPhotoField) Apply(d *domain.ProductDraft, p *domain.Product) { p.PhotoRef = d.PhotoRef }

func (ProductCategoryField) Kind() domain.ProductFieldKind { return domain.ProductFieldCategory }
func (ProductCategoryField) Label() string                 { return "Category" }

// Set accepts only configured categories, when any are configured.
func (f ProductCategoryField) Set(in Input, d *domain.ProductDraft) error {
	category := strings.TrimSpace(in.Text)
	if category == "" {
		return reject("category", ReasonEmpty, "Please choose a category.")
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == category {
				found = true
				break
			}
		}
		if !found {
			return reject("category", ReasonUnknownValue, "Unknown category. Please choose one from the list.")
		}
	}
	d.Category = category
	return nil
}

func (ProductCategoryField) Apply(d *domain.ProductDraft, p *domain.Product) { p.Category = d.Category }
