package domain

import (
	"strconv"
	"strings"
)

// Callback actions carried by inline buttons as "<action>:<argument>".
const (
	CallbackProduct            = "product"
	CallbackOrder              = "order"
	CallbackConfirmOrder       = "confirm_order"
	CallbackCancelOrder        = "cancel_order"
	CallbackAdminProduct       = "admin_product"
	CallbackAdminToggle        = "admin_toggle"
	CallbackAdminDelete        = "admin_delete"
	CallbackAdminConfirmDelete = "admin_confirm_delete"
	CallbackAdminEdit          = "admin_edit"
	CallbackAdminCategory      = "admin_category"
	CallbackAdminProducts      = "admin_products"

	// callbackAdminEditField prefixes field-specific edit actions,
	// e.g. "admin_edit_price:12".
	callbackAdminEditField = "admin_edit_"
)

// CallbackData encodes an action with a numeric argument.
func CallbackData(action string, id int64) string {
	return action + ":" + strconv.FormatInt(id, 10)
}

// EditFieldCallback encodes the edit action for one product field.
func EditFieldCallback(kind ProductFieldKind, productID int64) string {
	return CallbackData(callbackAdminEditField+string(kind), productID)
}

// Callback is a decoded button payload.
type Callback struct {
	Action string
	Arg    string
}

// ParseCallback splits data into action and argument. Data without a
// separator yields an empty argument.
func ParseCallback(data string) Callback {
	action, arg, _ := strings.Cut(data, ":")
	return Callback{Action: action, Arg: arg}
}

// ID parses the argument as a numeric identifier.
func (c Callback) ID() (int64, bool) {
	id, err := strconv.ParseInt(c.Arg, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// EditField reports the product field of an "admin_edit_<field>" action.
func (c Callback) EditField() (ProductFieldKind, bool) {
	field, ok := strings.CutPrefix(c.Action, callbackAdminEditField)
	if !ok || field == "" {
		return "", false
	}
	return ProductFieldKind(field), true
}
