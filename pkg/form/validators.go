package form

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/storefront/pkg/domain"
)

const (
	NameMinLen    = 2
	NameMaxLen    = 50
	AddressMinLen = 10
	AddressMaxLen = 200
	phoneDigits   = 12
	countryCode   = "998"
)

// OperatorCodes are the known Uzbek mobile operator codes.
var OperatorCodes = []string{"90", "91", "93", "94", "95", "97", "98", "99", "33", "88"}

// Result is an accepted, normalized field value.
type Result struct {
	Value string
	// Warning is a non-blocking notice shown alongside the acceptance.
	Warning string
}

// ValidateName accepts 2..50 characters that are not all digits.
func ValidateName(input string) (Result, error) {
	name := strings.TrimSpace(input)
	n := utf8.RuneCountInString(name)
	switch {
	case n < NameMinLen:
		return Result{}, reject("name", ReasonTooShort, "Name is too short. Please enter at least 2 letters.")
	case n > NameMaxLen:
		return Result{}, reject("name", ReasonTooLong, "Name is too long. Please keep it under 50 characters.")
	case allDigits(name):
		return Result{}, reject("name", ReasonDigitsOnly, "A name cannot consist of digits only. Please enter your real name.")
	}
	return Result{Value: name}, nil
}

// NormalizePhone validates a free-text phone number.
// An unknown operator code is accepted with a warning.
func NormalizePhone(input string) (Result, error) {
	phone := strings.TrimSpace(input)
	phone = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)

	if strings.HasPrefix(phone, countryCode) {
		phone = "+" + phone
	}
	if !strings.HasPrefix(phone, "+"+countryCode) {
		return Result{}, reject("phone", ReasonBadPrefix, "Wrong format. The phone number must start with +998, e.g. +998901234567.")
	}

	digits := onlyDigits(phone)
	if len(digits) != phoneDigits {
		return Result{}, reject("phone", ReasonBadLength, "Wrong number. A phone number has 12 digits, e.g. +998901234567.")
	}

	res := Result{Value: phone}
	if !knownOperator(digits[3:5]) {
		res.Warning = "The operator code looks unusual. Known codes: " + strings.Join(OperatorCodes, ", ") + "."
	}
	return res, nil
}

// NormalizeContactPhone normalizes a phone number shared as a structured contact.
// A bare 9-digit local number gets the +998 prefix; anything else gets a leading "+".
func NormalizeContactPhone(input string) (Result, error) {
	digits := onlyDigits(input)
	if digits == "" {
		return Result{}, reject("phone", ReasonEmpty, "The shared contact has no phone number.")
	}
	if len(digits) == phoneDigits-len(countryCode) {
		return Result{Value: "+" + countryCode + digits}, nil
	}
	return Result{Value: "+" + digits}, nil
}

// ValidateAddress accepts 10..200 characters.
func ValidateAddress(input string) (Result, error) {
	address := strings.TrimSpace(input)
	n := utf8.RuneCountInString(address)
	switch {
	case n < AddressMinLen:
		return Result{}, reject("address", ReasonTooShort, "Address is too short. Please include city, district, street and house number.")
	case n > AddressMaxLen:
		return Result{}, reject("address", ReasonTooLong, "Address is too long. Please keep it under 200 characters.")
	}
	return Result{Value: address}, nil
}

// ParseQuantity accepts an integer in [1,100].
func ParseQuantity(input string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, reject("quantity", ReasonNotANumber, "Please enter a number only, e.g. 1, 2 or 5.")
	}
	if q < domain.MinQuantity {
		return 0, reject("quantity", ReasonOutOfRange, "Quantity must be at least 1.")
	}
	if q > domain.MaxQuantity {
		return 0, reject("quantity", ReasonOutOfRange, "Quantity must not exceed 100. Please call us for bulk orders.")
	}
	return q, nil
}

// ParsePrice accepts a positive whole amount; spaces and thousands separators are ignored.
func ParsePrice(input string) (int64, error) {
	clean := strings.NewReplacer(",", "", " ", "", "_", "").Replace(strings.TrimSpace(input))
	price, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(price) {
		return 0, reject("price", ReasonNotANumber, "Wrong format. Enter digits only, e.g. 50000.")
	}
	if price > float64(domain.MaxPrice) {
		return 0, reject("price", ReasonTooLarge, "Price is too large. Please enter a smaller amount.")
	}
	rounded := int64(price + 0.5)
	if rounded <= 0 {
		return 0, reject("price", ReasonNotPositive, "Price must be a positive number.")
	}
	if rounded > domain.MaxPrice {
		return 0, reject("price", ReasonTooLarge, "Price is too large. Please enter a smaller amount.")
	}
	return rounded, nil
}

// ValidateProductName accepts product names of at least two characters.
func ValidateProductName(input string) (Result, error) {
	name := strings.TrimSpace(input)
	if utf8.RuneCountInString(name) < NameMinLen {
		return Result{}, reject("name", ReasonTooShort, "The name must be at least 2 characters.")
	}
	return Result{Value: name}, nil
}

// Optional returns "" for the skip marker "-" and the trimmed input otherwise.
func Optional(input string) string {
	v := strings.TrimSpace(input)
	if v == SkipMarker {
		return ""
	}
	return v
}

// SkipMarker lets admins leave an optional field empty.
const SkipMarker = "-"

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func knownOperator(code string) bool {
	for _, c := range OperatorCodes {
		if c == code {
			return true
		}
	}
	return false
}
