package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,min=2"`
	Price int64  `validate:"gt=0"`
	Mode  string `validate:"oneof=memory file redis"`
	Inner struct {
		Addr string `validate:"required"`
	}
}

func TestValidate_OK(t *testing.T) {
	s := sample{Name: "Cap", Price: 1, Mode: "file"}
	s.Inner.Addr = ":8080"
	assert.NoError(t, Validate(s))
}

func TestValidate_Fields(t *testing.T) {
	err := Validate(sample{Name: "C", Mode: "disk"})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	fields := ve.Fields()
	assert.Equal(t, "must be at least 2", fields["Name"])
	assert.Equal(t, "must be greater than 0", fields["Price"])
	assert.Equal(t, "must be one of: memory file redis", fields["Mode"])
	assert.Equal(t, "is required", fields["Inner.Addr"])
	assert.Contains(t, err.Error(), "field 'Inner.Addr' is required")
}

func TestValidate_ProductPriceCap(t *testing.T) {
	p := domain.Product{Category: "Shoes", Name: "Sneakers", Price: domain.MaxPrice}
	assert.NoError(t, Validate(p))

	p.Price = domain.MaxPrice + 1
	err := Validate(p)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields(), "Price")
}
