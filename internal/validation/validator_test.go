package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"first_name" validate:"required,uk_name"`
	Title    string          `json:"title" validate:"required,min=3,uk_text"`
	Phone    string          `json:"phone" validate:"required,ua_phone"`
	Password string          `json:"password" validate:"required,password"`
	Price    decimal.Decimal `json:"price" validate:"money"`
	Status   string          `json:"status" validate:"oneof=available out_of_stock"`
	Quantity int             `json:"quantity" validate:"gte=0,lte=100"`
}

func validSample() sample {
	return sample{
		Email:    "shop@example.com",
		Name:     "Олена",
		Title:    "Светр вовняний",
		Phone:    "+380671234567",
		Password: "secret123",
		Price:    decimal.RequireFromString("199.99"),
		Status:   "available",
		Quantity: 3,
	}
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Struct(validSample()))
	})

	t.Run("field errors use json names", func(t *testing.T) {
		s := validSample()
		s.Email = "nope"
		s.Name = "Elena"
		s.Title = "Ёлка"
		s.Phone = "0671234567"
		s.Password = "password"
		s.Price = decimal.RequireFromString("10.001")
		s.Status = "sold"
		s.Quantity = -1

		err := v.Struct(s)
		require.Error(t, err)
		var verrs *Errors
		require.True(t, errors.As(err, &verrs))

		assert.Equal(t, "must be a valid email address", verrs.Fields["email"])
		assert.Contains(t, verrs.Fields["first_name"], "Ukrainian letters")
		assert.Contains(t, verrs.Fields["title"], "Ukrainian text")
		assert.Contains(t, verrs.Fields["phone"], "+380XXXXXXXXX")
		assert.Contains(t, verrs.Fields["password"], "at least one letter and one digit")
		assert.Contains(t, verrs.Fields["price"], "at most 2 decimals")
		assert.Equal(t, "must be one of: available, out_of_stock", verrs.Fields["status"])
		assert.Equal(t, "must be greater than or equal to 0", verrs.Fields["quantity"])
	})

	t.Run("zero price", func(t *testing.T) {
		s := validSample()
		s.Price = decimal.Zero
		err := v.Struct(s)
		var verrs *Errors
		require.True(t, errors.As(err, &verrs))
		assert.Contains(t, verrs.Fields, "price")
	})
}

func TestIsValidPrice(t *testing.T) {
	assert.True(t, IsValidPrice(decimal.RequireFromString("0.01")))
	assert.True(t, IsValidPrice(decimal.RequireFromString("1000000")))
	assert.False(t, IsValidPrice(decimal.RequireFromString("1000000.01")))
	assert.False(t, IsValidPrice(decimal.RequireFromString("-5")))
	assert.False(t, IsValidPrice(decimal.RequireFromString("1.999")))
}

func TestErrors(t *testing.T) {
	var nilErrs *Errors
	assert.True(t, nilErrs.Empty())

	e := NewErrors()
	assert.NoError(t, e.Err())

	e.Add("b", "first")
	e.Add("b", "second")
	e.Add("a", "x")
	assert.Equal(t, "first", e.Fields["b"])
	assert.Equal(t, "validation failed: a: x; b: first", e.Error())

	other := NewErrors()
	other.Add("c", "y")
	e.Merge(other)
	e.Merge(nil)
	assert.Len(t, e.Fields, 3)
	assert.Error(t, e.Err())
}
