package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.NewFromInt(1_000_000)

// Validator wraps go-playground/validator with the marketplace locale tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with uk_name, uk_text, ua_phone, password and money
// registered. Field errors are reported under their JSON names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	must(v.RegisterValidation("uk_name", func(fl validator.FieldLevel) bool {
		return IsUkrainianName(fl.Field().String())
	}))
	must(v.RegisterValidation("uk_text", func(fl validator.FieldLevel) bool {
		return IsUkrainianText(fl.Field().String())
	}))
	must(v.RegisterValidation("ua_phone", func(fl validator.FieldLevel) bool {
		return IsUkrainianPhone(fl.Field().String())
	}))
	must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}))
	must(v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return IsValidPrice(d)
	}))
	return &Validator{v: v}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// IsValidPrice accepts amounts in (0, 1 000 000] with at most two decimals.
func IsValidPrice(d decimal.Decimal) bool {
	if !d.IsPositive() || d.GreaterThan(maxPrice) {
		return false
	}
	return d.Equal(d.Truncate(2))
}

// Struct validates s and returns *Errors describing every failed field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := NewErrors()
	for _, fe := range verrs {
		out.Add(fieldPath(fe), message(fe))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uk_name":
		return "must be written in Ukrainian letters and start with a capital letter"
	case "uk_text":
		return "must contain Ukrainian text without Russian-specific letters"
	case "ua_phone":
		return "must be a Ukrainian phone number in format +380XXXXXXXXX"
	case "password":
		return "must be 8-64 characters with at least one letter and one digit and no spaces"
	case "money":
		return "must be a positive amount up to 1000000 with at most 2 decimals"
	default:
		return "is invalid"
	}
}
