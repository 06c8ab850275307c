package validate

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// New returns the shared validator with the checkout specific tags registered.
func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("rate", ValidateRate); err != nil {
			panic(err)
		}
	})
	return validate
}

// ValidateRate accepts decimal strings in [0, 1).
func ValidateRate(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThan(decimal.NewFromInt(1))
}
