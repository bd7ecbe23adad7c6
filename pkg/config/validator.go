package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New()

// formatValidationError turns the first struct tag failure into a short
// message naming the field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// checker collects cross-field validation errors rather than failing on the
// first one.
type checker struct {
	errors []error
	name   string
}

func newChecker(name string) *checker {
	return &checker{name: name}
}

// PositiveFloat validates that a float field is positive (> 0).
func (c *checker) PositiveFloat(field string, value float64) *checker {
	if value <= 0 {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: value %v must be positive", c.name, field, value))
	}
	return c
}

// OneOf validates that a string field is one of the allowed values.
func (c *checker) OneOf(field, value string, allowed []string) *checker {
	for _, a := range allowed {
		if value == a {
			return c
		}
	}
	c.errors = append(c.errors, fmt.Errorf("%s.%s: value %q must be one of %v", c.name, field, value, allowed))
	return c
}

// Custom applies a custom validation function.
func (c *checker) Custom(field string, fn func() error) *checker {
	if err := fn(); err != nil {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: %w", c.name, field, err))
	}
	return c
}

// When conditionally applies validations if the condition is true.
func (c *checker) When(condition bool, validations func(*checker)) *checker {
	if condition {
		validations(c)
	}
	return c
}

// Err joins every collected error, or returns nil.
func (c *checker) Err() error {
	return errors.Join(c.errors...)
}
