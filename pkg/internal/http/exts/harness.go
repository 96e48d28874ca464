package exts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validation = newValidation()

// newValidation builds the shared validator, naming fields by their form
// key so notices read "email must be ..." instead of "Email must be ...".
func newValidation() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if len(name) == 0 || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// BindAndValidate parses the request payload into out and checks it against
// its validate tags, converting any issue into a client-facing 400.
func BindAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err := validation.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, DescribeValidationError(err))
	}

	return nil
}

// DescribeValidationError flattens validator's internal error dump into the
// short per-field notices shown to end users.
func DescribeValidationError(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err.Error()
	}

	notices := make([]string, 0, len(fields))
	for _, field := range fields {
		notices = append(notices, describeFieldError(field))
	}
	return strings.Join(notices, "; ")
}

func describeFieldError(field validator.FieldError) string {
	switch field.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field.Field(), field.Param())
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters", field.Field(), field.Param())
	default:
		return fmt.Sprintf("%s is invalid", field.Field())
	}
}
