// Package validation binds request payloads and validates them with
// go-playground/validator, converting failures into field-level details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/model"
)

const (
	DateLayout  = model.DateLayout
	ClockLayout = model.ClockLayout
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so details line up with what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", layoutValidator(DateLayout))
	_ = v.RegisterValidation("clock", layoutValidator(ClockLayout))
	return v
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true // left to "required"
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}

// Struct validates v and returns an *errs.HTTPError with details on failure.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.BadRequest(err.Error())
	}
	details := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, errs.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return errs.BadRequest("validation failed", details...)
}

// BindAndValidate binds the request body into payload (a pointer) and
// validates it.
func BindAndValidate(c echo.Context, payload any) error {
	if err := c.Bind(payload); err != nil {
		return errs.BadRequest("invalid request body")
	}
	return Struct(payload)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "clock":
		return "must be a time in HH:mm format"
	case "url":
		return "must be a valid URL"
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
