package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/go-playground/validator/v10"
)

// New returns a validator reporting fields by their json names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// bcrypt reads at most 72 bytes, so password limits count bytes, not runes.
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool { //nolint:errcheck
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}

		return len(fl.Field().String()) <= limit
	})

	return v
}

// Struct validates s and converts failures into *models.ValidationError.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate error: %w", err)
	}

	ve := &models.ValidationError{}
	for _, fe := range verrs {
		ve.Add(fe.Field(), Message(fe.Tag(), fe.Param()))
	}

	return ve.OrNil()
}

// Var validates a single value and records a failure under field.
func Var(v *validator.Validate, ve *models.ValidationError, field string, value any, tag string) {
	err := v.Var(value, tag)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ve.Add(field, err.Error())

		return
	}

	for _, fe := range verrs {
		ve.Add(field, Message(fe.Tag(), fe.Param()))
	}
}

func Message(tag, param string) string {
	switch tag {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a well-formed email address"
	case "max":
		return "must be at most " + param + " characters"
	case "min":
		return "must be at least " + param + " characters"
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "gt":
		return "must be greater than " + param
	default:
		return "failed on " + tag
	}
}
