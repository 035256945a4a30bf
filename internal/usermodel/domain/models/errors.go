package models

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrRoleInUse     = errors.New("role is assigned to users")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rejected field of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve *ValidationError) Add(field, message string) {
	ve.Fields = append(ve.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns ve when it holds at least one field error.
func (ve *ValidationError) OrNil() error {
	if ve == nil || len(ve.Fields) == 0 {
		return nil
	}

	return ve
}
