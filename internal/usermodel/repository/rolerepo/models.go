package rolerepo

import "errors"

var (
	ErrNotFound      = errors.New("role not found")
	ErrAlreadyExists = errors.New("role already exists")
	ErrInUse         = errors.New("role is assigned to users")
)
