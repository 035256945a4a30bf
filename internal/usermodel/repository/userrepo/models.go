package userrepo

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrRoleNotFound  = errors.New("referenced role not found")
)

// UpdateUserRequest is a change set applied to one user in a single
// transaction. Nil scalars are left untouched; collections are rebuilt only
// when the matching Replace flag is set.
type UpdateUserRequest struct {
	ID                int64
	Username          *string
	PasswordHash      *string
	PrimaryEmail      *string
	ReplaceUseremails bool
	Useremails        []string
	ReplaceRoles      bool
	RoleIDs           []int64
}

func (r UpdateUserRequest) HasScalars() bool {
	return r.Username != nil || r.PasswordHash != nil || r.PrimaryEmail != nil
}
