package userservice

import (
	"strings"

	"github.com/oapi-codegen/nullable"
)

// CreateUserRequest is the full user payload of create and replace.
type CreateUserRequest struct {
	Username     string   `json:"username"     validate:"required,max=255"`
	Password     string   `json:"password"     validate:"required,maxbytes=72"`
	PrimaryEmail string   `json:"primaryemail" validate:"required,email"`
	Useremails   []string `json:"useremails"   validate:"dive,required,email"`
	RoleIDs      []int64  `json:"roles"        validate:"dive,gt=0"`
}

// UpdateUserRequest is a partial update. An unspecified or null field is kept
// as stored; a specified collection, even an empty one, replaces the stored one.
type UpdateUserRequest struct {
	Username     nullable.Nullable[string]
	Password     nullable.Nullable[string]
	PrimaryEmail nullable.Nullable[string]
	Useremails   nullable.Nullable[[]string]
	RoleIDs      nullable.Nullable[[]int64]
}

func (r *CreateUserRequest) normalize() {
	r.Username = normalizeUsername(r.Username)
	r.PrimaryEmail = strings.TrimSpace(r.PrimaryEmail)
	r.Useremails = normalizeEmails(r.Useremails)
}

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, strings.TrimSpace(e))
	}

	return out
}

func present[T any](n nullable.Nullable[T]) (T, bool) {
	v, err := n.Get()
	if err != nil {
		var zero T

		return zero, false
	}

	return v, true
}
