// Package oapi provides primitives to interact with the usermodel HTTP API.
package oapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

const (
	BearerAuthScopes = "bearerAuth.Scopes"
)

// Error defines model for Error.
type Error struct {
	Error     string       `json:"error"`
	Errors    []FieldError `json:"errors,omitempty"`
	Status    int          `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Title     string       `json:"title"`
}

// FieldError defines model for FieldError.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginRequest defines model for LoginRequest.
type LoginRequest struct {
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginResponse defines model for LoginResponse.
type LoginResponse struct {
	Token string `json:"token"`
}

// RolePayload defines model for RolePayload.
type RolePayload struct {
	Name string `json:"name"`
}

// RoleRef defines model for RoleRef. Only Roleid is read; the stored name wins.
type RoleRef struct {
	Name   *string `json:"name,omitempty"`
	Roleid int64   `json:"roleid"`
}

// UserRoleRef defines model for UserRoleRef.
type UserRoleRef struct {
	Role RoleRef `json:"role"`
}

// UseremailPayload defines model for UseremailPayload.
type UseremailPayload struct {
	Useremail   string `json:"useremail"`
	Useremailid *int64 `json:"useremailid,omitempty"`
}

// UserPayload defines model for UserPayload.
type UserPayload struct {
	Password     nullable.Nullable[string]             `json:"password,omitempty"`
	Primaryemail nullable.Nullable[string]             `json:"primaryemail,omitempty"`
	Roles        nullable.Nullable[[]UserRoleRef]      `json:"roles,omitempty"`
	Useremails   nullable.Nullable[[]UseremailPayload] `json:"useremails,omitempty"`
	Username     nullable.Nullable[string]             `json:"username,omitempty"`
}

// PostLoginJSONRequestBody defines body for PostLogin for application/json ContentType.
type PostLoginJSONRequestBody = LoginRequest

// AddNewUserJSONRequestBody defines body for AddNewUser for application/json ContentType.
type AddNewUserJSONRequestBody = UserPayload

// UpdateFullUserJSONRequestBody defines body for UpdateFullUser for application/json ContentType.
type UpdateFullUserJSONRequestBody = UserPayload

// UpdateUserJSONRequestBody defines body for UpdateUser for application/json ContentType.
type UpdateUserJSONRequestBody = UserPayload

// AddNewRoleJSONRequestBody defines body for AddNewRole for application/json ContentType.
type AddNewRoleJSONRequestBody = RolePayload

// PutUpdateRoleJSONRequestBody defines body for PutUpdateRole for application/json ContentType.
type PutUpdateRoleJSONRequestBody = RolePayload
