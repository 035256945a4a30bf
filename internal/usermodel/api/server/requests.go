package server

import (
	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/userservice"
	"github.com/oapi-codegen/nullable"
)

// toCreateRequest reads a full payload; missing fields become empty values.
func toCreateRequest(p oapi.UserPayload) userservice.CreateUserRequest {
	username, _ := p.Username.Get()
	password, _ := p.Password.Get()
	primaryEmail, _ := p.Primaryemail.Get()
	emails, _ := p.Useremails.Get()
	roles, _ := p.Roles.Get()

	return userservice.CreateUserRequest{
		Username:     username,
		Password:     password,
		PrimaryEmail: primaryEmail,
		Useremails:   emailValues(emails),
		RoleIDs:      roleIDs(roles),
	}
}

func toUpdateRequest(p oapi.UserPayload) userservice.UpdateUserRequest {
	req := userservice.UpdateUserRequest{
		Username:     p.Username,
		Password:     p.Password,
		PrimaryEmail: p.Primaryemail,
	}

	if p.Useremails.IsNull() {
		req.Useremails.SetNull()
	} else if emails, err := p.Useremails.Get(); err == nil {
		req.Useremails = nullable.NewNullableWithValue(emailValues(emails))
	}

	if p.Roles.IsNull() {
		req.RoleIDs.SetNull()
	} else if roles, err := p.Roles.Get(); err == nil {
		req.RoleIDs = nullable.NewNullableWithValue(roleIDs(roles))
	}

	return req
}

func emailValues(emails []oapi.UseremailPayload) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, e.Useremail)
	}

	return out
}

func roleIDs(roles []oapi.UserRoleRef) []int64 {
	out := make([]int64, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Role.Roleid)
	}

	return out
}
