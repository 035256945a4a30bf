package models

import "strings"

// User is the aggregate root owning its secondary emails and role memberships.
// PasswordHash is never serialized.
type User struct {
	ID           int64       `json:"userid"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	PrimaryEmail string      `json:"primaryemail"`
	Useremails   []Useremail `json:"useremails"`
	Roles        []UserRole  `json:"roles"`
}

type Useremail struct {
	ID    int64  `json:"useremailid"`
	Email string `json:"useremail"`
}

// UserRole is the owning side of the user/role association. Role identity is
// Role.ID; the name is always the stored one.
type UserRole struct {
	Role Role `json:"role"`
}

func (u User) RoleIDs() []int64 {
	ids := make([]int64, 0, len(u.Roles))
	for _, ur := range u.Roles {
		ids = append(ids, ur.Role.ID)
	}

	return ids
}

func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, ur := range u.Roles {
		names = append(names, ur.Role.Name)
	}

	return names
}

func (u User) Emails() []string {
	emails := make([]string, 0, len(u.Useremails))
	for _, ue := range u.Useremails {
		emails = append(emails, ue.Email)
	}

	return emails
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID   int64
	Username string
	Roles    []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}

	return false
}
