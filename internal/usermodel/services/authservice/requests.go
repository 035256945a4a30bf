package authservice

import "strings"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
