package models

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
	RoleData  = "DATA"
)

type Role struct {
	ID   int64  `json:"roleid"`
	Name string `json:"name"`
}
