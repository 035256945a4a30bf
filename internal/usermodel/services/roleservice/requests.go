package roleservice

import (
	"fmt"
	"strings"
)

type DeletePolicy string

const (
	// DeleteRestrict refuses to delete a role that is still assigned.
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade unassigns the role from every user before deleting it.
	DeleteCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteRestrict, DeleteCascade:
		return p, nil
	case "":
		return DeleteRestrict, nil
	default:
		return "", fmt.Errorf("unknown role delete policy %q", s)
	}
}

type RoleRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
