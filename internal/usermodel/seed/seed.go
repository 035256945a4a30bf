// Package seed loads the demo data set into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/roleservice"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/userservice"
	"github.com/Leopold1975/usermodel/pkg/logger"
)

type RoleService interface {
	FindAll(context.Context) ([]models.Role, error)
	Save(context.Context, roleservice.RoleRequest) (models.Role, error)
}

type UserService interface {
	Save(context.Context, userservice.CreateUserRequest) (models.User, error)
}

type seedUser struct {
	username, password, primaryEmail string
	emails                           []string
	roles                            []string
}

var users = []seedUser{
	{
		username: "admin", password: "password", primaryEmail: "admin@lambdaschool.local",
		emails: []string{"admin@email.local", "admin@mymail.local"},
		roles:  []string{models.RoleAdmin, models.RoleUser, models.RoleData},
	},
	{
		username: "cinnamon", password: "1234567", primaryEmail: "cinnamon@lambdaschool.local",
		emails: []string{"cinnamon@mymail.local", "hops@mymail.local", "bunny@email.local"},
		roles:  []string{models.RoleUser, models.RoleData},
	},
	{
		username: "barnbarn", password: "ILuvM4th!", primaryEmail: "barnbarn@lambdaschool.local",
		emails: []string{"barnbarn@email.local"},
		roles:  []string{models.RoleUser},
	},
	{
		username: "puttat", password: "password", primaryEmail: "puttat@school.lambda",
		roles: []string{models.RoleUser},
	},
	{
		username: "misskitty", password: "password", primaryEmail: "misskitty@school.lambda",
		roles: []string{models.RoleUser},
	},
}

// Run seeds roles and users unless the store already holds roles.
func Run(ctx context.Context, rs RoleService, us UserService, lg logger.Logger) error {
	existing, err := rs.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list roles error: %w", err)
	}

	if len(existing) != 0 {
		lg.Info("store is not empty, seeding skipped")

		return nil
	}

	roleIDs := make(map[string]int64, 3) //nolint:mnd

	for _, name := range []string{models.RoleAdmin, models.RoleUser, models.RoleData} {
		r, err := rs.Save(ctx, roleservice.RoleRequest{Name: name})
		if err != nil {
			return fmt.Errorf("save role %s error: %w", name, err)
		}

		roleIDs[r.Name] = r.ID
	}

	for _, su := range users {
		req := userservice.CreateUserRequest{
			Username:     su.username,
			Password:     su.password,
			PrimaryEmail: su.primaryEmail,
			Useremails:   su.emails,
			RoleIDs:      make([]int64, 0, len(su.roles)),
		}

		for _, name := range su.roles {
			req.RoleIDs = append(req.RoleIDs, roleIDs[name])
		}

		u, err := us.Save(ctx, req)
		if err != nil {
			return fmt.Errorf("save user %s error: %w", su.username, err)
		}

		lg.Debugf("seeded user %s id=%d", u.Username, u.ID)
	}

	lg.Infof("seeded %d roles and %d users", len(roleIDs), len(users))

	return nil
}
