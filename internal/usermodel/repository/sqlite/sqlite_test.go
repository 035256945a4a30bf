package sqlite_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/rolerepo"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/sqlite"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo"
	"github.com/stretchr/testify/suite"
)

type StoreSuite struct {
	suite.Suite
	store *sqlite.Store
	ctx   context.Context //nolint:containedctx
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (ss *StoreSuite) SetupTest() {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(ss.T().Name())

	st, err := sqlite.Open(config.SQLite{
		DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
	})
	ss.Require().NoError(err)

	ss.store = st
	ss.ctx = context.Background()

	for _, r := range []string{models.RoleAdmin, models.RoleUser, models.RoleData} {
		_, err := st.Roles().CreateRole(ss.ctx, r)
		ss.Require().NoError(err)
	}
}

func (ss *StoreSuite) TearDownTest() {
	ss.Require().NoError(ss.store.Close())
}

func (ss *StoreSuite) newUser(name string, emails []string, roleIDs ...int64) models.User {
	u := models.User{ //nolint:exhaustruct
		Username:     name,
		PasswordHash: "hash",
		PrimaryEmail: name + "@lambdaschool.local",
	}

	for _, e := range emails {
		u.Useremails = append(u.Useremails, models.Useremail{Email: e}) //nolint:exhaustruct
	}

	for _, id := range roleIDs {
		u.Roles = append(u.Roles, models.UserRole{Role: models.Role{ID: id}}) //nolint:exhaustruct
	}

	return u
}

func (ss *StoreSuite) TestSharedSequence() {
	id, err := ss.store.Users().CreateUser(ss.ctx,
		ss.newUser("admin", []string{"admin@email.local", "admin@mymail.local"}, 1, 2, 3))
	ss.Require().NoError(err)
	ss.Equal(int64(4), id)

	u, err := ss.store.Users().GetUser(ss.ctx, id)
	ss.Require().NoError(err)
	ss.Equal([]models.Useremail{{ID: 5, Email: "admin@email.local"}, {ID: 6, Email: "admin@mymail.local"}}, u.Useremails)
	ss.Equal([]string{"ADMIN", "USER", "DATA"}, u.RoleNames())

	next, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("puttat", nil, 2))
	ss.Require().NoError(err)
	ss.Equal(int64(7), next)
}

func (ss *StoreSuite) TestCreateUserConflicts() {
	_, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("barnbarn", nil, 2))
	ss.Require().NoError(err)

	_, err = ss.store.Users().CreateUser(ss.ctx, ss.newUser("barnbarn", nil, 2))
	ss.Require().ErrorIs(err, userrepo.ErrAlreadyExists)

	_, err = ss.store.Users().CreateUser(ss.ctx, ss.newUser("tiger", nil, 99))
	ss.Require().ErrorIs(err, userrepo.ErrRoleNotFound)

	users, err := ss.store.Users().ListUsers(ss.ctx)
	ss.Require().NoError(err)
	ss.Len(users, 1)
}

func (ss *StoreSuite) TestLookupByName() {
	_, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("cinnamon", nil, 2))
	ss.Require().NoError(err)
	_, err = ss.store.Users().CreateUser(ss.ctx, ss.newUser("misskitty", nil, 2))
	ss.Require().NoError(err)
	_, err = ss.store.Users().CreateUser(ss.ctx, ss.newUser("a_b", nil))
	ss.Require().NoError(err)

	u, err := ss.store.Users().GetUserByName(ss.ctx, "CINNAMON")
	ss.Require().NoError(err)
	ss.Equal("cinnamon", u.Username)

	_, err = ss.store.Users().GetUserByName(ss.ctx, "turtle")
	ss.Require().ErrorIs(err, userrepo.ErrNotFound)

	found, err := ss.store.Users().SearchUsers(ss.ctx, "Kit")
	ss.Require().NoError(err)
	ss.Require().Len(found, 1)
	ss.Equal("misskitty", found[0].Username)

	found, err = ss.store.Users().SearchUsers(ss.ctx, "_")
	ss.Require().NoError(err)
	ss.Require().Len(found, 1)
	ss.Equal("a_b", found[0].Username)

	found, err = ss.store.Users().SearchUsers(ss.ctx, "turtle")
	ss.Require().NoError(err)
	ss.NotNil(found)
	ss.Empty(found)
}

func (ss *StoreSuite) TestUpdateUser() {
	id, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("cinnamon", []string{"yummy@email.local"}, 2, 3))
	ss.Require().NoError(err)

	name := "cinabun"
	err = ss.store.Users().UpdateUser(ss.ctx, userrepo.UpdateUserRequest{ //nolint:exhaustruct
		ID:                id,
		Username:          &name,
		ReplaceUseremails: true,
		Useremails:        []string{"cinnamon@mymail.home", "hops@mymail.home"},
	})
	ss.Require().NoError(err)

	u, err := ss.store.Users().GetUser(ss.ctx, id)
	ss.Require().NoError(err)
	ss.Equal("cinabun", u.Username)
	ss.Equal("cinnamon@lambdaschool.local", u.PrimaryEmail)
	ss.Equal([]string{"cinnamon@mymail.home", "hops@mymail.home"}, u.Emails())
	ss.Equal([]string{"USER", "DATA"}, u.RoleNames())

	err = ss.store.Users().UpdateUser(ss.ctx, userrepo.UpdateUserRequest{ID: id, ReplaceRoles: true}) //nolint:exhaustruct
	ss.Require().NoError(err)

	u, err = ss.store.Users().GetUser(ss.ctx, id)
	ss.Require().NoError(err)
	ss.Empty(u.Roles)

	err = ss.store.Users().UpdateUser(ss.ctx, userrepo.UpdateUserRequest{ID: 404, Username: &name}) //nolint:exhaustruct
	ss.Require().ErrorIs(err, userrepo.ErrNotFound)
}

func (ss *StoreSuite) TestDeleteUser() {
	id, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("misskitty", []string{"kitty@mymail.local"}, 2))
	ss.Require().NoError(err)

	ss.Require().NoError(ss.store.Users().DeleteUser(ss.ctx, id))

	_, err = ss.store.Users().GetUser(ss.ctx, id)
	ss.Require().ErrorIs(err, userrepo.ErrNotFound)

	ss.Require().ErrorIs(ss.store.Users().DeleteUser(ss.ctx, id), userrepo.ErrNotFound)

	// the role survives its last member
	_, err = ss.store.Roles().GetRole(ss.ctx, 2)
	ss.Require().NoError(err)
}

func (ss *StoreSuite) TestRoles() {
	r, err := ss.store.Roles().GetRoleByName(ss.ctx, "data")
	ss.Require().NoError(err)
	ss.Equal(models.Role{ID: 3, Name: "DATA"}, r)

	_, err = ss.store.Roles().CreateRole(ss.ctx, "ADMIN")
	ss.Require().ErrorIs(err, rolerepo.ErrAlreadyExists)

	ss.Require().NoError(ss.store.Roles().UpdateRole(ss.ctx, 3, "ANALYST"))
	ss.Require().ErrorIs(ss.store.Roles().UpdateRole(ss.ctx, 3, "USER"), rolerepo.ErrAlreadyExists)
	ss.Require().ErrorIs(ss.store.Roles().UpdateRole(ss.ctx, 99, "X"), rolerepo.ErrNotFound)

	roles, err := ss.store.Roles().ListRoles(ss.ctx)
	ss.Require().NoError(err)
	ss.Equal([]models.Role{{ID: 1, Name: "ADMIN"}, {ID: 2, Name: "USER"}, {ID: 3, Name: "ANALYST"}}, roles)
}

func (ss *StoreSuite) TestDeleteRolePolicies() {
	id, err := ss.store.Users().CreateUser(ss.ctx, ss.newUser("barnbarn", nil, 1, 2))
	ss.Require().NoError(err)

	ss.Require().ErrorIs(ss.store.Roles().DeleteRole(ss.ctx, 2, false), rolerepo.ErrInUse)
	ss.Require().NoError(ss.store.Roles().DeleteRole(ss.ctx, 3, false))
	ss.Require().NoError(ss.store.Roles().DeleteRole(ss.ctx, 2, true))
	ss.Require().ErrorIs(ss.store.Roles().DeleteRole(ss.ctx, 2, true), rolerepo.ErrNotFound)

	u, err := ss.store.Users().GetUser(ss.ctx, id)
	ss.Require().NoError(err)
	ss.Equal([]string{"ADMIN"}, u.RoleNames())

	ss.Require().NoError(ss.store.Users().DeleteAllUsers(ss.ctx))
	ss.Require().NoError(ss.store.Roles().DeleteAllRoles(ss.ctx))

	roles, err := ss.store.Roles().ListRoles(ss.ctx)
	ss.Require().NoError(err)
	ss.Empty(roles)
}
