package userservice_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	usercache "github.com/Leopold1975/usermodel/internal/usermodel/repository/usercache/redis"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/userservice"
	"github.com/Leopold1975/usermodel/pkg/logger"
	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)

	return args.Get(0).([]models.User), args.Error(1) //nolint:forcetypeassert
}

func (m *repoMock) GetUser(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(models.User), args.Error(1) //nolint:forcetypeassert
}

func (m *repoMock) GetUserByName(ctx context.Context, name string) (models.User, error) {
	args := m.Called(ctx, name)

	return args.Get(0).(models.User), args.Error(1) //nolint:forcetypeassert
}

func (m *repoMock) SearchUsers(ctx context.Context, fragment string) ([]models.User, error) {
	args := m.Called(ctx, fragment)

	users, _ := args.Get(0).([]models.User)

	return users, args.Error(1)
}

func (m *repoMock) CreateUser(ctx context.Context, u models.User) (int64, error) {
	args := m.Called(ctx, u)

	return args.Get(0).(int64), args.Error(1) //nolint:forcetypeassert
}

func (m *repoMock) UpdateUser(ctx context.Context, req userrepo.UpdateUserRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *repoMock) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *repoMock) DeleteAllUsers(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type rolesMock struct {
	mock.Mock
}

func (m *rolesMock) FindRoleByID(ctx context.Context, id int64) (models.Role, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(models.Role), args.Error(1) //nolint:forcetypeassert
}

type cacheMock struct {
	mock.Mock
}

func (m *cacheMock) GetUser(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(models.User), args.Error(1) //nolint:forcetypeassert
}

func (m *cacheMock) SetUser(ctx context.Context, u models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *cacheMock) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *cacheMock) Purge(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type UserServiceSuite struct {
	suite.Suite
	repo  *repoMock
	roles *rolesMock
	cache *cacheMock
	us    *userservice.UserService
	ctx   context.Context //nolint:containedctx
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.repo = new(repoMock)
	s.roles = new(rolesMock)
	s.cache = new(cacheMock)
	s.us = userservice.New(s.repo, s.roles, s.cache, logger.NewNop())
	s.ctx = context.Background()

	s.roles.On("FindRoleByID", mock.Anything, int64(1)).Return(models.Role{ID: 1, Name: models.RoleAdmin}, nil).Maybe()
	s.roles.On("FindRoleByID", mock.Anything, int64(2)).Return(models.Role{ID: 2, Name: models.RoleUser}, nil).Maybe()
	s.roles.On("FindRoleByID", mock.Anything, int64(99)).
		Return(models.Role{}, models.ErrNotFound).Maybe()
}

func (s *UserServiceSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
}

func (s *UserServiceSuite) expectReload(u models.User) {
	s.cache.On("GetUser", mock.Anything, u.ID).Return(models.User{}, usercache.ErrMiss).Once()
	s.repo.On("GetUser", mock.Anything, u.ID).Return(u, nil).Once()
	s.cache.On("SetUser", mock.Anything, u).Return(nil).Once()
}

// expectRewrite covers the reload after an update, which bypasses the cache
// and evicts once more.
func (s *UserServiceSuite) expectRewrite(u models.User) {
	s.cache.On("DeleteUser", mock.Anything, u.ID).Return(nil).Twice()
	s.repo.On("GetUser", mock.Anything, u.ID).Return(u, nil).Once()
}

func (s *UserServiceSuite) TestSave() {
	stored := models.User{ID: 15, Username: "tiger"} //nolint:exhaustruct

	s.repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Username == "tiger" &&
			u.PrimaryEmail == "tiger@school.lambda" &&
			assert.ObjectsAreEqual([]string{"tiger@home.local"}, u.Emails()) &&
			assert.ObjectsAreEqual([]string{models.RoleUser, models.RoleAdmin}, u.RoleNames()) &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("ILuvMath!")) == nil
	})).Return(int64(15), nil).Once()
	s.expectReload(stored)

	u, err := s.us.Save(s.ctx, userservice.CreateUserRequest{
		Username:     " Tiger ",
		Password:     "ILuvMath!",
		PrimaryEmail: "tiger@school.lambda",
		Useremails:   []string{"tiger@home.local "},
		RoleIDs:      []int64{2, 1, 2},
	})
	s.Require().NoError(err)
	s.Equal(stored, u)
}

func (s *UserServiceSuite) TestSaveValidation() {
	_, err := s.us.Save(s.ctx, userservice.CreateUserRequest{ //nolint:exhaustruct
		Username:   "tiger",
		Password:   "pw",
		Useremails: []string{"not-an-email"},
	})

	var ve *models.ValidationError
	s.Require().ErrorAs(err, &ve)

	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}

	s.ElementsMatch([]string{"primaryemail", "useremails[0]"}, fields)
}

func (s *UserServiceSuite) TestSaveUnknownRole() {
	_, err := s.us.Save(s.ctx, userservice.CreateUserRequest{
		Username:     "tiger",
		Password:     "pw",
		PrimaryEmail: "tiger@school.lambda",
		RoleIDs:      []int64{99},
	})
	s.Require().ErrorIs(err, models.ErrNotFound)
	s.repo.AssertNotCalled(s.T(), "CreateUser", mock.Anything, mock.Anything)
}

func (s *UserServiceSuite) TestSaveDuplicate() {
	s.repo.On("CreateUser", mock.Anything, mock.Anything).Return(int64(0), userrepo.ErrAlreadyExists).Once()

	_, err := s.us.Save(s.ctx, userservice.CreateUserRequest{ //nolint:exhaustruct
		Username:     "Admin",
		Password:     "password",
		PrimaryEmail: "admin@lambdaschool.local",
	})
	s.Require().ErrorIs(err, models.ErrAlreadyExists)
	s.Equal("resource already exists: user with name admin", err.Error())
}

func (s *UserServiceSuite) TestPatchUsernameOnly() {
	stored := models.User{ID: 7, Username: "cinabun"} //nolint:exhaustruct

	s.repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(r userrepo.UpdateUserRequest) bool {
		return r.ID == 7 && r.Username != nil && *r.Username == "cinabun" &&
			r.PasswordHash == nil && r.PrimaryEmail == nil &&
			!r.ReplaceUseremails && !r.ReplaceRoles
	})).Return(nil).Once()
	s.expectRewrite(stored)

	u, err := s.us.Update(s.ctx, 7, userservice.UpdateUserRequest{ //nolint:exhaustruct
		Username: nullable.NewNullableWithValue("CinaBun"),
		RoleIDs:  nullable.NewNullNullable[[]int64](),
	})
	s.Require().NoError(err)
	s.Equal(stored, u)
}

func (s *UserServiceSuite) TestPatchCollections() {
	stored := models.User{ID: 7, Username: "cinnamon"} //nolint:exhaustruct

	s.repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(r userrepo.UpdateUserRequest) bool {
		return r.ID == 7 && !r.HasScalars() &&
			r.ReplaceUseremails && len(r.Useremails) == 0 &&
			r.ReplaceRoles && assert.ObjectsAreEqual([]int64{1}, r.RoleIDs)
	})).Return(nil).Once()
	s.expectRewrite(stored)

	_, err := s.us.Update(s.ctx, 7, userservice.UpdateUserRequest{ //nolint:exhaustruct
		Useremails: nullable.NewNullableWithValue([]string{}),
		RoleIDs:    nullable.NewNullableWithValue([]int64{1}),
	})
	s.Require().NoError(err)
}

func (s *UserServiceSuite) TestPatchRejectsBlankUsername() {
	_, err := s.us.Update(s.ctx, 7, userservice.UpdateUserRequest{ //nolint:exhaustruct
		Username: nullable.NewNullableWithValue("  "),
	})

	var ve *models.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("username", ve.Fields[0].Field)
}

func (s *UserServiceSuite) TestPutMissingUser() {
	s.repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(r userrepo.UpdateUserRequest) bool {
		return r.ID == 404 && r.ReplaceRoles && r.ReplaceUseremails && len(r.RoleIDs) == 0
	})).Return(userrepo.ErrNotFound).Once()
	s.cache.On("DeleteUser", mock.Anything, int64(404)).Return(nil).Once()

	_, err := s.us.UpdateFull(s.ctx, 404, userservice.CreateUserRequest{ //nolint:exhaustruct
		Username:     "stumps",
		Password:     "password",
		PrimaryEmail: "stumps@lambdaschool.local",
	})
	s.Require().ErrorIs(err, models.ErrNotFound)
	s.Equal("resource not found: user with id 404", err.Error())
}

func (s *UserServiceSuite) TestFindUserByIDCacheHit() {
	cached := models.User{ID: 4, Username: "admin"} //nolint:exhaustruct
	s.cache.On("GetUser", mock.Anything, int64(4)).Return(cached, nil).Once()

	u, err := s.us.FindUserByID(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal(cached, u)
	s.repo.AssertNotCalled(s.T(), "GetUser", mock.Anything, mock.Anything)
}

func (s *UserServiceSuite) TestFindUserByIDMissing() {
	s.cache.On("GetUser", mock.Anything, int64(42)).Return(models.User{}, usercache.ErrMiss).Once()
	s.repo.On("GetUser", mock.Anything, int64(42)).Return(models.User{}, userrepo.ErrNotFound).Once()

	_, err := s.us.FindUserByID(s.ctx, 42)
	s.Require().ErrorIs(err, models.ErrNotFound)
}

func (s *UserServiceSuite) TestFindByNameContainingNeverNil() {
	s.repo.On("SearchUsers", mock.Anything, "turtle").Return(nil, nil).Once()

	users, err := s.us.FindByNameContaining(s.ctx, "turtle")
	s.Require().NoError(err)
	s.NotNil(users)
	s.Empty(users)
}

func (s *UserServiceSuite) TestDeleteMissingStillEvicts() {
	s.repo.On("DeleteUser", mock.Anything, int64(14)).Return(userrepo.ErrNotFound).Once()
	s.cache.On("DeleteUser", mock.Anything, int64(14)).Return(nil).Once()

	err := s.us.Delete(s.ctx, 14)
	s.Require().ErrorIs(err, models.ErrNotFound)
}

func (s *UserServiceSuite) TestDeleteAllPurges() {
	s.repo.On("DeleteAllUsers", mock.Anything).Return(nil).Once()
	s.cache.On("Purge", mock.Anything).Return(nil).Once()

	s.Require().NoError(s.us.DeleteAll(s.ctx))
}

func TestServiceWithoutCache(t *testing.T) {
	repo := new(repoMock)
	repo.On("GetUser", mock.Anything, int64(4)).Return(models.User{ID: 4}, nil).Once() //nolint:exhaustruct

	us := userservice.New(repo, new(rolesMock), nil, logger.NewNop())

	u, err := us.FindUserByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
	repo.AssertExpectations(t)
}

func (s *UserServiceSuite) TestUpdateDoesNotRecache() {
	stored := models.User{ID: 11, PrimaryEmail: "barnbarn@school.lambda"} //nolint:exhaustruct

	s.repo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil).Once()
	s.expectRewrite(stored)

	u, err := s.us.Update(s.ctx, 11, userservice.UpdateUserRequest{ //nolint:exhaustruct
		PrimaryEmail: nullable.NewNullableWithValue("barnbarn@school.lambda"),
	})
	s.Require().NoError(err)
	s.Equal(stored, u)
	s.cache.AssertNotCalled(s.T(), "SetUser", mock.Anything, mock.Anything)
}

func (s *UserServiceSuite) TestPasswordLimitCountsBytes() {
	long := strings.Repeat("é", 40)

	_, err := s.us.Save(s.ctx, userservice.CreateUserRequest{ //nolint:exhaustruct
		Username:     "tiger",
		Password:     long,
		PrimaryEmail: "tiger@school.lambda",
	})

	var ve *models.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Require().Len(ve.Fields, 1)
	s.Equal("password", ve.Fields[0].Field)
	s.Equal("must be at most 72 bytes", ve.Fields[0].Message)

	_, err = s.us.Update(s.ctx, 7, userservice.UpdateUserRequest{ //nolint:exhaustruct
		Password: nullable.NewNullableWithValue(long),
	})
	s.Require().ErrorAs(err, &ve)
	s.Equal("password", ve.Fields[0].Field)

	s.repo.AssertNotCalled(s.T(), "CreateUser", mock.Anything, mock.Anything)
	s.repo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (s *UserServiceSuite) TestPatchRejectsNonPositiveRoleIDs() {
	_, err := s.us.Update(s.ctx, 7, userservice.UpdateUserRequest{ //nolint:exhaustruct
		RoleIDs: nullable.NewNullableWithValue([]int64{2, 0, -3}),
	})

	var ve *models.ValidationError
	s.Require().ErrorAs(err, &ve)

	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}

	s.Equal([]string{"roles[1]", "roles[2]"}, fields)
	s.roles.AssertNotCalled(s.T(), "FindRoleByID", mock.Anything, mock.Anything)
	s.repo.AssertNotCalled(s.T(), "UpdateUser", mock.Anything, mock.Anything)
}
