package userservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Leopold1975/usermodel/internal/pkg/validation"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo"
	"github.com/Leopold1975/usermodel/pkg/logger"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo  Repository
	roles     RoleFinder
	userCache Cache
	validate  *validator.Validate
	lg        logger.Logger
}

type Repository interface {
	ListUsers(context.Context) ([]models.User, error)
	GetUser(context.Context, int64) (models.User, error)
	GetUserByName(context.Context, string) (models.User, error)
	SearchUsers(context.Context, string) ([]models.User, error)
	CreateUser(context.Context, models.User) (int64, error)
	UpdateUser(context.Context, userrepo.UpdateUserRequest) error
	DeleteUser(context.Context, int64) error
	DeleteAllUsers(context.Context) error
}

// RoleFinder resolves role references of a payload to stored roles.
type RoleFinder interface {
	FindRoleByID(context.Context, int64) (models.Role, error)
}

type Cache interface {
	GetUser(context.Context, int64) (models.User, error)
	SetUser(context.Context, models.User) error
	DeleteUser(context.Context, int64) error
	Purge(context.Context) error
}

// New builds the service. userCache may be nil when caching is disabled.
func New(userRepo Repository, roles RoleFinder, userCache Cache, lg logger.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		roles:     roles,
		userCache: userCache,
		validate:  validation.New(),
		lg:        lg,
	}
}

func (us *UserService) FindAll(ctx context.Context) ([]models.User, error) {
	users, err := us.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}

	return users, nil
}

func (us *UserService) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	if us.userCache != nil {
		u, err := us.userCache.GetUser(ctx, id)
		if err == nil {
			us.lg.Debugf("user cache hit id=%d", id)

			return u, nil
		}

		us.lg.Debugf("user cache miss id=%d: %s", id, err.Error())
	}

	u, err := us.userRepo.GetUser(ctx, id)
	if err != nil {
		return models.User{}, us.fail("get user", err, "user with id "+strconv.FormatInt(id, 10))
	}

	if us.userCache != nil {
		if err := us.userCache.SetUser(ctx, u); err != nil {
			us.lg.Errorf("set user cache error: %s", err.Error())
		}
	}

	return u, nil
}

func (us *UserService) FindByName(ctx context.Context, name string) (models.User, error) {
	u, err := us.userRepo.GetUserByName(ctx, normalizeUsername(name))
	if err != nil {
		return models.User{}, us.fail("get user by name", err, "user with name "+name)
	}

	return u, nil
}

// FindByNameContaining never fails on zero matches; it returns an empty slice.
func (us *UserService) FindByNameContaining(ctx context.Context, fragment string) ([]models.User, error) {
	users, err := us.userRepo.SearchUsers(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("search users error: %w", err)
	}

	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

func (us *UserService) Save(ctx context.Context, req CreateUserRequest) (models.User, error) {
	req.normalize()

	if err := validation.Struct(us.validate, req); err != nil {
		return models.User{}, err
	}

	roles, err := us.resolveRoles(ctx, req.RoleIDs)
	if err != nil {
		return models.User{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		PrimaryEmail: req.PrimaryEmail,
		Useremails:   make([]models.Useremail, 0, len(req.Useremails)),
		Roles:        roles,
	}

	for _, e := range req.Useremails {
		u.Useremails = append(u.Useremails, models.Useremail{Email: e}) //nolint:exhaustruct
	}

	id, err := us.userRepo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, us.fail("create user", err, "user with name "+u.Username)
	}

	return us.FindUserByID(ctx, id)
}

// UpdateFull replaces every field of the user, rebuilding both collections.
func (us *UserService) UpdateFull(ctx context.Context, id int64, req CreateUserRequest) (models.User, error) {
	req.normalize()

	if err := validation.Struct(us.validate, req); err != nil {
		return models.User{}, err
	}

	roles, err := us.resolveRoles(ctx, req.RoleIDs)
	if err != nil {
		return models.User{}, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	rr := userrepo.UpdateUserRequest{
		ID:                id,
		Username:          &req.Username,
		PasswordHash:      &hash,
		PrimaryEmail:      &req.PrimaryEmail,
		ReplaceUseremails: true,
		Useremails:        req.Useremails,
		ReplaceRoles:      true,
		RoleIDs:           roleIDs(roles),
	}

	return us.update(ctx, rr, req.Username)
}

// Update applies a partial update: only specified, non-null fields change.
func (us *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (models.User, error) { //nolint:cyclop
	ve := &models.ValidationError{}
	rr := userrepo.UpdateUserRequest{ID: id} //nolint:exhaustruct

	var username string

	if v, ok := present(req.Username); ok {
		username = normalizeUsername(v)
		validation.Var(us.validate, ve, "username", username, "required,max=255")
		rr.Username = &username
	}

	password, hasPassword := present(req.Password)
	if hasPassword {
		validation.Var(us.validate, ve, "password", password, "required,maxbytes=72")
	}

	if v, ok := present(req.PrimaryEmail); ok {
		email := normalizeEmails([]string{v})[0]
		validation.Var(us.validate, ve, "primaryemail", email, "required,email")
		rr.PrimaryEmail = &email
	}

	if v, ok := present(req.Useremails); ok {
		emails := normalizeEmails(v)
		for i, e := range emails {
			validation.Var(us.validate, ve, fmt.Sprintf("useremails[%d]", i), e, "required,email")
		}

		rr.ReplaceUseremails = true
		rr.Useremails = emails
	}

	ids, hasRoles := present(req.RoleIDs)
	for i, id := range ids {
		validation.Var(us.validate, ve, fmt.Sprintf("roles[%d]", i), id, "gt=0")
	}

	if err := ve.OrNil(); err != nil {
		return models.User{}, err
	}

	if hasRoles {
		roles, err := us.resolveRoles(ctx, ids)
		if err != nil {
			return models.User{}, err
		}

		rr.ReplaceRoles = true
		rr.RoleIDs = roleIDs(roles)
	}

	if hasPassword {
		hash, err := hashPassword(password)
		if err != nil {
			return models.User{}, err
		}

		rr.PasswordHash = &hash
	}

	return us.update(ctx, rr, username)
}

func (us *UserService) update(ctx context.Context, rr userrepo.UpdateUserRequest, username string) (models.User, error) {
	err := us.userRepo.UpdateUser(ctx, rr)

	us.evict(ctx, rr.ID)

	if err != nil {
		subject := "user with id " + strconv.FormatInt(rr.ID, 10)
		if errors.Is(err, userrepo.ErrAlreadyExists) {
			subject = "user with name " + username
		}

		return models.User{}, us.fail("update user", err, subject)
	}

	u, err := us.userRepo.GetUser(ctx, rr.ID)

	// A reader that loaded the row before the commit may have cached it after
	// the first evict. Readers still in flight past this point can reinstate a
	// stale document until the cache TTL expires.
	us.evict(ctx, rr.ID)

	if err != nil {
		return models.User{}, us.fail("get user", err, "user with id "+strconv.FormatInt(rr.ID, 10))
	}

	return u, nil
}

func (us *UserService) Delete(ctx context.Context, id int64) error {
	err := us.userRepo.DeleteUser(ctx, id)

	us.evict(ctx, id)

	if err != nil {
		return us.fail("delete user", err, "user with id "+strconv.FormatInt(id, 10))
	}

	return nil
}

func (us *UserService) DeleteAll(ctx context.Context) error {
	if err := us.userRepo.DeleteAllUsers(ctx); err != nil {
		return fmt.Errorf("delete all users error: %w", err)
	}

	if us.userCache != nil {
		if err := us.userCache.Purge(ctx); err != nil {
			us.lg.Errorf("purge user cache error: %s", err.Error())
		}
	}

	return nil
}

// resolveRoles looks up every referenced role once, keeping first-seen order.
func (us *UserService) resolveRoles(ctx context.Context, ids []int64) ([]models.UserRole, error) {
	seen := make(map[int64]struct{}, len(ids))
	roles := make([]models.UserRole, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}

		r, err := us.roles.FindRoleByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve roles: %w", err)
		}

		roles = append(roles, models.UserRole{Role: r})
	}

	return roles, nil
}

func (us *UserService) evict(ctx context.Context, id int64) {
	if us.userCache == nil {
		return
	}

	if err := us.userCache.DeleteUser(ctx, id); err != nil {
		us.lg.Errorf("delete user cache error: %s", err.Error())
	}
}

func (us *UserService) fail(op string, err error, subject string) error {
	switch {
	case errors.Is(err, userrepo.ErrNotFound):
		return fmt.Errorf("%w: %s", models.ErrNotFound, subject)
	case errors.Is(err, userrepo.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", models.ErrAlreadyExists, subject)
	case errors.Is(err, userrepo.ErrRoleNotFound):
		return fmt.Errorf("%w: %w", models.ErrNotFound, userrepo.ErrRoleNotFound)
	default:
		return fmt.Errorf("%s error: %w", op, err)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("generate from password error: %w", err)
	}

	return string(hash), nil
}

func roleIDs(roles []models.UserRole) []int64 {
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.Role.ID)
	}

	return ids
}
