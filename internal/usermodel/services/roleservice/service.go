package roleservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/usermodel/internal/pkg/validation"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/rolerepo"
	"github.com/Leopold1975/usermodel/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type RoleService struct {
	roleRepo  Repository
	userCache Cache
	policy    DeletePolicy
	validate  *validator.Validate
	lg        logger.Logger
}

type Repository interface {
	ListRoles(context.Context) ([]models.Role, error)
	GetRole(context.Context, int64) (models.Role, error)
	GetRoleByName(context.Context, string) (models.Role, error)
	CreateRole(context.Context, string) (int64, error)
	UpdateRole(context.Context, int64, string) error
	DeleteRole(ctx context.Context, id int64, cascade bool) error
	DeleteAllRoles(context.Context) error
}

// Cache is the user cache; cached users embed role names.
type Cache interface {
	Purge(context.Context) error
}

// New builds the service. userCache may be nil when caching is disabled.
func New(roleRepo Repository, userCache Cache, policy DeletePolicy, lg logger.Logger) *RoleService {
	return &RoleService{
		roleRepo:  roleRepo,
		userCache: userCache,
		policy:    policy,
		validate:  validation.New(),
		lg:        lg,
	}
}

func (rs *RoleService) FindAll(ctx context.Context) ([]models.Role, error) {
	roles, err := rs.roleRepo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles error: %w", err)
	}

	return roles, nil
}

func (rs *RoleService) FindRoleByID(ctx context.Context, id int64) (models.Role, error) {
	r, err := rs.roleRepo.GetRole(ctx, id)
	if err != nil {
		return models.Role{}, rs.fail("get role", err, fmt.Sprintf("role with id %d", id))
	}

	return r, nil
}

func (rs *RoleService) FindByName(ctx context.Context, name string) (models.Role, error) {
	r, err := rs.roleRepo.GetRoleByName(ctx, normalizeName(name))
	if err != nil {
		return models.Role{}, rs.fail("get role by name", err, "role with name "+name)
	}

	return r, nil
}

func (rs *RoleService) Save(ctx context.Context, req RoleRequest) (models.Role, error) {
	req.Name = normalizeName(req.Name)

	if err := validation.Struct(rs.validate, req); err != nil {
		return models.Role{}, err
	}

	id, err := rs.roleRepo.CreateRole(ctx, req.Name)
	if err != nil {
		return models.Role{}, rs.fail("create role", err, "role with name "+req.Name)
	}

	return models.Role{ID: id, Name: req.Name}, nil
}

// Update renames the role and drops every cached user.
func (rs *RoleService) Update(ctx context.Context, id int64, req RoleRequest) (models.Role, error) {
	req.Name = normalizeName(req.Name)

	if err := validation.Struct(rs.validate, req); err != nil {
		return models.Role{}, err
	}

	if err := rs.roleRepo.UpdateRole(ctx, id, req.Name); err != nil {
		if errors.Is(err, rolerepo.ErrAlreadyExists) {
			return models.Role{}, rs.fail("update role", err, "role with name "+req.Name)
		}

		return models.Role{}, rs.fail("update role", err, fmt.Sprintf("role with id %d", id))
	}

	rs.purgeUsers(ctx)

	return models.Role{ID: id, Name: req.Name}, nil
}

func (rs *RoleService) Delete(ctx context.Context, id int64) error {
	if err := rs.roleRepo.DeleteRole(ctx, id, rs.policy == DeleteCascade); err != nil {
		return rs.fail("delete role", err, fmt.Sprintf("role with id %d", id))
	}

	rs.purgeUsers(ctx)

	return nil
}

func (rs *RoleService) DeleteAll(ctx context.Context) error {
	if err := rs.roleRepo.DeleteAllRoles(ctx); err != nil {
		return fmt.Errorf("delete all roles error: %w", err)
	}

	rs.purgeUsers(ctx)

	return nil
}

func (rs *RoleService) purgeUsers(ctx context.Context) {
	if rs.userCache == nil {
		return
	}

	if err := rs.userCache.Purge(ctx); err != nil {
		rs.lg.Errorf("purge user cache error: %s", err.Error())
	}
}

func (rs *RoleService) fail(op string, err error, subject string) error {
	switch {
	case errors.Is(err, rolerepo.ErrNotFound):
		return fmt.Errorf("%w: %s", models.ErrNotFound, subject)
	case errors.Is(err, rolerepo.ErrAlreadyExists):
		return fmt.Errorf("%w: %s", models.ErrAlreadyExists, subject)
	case errors.Is(err, rolerepo.ErrInUse):
		return fmt.Errorf("%w: %s", models.ErrRoleInUse, subject)
	default:
		return fmt.Errorf("%s error: %w", op, err)
	}
}
