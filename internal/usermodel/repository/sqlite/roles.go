package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/rolerepo"
	"gorm.io/gorm"
)

type RolesSQLiteRepo struct {
	db *gorm.DB
}

func (rr RolesSQLiteRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	var recs []roleRecord
	if err := rr.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list error: %w", err)
	}

	roles := make([]models.Role, 0, len(recs))
	for _, rec := range recs {
		roles = append(roles, rec.toModel())
	}

	return roles, nil
}

func (rr RolesSQLiteRepo) GetRole(ctx context.Context, id int64) (models.Role, error) {
	var rec roleRecord
	if err := rr.db.WithContext(ctx).Take(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Role{}, fmt.Errorf("get error: %w", rolerepo.ErrNotFound)
		}

		return models.Role{}, fmt.Errorf("get error: %w", err)
	}

	return rec.toModel(), nil
}

func (rr RolesSQLiteRepo) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var rec roleRecord
	if err := rr.db.WithContext(ctx).Where("lower(name) = lower(?)", name).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Role{}, fmt.Errorf("get by name error: %w", rolerepo.ErrNotFound)
		}

		return models.Role{}, fmt.Errorf("get by name error: %w", err)
	}

	return rec.toModel(), nil
}

func (rr RolesSQLiteRepo) CreateRole(ctx context.Context, name string) (int64, error) {
	var id int64

	err := rr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		newID, err := nextID(tx)
		if err != nil {
			return err
		}

		if err := tx.Create(&roleRecord{ID: newID, Name: name}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return rolerepo.ErrAlreadyExists
			}

			return fmt.Errorf("create role error: %w", err)
		}

		id = newID

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create error: %w", err)
	}

	return id, nil
}

func (rr RolesSQLiteRepo) UpdateRole(ctx context.Context, id int64, name string) error {
	res := rr.db.WithContext(ctx).Model(&roleRecord{}).Where("id = ?", id).Update("name", name) //nolint:exhaustruct
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("update error: %w", rolerepo.ErrAlreadyExists)
		}

		return fmt.Errorf("update error: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("update error: %w", rolerepo.ErrNotFound)
	}

	return nil
}

func (rr RolesSQLiteRepo) DeleteRole(ctx context.Context, id int64, cascade bool) error {
	err := rr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec roleRecord
		if err := tx.Take(&rec, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rolerepo.ErrNotFound
			}

			return fmt.Errorf("lookup role error: %w", err)
		}

		if cascade {
			if err := tx.Where("role_id = ?", id).Delete(&userRoleRecord{}).Error; err != nil { //nolint:exhaustruct
				return fmt.Errorf("delete user roles error: %w", err)
			}
		} else {
			var links int64
			if err := tx.Model(&userRoleRecord{}).Where("role_id = ?", id).Count(&links).Error; err != nil { //nolint:exhaustruct
				return fmt.Errorf("count user roles error: %w", err)
			}

			if links > 0 {
				return rolerepo.ErrInUse
			}
		}

		if err := tx.Delete(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return rolerepo.ErrInUse
			}

			return fmt.Errorf("delete role error: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	return nil
}

func (rr RolesSQLiteRepo) DeleteAllRoles(ctx context.Context) error {
	err := rr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRoleRecord{}).Error; err != nil { //nolint:exhaustruct
			return fmt.Errorf("delete user roles error: %w", err)
		}

		if err := tx.Where("1 = 1").Delete(&roleRecord{}).Error; err != nil { //nolint:exhaustruct
			return fmt.Errorf("delete roles error: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete all error: %w", err)
	}

	return nil
}
