package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UsersSQLiteRepo struct {
	db *gorm.DB
}

func (ur UsersSQLiteRepo) CreateUser(ctx context.Context, u models.User) (int64, error) {
	var id int64

	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRoles(tx, u.RoleIDs()); err != nil {
			return err
		}

		newID, err := nextID(tx)
		if err != nil {
			return err
		}

		rec := userRecord{ //nolint:exhaustruct
			ID:           newID,
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			PrimaryEmail: u.PrimaryEmail,
		}

		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return userrepo.ErrAlreadyExists
			}

			return fmt.Errorf("create user error: %w", err)
		}

		if err := insertUseremails(tx, newID, u.Emails()); err != nil {
			return err
		}

		if err := insertUserRoles(tx, newID, u.RoleIDs()); err != nil {
			return err
		}

		id = newID

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create error: %w", err)
	}

	return id, nil
}

func (ur UsersSQLiteRepo) GetUser(ctx context.Context, id int64) (models.User, error) {
	users, err := findUsers(ur.db.WithContext(ctx).Where("id = ?", id))
	if err != nil {
		return models.User{}, fmt.Errorf("get error: %w", err)
	}

	if len(users) == 0 {
		return models.User{}, fmt.Errorf("get error: %w", userrepo.ErrNotFound)
	}

	return users[0], nil
}

func (ur UsersSQLiteRepo) GetUserByName(ctx context.Context, username string) (models.User, error) {
	users, err := findUsers(ur.db.WithContext(ctx).Where("lower(username) = lower(?)", username))
	if err != nil {
		return models.User{}, fmt.Errorf("get by name error: %w", err)
	}

	if len(users) == 0 {
		return models.User{}, fmt.Errorf("get by name error: %w", userrepo.ErrNotFound)
	}

	return users[0], nil
}

func (ur UsersSQLiteRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := findUsers(ur.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list error: %w", err)
	}

	return users, nil
}

func (ur UsersSQLiteRepo) SearchUsers(ctx context.Context, fragment string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(likeEscaper.Replace(fragment)) + "%"

	users, err := findUsers(ur.db.WithContext(ctx).Where(`lower(username) LIKE ? ESCAPE '\'`, pattern))
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}

	return users, nil
}

func (ur UsersSQLiteRepo) UpdateUser(ctx context.Context, req userrepo.UpdateUserRequest) error {
	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userRecord
		if err := tx.Select("id").Take(&rec, req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return userrepo.ErrNotFound
			}

			return fmt.Errorf("lookup user error: %w", err)
		}

		if req.HasScalars() {
			set := make(map[string]any, 3) //nolint:mnd
			if req.Username != nil {
				set["username"] = *req.Username
			}

			if req.PasswordHash != nil {
				set["password_hash"] = *req.PasswordHash
			}

			if req.PrimaryEmail != nil {
				set["primary_email"] = *req.PrimaryEmail
			}

			if err := tx.Model(&userRecord{}).Where("id = ?", req.ID).Updates(set).Error; err != nil { //nolint:exhaustruct
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return userrepo.ErrAlreadyExists
				}

				return fmt.Errorf("update user error: %w", err)
			}
		}

		if req.ReplaceUseremails {
			if err := tx.Where("user_id = ?", req.ID).Delete(&useremailRecord{}).Error; err != nil { //nolint:exhaustruct
				return fmt.Errorf("delete useremails error: %w", err)
			}

			if err := insertUseremails(tx, req.ID, req.Useremails); err != nil {
				return err
			}
		}

		if req.ReplaceRoles {
			if err := checkRoles(tx, req.RoleIDs); err != nil {
				return err
			}

			if err := tx.Where("user_id = ?", req.ID).Delete(&userRoleRecord{}).Error; err != nil { //nolint:exhaustruct
				return fmt.Errorf("delete user roles error: %w", err)
			}

			if err := insertUserRoles(tx, req.ID, req.RoleIDs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}

	return nil
}

func (ur UsersSQLiteRepo) DeleteUser(ctx context.Context, id int64) error {
	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&useremailRecord{}).Error; err != nil { //nolint:exhaustruct
			return fmt.Errorf("delete useremails error: %w", err)
		}

		if err := tx.Where("user_id = ?", id).Delete(&userRoleRecord{}).Error; err != nil { //nolint:exhaustruct
			return fmt.Errorf("delete user roles error: %w", err)
		}

		res := tx.Delete(&userRecord{}, id) //nolint:exhaustruct
		if res.Error != nil {
			return fmt.Errorf("delete user error: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return userrepo.ErrNotFound
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	return nil
}

func (ur UsersSQLiteRepo) DeleteAllUsers(ctx context.Context) error {
	err := ur.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&useremailRecord{}, &userRoleRecord{}, &userRecord{}} { //nolint:exhaustruct
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("delete %T error: %w", m, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete all error: %w", err)
	}

	return nil
}

func findUsers(q *gorm.DB) ([]models.User, error) {
	var recs []userRecord

	err := q.
		Preload("Useremails", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("UserRoles", func(db *gorm.DB) *gorm.DB { return db.Order("role_id ASC") }).
		Preload("UserRoles.Role").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("find users error: %w", err)
	}

	users := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.toModel())
	}

	return users, nil
}

// checkRoles fails with ErrRoleNotFound unless every id names a stored role.
func checkRoles(tx *gorm.DB, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var n int64
	if err := tx.Model(&roleRecord{}).Where("id IN ?", ids).Count(&n).Error; err != nil { //nolint:exhaustruct
		return fmt.Errorf("count roles error: %w", err)
	}

	if n != int64(len(unique)) {
		return userrepo.ErrRoleNotFound
	}

	return nil
}

func insertUseremails(tx *gorm.DB, userID int64, emails []string) error {
	for _, e := range emails {
		id, err := nextID(tx)
		if err != nil {
			return err
		}

		if err := tx.Create(&useremailRecord{ID: id, UserID: userID, Email: e}).Error; err != nil {
			return fmt.Errorf("insert useremail error: %w", err)
		}
	}

	return nil
}

func insertUserRoles(tx *gorm.DB, userID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		err := tx.Omit(clause.Associations).Create(&userRoleRecord{UserID: userID, RoleID: roleID}).Error //nolint:exhaustruct
		if err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return userrepo.ErrRoleNotFound
			}

			return fmt.Errorf("insert user role error: %w", err)
		}
	}

	return nil
}
