package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/usermodel/internal/pkg/pgtools"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/rolerepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type RolesPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) RolesPostgresRepo {
	return RolesPostgresRepo{
		db: db,
	}
}

func (rr RolesPostgresRepo) ListRoles(ctx context.Context) (roles []models.Role, err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	return selectRoles(ctx, tx, psql.Select("id", "name").From("roles").OrderBy("id ASC"))
}

func (rr RolesPostgresRepo) GetRole(ctx context.Context, id int64) (r models.Role, err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Role{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	roles, err := selectRoles(ctx, tx, psql.Select("id", "name").From("roles").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return models.Role{}, err
	}

	if len(roles) == 0 {
		return models.Role{}, rolerepo.ErrNotFound
	}

	return roles[0], nil
}

func (rr RolesPostgresRepo) GetRoleByName(ctx context.Context, name string) (r models.Role, err error) { //nolint:nonamedreturns,lll
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Role{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get by name")
	}()

	roles, err := selectRoles(ctx, tx, psql.Select("id", "name").
		From("roles").
		Where(squirrel.Expr("lower(name) = lower(?)", name)))
	if err != nil {
		return models.Role{}, err
	}

	if len(roles) == 0 {
		return models.Role{}, rolerepo.ErrNotFound
	}

	return roles[0], nil
}

func (rr RolesPostgresRepo) CreateRole(ctx context.Context, name string) (id int64, err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	query, args, err := psql.Insert("roles").
		Columns("name").
		Values(name).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if pgtools.IsUniqueViolation(err) {
			return 0, rolerepo.ErrAlreadyExists
		}

		return 0, fmt.Errorf("scan error: %w", err)
	}

	return id, nil
}

func (rr RolesPostgresRepo) UpdateRole(ctx context.Context, id int64, name string) (err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	query, args, err := psql.Update("roles").
		Set("name", name).
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if pgtools.IsUniqueViolation(err) {
			return rolerepo.ErrAlreadyExists
		}

		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return rolerepo.ErrNotFound
	}

	return nil
}

// DeleteRole removes the role. When cascade is false a role still linked to
// any user is kept and ErrInUse is returned.
func (rr RolesPostgresRepo) DeleteRole(ctx context.Context, id int64, cascade bool) (err error) { //nolint:nonamedreturns,cyclop,lll
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	query, args, err := psql.Select("id").
		From("roles").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	var found int64
	if err = tx.QueryRow(ctx, query, args...).Scan(&found); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rolerepo.ErrNotFound
		}

		return fmt.Errorf("scan error: %w", err)
	}

	if cascade {
		query, args, err = psql.Delete("user_roles").Where(squirrel.Eq{"role_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete user roles error: %w", err)
		}
	} else {
		query, args, err = psql.Select("count(*)").From("user_roles").Where(squirrel.Eq{"role_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		var links int64
		if err = tx.QueryRow(ctx, query, args...).Scan(&links); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		if links > 0 {
			return rolerepo.ErrInUse
		}
	}

	query, args, err = psql.Delete("roles").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		if pgtools.IsForeignKeyViolation(err) {
			return rolerepo.ErrInUse
		}

		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// DeleteAllRoles drops every role together with all user links.
func (rr RolesPostgresRepo) DeleteAllRoles(ctx context.Context) (err error) { //nolint:nonamedreturns
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete all")
	}()

	for _, table := range []string{"user_roles", "roles"} {
		query, args, errS := psql.Delete(table).ToSql()
		if errS != nil {
			return fmt.Errorf("to sql error: %w", errS)
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s error: %w", table, err)
		}
	}

	return nil
}

func selectRoles(ctx context.Context, tx pgx.Tx, sb squirrel.SelectBuilder) ([]models.Role, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	roles := make([]models.Role, 0)

	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		roles = append(roles, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return roles, nil
}
