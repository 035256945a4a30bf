package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Leopold1975/usermodel/internal/pkg/pgtools"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var (
	psql        = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	userColumns = []string{"id", "username", "password_hash", "primary_email"}
	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

type UsersPostgresRepo struct {
	db pgtools.DB
}

func New(db pgtools.DB) UsersPostgresRepo {
	return UsersPostgresRepo{
		db: db,
	}
}

func (ur UsersPostgresRepo) CreateUser(ctx context.Context, u models.User) (id int64, err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	query, args, err := psql.Insert("users").
		Columns("username", "password_hash", "primary_email").
		Values(u.Username, u.PasswordHash, u.PrimaryEmail).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if pgtools.IsUniqueViolation(err) {
			return 0, userrepo.ErrAlreadyExists
		}

		return 0, fmt.Errorf("scan error: %w", err)
	}

	if err = insertUseremails(ctx, tx, id, u.Emails()); err != nil {
		return 0, err
	}

	if err = insertUserRoles(ctx, tx, id, u.RoleIDs()); err != nil {
		return 0, err
	}

	return id, nil
}

func (ur UsersPostgresRepo) GetUser(ctx context.Context, id int64) (u models.User, err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	users, err := selectUsers(ctx, tx, psql.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return models.User{}, err
	}

	if len(users) == 0 {
		return models.User{}, userrepo.ErrNotFound
	}

	return users[0], nil
}

func (ur UsersPostgresRepo) GetUserByName(ctx context.Context, username string) (u models.User, err error) { //nolint:nonamedreturns,lll
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get by name")
	}()

	users, err := selectUsers(ctx, tx, psql.Select(userColumns...).
		From("users").
		Where(squirrel.Expr("lower(username) = lower(?)", username)))
	if err != nil {
		return models.User{}, err
	}

	if len(users) == 0 {
		return models.User{}, userrepo.ErrNotFound
	}

	return users[0], nil
}

func (ur UsersPostgresRepo) ListUsers(ctx context.Context) (users []models.User, err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	return selectUsers(ctx, tx, psql.Select(userColumns...).From("users").OrderBy("id ASC"))
}

// SearchUsers matches fragment as a case-insensitive substring of the username.
func (ur UsersPostgresRepo) SearchUsers(ctx context.Context, fragment string) (users []models.User, err error) { //nolint:nonamedreturns,lll
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "search")
	}()

	return selectUsers(ctx, tx, psql.Select(userColumns...).
		From("users").
		Where(squirrel.ILike{"username": "%" + likeEscaper.Replace(fragment) + "%"}).
		OrderBy("id ASC"))
}

func (ur UsersPostgresRepo) UpdateUser(ctx context.Context, req userrepo.UpdateUserRequest) (err error) { //nolint:nonamedreturns,cyclop,lll
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	query, args, err := psql.Select("id").
		From("users").
		Where(squirrel.Eq{"id": req.ID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	var id int64
	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.ErrNotFound
		}

		return fmt.Errorf("scan error: %w", err)
	}

	if req.HasScalars() {
		ub := psql.Update("users").Where(squirrel.Eq{"id": req.ID})

		if req.Username != nil {
			ub = ub.Set("username", *req.Username)
		}

		if req.PasswordHash != nil {
			ub = ub.Set("password_hash", *req.PasswordHash)
		}

		if req.PrimaryEmail != nil {
			ub = ub.Set("primary_email", *req.PrimaryEmail)
		}

		query, args, err = ub.ToSql()
		if err != nil {
			return fmt.Errorf("to sql error: %w", err)
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			if pgtools.IsUniqueViolation(err) {
				return userrepo.ErrAlreadyExists
			}

			return fmt.Errorf("exec error: %w", err)
		}
	}

	if req.ReplaceUseremails {
		if err = deleteOwned(ctx, tx, "useremails", req.ID); err != nil {
			return err
		}

		if err = insertUseremails(ctx, tx, req.ID, req.Useremails); err != nil {
			return err
		}
	}

	if req.ReplaceRoles {
		if err = deleteOwned(ctx, tx, "user_roles", req.ID); err != nil {
			return err
		}

		if err = insertUserRoles(ctx, tx, req.ID, req.RoleIDs); err != nil {
			return err
		}
	}

	return nil
}

// DeleteUser removes the user; useremails and user_roles rows go with it
// through ON DELETE CASCADE in the same statement.
func (ur UsersPostgresRepo) DeleteUser(ctx context.Context, id int64) (err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	query, args, err := psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

func (ur UsersPostgresRepo) DeleteAllUsers(ctx context.Context) (err error) { //nolint:nonamedreturns
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete all")
	}()

	query, args, err := psql.Delete("users").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func selectUsers(ctx context.Context, tx pgx.Tx, sb squirrel.SelectBuilder) ([]models.User, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return users, nil
	}

	pos := make(map[int64]int, len(users))
	ids := make([]int64, 0, len(users))

	for i, u := range users {
		pos[u.ID] = i
		ids = append(ids, u.ID)
	}

	if err := loadUseremails(ctx, tx, ids, func(userID int64, ue models.Useremail) {
		users[pos[userID]].Useremails = append(users[pos[userID]].Useremails, ue)
	}); err != nil {
		return nil, err
	}

	if err := loadRoles(ctx, tx, ids, func(userID int64, r models.Role) {
		users[pos[userID]].Roles = append(users[pos[userID]].Roles, models.UserRole{Role: r})
	}); err != nil {
		return nil, err
	}

	return users, nil
}

func scanUsers(rows pgx.Rows) ([]models.User, error) {
	defer rows.Close()

	users := make([]models.User, 0)

	for rows.Next() {
		u := models.User{ //nolint:exhaustruct
			Useremails: []models.Useremail{},
			Roles:      []models.UserRole{},
		}

		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.PrimaryEmail); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

func loadUseremails(ctx context.Context, tx pgx.Tx, userIDs []int64, add func(int64, models.Useremail)) error {
	query, args, err := psql.Select("id", "user_id", "email").
		From("useremails").
		Where(squirrel.Eq{"user_id": userIDs}).
		OrderBy("id ASC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query useremails error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			ue     models.Useremail
		)

		if err := rows.Scan(&ue.ID, &userID, &ue.Email); err != nil {
			return fmt.Errorf("scan useremail error: %w", err)
		}

		add(userID, ue)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	return nil
}

func loadRoles(ctx context.Context, tx pgx.Tx, userIDs []int64, add func(int64, models.Role)) error {
	query, args, err := psql.Select("ur.user_id", "r.id", "r.name").
		From("user_roles ur").
		Join("roles r ON r.id = ur.role_id").
		Where(squirrel.Eq{"ur.user_id": userIDs}).
		OrderBy("r.id ASC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query user roles error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			r      models.Role
		)

		if err := rows.Scan(&userID, &r.ID, &r.Name); err != nil {
			return fmt.Errorf("scan user role error: %w", err)
		}

		add(userID, r)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	return nil
}

func insertUseremails(ctx context.Context, tx pgx.Tx, userID int64, emails []string) error {
	if len(emails) == 0 {
		return nil
	}

	ib := psql.Insert("useremails").Columns("user_id", "email")
	for _, e := range emails {
		ib = ib.Values(userID, e)
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert useremails error: %w", err)
	}

	return nil
}

func insertUserRoles(ctx context.Context, tx pgx.Tx, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}

	ib := psql.Insert("user_roles").Columns("user_id", "role_id")
	for _, id := range roleIDs {
		ib = ib.Values(userID, id)
	}

	query, args, err := ib.ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if pgtools.IsForeignKeyViolation(err) {
			return userrepo.ErrRoleNotFound
		}

		return fmt.Errorf("insert user roles error: %w", err)
	}

	return nil
}

func deleteOwned(ctx context.Context, tx pgx.Tx, table string, userID int64) error {
	query, args, err := psql.Delete(table).Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s error: %w", table, err)
	}

	return nil
}
