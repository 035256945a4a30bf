package pgtools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // driver for migrations
	"github.com/pressly/goose/v3"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DB is the part of *pgxpool.Pool the repositories need.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

func Connect(ctx context.Context, cfg config.PostgresDB) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, cfg.PoolConnString())
	if err != nil {
		return nil, fmt.Errorf("cannot create db pool error: %w", err)
	}

	delay := time.Second

	for {
		err = db.Ping(ctx)
		if err == nil {
			return db, nil
		}

		if delay > time.Second*10 {
			db.Close()

			return nil, fmt.Errorf("cannot ping db error: %w", err)
		}

		select {
		case <-ctx.Done():
			db.Close()

			return nil, fmt.Errorf("context error: %w", ctx.Err())
		case <-time.After(delay):
			delay += time.Second
		}
	}
}

// ApplyMigration runs the goose migrations found in migrations up to cfg.Version
// (all of them when Version is zero). Reload rolls everything back first.
func ApplyMigration(cfg config.PostgresDB, migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect error: %w", err)
	}

	dbM, err := goose.OpenDBWithDriver("pgx", cfg.ConnString())
	if err != nil {
		return fmt.Errorf("goose open pgx db error: %w", err)
	}
	defer dbM.Close()

	if cfg.Reload {
		if err := goose.DownTo(dbM, ".", 0); err != nil {
			return fmt.Errorf("goose down error: %w", err)
		}
	}

	if cfg.Version == 0 {
		if err := goose.Up(dbM, "."); err != nil {
			return fmt.Errorf("goose up error: %w", err)
		}

		return nil
	}

	if err := goose.UpTo(dbM, ".", int64(cfg.Version)); err != nil {
		return fmt.Errorf("goose up error: %w", err)
	}

	return nil
}

func CommitOrRollback(ctx context.Context, tx pgx.Tx, err error, where string) error {
	if err == nil {
		if errT := tx.Commit(ctx); errT != nil {
			err = fmt.Errorf("commit error: %w", errT)
		}
	} else {
		if errT := tx.Rollback(ctx); errT != nil {
			err = fmt.Errorf("%s error: %w rollback error: %w", where, err, errT)
		} else {
			err = fmt.Errorf("%s error: %w", where, err)
		}
	}

	return err
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation)
}

func hasCode(err error, code string) bool {
	target := new(pgconn.PgError)
	if errors.As(err, &target) {
		return target.Code == code
	}

	return false
}
