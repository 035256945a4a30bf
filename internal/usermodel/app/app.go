package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/pkg/pgtools"
	"github.com/Leopold1975/usermodel/internal/usermodel/api/server"
	rp "github.com/Leopold1975/usermodel/internal/usermodel/repository/rolerepo/postgres"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/sqlite"
	"github.com/Leopold1975/usermodel/internal/usermodel/repository/usercache/redis"
	up "github.com/Leopold1975/usermodel/internal/usermodel/repository/userrepo/postgres"
	"github.com/Leopold1975/usermodel/internal/usermodel/seed"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/authservice"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/roleservice"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/userservice"
	"github.com/Leopold1975/usermodel/migrations"
	"github.com/Leopold1975/usermodel/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type UserRepository interface {
	userservice.Repository
	authservice.Repository
}

type UsermodelApp struct {
	s       Server
	lg      logger.Logger
	cfg     config.Config
	closers []func() error
}

func New(ctx context.Context, cfg config.Config) (UsermodelApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return UsermodelApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	policy, err := roleservice.ParseDeletePolicy(cfg.Roles.DeletePolicy)
	if err != nil {
		return UsermodelApp{}, fmt.Errorf("roles config error: %w", err)
	}

	ua := UsermodelApp{ //nolint:exhaustruct
		lg:  lg,
		cfg: cfg,
	}

	userRepo, roleRepo, err := ua.openStore(ctx)
	if err != nil {
		ua.close()

		return UsermodelApp{}, err
	}

	var (
		userCache userservice.Cache
		roleCache roleservice.Cache
	)

	if cfg.RedisCache.Enabled() {
		uc, err := redis.New(ctx, cfg.RedisCache)
		if err != nil {
			ua.close()

			return UsermodelApp{}, fmt.Errorf("redis user cache initializing error: %w", err)
		}

		userCache, roleCache = uc, uc
		ua.closers = append(ua.closers, uc.Close)
	} else {
		lg.Info("user cache disabled")
	}

	roleService := roleservice.New(roleRepo, roleCache, policy, lg)
	userService := userservice.New(userRepo, roleService, userCache, lg)
	authService := authservice.New(userRepo, cfg.Auth)

	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, roleService, userService, lg); err != nil {
			ua.close()

			return UsermodelApp{}, fmt.Errorf("seed error: %w", err)
		}
	}

	ua.s = server.New(cfg.Server, userService, roleService, authService, lg)

	return ua, nil
}

func (ua *UsermodelApp) openStore(ctx context.Context) (UserRepository, roleservice.Repository, error) {
	switch ua.cfg.Storage.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(ua.cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store initializing error: %w", err)
		}

		ua.closers = append(ua.closers, st.Close)
		ua.lg.Info("using sqlite store")

		return st.Users(), st.Roles(), nil
	default:
		pool, err := pgtools.Connect(ctx, ua.cfg.PostgresDB)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres initializing error: %w", err)
		}

		ua.closers = append(ua.closers, func() error {
			pool.Close()

			return nil
		})

		if err := pgtools.ApplyMigration(ua.cfg.PostgresDB, migrations.FS); err != nil {
			return nil, nil, fmt.Errorf("apply migration error: %w", err)
		}

		ua.lg.Info("using postgres store")

		return up.New(pool), rp.New(pool), nil
	}
}

// Run serves until ctx is cancelled, then releases every resource.
func (ua *UsermodelApp) Run(ctx context.Context) {
	ua.lg.Infof("STARTED SERVER ON %s", ua.cfg.Server.Addr)

	if err := ua.s.Start(ctx); err != nil {
		ua.lg.Errorf("server error: %s", err.Error())
	}

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := ua.Stop(ctxS); err != nil { //nolint:contextcheck
		ua.lg.Errorf("shutdown error: %s", err.Error())
	}
}

func (ua *UsermodelApp) Stop(ctx context.Context) error {
	err := ua.s.Shutdown(ctx)
	if err != nil {
		err = fmt.Errorf("server shutdown error: %w", err)
	}

	if errC := ua.close(); errC != nil {
		err = errors.Join(err, errC)
	}

	if err != nil {
		return err
	}

	ua.lg.Info("Shutdowned successfully")
	ua.lg.Sync() //nolint:errcheck

	return nil
}

func (ua *UsermodelApp) close() error {
	var errs []error

	for i := len(ua.closers) - 1; i >= 0; i-- {
		if err := ua.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	ua.closers = nil

	return errors.Join(errs...)
}
