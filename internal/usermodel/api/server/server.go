package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/authservice"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/roleservice"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/userservice"
	"github.com/Leopold1975/usermodel/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	serv        *http.Server
	userService UserService
	roleService RoleService
	authService AuthService
	lg          logger.Logger
}

type UserService interface {
	FindAll(context.Context) ([]models.User, error)
	FindUserByID(context.Context, int64) (models.User, error)
	FindByName(context.Context, string) (models.User, error)
	FindByNameContaining(context.Context, string) ([]models.User, error)
	Save(context.Context, userservice.CreateUserRequest) (models.User, error)
	UpdateFull(context.Context, int64, userservice.CreateUserRequest) (models.User, error)
	Update(context.Context, int64, userservice.UpdateUserRequest) (models.User, error)
	Delete(context.Context, int64) error
}

type RoleService interface {
	FindAll(context.Context) ([]models.Role, error)
	FindRoleByID(context.Context, int64) (models.Role, error)
	FindByName(context.Context, string) (models.Role, error)
	Save(context.Context, roleservice.RoleRequest) (models.Role, error)
	Update(context.Context, int64, roleservice.RoleRequest) (models.Role, error)
	Delete(context.Context, int64) error
}

type AuthService interface {
	Login(context.Context, authservice.LoginRequest) (string, error)
	Authenticate(string) (models.Principal, error)
}

func New(cfg config.Server, us UserService, rs RoleService, as AuthService, lg logger.Logger) *Server {
	s := &Server{
		userService: us,
		roleService: rs,
		authService: as,
		lg:          lg,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})) //nolint:exhaustruct

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer, loggingMiddleware(lg), metricsMiddleware(newMetrics(reg)))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})) //nolint:exhaustruct

	h := oapi.HandlerWithOptions(s, oapi.ChiServerOptions{ //nolint:exhaustruct
		BaseRouter:       r,
		Middlewares:      []oapi.MiddlewareFunc{s.authMiddleware},
		ErrorHandlerFunc: s.paramError,
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, fmt.Errorf("%w: no route for %s %s", models.ErrNotFound, r.Method, r.URL.Path))
	})

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler exposes the routed handler without a listener.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}
