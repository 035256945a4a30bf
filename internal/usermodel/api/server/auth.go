package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Leopold1975/usermodel/internal/usermodel/api/oapi"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/Leopold1975/usermodel/internal/usermodel/services/authservice"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)

	return p, ok
}

// authMiddleware enforces the bearer scopes the router attached to the
// operation. Operations without scopes pass through untouched.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scopes, ok := r.Context().Value(oapi.BearerAuthScopes).([]string)
		if !ok {
			next.ServeHTTP(w, r)

			return
		}

		token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			s.writeError(w, fmt.Errorf("%w: bearer token required", models.ErrUnauthorized))

			return
		}

		p, err := s.authService.Authenticate(strings.TrimSpace(token))
		if err != nil {
			s.lg.Warnf("authenticate error: %s", err.Error())
			s.writeError(w, fmt.Errorf("%w: invalid token", models.ErrUnauthorized))

			return
		}

		for _, scope := range scopes {
			if !p.HasRole(scope) {
				s.writeError(w, fmt.Errorf("%w: role %s required", models.ErrForbidden, scope))

				return
			}
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// (POST /login).
func (s *Server) PostLogin(w http.ResponseWriter, r *http.Request) {
	var body oapi.PostLoginJSONRequestBody
	if err := decode(r, &body); err != nil {
		s.writeError(w, err)

		return
	}

	if body.Username == "" || body.Password == "" {
		ve := &models.ValidationError{}
		if body.Username == "" {
			ve.Add("username", "must not be empty")
		}

		if body.Password == "" {
			ve.Add("password", "must not be empty")
		}

		s.writeError(w, ve)

		return
	}

	token, err := s.authService.Login(r.Context(), authservice.LoginRequest{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		s.lg.Warnf("login error: %s", err.Error())
		s.writeError(w, fmt.Errorf("%w: bad credentials", models.ErrUnauthorized))

		return
	}

	s.writeJSON(w, http.StatusOK, oapi.LoginResponse{Token: token})
}

// (GET /users/getcurrentuserinfo).
func (s *Server) GetCurrentUserInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		s.writeError(w, fmt.Errorf("%w: no authenticated user", models.ErrUnauthorized))

		return
	}

	u, err := s.userService.FindByName(r.Context(), p.Username)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, u)
}
