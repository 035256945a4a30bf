package authservice

import (
	"context"
	"fmt"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/pkg/jwtauth"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

type Repository interface {
	GetUserByName(context.Context, string) (models.User, error)
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// Login checks the credentials and issues a signed token. Unknown users and
// wrong passwords fail identically.
func (as *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	u, err := as.userRepo.GetUserByName(ctx, normalize(req.Username))
	if err != nil {
		return "", fmt.Errorf("%w: get user error: %w", models.ErrUnauthorized, err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password))
	if err != nil {
		return "", fmt.Errorf("%w: compare password error: %w", models.ErrUnauthorized, err)
	}

	token, err := jwtauth.GetToken(u, as.cfg.TTL, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

func (as *AuthService) Authenticate(token string) (models.Principal, error) {
	claims, err := jwtauth.ValidateToken(token, as.cfg.Secret)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: validate token error: %w", models.ErrUnauthorized, err)
	}

	return claims.Principal(), nil
}
