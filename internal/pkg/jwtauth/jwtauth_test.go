package jwtauth_test

import (
	"testing"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/jwtauth"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	u := models.User{ //nolint:exhaustruct
		ID:       4,
		Username: "admin",
		Roles: []models.UserRole{
			{Role: models.Role{ID: 1, Name: models.RoleAdmin}},
		},
	}

	token, err := jwtauth.GetToken(u, time.Minute, "secret")
	require.NoError(t, err)

	claims, err := jwtauth.ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "4", claims.Subject)
	assert.Equal(t, models.Principal{UserID: 4, Username: "admin", Roles: []string{"ADMIN"}}, claims.Principal())
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := jwtauth.GetToken(models.User{ID: 4, Username: "admin"}, -time.Minute, "secret") //nolint:exhaustruct
	require.NoError(t, err)

	_, err = jwtauth.ValidateToken(token, "secret")
	require.Error(t, err)
}

func TestValidateTokenRejectsNone(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwtauth.Claims{Username: "admin"}) //nolint:exhaustruct

	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtauth.ValidateToken(token, "secret")
	require.Error(t, err)
}
