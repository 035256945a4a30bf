package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	usercache "github.com/Leopold1975/usermodel/internal/usermodel/repository/usercache/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (usercache.UserCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	uc, err := usercache.New(context.Background(), config.RedisCache{ //nolint:exhaustruct
		Addr:    mr.Addr(),
		ExpTime: time.Minute,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = uc.Close() })

	return uc, mr
}

func TestUserCacheRoundTrip(t *testing.T) {
	uc, mr := newCache(t)
	ctx := context.Background()

	u := models.User{
		ID:           7,
		Username:     "cinnamon",
		PasswordHash: "$2a$10$hash",
		PrimaryEmail: "cinnamon@lambdaschool.local",
		Useremails:   []models.Useremail{{ID: 8, Email: "yummy@email.local"}},
		Roles:        []models.UserRole{{Role: models.Role{ID: 2, Name: "USER"}}},
	}

	_, err := uc.GetUser(ctx, 7)
	require.ErrorIs(t, err, usercache.ErrMiss)

	require.NoError(t, uc.SetUser(ctx, u))
	assert.True(t, mr.Exists("user:7"))
	assert.Equal(t, time.Minute, mr.TTL("user:7"))

	got, err := uc.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, uc.DeleteUser(ctx, 7))
	_, err = uc.GetUser(ctx, 7)
	require.ErrorIs(t, err, usercache.ErrMiss)
}

func TestUserCachePurge(t *testing.T) {
	uc, mr := newCache(t)
	ctx := context.Background()

	for id := int64(1); id <= 250; id++ {
		require.NoError(t, uc.SetUser(ctx, models.User{ID: id, Username: "u"})) //nolint:exhaustruct
	}

	require.NoError(t, mr.Set("session:1", "keep"))

	require.NoError(t, uc.Purge(ctx))

	assert.Equal(t, []string{"session:1"}, mr.Keys())
}
