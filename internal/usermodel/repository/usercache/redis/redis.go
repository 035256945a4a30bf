package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Leopold1975/usermodel/internal/pkg/config"
	"github.com/Leopold1975/usermodel/internal/pkg/redistools"
	"github.com/Leopold1975/usermodel/internal/usermodel/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "user:"
	scanBatch = 100
)

var ErrMiss = errors.New("cache miss")

type UserCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

// cachedUser keeps the password hash that models.User never serializes.
type cachedUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

func New(ctx context.Context, cfg config.RedisCache) (UserCache, error) {
	rdb, err := redistools.NewClient(ctx, cfg)
	if err != nil {
		return UserCache{}, fmt.Errorf("connect error: %w", err)
	}

	return NewWithClient(rdb, cfg.ExpTime), nil
}

func NewWithClient(rdb *redis.Client, expTime time.Duration) UserCache {
	return UserCache{
		rdb:     rdb,
		expTime: expTime,
	}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (uc UserCache) SetUser(ctx context.Context, u models.User) error {
	userJSON, err := json.Marshal(cachedUser{User: u, PasswordHash: u.PasswordHash})
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := uc.rdb.Set(ctx, key(u.ID), userJSON, uc.expTime).Err(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (uc UserCache) GetUser(ctx context.Context, id int64) (models.User, error) {
	userJSON, err := uc.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.User{}, ErrMiss
	} else if err != nil {
		return models.User{}, fmt.Errorf("get error: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(userJSON, &cu); err != nil {
		return models.User{}, fmt.Errorf("unmarshal error: %w", err)
	}

	u := cu.User
	u.PasswordHash = cu.PasswordHash

	return u, nil
}

func (uc UserCache) DeleteUser(ctx context.Context, id int64) error {
	if err := uc.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}

// Purge drops every cached user. Role renames and deletes change embedded
// role data in an unknown set of entries, so they clear the whole keyspace.
// Keys are collected over a complete SCAN before any DEL so the iteration
// never runs over a keyspace it is shrinking.
func (uc UserCache) Purge(ctx context.Context) error {
	var (
		cursor uint64
		keys   []string
	)

	for {
		batch, next, err := uc.rdb.Scan(ctx, cursor, keyPrefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		keys = append(keys, batch...)

		if next == 0 {
			break
		}

		cursor = next
	}

	for len(keys) > 0 {
		n := min(len(keys), scanBatch)

		if err := uc.rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("del error: %w", err)
		}

		keys = keys[n:]
	}

	return nil
}

func (uc UserCache) Close() error {
	if err := uc.rdb.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}

	return nil
}
