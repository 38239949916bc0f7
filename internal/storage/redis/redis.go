package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis caches public user records for the per-request auth lookup.
// Entries expire on their own and are dropped eagerly on profile writes.
type Redis struct {
	rdb        Client
	expiration time.Duration
}

func New(rdb Client, expiration time.Duration) *Redis {
	return &Redis{
		rdb:        rdb,
		expiration: expiration,
	}
}

func (r *Redis) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.redis.SaveUser"

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = r.rdb.Set(ctx, userKey(user.ID), data, r.expiration).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *Redis) GetUser(ctx context.Context, id string) (models.User, error) {
	const op = "storage.redis.GetUser"

	data, err := r.rdb.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err = json.Unmarshal(data, &user); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *Redis) DeleteUser(ctx context.Context, id string) error {
	const op = "storage.redis.DeleteUser"

	err := r.rdb.Del(ctx, userKey(id)).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func userKey(id string) string {
	return "user:" + id
}
