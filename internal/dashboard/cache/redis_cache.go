package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const groupListKey = "dashboard:groups"

// RedisGroupListCache хранит готовый JSON-ответ /api/groups под коротким
// TTL. Ошибки Redis деградируют в прямое чтение.
type RedisGroupListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisGroupListCache(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisGroupListCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisGroupListCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func (c *RedisGroupListCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.client.Get(ctx, groupListKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Error("Ошибка при получении данных из Redis",
				"error", err,
				"key", groupListKey,
			)
		}

		return nil, false
	}

	return payload, true
}

func (c *RedisGroupListCache) Set(ctx context.Context, payload []byte) {
	if err := c.client.Set(ctx, groupListKey, payload, c.ttl).Err(); err != nil {
		c.logger.Error("Ошибка при сохранении данных в Redis",
			"error", err,
			"key", groupListKey,
		)
	}
}

func (c *RedisGroupListCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, groupListKey).Err(); err != nil {
		c.logger.Error("Ошибка при инвалидации кэша",
			"error", err,
			"key", groupListKey,
		)
	}
}

func (c *RedisGroupListCache) Close() error {
	return c.client.Close()
}
