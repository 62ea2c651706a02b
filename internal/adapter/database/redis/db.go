package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"userapp/internal/core/port"
)

const scanBatch = 100

type redisRepository struct {
	client    *redis.Client
	namespace string
}

// NewRedisRepository connects to addr and checks the connection. Every key is
// stored as "<namespace>:<key>".
func NewRedisRepository(ctx context.Context, addr, password string, db int, namespace string) (port.CacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisRepository(client, namespace), nil
}

func newRedisRepository(client *redis.Client, namespace string) *redisRepository {
	return &redisRepository{client: client, namespace: strings.TrimSuffix(namespace, ":")}
}

func (c *redisRepository) key(key string) string {
	if c.namespace == "" {
		return key
	}

	return c.namespace + ":" + key
}

func (c *redisRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *redisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return value, nil
}

func (c *redisRepository) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// DeleteByPrefix walks the keyspace with SCAN so large databases are not blocked.
func (c *redisRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", scanBatch).Iterator()

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())

		if len(batch) == scanBatch {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}

	return nil
}

func (c *redisRepository) Close() error {
	return c.client.Close()
}
