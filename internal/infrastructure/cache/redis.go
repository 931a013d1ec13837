package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Boutique-api/pkg/config"
)

var _ Cache = (*RedisCache)(nil)

// scanBatch claves por iteración de SCAN.
const scanBatch = 500

// RedisCache caché compartida entre instancias. El prefijo se borra con SCAN MATCH + UNLINK.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache conecta y verifica con PING.
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a redis %s: %w", cfg.Addr, err)
	}
	return NewRedisCacheWithClient(client, ""), nil
}

// NewRedisCacheWithClient reutiliza un cliente existente. namespace vacío = "resp:".
func NewRedisCacheWithClient(client *redis.Client, namespace string) *RedisCache {
	if namespace == "" {
		namespace = "resp:"
	}
	return &RedisCache{client: client, namespace: namespace}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.namespace+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeletePrefix recorre con SCAN (no bloquea el servidor como KEYS) y libera con UNLINK.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.namespace+prefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
	}
	return nil
}

func (c *RedisCache) Generation(ctx context.Context, endpoint, tenantID string) (int64, error) {
	n, err := c.client.Get(ctx, c.namespace+generationKey(TenantPrefix(endpoint, tenantID))).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis generation: %w", err)
	}
	return n, nil
}

// InvalidateTenant INCR de la generación y después UNLINK de las entradas del prefijo.
func (c *RedisCache) InvalidateTenant(ctx context.Context, tenantID string, endpoints ...string) error {
	var errs []error
	for _, p := range prefixes(tenantID, endpoints) {
		if err := c.client.Incr(ctx, c.namespace+generationKey(p)).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis incr: %w", err))
		}
		if err := c.DeletePrefix(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *RedisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func (c *RedisCache) Close() error { return c.client.Close() }
