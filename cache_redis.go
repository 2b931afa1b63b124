package apikit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// redisCache shares query results between client instances, e.g. several
// workers rendering for the same backend. Entries carry their own
// freshness deadline; the redis expiry only bounds stale retention.
type redisCache struct {
	client *redis.Client
	prefix string
}

type redisEnvelope struct {
	Data    []byte    `json:"data"`
	StaleAt time.Time `json:"stale_at"`
}

func NewRedisCache(conf *RedisConfig) (Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Password: conf.Password,
		DB:       conf.Database,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	prefix := conf.Prefix
	if prefix == "" {
		prefix = "apikit:"
	}
	return &redisCache{client: rdb, prefix: prefix}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool, bool) {
	payload, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false, false
	}
	var envelope redisEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, false, false
	}
	return envelope.Data, time.Now().Before(envelope.StaleAt), true
}

func (r *redisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	payload, err := json.Marshal(redisEnvelope{
		Data:    data,
		StaleAt: time.Now().Add(ttl),
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, payload, ttl+staleRetention).Err()
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for idx, key := range keys {
		full[idx] = r.prefix + key
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *redisCache) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := r.client.Keys(ctx, r.prefix+prefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
