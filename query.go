package apikit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

type QueryOptions struct {
	// TTL overrides the client-wide freshness window for this query.
	TTL time.Duration

	// Refresh skips the cache read and always refetches.
	Refresh bool
}

// Query is a cached read-through fetch keyed by key. Concurrent calls for
// the same key share one in-flight fetch. When a refetch fails and an
// earlier result is still retained, the stale result is served instead of
// the error; with nothing to fall back on, the error is classified,
// reported to the notification surface, and returned.
func (c *Client) Query(ctx context.Context, key string, opts *QueryOptions, fetch func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	ttl := c.queryTTL
	refresh := false
	if opts != nil {
		if opts.TTL > 0 {
			ttl = opts.TTL
		}
		refresh = opts.Refresh
	}
	if !refresh {
		if data, fresh, ok := c.cache.Get(ctx, key); ok && fresh {
			return data, nil
		}
	}
	result, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, encoded, ttl); err != nil {
			c.logger.Warn("query cache write failed", zap.String("key", key), zap.Error(err))
		}
		return json.RawMessage(encoded), nil
	})
	if err != nil {
		if data, _, ok := c.cache.Get(ctx, key); ok {
			c.logger.Warn("query fetch failed, serving retained result",
				zap.String("key", key), zap.Error(err))
			return data, nil
		}
		return nil, c.Report(err)
	}
	return result.(json.RawMessage), nil
}

// GetQuery caches a GET of path under key.
func (c *Client) GetQuery(ctx context.Context, key, path string, opts *QueryOptions) (json.RawMessage, error) {
	return c.Query(ctx, key, opts, func(ctx context.Context) (any, error) {
		var raw json.RawMessage
		if err := c.Get(ctx, path, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
}

// QueryAs is Query with the result decoded into T.
func QueryAs[T any](ctx context.Context, c *Client, key string, opts *QueryOptions, fetch func(ctx context.Context) (T, error)) (T, error) {
	var out T
	raw, err := c.Query(ctx, key, opts, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Invalidate drops the given query keys so the next read refetches.
func (c *Client) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("query invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// InvalidatePrefix drops every query key under prefix. An empty prefix
// drops everything.
func (c *Client) InvalidatePrefix(ctx context.Context, prefix string) {
	if err := c.cache.DeletePrefix(ctx, prefix); err != nil {
		c.logger.Warn("query invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
