package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const namespace = "discovery:"

// globEscaper quotes the SCAN MATCH metacharacters so a prefix is matched literally.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// RedisTier is the optional shared tier sitting behind the memory store. Values
// are stored as JSON so any replica can decode them.
type RedisTier struct {
	client *redis.Client
}

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func NewRedisTier(client *redis.Client) *RedisTier {
	return &RedisTier{client: client}
}

// Get decodes the value stored at key into dst. A miss is (false, nil).
func (t *RedisTier) Get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := t.client.Get(ctx, namespace+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("decoding cached value for %s: %w", key, err)
	}
	return true, nil
}

func (t *RedisTier) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	if err := t.client.Set(ctx, namespace+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key starting with one of the prefixes.
func (t *RedisTier) DeletePrefix(ctx context.Context, prefixes ...string) (int, error) {
	removed := 0
	for _, p := range prefixes {
		iter := t.client.Scan(ctx, 0, globEscaper.Replace(namespace+p)+"*", 100).Iterator()
		var batch []string
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return removed, fmt.Errorf("scanning %s: %w", p, err)
		}
		if len(batch) == 0 {
			continue
		}
		n, err := t.client.Del(ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("deleting %s keys: %w", p, err)
		}
		removed += int(n)
	}
	return removed, nil
}

// Clear removes everything this service wrote.
func (t *RedisTier) Clear(ctx context.Context) error {
	_, err := t.DeletePrefix(ctx, "")
	return err
}
