package cache

import (
	"context"
	"time"
)

// Cache - минимальный KV для кэша геокодера и троттлинга SMS
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX записывает ключ, только если его нет. true - ключ записан.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
