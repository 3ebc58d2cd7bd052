package domain

import (
	"context"
	"time"
)

// ReferenceSource loads the nutrition reference table
type ReferenceSource interface {
	Load(ctx context.Context) ([]ReferenceFood, error)
	Describe() string
}

// CacheRepository defines the interface for caching operations.
// Values are stored as encoded bytes.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
}
