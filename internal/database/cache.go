package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

var ErrCacheUnavailable = errors.New("cache client is not configured")

type CacheBuilder struct {
	client  CacheClient
	key     string
	pattern string
	value   any
	ttl     time.Duration
	ctx     context.Context
}

func NewCacheBuilder(client CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		client: client,
		key:    key,
		ctx:    context.Background(),
	}
}

// WithHash formats the key through pattern, e.g. "employer:%s".
func (b *CacheBuilder) WithHash(pattern string) *CacheBuilder {
	b.pattern = pattern
	return b
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

func (b *CacheBuilder) fullKey() string {
	if b.pattern == "" {
		return b.key
	}
	return fmt.Sprintf(b.pattern, b.key)
}

func (b *CacheBuilder) Set() error {
	if b.client == nil {
		return ErrCacheUnavailable
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", b.fullKey(), err)
	}

	var cmd valkey.Completed
	if seconds := int64(b.ttl / time.Second); seconds > 0 {
		cmd = b.client.B().Setex().Key(b.fullKey()).Seconds(seconds).Value(valkey.BinaryString(payload)).Build()
	} else {
		cmd = b.client.B().Set().Key(b.fullKey()).Value(valkey.BinaryString(payload)).Build()
	}

	return b.client.Do(b.ctx, cmd).Error()
}

// Get decodes the cached value into dest. A miss is reported as found == false, not an error.
func (b *CacheBuilder) Get(dest any) (bool, error) {
	if b.client == nil {
		return false, ErrCacheUnavailable
	}

	payload, err := b.client.Do(b.ctx, b.client.B().Get().Key(b.fullKey()).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value for %s: %w", b.fullKey(), err)
	}
	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.client == nil {
		return ErrCacheUnavailable
	}
	return b.client.Do(b.ctx, b.client.B().Del().Key(b.fullKey()).Build()).Error()
}

// CacheItem is the typed form of a builder call.
type CacheItem[T any] struct {
	Cache       CacheClient
	Key         string
	Value       T
	Expiry      *time.Duration
	HashPattern *string
}

func (item CacheItem[T]) builder(ctx context.Context) *CacheBuilder {
	b := NewCacheBuilder(item.Cache, item.Key).WithContext(ctx)
	if item.HashPattern != nil {
		b.WithHash(*item.HashPattern)
	}
	if item.Expiry != nil {
		b.WithTTL(*item.Expiry)
	}
	return b
}

func SetValue[T any](ctx context.Context, item CacheItem[T]) error {
	return item.builder(ctx).WithStruct(item.Value).Set()
}

func GetValue[T any](ctx context.Context, item CacheItem[T]) (T, bool, error) {
	var value T
	found, err := item.builder(ctx).Get(&value)
	return value, found, err
}
