package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pinhole-run/pinhole/message"
)

const redisOriginPrefix = "pinhole:origin:"

// RedisBackend shares persistent storage across multiple client
// processes (or machines) through a Redis instance, trading the
// simplicity of a local file for centralized, multi-writer access.
type RedisBackend struct {
	client *redis.Client
	mu     sync.RWMutex
	closed bool
	ttl    time.Duration
}

// RedisBackendConfig configures a RedisBackend.
type RedisBackendConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 disables expiry
	Options  *redis.Options
}

// NewRedisBackend connects to Redis, verifying reachability with a ping.
func NewRedisBackend(ctx context.Context, config RedisBackendConfig) (*RedisBackend, error) {
	var client *redis.Client
	if config.Options != nil {
		client = redis.NewClient(config.Options)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("storage: connect to redis: %w", err)
	}

	return &RedisBackend{client: client, ttl: config.TTL}, nil
}

func makeRedisOriginKey(origin string) string { return redisOriginPrefix + origin }

func (r *RedisBackend) Load(ctx context.Context, origin string) (message.StateMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrStoreClosed
	}

	value, err := r.client.Get(ctx, makeRedisOriginKey(origin)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return message.StateMap{}, nil
		}
		return nil, fmt.Errorf("storage: redis get: %w", err)
	}

	var data message.StateMap
	if err := cbor.Unmarshal(value, &data); err != nil {
		return nil, fmt.Errorf("storage: decode %q: %w", origin, err)
	}
	return data, nil
}

func (r *RedisBackend) Save(ctx context.Context, origin string, data message.StateMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrStoreClosed
	}

	value, err := cbor.Marshal(data)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", origin, err)
	}
	return r.client.Set(ctx, makeRedisOriginKey(origin), value, r.ttl).Err()
}

func (r *RedisBackend) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrStoreClosed
	}
	r.closed = true
	return r.client.Close()
}
