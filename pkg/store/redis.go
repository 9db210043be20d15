package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nmishr/recflow/pkg/common/validation"
	"github.com/nmishr/recflow/pkg/record"
	"github.com/nmishr/recflow/pkg/supervise"
)

var errAlreadyExists = errors.New("record already exists")

// RedisConfig holds configuration for a Redis-backed record store.
type RedisConfig struct {
	// Client is the Redis client to use. Required.
	Client redis.UniversalClient

	// KeyPrefix namespaces all record keys. Defaults to "recflow".
	KeyPrefix string

	// OpTimeout bounds each Redis operation. Defaults to 5 seconds.
	OpTimeout time.Duration
}

// Redis stores records in a Redis backend. Each record lives under
// <prefix>:record:<id> in the same id:name:content form the parser accepts.
type Redis struct {
	config RedisConfig
}

// NewRedis creates a Redis-backed record store.
func NewRedis(config RedisConfig) (*Redis, error) {
	if config.Client == nil {
		return nil, validation.ValidateNotNil("store", "redis client", nil)
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "recflow"
	}
	if config.OpTimeout == 0 {
		config.OpTimeout = 5 * time.Second
	}

	return &Redis{config: config}, nil
}

func (r *Redis) key(id int64) string {
	return fmt.Sprintf("%s:record:%d", r.config.KeyPrefix, id)
}

// Exists implements the pipeline.ExistenceChecker contract. Transport
// failures surface unwrapped into the supervision taxonomy and abort the
// run.
func (r *Redis) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
	defer cancel()

	n, err := r.config.Client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %d: %w", id, err)
	}
	return n > 0, nil
}

// Create implements the pipeline.Creator contract. A key that appears
// between the existence check and creation is reported as a creation
// rejection; transport failures are fatal.
func (r *Redis) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
	defer cancel()

	set, err := r.config.Client.SetNX(ctx, r.key(rec.ID), rec.String(), 0).Result()
	if err != nil {
		return record.Record{}, fmt.Errorf("redis create %d: %w", rec.ID, err)
	}
	if !set {
		return record.Record{}, supervise.NewCreateError(rec, errAlreadyExists)
	}
	return rec, nil
}

// Get returns the stored record for id, if present.
func (r *Redis) Get(ctx context.Context, id int64) (record.Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
	defer cancel()

	raw, err := r.config.Client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return record.Record{}, false, nil
	}
	if err != nil {
		return record.Record{}, false, fmt.Errorf("redis get %d: %w", id, err)
	}

	rec, err := record.Parse(raw)
	if err != nil {
		return record.Record{}, false, fmt.Errorf("redis get %d: corrupt value: %w", id, err)
	}
	return rec, true, nil
}
