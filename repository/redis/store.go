package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/repository"
)

type store struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a Redis-backed KeyValueStore. Keys are stored under
// prefix; a ttl of zero keeps them until they are deleted.
func NewStore(client *redislib.Client, prefix string, ttl time.Duration) repository.KeyValueStore {
	if ttl < 0 {
		ttl = 0
	}
	return &store{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return result, nil
}

// Put writes all entries in a MULTI/EXEC block.
func (r *store) Put(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.key(k), v, r.ttl)
		}
		return nil
	})
	return err
}

func (r *store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	return r.client.Del(ctx, full...).Err()
}

// Close is a no-op; the client belongs to whoever created it.
func (r *store) Close() error {
	return nil
}

func (r *store) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return fmt.Sprintf("%s%s", r.prefix, k)
}
