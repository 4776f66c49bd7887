// Package storage picks the durable session store for this process.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/internal/config"
	redisInfra "github.com/fastygo/dsp-console/internal/infrastructure/redis"
	"github.com/fastygo/dsp-console/repository"
	boltRepo "github.com/fastygo/dsp-console/repository/bolt"
	"github.com/fastygo/dsp-console/repository/memory"
	redisRepo "github.com/fastygo/dsp-console/repository/redis"
)

// Opened is a ready store plus the function releasing its resources.
type Opened struct {
	Store repository.KeyValueStore
	Close func() error
}

// Open builds the KeyValueStore named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Opened, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Storage.Driver {
	case config.StorageBolt:
		store, err := boltRepo.Open(cfg.Storage.Path, cfg.Storage.Namespace)
		if err != nil {
			return nil, fmt.Errorf("open session file %s: %w", cfg.Storage.Path, err)
		}
		logger.Debug("session storage ready", zap.String("driver", "bolt"), zap.String("path", cfg.Storage.Path))
		return &Opened{Store: store, Close: store.Close}, nil

	case config.StorageRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store := redisRepo.NewStore(client, cfg.Storage.Namespace+"/", cfg.Redis.TTL)
		logger.Debug("session storage ready", zap.String("driver", "redis"))
		return &Opened{Store: store, Close: client.Close}, nil

	case config.StorageMemory:
		logger.Debug("session storage ready", zap.String("driver", "memory"))
		store := memory.NewStore()
		return &Opened{Store: store, Close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
