package main

import (
	"context"
	"fmt"

	"github.com/aretw0/beatbox/internal/config"
	"github.com/aretw0/beatbox/pkg/adapters/file"
	"github.com/aretw0/beatbox/pkg/adapters/memory"
	redisadapter "github.com/aretw0/beatbox/pkg/adapters/redis"
	"github.com/aretw0/beatbox/pkg/ports"
)

// backend bundles the checkpoint store selected by the configuration.
type backend struct {
	store  ports.CheckpointStore
	locker ports.DistributedLocker
	close  func() error
}

func openBackend(ctx context.Context, cfg config.ServerConfig) (*backend, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return &backend{store: memory.NewStore(), close: func() error { return nil }}, nil
	case config.StoreFile:
		return &backend{store: file.NewStore(cfg.CheckpointDir), close: func() error { return nil }}, nil
	case config.StoreRedis:
		store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisadapter.WithPrefix(cfg.Redis.Prefix),
			redisadapter.WithTTL(cfg.Redis.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		return &backend{
			store:  store,
			locker: redisadapter.NewLocker(store.Client(), cfg.Redis.Prefix),
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
