package cli

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"certexam-engine/internal/config"
	"certexam-engine/internal/infra/memory"
	infraredis "certexam-engine/internal/infra/redis"
	infrasqlite "certexam-engine/internal/infra/sqlite"
	"certexam-engine/internal/logger"
	"certexam-engine/internal/persist"
)

// buildManager assembles the persistence manager for the configured store
// backend. The returned closer releases backend resources; it is a no-op for
// the memory backend.
func buildManager(cfg config.Config) (*persist.Manager, func() error, error) {
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case "", "memory":
		return persist.NewManager(memory.NewStore(), log), noop, nil
	case "redis":
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis backend selected but redis.addr not configured")
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
		return persist.NewManager(infraredis.NewStore(client, ttl), log), client.Close, nil
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "certexam.db"
		}
		store, err := infrasqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return persist.NewManager(store, log), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
