package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"nifri2/emotipet/config"
	"nifri2/emotipet/storage"
)

// openStore returns the key-value store selected by cfg and a func
// releasing it.
func openStore(cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Store.Driver {
	case "dir":
		kv, err := storage.NewDirKV(cfg.Store.Dir)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		kv := storage.NewRedisKV(client, storage.RedisConfig{
			Prefix:  cfg.Store.RedisPrefix,
			Timeout: cfg.Store.Timeout,
		})
		return kv, func() { _ = client.Close() }, nil
	case "", "memory":
		return storage.NewMemKV(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("invalid store driver: %s", cfg.Store.Driver)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
