package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/patchbay/internal/adapters/file"
	"github.com/aretw0/patchbay/internal/config"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/adapters/redis"
	"github.com/aretw0/patchbay/pkg/catalog"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/aretw0/patchbay/pkg/persistence/middleware"
	goredis "github.com/redis/go-redis/v9"
)

// OpenLibrary builds the patch library selected by cfg.Store. The returned
// closer releases the store's connections.
func OpenLibrary(cfg *config.Config, logger *slog.Logger) (*library.Manager, io.Closer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	active, fallback, err := cfg.PatchKeys()
	if err != nil {
		return nil, nil, err
	}
	var mws []middleware.Middleware
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}

	switch cfg.Store {
	case config.StoreFile:
		store := middleware.Chain(file.New(cfg.PatchDir), mws...)
		return library.NewManager(store, library.WithLogger(logger)), nopCloser{}, nil
	case config.StoreMemory:
		store := middleware.Chain(memory.NewStore(), mws...)
		return library.NewManager(store, library.WithLogger(logger)), nopCloser{}, nil
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redis.NewFromClient(client,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		lib := library.NewManager(middleware.Chain(store, mws...),
			library.WithLogger(logger),
			library.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)),
		)
		return lib, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
}

// LoadCatalog returns the catalog file named by cfg.Kinds, or the built-in one.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Kinds == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Kinds)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
