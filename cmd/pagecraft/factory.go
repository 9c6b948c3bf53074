package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/internal/config"
	"github.com/aretw0/pagecraft/pkg/adapters/file"
	loamstore "github.com/aretw0/pagecraft/pkg/adapters/loam"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/adapters/redis"
	"github.com/aretw0/pagecraft/pkg/adapters/sql"
	"github.com/aretw0/pagecraft/pkg/persistence/middleware"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/prototype"
)

// openStore builds the page store the config names.
func openStore(c config.StoreConfig) (ports.PageStore, error) {
	switch c.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil
	case config.BackendFile:
		return file.New(c.Path), nil
	case config.BackendLoam:
		s, err := loamstore.Open(c.Path, loam.WithVersioning(false))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		path := c.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "pages.db")
		}
		s, err := sql.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendRedis:
		var opts []redis.Option
		if c.RedisTTL.Duration > 0 {
			opts = append(opts, redis.WithTTL(c.RedisTTL.Duration))
		}
		if c.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(c.RedisPrefix))
		}
		return redis.New(c.RedisAddr, c.RedisPassword, c.RedisDB, opts...), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", c.Backend)
}

// storeMiddlewares masks before it encrypts.
func storeMiddlewares(c config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(c.MaskProps) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(c.MaskProps))
	}
	key, err := c.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return mws, nil
}

// newEditor builds an Editor from the config and registers its prototype
// bundles.
func newEditor(ctx context.Context, c config.Config, log *slog.Logger, extra ...pagecraft.Option) (*pagecraft.Editor, error) {
	store, err := openStore(c.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", c.Store.Backend, err)
	}
	mws, err := storeMiddlewares(c.Store)
	if err != nil {
		return nil, err
	}

	opts := []pagecraft.Option{
		pagecraft.WithLogger(log),
		pagecraft.WithStore(store),
		pagecraft.WithStoreMiddleware(mws...),
	}
	if c.History.Window.Duration > 0 {
		opts = append(opts, pagecraft.WithHistoryWindow(c.History.Window.Duration))
	}
	ed, err := pagecraft.New(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing editor: %w", err)
	}

	for _, bundle := range c.Prototypes {
		dir, name := filepath.Dir(bundle), strings.TrimSuffix(filepath.Base(bundle), filepath.Ext(bundle))
		if err := ed.LoadPrototypes(ctx, prototype.DirLoader(dir), name); err != nil {
			_ = ed.Close()
			return nil, err
		}
	}
	log.Debug("editor ready", "store", c.Store.Backend, "prototypes", ed.Registry().Names())
	return ed, nil
}
