// Command polydb queries the polyDB database of discrete geometry objects.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/mongodb"
	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/polydb-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/services"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetFactory(newServices)
	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorText(err))
		stop()
		os.Exit(1)
	}
}

// newServices wires the adapters selected by opts into the core services.
func newServices(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if opts.Password != "" {
		settings.Connection.Password = opts.Password
	}

	registry, err := file.NewTypeRegistry(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading types: %w", err)
	}
	go func() {
		if err := registry.Watch(ctx, func() {
			logger.Debug("Reloaded %s", registry.Path())
		}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Watching %s: %v", registry.Path(), err)
		}
	}()

	out := &cli.Services{
		Settings:   settingsService,
		Conversion: services.NewConversionService(nil, registry),
	}
	if opts.NoDatabase {
		return out, nil
	}

	var closers []func(context.Context) error
	out.Close = func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}

	var mirror *sqlite.Store
	if opts.Offline || opts.Mirror {
		if mirror, err = sqlite.NewStore(settings.Mirror.Dir); err != nil {
			return nil, fmt.Errorf("opening mirror: %w", err)
		}
		closers = append(closers, mirror.Close)
		logger.Debug("Mirror at %s", mirror.Path())
	}

	var db driven.Database
	if opts.Offline {
		db = mirror
	} else {
		logger.Debug("Connecting to %s", settings.Connection.Redacted())
		remote, err := mongodb.Connect(ctx, settings.Connection, logger.Logr("mongo"))
		if err != nil {
			_ = out.Close(ctx)
			return nil, fmt.Errorf("connecting to %s: %w", settings.Connection.Redacted(), err)
		}
		closers = append(closers, remote.Close)
		db = remote
		out.ApplySettings = func(next *domain.AppSettings) {
			remote.SetRateLimit(next.Connection.RateLimit)
			if next.Connection.Redacted() != settings.Connection.Redacted() ||
				next.Connection.Database != settings.Connection.Database {
				logger.Warn("Connection settings changed, restart to connect to %s", next.Connection.Redacted())
			}
		}
	}

	out.Catalog = services.NewCatalogService(db)
	out.Collection = services.NewCollectionService(db)
	out.Conversion = services.NewConversionService(db, registry)
	if mirror != nil {
		var remote driven.Database
		if !opts.Offline {
			remote = db
		}
		out.Mirror = services.NewMirrorService(remote, mirror)
	}
	return out, nil
}
