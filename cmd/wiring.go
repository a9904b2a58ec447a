package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"mesa-vesting/internal/adapter/ethereum"
	"mesa-vesting/internal/adapter/memory"
	"mesa-vesting/internal/adapter/postgres"
	"mesa-vesting/internal/adapter/usecase"
	"mesa-vesting/internal/config"
	"mesa-vesting/internal/config/configs"
	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
	"mesa-vesting/internal/db"
)

// app is the wired engine plus whatever must be released on exit.
type app struct {
	engine  *usecase.Engine
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires the store and ledger backends selected by cfg.Engine and
// bootstraps the engine owner.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	if cfg.Engine.Owner == (common.Address{}) {
		return nil, errors.New("ENGINE_OWNER is required")
	}
	a := &app{}

	store, err := buildStore(ctx, a, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		ledger    port.AssetLedger
		allowList port.AllowList
		holder    common.Address
	)
	switch cfg.Engine.Ledger {
	case configs.BackendMemory:
		mem := memory.NewLedger(cfg.Engine.Holder)
		if err = fundDev(cfg, mem, logger); err != nil {
			a.Close()
			return nil, err
		}
		ledger, allowList, holder = mem, memory.NewAllowList(), mem.Holder()
	case configs.BackendEthereum:
		client, err := ethereum.Dial(ctx, cfg.Ethereum)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		ledger, allowList, holder = ethereum.NewLedger(client), ethereum.NewAllowList(client), client.Holder()
	default:
		a.Close()
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Engine.Ledger)
	}
	logger.Info("engine wired",
		slog.String("store", cfg.Engine.Store),
		slog.String("ledger", cfg.Engine.Ledger),
		slog.String("holder", holder.Hex()),
	)

	a.engine = usecase.NewEngine(store, ledger, holder,
		usecase.WithLogger(logger),
		usecase.WithAllowList(allowList),
	)
	if err = a.engine.Bootstrap(ctx, cfg.Engine.Owner); err != nil {
		a.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return a, nil
}

func buildStore(ctx context.Context, a *app, cfg config.Config, logger *slog.Logger) (port.Store, error) {
	switch cfg.Engine.Store {
	case configs.BackendMemory:
		return memory.NewStore(), nil
	case configs.BackendPostgres:
		// Optionally run migrations if configured. We use the Psql sub-config.
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, fmt.Errorf("database connection: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return postgres.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Engine.Store)
	}
}

// fundDev mints ENGINE_DEV_FUNDING of ENGINE_DEV_ASSET to the holder. Only
// honoured in the dev environment.
func fundDev(cfg config.Config, ledger *memory.Ledger, logger *slog.Logger) error {
	if cfg.Env != "dev" || cfg.Engine.DevAsset == (common.Address{}) {
		return nil
	}
	amount, err := domain.ParseAmount(cfg.Engine.DevFunding)
	if err != nil {
		return fmt.Errorf("ENGINE_DEV_FUNDING: %w", err)
	}
	if amount.IsZero() {
		return nil
	}
	if err = ledger.Mint(cfg.Engine.DevAsset, ledger.Holder(), amount); err != nil {
		return err
	}
	logger.Warn("memory ledger funded for development",
		slog.String("asset", cfg.Engine.DevAsset.Hex()),
		slog.String("amount", amount.Dec()),
	)
	return nil
}
