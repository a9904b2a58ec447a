package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"mesa-vesting/internal/config/configs"
	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/db"
)

var seedFlags struct {
	recipients int
	asset      string
	reward     string
	startIn    time.Duration
	vesting    time.Duration
}

// seedCmd creates a demo campaign through the engine against the configured
// backends.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo campaign with random recipients",
	Long: `Create a demo campaign (30% lump sum at start, 70% vesting linearly) and
allocate it to random recipients. The holder must already hold the reward.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Engine.Store == configs.BackendMemory {
			logger.Warn("seeding the memory store; data is lost when the command exits")
		}
		a, err := buildApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return seedDemo(cmd.Context(), a, seedFlags.recipients)
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedFlags.recipients, "recipients", 100, "number of random recipients")
	f.StringVar(&seedFlags.asset, "asset", "", "reward asset address (defaults to ENGINE_DEV_ASSET)")
	f.StringVar(&seedFlags.reward, "reward", "1000000000000000000000000", "total reward in base units")
	f.DurationVar(&seedFlags.startIn, "start-in", time.Minute, "delay before the campaign starts")
	f.DurationVar(&seedFlags.vesting, "vesting", 30*24*time.Hour, "vesting window")
}

func seedDemo(ctx context.Context, a *app, recipients int) error {
	asset := cfg.Engine.DevAsset
	if seedFlags.asset != "" {
		parsed, err := parseAddress(seedFlags.asset)
		if err != nil {
			return err
		}
		asset = parsed
	}
	reward, err := domain.ParseAmount(seedFlags.reward)
	if err != nil {
		return err
	}

	res, err := db.Seed(ctx, a.engine, db.SeedOptions{
		Caller:      cfg.Engine.Owner,
		Asset:       asset,
		TotalReward: reward,
		Recipients:  recipients,
		Start:       time.Now().Add(seedFlags.startIn),
		Vesting:     seedFlags.vesting,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("demo campaign seeded",
		slog.Int("recipients", len(res.Recipients)),
		slog.String("allocated", res.Allocated.Dec()),
		slog.Time("start", res.Campaign.StartTime),
		slog.Time("end", res.Campaign.EndTime),
	)
	return nil
}

func parseAddress(v string) (common.Address, error) {
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("invalid address %q", v)
	}
	return common.HexToAddress(v), nil
}
