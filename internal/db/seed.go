package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

// SeedOptions describes the demo campaign.
type SeedOptions struct {
	// Caller must be the owner or an authorized wallet.
	Caller      common.Address
	Asset       common.Address
	TotalReward uint256.Int
	Recipients  int
	// Start defaults to one minute from now.
	Start   time.Time
	Vesting time.Duration
	// RandSeed makes recipient amounts reproducible; zero uses the clock.
	RandSeed int64
}

// SeedResult lists what Seed created.
type SeedResult struct {
	Campaign   domain.Campaign
	Recipients []common.Address
	Allocated  uint256.Int
}

// Seed creates a demo campaign (30% lump sum at start, 70% vesting
// linearly until the end) and random recipients. Everything goes through
// the engine so the usual checks apply, including funding.
func Seed(ctx context.Context, engine port.Engine, opts SeedOptions) (SeedResult, error) {
	if opts.Recipients <= 0 {
		return SeedResult{}, fmt.Errorf("recipients must be positive, got %d", opts.Recipients)
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now().Add(time.Minute)
	}
	if opts.Vesting <= 0 {
		opts.Vesting = 30 * 24 * time.Hour
	}
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	start := opts.Start.Truncate(time.Second)
	end := start.Add(opts.Vesting)
	_, err := engine.CreateCampaign(ctx, opts.Caller, domain.CampaignParams{
		Name:        "Demo campaign",
		Description: "30% at start, 70% vesting linearly",
		Category:    "demo",
		Asset:       opts.Asset,
		TotalReward: opts.TotalReward,
		StartTime:   start,
		EndTime:     end,
		Distributions: []domain.Distribution{
			{Kind: domain.LumpSum, BasisPoints: 3000, StartTime: start},
			{Kind: domain.LinearVesting, BasisPoints: 7000, StartTime: start, EndTime: end},
		},
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("create campaign: %w", err)
	}

	// each recipient gets between half and all of an even share
	share := new(uint256.Int).Div(&opts.TotalReward, uint256.NewInt(uint64(opts.Recipients)))
	res := SeedResult{Recipients: make([]common.Address, 0, opts.Recipients)}
	entries := make([]domain.AllocationEntry, 0, min(opts.Recipients, domain.MaxAllocationBatch))
	flush := func() error {
		if len(entries) == 0 {
			return nil
		}
		if err := engine.AddAllocations(ctx, opts.Caller, entries); err != nil {
			return fmt.Errorf("add allocations: %w", err)
		}
		entries = entries[:0]
		return nil
	}

	for i := 0; i < opts.Recipients; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return SeedResult{}, err
		}
		recipient := crypto.PubkeyToAddress(key.PublicKey)

		amount, err := domain.MulDiv(*share, domain.Amount(uint64(50+r.Intn(51))), domain.Amount(100))
		if err != nil {
			return SeedResult{}, err
		}
		if amount.IsZero() {
			amount = domain.Amount(1)
		}
		entries = append(entries, domain.AllocationEntry{Recipient: recipient, Amount: amount})
		res.Recipients = append(res.Recipients, recipient)
		if res.Allocated, err = domain.AddAmounts(res.Allocated, amount); err != nil {
			return SeedResult{}, err
		}
		if len(entries) == domain.MaxAllocationBatch {
			if err := flush(); err != nil {
				return SeedResult{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return SeedResult{}, err
	}

	if res.Campaign, err = engine.Campaign(ctx); err != nil {
		return SeedResult{}, err
	}
	return res, nil
}
