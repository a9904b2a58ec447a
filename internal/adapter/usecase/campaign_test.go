package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"mesa-vesting/internal/core/domain"
)

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(p *domain.CampaignParams)
		code   domain.Code
	}{
		{
			name:   "percentages must sum to 10000",
			mutate: func(p *domain.CampaignParams) { p.Distributions[1].BasisPoints = 6999 },
			code:   domain.CodePercentageSumInvalid,
		},
		{
			name:   "start in the past",
			mutate: func(p *domain.CampaignParams) { p.StartTime = t0.Add(-time.Minute) },
			code:   domain.CodeStartNotInFuture,
		},
		{
			name:   "reward above funding",
			mutate: func(p *domain.CampaignParams) { p.TotalReward = amt(10_001) },
			code:   domain.CodeInsufficientFunding,
		},
		{
			name:   "zero asset",
			mutate: func(p *domain.CampaignParams) { p.Asset = common.Address{} },
			code:   domain.CodeZeroAddress,
		},
		{
			name:   "vesting outside window",
			mutate: func(p *domain.CampaignParams) { p.Distributions[1].EndTime = end.Add(time.Second) },
			code:   domain.CodeInvalidDistribution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10_000)
			params := standardParams(10_000)
			tt.mutate(&params)

			_, err := f.engine.CreateCampaign(ctx, operator, params)
			requireCode(t, err, tt.code)

			_, err = f.engine.Campaign(ctx)
			require.ErrorIs(t, err, domain.ErrCampaignNotFound)
		})
	}
}

func TestCreateCampaign_OnlyOnce(t *testing.T) {
	f := newFixture(t, 20_000)
	ctx := context.Background()

	c, err := f.engine.CreateCampaign(ctx, operator, standardParams(10_000))
	require.NoError(t, err)
	require.True(t, c.Open())
	require.Equal(t, t0, c.CreatedAt)

	_, err = f.engine.CreateCampaign(ctx, operator, standardParams(10_000))
	require.ErrorIs(t, err, domain.ErrCampaignExists)

	_, err = f.engine.CreateCampaign(ctx, stranger, standardParams(10_000))
	requireCode(t, err, domain.CodeUnauthorized)
}

func TestAddAllocations(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	ctx := context.Background()

	err := f.engine.AddAllocations(ctx, operator, []domain.AllocationEntry{entry(alice, 5)})
	requireCode(t, err, domain.CodeAlreadyAllocated)

	err = f.engine.AddAllocations(ctx, operator, []domain.AllocationEntry{entry(bob, 5), entry(bob, 6)})
	requireCode(t, err, domain.CodeAlreadyAllocated)

	err = f.engine.AddAllocations(ctx, operator, []domain.AllocationEntry{entry(bob, 9001)})
	requireCode(t, err, domain.CodeAllocationExceedsReward)
	require.Equal(t, "10001", domain.GetMetadata(err)["actual"])

	err = f.engine.AddAllocations(ctx, operator, nil)
	requireCode(t, err, domain.CodeBatchSizeOutOfRange)

	require.NoError(t, f.engine.AddAllocations(ctx, operator, []domain.AllocationEntry{entry(bob, 9000)}))
	c, err := f.engine.Campaign(ctx)
	require.NoError(t, err)
	require.Equal(t, "10000", c.TotalAllocated.Dec())

	f.clock.Set(start)
	err = f.engine.AddAllocations(ctx, operator, []domain.AllocationEntry{entry(carol, 1)})
	requireCode(t, err, domain.CodeCampaignStarted)
}

func TestRemoveAllocation_SwapsLastIntoPlace(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000), entry(bob, 2000), entry(carol, 3000))
	ctx := context.Background()

	require.NoError(t, f.engine.RemoveAllocation(ctx, operator, alice))

	page, err := f.engine.Investors(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, []common.Address{carol, bob}, page.Investors)

	c, err := f.engine.Campaign(ctx)
	require.NoError(t, err)
	require.Equal(t, "5000", c.TotalAllocated.Dec())

	err = f.engine.RemoveAllocation(ctx, operator, alice)
	requireCode(t, err, domain.CodeNoAllocation)

	f.clock.Set(start)
	err = f.engine.RemoveAllocation(ctx, operator, bob)
	requireCode(t, err, domain.CodeCampaignStarted)
}

func TestReplaceIdentity_MovesClaimsAndBlacklist(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000), entry(bob, 2000))
	ctx := context.Background()

	f.clock.Set(start)
	_, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.NoError(t, f.engine.SetBlacklist(ctx, operator, alice, true))

	err = f.engine.ReplaceIdentity(ctx, operator, alice, bob)
	requireCode(t, err, domain.CodeAlreadyAllocated)
	err = f.engine.ReplaceIdentity(ctx, operator, alice, alice)
	requireCode(t, err, domain.CodeSameIdentity)

	require.NoError(t, f.engine.ReplaceIdentity(ctx, operator, alice, dave))

	pos, err := f.engine.Position(ctx, dave)
	require.NoError(t, err)
	require.Equal(t, "1000", pos.Allocation.Dec())
	require.Equal(t, "300", pos.Claims[0].Claimed.Dec())
	require.True(t, pos.Blacklisted)

	old, err := f.engine.Position(ctx, alice)
	require.NoError(t, err)
	require.True(t, old.Allocation.IsZero())
	require.False(t, old.Blacklisted)

	page, err := f.engine.Investors(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, []common.Address{dave, bob}, page.Investors)

	err = f.engine.ReplaceIdentity(ctx, operator, alice, carol)
	requireCode(t, err, domain.CodeNoAllocation)
}

func TestCloseCampaign(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	ctx := context.Background()

	f.clock.Set(start)
	_, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)

	f.clock.Set(end.Add(-time.Second))
	_, err = f.engine.CloseCampaign(ctx, owner)
	requireCode(t, err, domain.CodeCampaignNotEnded)

	f.clock.Set(end)
	_, err = f.engine.CloseCampaign(ctx, operator)
	requireCode(t, err, domain.CodeUnauthorized)

	res, err := f.engine.CloseCampaign(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, "9700", res.Returned.Dec())
	require.Equal(t, end, res.Campaign.ClosedAt)
	require.Equal(t, "9700", f.balance(t, owner))
	require.Equal(t, "0", f.balance(t, holder))

	_, err = f.engine.CloseCampaign(ctx, owner)
	require.ErrorIs(t, err, domain.ErrCampaignClosed)

	// The vesting clock stays at the close time.
	f.clock.Set(end.Add(24 * time.Hour))
	pos, err := f.engine.Position(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, end, pos.EffectiveTime)
	require.Equal(t, "700", pos.TotalClaimable.Dec())

	// Accrued amounts stay claimable once the engine is funded again.
	_, err = f.engine.Claim(ctx, alice, alice, uint256.Int{})
	requireCode(t, err, domain.CodeInsufficientBalance)

	require.NoError(t, f.ledger.Mint(asset, holder, amt(700)))
	s, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, "700", s.Amount.Dec())
}

func TestSweep(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000))
	ctx := context.Background()

	_, err := f.engine.Sweep(ctx, owner, asset)
	requireCode(t, err, domain.CodeRewardAssetNotSweepable)

	_, err = f.engine.Sweep(ctx, owner, other)
	requireCode(t, err, domain.CodeNothingToSweep)

	require.NoError(t, f.ledger.Mint(other, holder, amt(42)))
	_, err = f.engine.Sweep(ctx, operator, other)
	requireCode(t, err, domain.CodeUnauthorized)

	swept, err := f.engine.Sweep(ctx, owner, other)
	require.NoError(t, err)
	require.Equal(t, "42", swept.Dec())

	got, err := f.ledger.BalanceOf(ctx, other, owner)
	require.NoError(t, err)
	require.Equal(t, "42", got.Dec())
}
