package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
	"mesa-vesting/internal/core/port/mocks"
)

func decimals(xs []uint256.Int) []string {
	out := make([]string, len(xs))
	for i := range xs {
		out[i] = xs[i].Dec()
	}
	return out
}

func TestClaim_LumpSumThenVestingScenario(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	ctx := context.Background()

	f.clock.Set(start)
	s, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, "300", s.Amount.Dec())
	require.Equal(t, []string{"300", "0"}, decimals(s.PerSlot))

	f.clock.Set(start.Add(vesting / 2))
	pos, err := f.engine.Position(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "350", pos.TotalClaimable.Dec())

	s, err = f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, "350", s.Amount.Dec())

	f.clock.Set(end)
	s, err = f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, "350", s.Amount.Dec())

	require.Equal(t, "1000", f.balance(t, alice))
	c, err := f.engine.Campaign(ctx)
	require.NoError(t, err)
	require.Equal(t, "1000", c.TotalClaimed.Dec())

	_, err = f.engine.Claim(ctx, alice, alice, uint256.Int{})
	requireCode(t, err, domain.CodeNothingToClaim)
}

func TestClaim_RepeatedClaimsSumToAllocation(t *testing.T) {
	const allocation = 1_000_003

	f := newFixture(t, allocation)
	params := standardParams(allocation)
	params.Distributions[0].BasisPoints = 3333
	params.Distributions[1].BasisPoints = 6667
	f.open(t, params, entry(alice, allocation))
	ctx := context.Background()

	var total uint256.Int
	for _, at := range []time.Duration{0, 3 * time.Second, 17 * time.Second, 333 * time.Second, 999 * time.Second, vesting} {
		f.clock.Set(start.Add(at))
		s, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
		require.NoError(t, err, "at %s", at)
		total, err = domain.AddAmounts(total, s.Amount)
		require.NoError(t, err)
	}

	require.Equal(t, "1000003", total.Dec())
	require.Equal(t, "1000003", f.balance(t, alice))
}

func TestClaim_PartialDrawsLumpSumFirst(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	ctx := context.Background()

	f.clock.Set(start.Add(vesting / 2))
	s, err := f.engine.Claim(ctx, alice, alice, amt(200))
	require.NoError(t, err)
	require.Equal(t, []string{"200", "0"}, decimals(s.PerSlot))

	pos, err := f.engine.Position(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "200", pos.Claims[0].Claimed.Dec())
	require.True(t, pos.Claims[1].Claimed.IsZero())
	require.Equal(t, start.Add(vesting/2), pos.Claims[0].LastClaimedAt)
	require.Equal(t, []string{"100", "350"}, decimals(pos.Claimable))

	s, err = f.engine.Claim(ctx, alice, alice, amt(150))
	require.NoError(t, err)
	require.Equal(t, []string{"100", "50"}, decimals(s.PerSlot))
}

func TestClaim_Preconditions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		setup  func(f *fixture)
		caller common.Address
		who    common.Address
		amount uint256.Int
		code   domain.Code
	}{
		{
			name:   "before start",
			setup:  func(f *fixture) { f.clock.Set(start.Add(-time.Second)) },
			caller: alice,
			who:    alice,
			code:   domain.CodeCampaignNotStarted,
		},
		{
			name:   "stranger on behalf of recipient",
			caller: stranger,
			who:    alice,
			code:   domain.CodeUnauthorized,
		},
		{
			name:   "authorized wallet is not self or owner",
			caller: operator,
			who:    alice,
			code:   domain.CodeUnauthorized,
		},
		{
			name:   "no allocation",
			caller: carol,
			who:    carol,
			code:   domain.CodeNoAllocation,
		},
		{
			name: "blacklisted",
			setup: func(f *fixture) {
				require.NoError(t, f.engine.SetBlacklist(ctx, operator, alice, true))
			},
			caller: alice,
			who:    alice,
			code:   domain.CodeBlacklisted,
		},
		{
			name:   "amount above claimable",
			caller: alice,
			who:    alice,
			amount: amt(301),
			code:   domain.CodeAmountExceedsClaimable,
		},
		{
			name: "paused",
			setup: func(f *fixture) {
				require.NoError(t, f.engine.Pause(ctx, operator))
			},
			caller: alice,
			who:    alice,
			code:   domain.CodePaused,
		},
		{
			name: "ledger balance too low",
			setup: func(f *fixture) {
				require.NoError(t, f.ledger.Transfer(ctx, asset, stranger, amt(9_800)))
			},
			caller: alice,
			who:    alice,
			code:   domain.CodeInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10_000)
			f.open(t, standardParams(10_000), entry(alice, 1000))
			f.clock.Set(start)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.engine.Claim(ctx, tt.caller, tt.who, tt.amount)
			requireCode(t, err, tt.code)
		})
	}
}

func TestClaim_OwnerMayClaimForRecipient(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	f.clock.Set(start)

	s, err := f.engine.Claim(context.Background(), owner, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, alice, s.Recipient)
	require.Equal(t, "300", f.balance(t, alice))
	require.Equal(t, "0", f.balance(t, owner))
}

func TestClaim_AllowList(t *testing.T) {
	ctx := context.Background()
	oracle := mocks.NewMockAllowList(t)
	oracle.EXPECT().IsAllowed(mock.Anything, list, alice).Return(true, nil)
	oracle.EXPECT().IsAllowed(mock.Anything, list, bob).Return(false, nil)
	oracle.EXPECT().IsAllowed(mock.Anything, list, carol).Return(false, errors.New("rpc unavailable"))

	f := newFixture(t, 10_000, WithAllowList(oracle))
	params := standardParams(10_000)
	params.AllowList = list
	f.open(t, params, entry(alice, 1000), entry(bob, 1000), entry(carol, 1000))
	f.clock.Set(start)

	_, err := f.engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)

	_, err = f.engine.Claim(ctx, bob, bob, uint256.Int{})
	requireCode(t, err, domain.CodeNotAllowListed)

	_, err = f.engine.Claim(ctx, carol, carol, uint256.Int{})
	requireCode(t, err, domain.CodeAllowListFailure)

	_, err = f.engine.ClaimBatch(ctx, operator, port.BatchClaimRequest{
		Recipients: []common.Address{alice, bob},
		Amounts:    []uint256.Int{{}, {}},
	})
	requireCode(t, err, domain.CodeNotAllowListed)
}

func TestClaim_AllowListWithoutOracle(t *testing.T) {
	f := newFixture(t, 10_000)
	params := standardParams(10_000)
	params.AllowList = list
	f.open(t, params, entry(alice, 1000))
	f.clock.Set(start)

	_, err := f.engine.Claim(context.Background(), alice, alice, uint256.Int{})
	requireCode(t, err, domain.CodeAllowListFailure)
}

func TestClaimBatch_SkipsNothingClaimableAndFailsOnBlacklist(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000), entry(bob, 1000), entry(carol, 1000))
	ctx := context.Background()

	f.clock.Set(start)
	_, err := f.engine.Claim(ctx, bob, bob, uint256.Int{})
	require.NoError(t, err)
	require.NoError(t, f.engine.SetBlacklist(ctx, operator, carol, true))

	_, err = f.engine.ClaimBatch(ctx, operator, port.BatchClaimRequest{
		Recipients: []common.Address{alice, bob, carol},
		Amounts:    []uint256.Int{{}, {}, {}},
		Memo:       "march",
	})
	requireCode(t, err, domain.CodeBlacklisted)
	require.Equal(t, "0", f.balance(t, alice))

	pos, err := f.engine.Position(ctx, alice)
	require.NoError(t, err)
	require.True(t, pos.Claims[0].Claimed.IsZero())

	res, err := f.engine.ClaimBatch(ctx, operator, port.BatchClaimRequest{
		Recipients: []common.Address{alice, bob},
		Amounts:    []uint256.Int{{}, {}},
		Memo:       "march",
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)
	require.Equal(t, 1, res.Skipped)
	require.Equal(t, "300", res.Total.Dec())
	require.Equal(t, []common.Address{bob}, res.SkippedRecipients)
	require.Equal(t, "300", f.balance(t, alice))

	events := f.store.Events()
	last := events[len(events)-1]
	require.Equal(t, domain.EventBatchClaimed, last.Kind)
	if diff := cmp.Diff(map[string]string{
		"processed": "1",
		"skipped":   "1",
		"total":     "300",
		"memo":      "march",
	}, last.Attributes); diff != "" {
		t.Fatalf("batch event mismatch (-want +got):\n%s", diff)
	}
}

func TestClaimBatch_CapsRequestedAmounts(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000), entry(bob, 2000))
	f.clock.Set(start)

	res, err := f.engine.ClaimBatch(context.Background(), operator, port.BatchClaimRequest{
		Recipients: []common.Address{alice, bob},
		Amounts:    []uint256.Int{amt(5000), amt(100)},
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Processed)
	require.Equal(t, "400", res.Total.Dec())
	require.Equal(t, "300", res.Settlements[0].Amount.Dec())
	require.Equal(t, "100", res.Settlements[1].Amount.Dec())
}

func TestClaimBatch_FatalConditions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  port.BatchClaimRequest
		prep func(f *fixture)
		code domain.Code
	}{
		{
			name: "length mismatch",
			req:  port.BatchClaimRequest{Recipients: []common.Address{alice}, Amounts: []uint256.Int{{}, {}}},
			code: domain.CodeArrayLengthMismatch,
		},
		{
			name: "empty",
			req:  port.BatchClaimRequest{},
			code: domain.CodeBatchSizeOutOfRange,
		},
		{
			name: "missing allocation",
			req:  port.BatchClaimRequest{Recipients: []common.Address{alice, carol}, Amounts: []uint256.Int{{}, {}}},
			code: domain.CodeNoAllocation,
		},
		{
			name: "balance runs out mid batch",
			req:  port.BatchClaimRequest{Recipients: []common.Address{alice, bob}, Amounts: []uint256.Int{{}, {}}},
			prep: func(f *fixture) {
				require.NoError(t, f.ledger.Transfer(ctx, asset, stranger, amt(9_500)))
			},
			code: domain.CodeInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10_000)
			f.open(t, standardParams(10_000), entry(alice, 1000), entry(bob, 1000))
			f.clock.Set(start)
			if tt.prep != nil {
				tt.prep(f)
			}

			_, err := f.engine.ClaimBatch(ctx, operator, tt.req)
			requireCode(t, err, tt.code)
			require.Equal(t, "0", f.balance(t, alice))
		})
	}
}

func TestClaimBatch_RequiresAuthorizedCaller(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000), entry(alice, 1000))
	f.clock.Set(start)

	_, err := f.engine.ClaimBatch(context.Background(), alice, port.BatchClaimRequest{
		Recipients: []common.Address{alice},
		Amounts:    []uint256.Int{{}},
	})
	requireCode(t, err, domain.CodeUnauthorized)
}
