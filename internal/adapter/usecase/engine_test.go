package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mesa-vesting/internal/adapter/memory"
	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	operator = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	bob      = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol    = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	dave     = common.HexToAddress("0x00000000000000000000000000000000000000b4")
	asset    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	other    = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	list     = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	holder   = common.HexToAddress("0x00000000000000000000000000000000000000e1")

	t0      = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	start   = t0.Add(time.Hour)
	vesting = 1000 * time.Second
	end     = start.Add(vesting)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	engine *Engine
	store  *memory.Store
	ledger *memory.Ledger
	clock  *fakeClock
}

func amt(v uint64) uint256.Int { return domain.Amount(v) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture returns an engine on memory adapters owned by owner, with
// operator authorized and the holder funded with funding units of asset.
func newFixture(t *testing.T, funding uint64, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		ledger: memory.NewLedger(holder),
		clock:  &fakeClock{now: t0},
	}
	opts = append([]Option{WithClock(f.clock), WithLogger(discardLogger())}, opts...)
	f.engine = NewEngine(f.store, f.ledger, holder, opts...)

	ctx := context.Background()
	require.NoError(t, f.engine.Bootstrap(ctx, owner))
	require.NoError(t, f.engine.SetAuthorized(ctx, owner, operator, true))
	require.NoError(t, f.ledger.Mint(asset, holder, amt(funding)))
	return f
}

// standardParams is 30% released at start and 70% vesting linearly over
// the whole campaign window with no cliff.
func standardParams(reward uint64) domain.CampaignParams {
	return domain.CampaignParams{
		Name:        "seed round",
		Asset:       asset,
		TotalReward: amt(reward),
		StartTime:   start,
		EndTime:     end,
		Distributions: []domain.Distribution{
			{Kind: domain.LumpSum, BasisPoints: 3000, StartTime: start},
			{Kind: domain.LinearVesting, BasisPoints: 7000, StartTime: start, EndTime: end},
		},
	}
}

func (f *fixture) open(t *testing.T, params domain.CampaignParams, entries ...domain.AllocationEntry) {
	t.Helper()
	ctx := context.Background()
	_, err := f.engine.CreateCampaign(ctx, operator, params)
	require.NoError(t, err)
	if len(entries) > 0 {
		require.NoError(t, f.engine.AddAllocations(ctx, operator, entries))
	}
}

func (f *fixture) balance(t *testing.T, account common.Address) string {
	t.Helper()
	b, err := f.ledger.BalanceOf(context.Background(), asset, account)
	require.NoError(t, err)
	return b.Dec()
}

func entry(recipient common.Address, amount uint64) domain.AllocationEntry {
	return domain.AllocationEntry{Recipient: recipient, Amount: amt(amount)}
}

func requireCode(t *testing.T, err error, code domain.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, domain.GetCode(err), "error: %v", err)
}

func TestBootstrap_KeepsPersistedOwner(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, f.engine.Bootstrap(ctx, stranger))

	status, err := f.engine.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, owner, status.Owner)
}

func TestMutate_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t, 10_000)
	f.open(t, standardParams(10_000))

	events := len(f.store.Events())
	err := f.engine.AddAllocations(context.Background(), operator, []domain.AllocationEntry{
		entry(alice, 1000),
		entry(bob, 0),
	})
	requireCode(t, err, domain.CodeZeroAmount)

	pos, err := f.engine.Position(context.Background(), alice)
	require.NoError(t, err)
	require.True(t, pos.Allocation.IsZero())
	require.Len(t, f.store.Events(), events)
}

func TestGuard_RejectsReentryFromTransfer(t *testing.T) {
	store := memory.NewStore()
	ledger := mocks.NewMockAssetLedger(t)
	clock := &fakeClock{now: t0}
	engine := NewEngine(store, ledger, holder, WithClock(clock), WithLogger(discardLogger()))
	ctx := context.Background()

	require.NoError(t, engine.Bootstrap(ctx, owner))
	ledger.EXPECT().BalanceOf(mock.Anything, asset, holder).Return(amt(10_000), nil)

	_, err := engine.CreateCampaign(ctx, owner, standardParams(10_000))
	require.NoError(t, err)
	require.NoError(t, engine.AddAllocations(ctx, owner, []domain.AllocationEntry{entry(alice, 1000)}))
	clock.Set(start)

	var nestedClaim, nestedView error
	ledger.EXPECT().Transfer(mock.Anything, asset, alice, amt(300)).
		Run(func(ctx context.Context, _ common.Address, _ common.Address, _ uint256.Int) {
			_, nestedClaim = engine.Claim(ctx, alice, alice, uint256.Int{})
			_, nestedView = engine.Position(ctx, alice)
		}).
		Return(nil).
		Once()

	s, err := engine.Claim(ctx, alice, alice, uint256.Int{})
	require.NoError(t, err)
	require.Equal(t, "300", s.Amount.Dec())
	requireCode(t, nestedClaim, domain.CodeReentrantCall)
	requireCode(t, nestedView, domain.CodeReentrantCall)

	// The guard is released on the way out.
	pos, err := engine.Position(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "300", pos.Claims[0].Claimed.Dec())
}

func TestClaim_TransferFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	ledger := mocks.NewMockAssetLedger(t)
	clock := &fakeClock{now: t0}
	engine := NewEngine(store, ledger, holder, WithClock(clock), WithLogger(discardLogger()))
	ctx := context.Background()

	require.NoError(t, engine.Bootstrap(ctx, owner))
	ledger.EXPECT().BalanceOf(mock.Anything, asset, holder).Return(amt(10_000), nil)
	_, err := engine.CreateCampaign(ctx, owner, standardParams(10_000))
	require.NoError(t, err)
	require.NoError(t, engine.AddAllocations(ctx, owner, []domain.AllocationEntry{entry(alice, 1000)}))
	clock.Set(start)

	ledger.EXPECT().Transfer(mock.Anything, asset, alice, amt(300)).Return(io.ErrUnexpectedEOF).Once()

	_, err = engine.Claim(ctx, alice, alice, uint256.Int{})
	requireCode(t, err, domain.CodeLedgerFailure)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	pos, err := engine.Position(ctx, alice)
	require.NoError(t, err)
	require.True(t, pos.Claims[0].Claimed.IsZero())
	require.Equal(t, "300", pos.TotalClaimable.Dec())

	c, err := engine.Campaign(ctx)
	require.NoError(t, err)
	require.True(t, c.TotalClaimed.IsZero())
}
