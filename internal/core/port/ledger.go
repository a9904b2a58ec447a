package port

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// AssetLedger moves balances of fungible assets. The engine never assumes
// push notifications: it re-reads balances before every transfer.
type AssetLedger interface {
	BalanceOf(ctx context.Context, asset, holder common.Address) (uint256.Int, error)
	// Transfer moves amount of asset from the engine's holder account to to.
	Transfer(ctx context.Context, asset, to common.Address, amount uint256.Int) error
}

// AllowList is the optional external eligibility oracle. list is the
// allow-list reference configured on the campaign.
type AllowList interface {
	IsAllowed(ctx context.Context, list, identity common.Address) (bool, error)
}

// Clock abstracts wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time truncated to whole seconds.
func (SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
