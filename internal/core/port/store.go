package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
)

// Store is the persistence layer for the engine. It is an outbound port.
// Atomic runs fn as one serializable unit of work: either every write made
// through tx is committed or none is.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of the persisted state layout inside a unit of work.
type Tx interface {
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error

	// Campaign returns the zero Campaign (Exists == false) when absent.
	Campaign(ctx context.Context) (domain.Campaign, error)
	SaveCampaign(ctx context.Context, c domain.Campaign) error

	// Allocation returns zero for unknown recipients.
	Allocation(ctx context.Context, recipient common.Address) (uint256.Int, error)
	// SetAllocation stores amount; zero deletes the entry.
	SetAllocation(ctx context.Context, recipient common.Address, amount uint256.Int) error

	// Claims returns the recipient's claims padded to slots entries.
	Claims(ctx context.Context, recipient common.Address, slots int) ([]domain.Claim, error)
	SaveClaim(ctx context.Context, recipient common.Address, slot int, claim domain.Claim) error
	// MoveClaims re-keys every claim of from to to.
	MoveClaims(ctx context.Context, from, to common.Address) error

	IsBlacklisted(ctx context.Context, identity common.Address) (bool, error)
	SetBlacklisted(ctx context.Context, identity common.Address, blacklisted bool) error

	IsAuthorized(ctx context.Context, wallet common.Address) (bool, error)
	SetAuthorized(ctx context.Context, wallet common.Address, authorized bool) error
	AuthorizedWallets(ctx context.Context) ([]common.Address, error)

	AppendInvestor(ctx context.Context, recipient common.Address) error
	// RemoveInvestor drops recipient by swapping the last entry into its
	// position.
	RemoveInvestor(ctx context.Context, recipient common.Address) error
	// ReplaceInvestor repoints old's position to repl in place.
	ReplaceInvestor(ctx context.Context, old, repl common.Address) error
	Investors(ctx context.Context, offset, limit int) ([]common.Address, int, error)

	AppendEvent(ctx context.Context, event domain.Event) error
}
