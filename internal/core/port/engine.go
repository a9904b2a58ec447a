package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
)

// Engine defines the operations exposed by the distribution engine. This
// interface is the primary port into the application domain. Every
// mutating operation takes the caller identity explicitly and is checked
// against the access tiers before anything else.
type Engine interface {
	// CreateCampaign validates params against the schedule constraints and
	// the engine's current funding and opens the single campaign.
	CreateCampaign(ctx context.Context, caller common.Address, params domain.CampaignParams) (domain.Campaign, error)
	// CloseCampaign closes the campaign after its end time and returns the
	// remaining balance of the reward asset to the owner.
	CloseCampaign(ctx context.Context, caller common.Address) (CloseResult, error)

	// AddAllocations registers entitlements before the campaign starts.
	AddAllocations(ctx context.Context, caller common.Address, entries []domain.AllocationEntry) error
	// RemoveAllocation clears an entitlement before the campaign starts.
	RemoveAllocation(ctx context.Context, caller, recipient common.Address) error
	// ReplaceIdentity migrates an allocation, its claims and its blacklist
	// flag from old to repl. Allowed at any time.
	ReplaceIdentity(ctx context.Context, caller, old, repl common.Address) error

	// Claim settles amount for recipient; a zero amount claims everything
	// currently claimable.
	Claim(ctx context.Context, caller, recipient common.Address, amount uint256.Int) (Settlement, error)
	// ClaimBatch settles for many recipients at once. Recipients with
	// nothing claimable are skipped; requested amounts are capped.
	ClaimBatch(ctx context.Context, caller common.Address, req BatchClaimRequest) (BatchResult, error)

	SetBlacklist(ctx context.Context, caller, identity common.Address, blacklisted bool) error
	SetAuthorized(ctx context.Context, caller, wallet common.Address, authorized bool) error
	Pause(ctx context.Context, caller common.Address) error
	Unpause(ctx context.Context, caller common.Address) error
	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
	AcceptOwnership(ctx context.Context, caller common.Address) error
	// Sweep moves the engine's whole balance of a non-reward asset to the owner.
	Sweep(ctx context.Context, caller, asset common.Address) (uint256.Int, error)

	Campaign(ctx context.Context) (domain.Campaign, error)
	Status(ctx context.Context) (domain.Settings, error)
	Position(ctx context.Context, recipient common.Address) (domain.Position, error)
	Investors(ctx context.Context, offset, limit int) (InvestorPage, error)
	IsBlacklisted(ctx context.Context, identity common.Address) (bool, error)
	AuthorizedWallets(ctx context.Context) ([]common.Address, error)
}

// Settlement is the outcome of one recipient's claim.
type Settlement struct {
	Recipient common.Address
	Amount    uint256.Int
	// PerSlot is how Amount was drawn from each distribution slot.
	PerSlot []uint256.Int
}

// BatchClaimRequest pairs recipients with requested amounts; a zero amount
// requests everything claimable.
type BatchClaimRequest struct {
	Recipients []common.Address
	Amounts    []uint256.Int
	Memo       string
}

// BatchResult summarises a batch claim.
type BatchResult struct {
	Processed   int
	Skipped     int
	Total       uint256.Int
	Settlements []Settlement
	// SkippedRecipients lists recipients that had nothing claimable.
	SkippedRecipients []common.Address
}

// CloseResult reports the close time and what was returned to the owner.
type CloseResult struct {
	Campaign domain.Campaign
	Returned uint256.Int
}

// InvestorPage is a window over the investor index.
type InvestorPage struct {
	Investors []common.Address
	Total     int
}
