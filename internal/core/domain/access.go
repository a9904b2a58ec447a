package domain

import "github.com/ethereum/go-ethereum/common"

// Operation names an engine entrypoint for the capability check.
type Operation string

const (
	OpCreateCampaign    Operation = "create_campaign"
	OpCloseCampaign     Operation = "close_campaign"
	OpAddAllocations    Operation = "add_allocations"
	OpRemoveAllocation  Operation = "remove_allocation"
	OpReplaceIdentity   Operation = "replace_identity"
	OpClaim             Operation = "claim"
	OpClaimBatch        Operation = "claim_batch"
	OpSetBlacklist      Operation = "set_blacklist"
	OpSetAuthorized     Operation = "set_authorized"
	OpPause             Operation = "pause"
	OpUnpause           Operation = "unpause"
	OpSweep             Operation = "sweep"
	OpTransferOwnership Operation = "transfer_ownership"
	OpAcceptOwnership   Operation = "accept_ownership"
)

// Tier is the access level an operation requires.
type Tier uint8

const (
	TierOwner Tier = iota
	// TierAuthorized admits authorized wallets and the owner.
	TierAuthorized
	// TierSelfOrOwner admits the subject of the operation and the owner.
	TierSelfOrOwner
	TierPendingOwner
)

var operationTiers = map[Operation]Tier{
	OpCreateCampaign:    TierAuthorized,
	OpCloseCampaign:     TierOwner,
	OpAddAllocations:    TierAuthorized,
	OpRemoveAllocation:  TierAuthorized,
	OpReplaceIdentity:   TierAuthorized,
	OpClaim:             TierSelfOrOwner,
	OpClaimBatch:        TierAuthorized,
	OpSetBlacklist:      TierAuthorized,
	OpSetAuthorized:     TierOwner,
	OpPause:             TierAuthorized,
	OpUnpause:           TierOwner,
	OpSweep:             TierOwner,
	OpTransferOwnership: TierOwner,
	OpAcceptOwnership:   TierPendingOwner,
}

// RequiredTier returns the tier of op. Unknown operations require the owner.
func RequiredTier(op Operation) Tier {
	if t, ok := operationTiers[op]; ok {
		return t
	}
	return TierOwner
}

// Principal is a caller resolved against the persisted access state.
type Principal struct {
	Address    common.Address
	Authorized bool
}

// Permits is the capability check over an operation and caller. subject is
// the identity the operation acts on, used by TierSelfOrOwner.
func Permits(op Operation, caller Principal, settings Settings, subject common.Address) bool {
	if caller.Address == (common.Address{}) {
		return false
	}
	isOwner := caller.Address == settings.Owner
	switch RequiredTier(op) {
	case TierOwner:
		return isOwner
	case TierAuthorized:
		return isOwner || caller.Authorized
	case TierSelfOrOwner:
		return isOwner || caller.Address == subject
	case TierPendingOwner:
		return settings.HasPendingOwner() && caller.Address == settings.PendingOwner
	default:
		return false
	}
}
