package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	// MaxAllocationBatch bounds a single add-allocations call.
	MaxAllocationBatch = 3000
	// MaxClaimBatch bounds a single batch claim.
	MaxClaimBatch = 1000
)

// AllocationEntry registers a recipient's total entitlement.
type AllocationEntry struct {
	Recipient common.Address
	Amount    uint256.Int
}

// Claim is the cumulative settlement of one recipient in one slot.
type Claim struct {
	Claimed       uint256.Int
	LastClaimedAt time.Time
}

// SlotClaims returns claims padded to n slots so callers can index by slot.
func SlotClaims(claims []Claim, n int) []Claim {
	if len(claims) >= n {
		return claims
	}
	out := make([]Claim, n)
	copy(out, claims)
	return out
}

// TotalClaimed sums the claimed amounts across slots.
func TotalClaimed(claims []Claim) (uint256.Int, error) {
	var total uint256.Int
	for _, c := range claims {
		var err error
		if total, err = AddAmounts(total, c.Claimed); err != nil {
			return uint256.Int{}, err
		}
	}
	return total, nil
}

// Position is a recipient's standing at a point in time.
type Position struct {
	Recipient      common.Address
	Allocation     uint256.Int
	Claims         []Claim
	Claimable      []uint256.Int
	TotalClaimable uint256.Int
	Blacklisted    bool
	EffectiveTime  time.Time
}
