// Package schedule computes what a recipient may claim under a campaign's
// distribution slots at a given effective time. It is pure: no I/O, no
// clock, no state.
package schedule

import (
	"time"

	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
)

// Input is everything the evaluator needs for one recipient.
type Input struct {
	Distributions []domain.Distribution
	Allocation    uint256.Int
	// Claims is indexed by slot; missing trailing slots count as unclaimed.
	Claims []domain.Claim
	// At is the effective time, see domain.Campaign.EffectiveTime.
	At time.Time
}

// Result is the newly claimable amount per slot and in total.
type Result struct {
	PerSlot []uint256.Int
	Total   uint256.Int
	// Dust is the rounding shortfall folded into PerSlot once every slot
	// has fully elapsed.
	Dust uint256.Int
}

// Evaluate returns the newly claimable amounts for in.
func Evaluate(in Input) (Result, error) {
	claims := domain.SlotClaims(in.Claims, len(in.Distributions))
	res := Result{PerSlot: make([]uint256.Int, len(in.Distributions))}

	allElapsed := true
	for i, d := range in.Distributions {
		if !d.ElapsedAt(in.At) {
			allElapsed = false
		}
		vested, err := Vested(d, in.Allocation, in.At)
		if err != nil {
			return Result{}, err
		}
		res.PerSlot[i] = domain.SaturatingSub(vested, claims[i].Claimed)
		if res.Total, err = domain.AddAmounts(res.Total, res.PerSlot[i]); err != nil {
			return Result{}, err
		}
	}

	if !allElapsed || len(res.PerSlot) == 0 {
		return res, nil
	}

	claimed, err := domain.TotalClaimed(claims)
	if err != nil {
		return Result{}, err
	}
	remaining := domain.SaturatingSub(in.Allocation, claimed)
	if !remaining.Gt(&res.Total) {
		return res, nil
	}
	res.Dust = domain.SaturatingSub(remaining, res.Total)
	slot := 0
	for i := range res.PerSlot {
		if !res.PerSlot[i].IsZero() {
			slot = i
			break
		}
	}
	if res.PerSlot[slot], err = domain.AddAmounts(res.PerSlot[slot], res.Dust); err != nil {
		return Result{}, err
	}
	res.Total = remaining
	return res, nil
}

// Entitlement is the slot's share of allocation: allocation × bps / 10000.
func Entitlement(d domain.Distribution, allocation uint256.Int) (uint256.Int, error) {
	return domain.MulDiv(allocation, domain.Amount(uint64(d.BasisPoints)), domain.Amount(domain.TotalBasisPoints))
}

// Vested is the cumulative amount of a slot unlocked at time at.
func Vested(d domain.Distribution, allocation uint256.Int, at time.Time) (uint256.Int, error) {
	entitlement, err := Entitlement(d, allocation)
	if err != nil {
		return uint256.Int{}, err
	}
	switch d.Kind {
	case domain.LumpSum:
		if at.Before(d.StartTime) {
			return uint256.Int{}, nil
		}
		return entitlement, nil
	case domain.LinearVesting:
		if at.Before(d.StartTime.Add(d.Cliff)) {
			return uint256.Int{}, nil
		}
		if !at.Before(d.EndTime) {
			return entitlement, nil
		}
		duration := d.EndTime.Unix() - d.StartTime.Unix()
		elapsed := at.Unix() - d.StartTime.Unix()
		if elapsed <= 0 || duration <= 0 {
			return uint256.Int{}, nil
		}
		if elapsed > duration {
			elapsed = duration
		}
		return domain.MulDiv(entitlement, domain.Amount(uint64(elapsed)), domain.Amount(uint64(duration)))
	default:
		return uint256.Int{}, nil
	}
}

// Allocate spreads amount across slots: LumpSum slots first in slot order,
// then LinearVesting slots, each up to its claimable cap. The caller
// guarantees amount <= sum(claimable).
func Allocate(dists []domain.Distribution, claimable []uint256.Int, amount uint256.Int) []uint256.Int {
	out := make([]uint256.Int, len(dists))
	remaining := amount
	for _, kind := range []domain.DistributionKind{domain.LumpSum, domain.LinearVesting} {
		for i, d := range dists {
			if remaining.IsZero() {
				return out
			}
			if d.Kind != kind || i >= len(claimable) {
				continue
			}
			take := domain.MinAmount(remaining, claimable[i])
			out[i] = take
			remaining = domain.SaturatingSub(remaining, take)
		}
	}
	return out
}
