package usecase

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"mesa-vesting/internal/core/domain"
)

// AddAllocations implements port.Engine.
func (e *Engine) AddAllocations(ctx context.Context, caller common.Address, entries []domain.AllocationEntry) error {
	return e.mutate(ctx, "AddAllocations", func(ctx context.Context, u *unit) error {
		c, err := e.preStart(ctx, u, domain.OpAddAllocations, caller)
		if err != nil {
			return err
		}
		if n := len(entries); n == 0 || n > domain.MaxAllocationBatch {
			return domain.WithMetadata(domain.CodeBatchSizeOutOfRange, "allocation batch size out of range", map[string]string{
				"actual":   strconv.Itoa(n),
				"expected": "1.." + strconv.Itoa(domain.MaxAllocationBatch),
			})
		}

		for i, entry := range entries {
			index := strconv.Itoa(i)
			if entry.Recipient == (common.Address{}) {
				return domain.WithMetadata(domain.CodeZeroAddress, "recipient is the zero address", map[string]string{"index": index})
			}
			if entry.Amount.IsZero() {
				return domain.WithMetadata(domain.CodeZeroAmount, "allocation amount is zero", map[string]string{
					"index":     index,
					"recipient": entry.Recipient.Hex(),
				})
			}
			current, err := u.Allocation(ctx, entry.Recipient)
			if err != nil {
				return err
			}
			if !current.IsZero() {
				return domain.WithMetadata(domain.CodeAlreadyAllocated, "recipient already has an allocation", map[string]string{
					"index":     index,
					"recipient": entry.Recipient.Hex(),
					"actual":    current.Dec(),
				})
			}

			total, err := domain.AddAmounts(c.TotalAllocated, entry.Amount)
			if err != nil {
				return err
			}
			if total.Gt(&c.TotalReward) {
				return domain.WithMetadata(domain.CodeAllocationExceedsReward, "allocations exceed the total reward", map[string]string{
					"index":    index,
					"actual":   total.Dec(),
					"expected": c.TotalReward.Dec(),
				})
			}
			c.TotalAllocated = total

			if err := u.SetAllocation(ctx, entry.Recipient, entry.Amount); err != nil {
				return err
			}
			if err := u.AppendInvestor(ctx, entry.Recipient); err != nil {
				return err
			}
		}

		if err := u.SaveCampaign(ctx, c); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventAllocationsAdded, caller, map[string]string{
			"count":           strconv.Itoa(len(entries)),
			"total_allocated": c.TotalAllocated.Dec(),
		})
	})
}

// RemoveAllocation implements port.Engine.
func (e *Engine) RemoveAllocation(ctx context.Context, caller, recipient common.Address) error {
	return e.mutate(ctx, "RemoveAllocation", func(ctx context.Context, u *unit) error {
		c, err := e.preStart(ctx, u, domain.OpRemoveAllocation, caller)
		if err != nil {
			return err
		}
		if err := requireAddress("recipient", recipient); err != nil {
			return err
		}
		amount, err := u.Allocation(ctx, recipient)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return domain.WithMetadata(domain.CodeNoAllocation, "recipient has no allocation", map[string]string{
				"recipient": recipient.Hex(),
			})
		}

		if c.TotalAllocated, err = domain.SubAmounts(c.TotalAllocated, amount); err != nil {
			return err
		}
		if err := u.SetAllocation(ctx, recipient, domain.Amount(0)); err != nil {
			return err
		}
		if err := u.RemoveInvestor(ctx, recipient); err != nil {
			return err
		}
		if err := u.SaveCampaign(ctx, c); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventInvestorRemoved, caller, map[string]string{
			"recipient": recipient.Hex(),
			"amount":    amount.Dec(),
		})
	})
}

// ReplaceIdentity implements port.Engine.
func (e *Engine) ReplaceIdentity(ctx context.Context, caller, old, repl common.Address) error {
	return e.mutate(ctx, "ReplaceIdentity", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpReplaceIdentity, caller, common.Address{})
		if err != nil {
			return err
		}
		if err := requireNotPaused(settings); err != nil {
			return err
		}
		if err := requireAddress("old", old); err != nil {
			return err
		}
		if err := requireAddress("new", repl); err != nil {
			return err
		}
		if old == repl {
			return domain.WithMetadata(domain.CodeSameIdentity, "old and new identity are the same", map[string]string{
				"identity": old.Hex(),
			})
		}
		if _, err := campaign(ctx, u); err != nil {
			return err
		}

		amount, err := u.Allocation(ctx, old)
		if err != nil {
			return err
		}
		if amount.IsZero() {
			return domain.WithMetadata(domain.CodeNoAllocation, "old identity has no allocation", map[string]string{
				"recipient": old.Hex(),
			})
		}
		existing, err := u.Allocation(ctx, repl)
		if err != nil {
			return err
		}
		if !existing.IsZero() {
			return domain.WithMetadata(domain.CodeAlreadyAllocated, "new identity already has an allocation", map[string]string{
				"recipient": repl.Hex(),
				"actual":    existing.Dec(),
			})
		}

		if err := u.SetAllocation(ctx, repl, amount); err != nil {
			return err
		}
		if err := u.SetAllocation(ctx, old, domain.Amount(0)); err != nil {
			return err
		}
		if err := u.MoveClaims(ctx, old, repl); err != nil {
			return err
		}
		blacklisted, err := u.IsBlacklisted(ctx, old)
		if err != nil {
			return err
		}
		if blacklisted {
			if err := u.SetBlacklisted(ctx, old, false); err != nil {
				return err
			}
			if err := u.SetBlacklisted(ctx, repl, true); err != nil {
				return err
			}
		}
		if err := u.ReplaceInvestor(ctx, old, repl); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventIdentityReplaced, caller, map[string]string{
			"old":         old.Hex(),
			"new":         repl.Hex(),
			"amount":      amount.Dec(),
			"blacklisted": strconv.FormatBool(blacklisted),
		})
	})
}

// preStart runs the shared checks of registry mutations that are only
// allowed before the campaign starts.
func (e *Engine) preStart(ctx context.Context, u *unit, op domain.Operation, caller common.Address) (domain.Campaign, error) {
	settings, err := e.authorize(ctx, u, op, caller, common.Address{})
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := requireNotPaused(settings); err != nil {
		return domain.Campaign{}, err
	}
	c, err := campaign(ctx, u)
	if err != nil {
		return domain.Campaign{}, err
	}
	if c.Closed() {
		return domain.Campaign{}, domain.ErrCampaignClosed
	}
	if c.Started(u.now) {
		return domain.Campaign{}, domain.WithMetadata(domain.CodeCampaignStarted, "campaign already started", map[string]string{
			"now":   u.now.Format(timeLayout),
			"start": c.StartTime.Format(timeLayout),
		})
	}
	return c, nil
}
