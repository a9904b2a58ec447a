package usecase

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
	"mesa-vesting/internal/core/schedule"
)

// Claim implements port.Engine.
func (e *Engine) Claim(ctx context.Context, caller, recipient common.Address, amount uint256.Int) (port.Settlement, error) {
	var out port.Settlement
	err := e.mutate(ctx, "Claim", func(ctx context.Context, u *unit) error {
		c, err := e.claimable(ctx, u, domain.OpClaim, caller, recipient)
		if err != nil {
			return err
		}

		entry, err := e.evaluate(ctx, u, c, recipient)
		if err != nil {
			return err
		}
		if entry.result.Total.IsZero() {
			return domain.WithMetadata(domain.CodeNothingToClaim, "nothing to claim", map[string]string{
				"recipient":      recipient.Hex(),
				"effective_time": c.EffectiveTime(u.now).Format(timeLayout),
			})
		}
		if amount.IsZero() {
			amount = entry.result.Total
		} else if amount.Gt(&entry.result.Total) {
			return domain.WithMetadata(domain.CodeAmountExceedsClaimable, "requested amount exceeds claimable", map[string]string{
				"recipient": recipient.Hex(),
				"actual":    amount.Dec(),
				"expected":  entry.result.Total.Dec(),
			})
		}

		balance, err := e.ledger.BalanceOf(ctx, c.Asset, e.holder)
		if err != nil {
			return ledgerFailure("balance", err)
		}
		if balance.Lt(&amount) {
			return insufficientBalance(recipient, balance, amount)
		}

		if out, err = e.settle(ctx, u, &c, entry, amount); err != nil {
			return err
		}
		if err := u.SaveCampaign(ctx, c); err != nil {
			return err
		}
		if err := u.emit(ctx, domain.EventClaimSettled, caller, settledAttrs(out)); err != nil {
			return err
		}

		if err := e.ledger.Transfer(ctx, c.Asset, recipient, amount); err != nil {
			return ledgerFailure("transfer", err)
		}
		return nil
	})
	if err != nil {
		return port.Settlement{}, err
	}
	return out, nil
}

// ClaimBatch implements port.Engine. Recipients are processed in input
// order. A recipient with nothing claimable is skipped; blacklisted,
// unlisted or unallocated recipients and a short ledger balance abort the
// whole batch. Transfers start only once every recipient has been staged.
func (e *Engine) ClaimBatch(ctx context.Context, caller common.Address, req port.BatchClaimRequest) (port.BatchResult, error) {
	var out port.BatchResult
	err := e.mutate(ctx, "ClaimBatch", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpClaimBatch, caller, common.Address{})
		if err != nil {
			return err
		}
		if err := requireNotPaused(settings); err != nil {
			return err
		}
		if len(req.Recipients) != len(req.Amounts) {
			return domain.WithMetadata(domain.CodeArrayLengthMismatch, "recipients and amounts differ in length", map[string]string{
				"recipients": strconv.Itoa(len(req.Recipients)),
				"amounts":    strconv.Itoa(len(req.Amounts)),
			})
		}
		if n := len(req.Recipients); n == 0 || n > domain.MaxClaimBatch {
			return domain.WithMetadata(domain.CodeBatchSizeOutOfRange, "claim batch size out of range", map[string]string{
				"actual":   strconv.Itoa(n),
				"expected": "1.." + strconv.Itoa(domain.MaxClaimBatch),
			})
		}
		c, err := started(ctx, u)
		if err != nil {
			return err
		}

		available, err := e.ledger.BalanceOf(ctx, c.Asset, e.holder)
		if err != nil {
			return ledgerFailure("balance", err)
		}

		out = port.BatchResult{
			Settlements:       make([]port.Settlement, 0, len(req.Recipients)),
			SkippedRecipients: []common.Address{},
		}
		for i, recipient := range req.Recipients {
			if err := requireAddress("recipients["+strconv.Itoa(i)+"]", recipient); err != nil {
				return err
			}
			if err := e.eligible(ctx, u, c, recipient); err != nil {
				return err
			}
			entry, err := e.evaluate(ctx, u, c, recipient)
			if err != nil {
				return err
			}
			if entry.result.Total.IsZero() {
				out.Skipped++
				out.SkippedRecipients = append(out.SkippedRecipients, recipient)
				continue
			}

			amount := req.Amounts[i]
			if amount.IsZero() || amount.Gt(&entry.result.Total) {
				amount = entry.result.Total
			}
			if available.Lt(&amount) {
				return insufficientBalance(recipient, available, amount)
			}
			available = domain.SaturatingSub(available, amount)

			s, err := e.settle(ctx, u, &c, entry, amount)
			if err != nil {
				return err
			}
			if out.Total, err = domain.AddAmounts(out.Total, amount); err != nil {
				return err
			}
			out.Processed++
			out.Settlements = append(out.Settlements, s)
			if err := u.emit(ctx, domain.EventClaimSettled, caller, settledAttrs(s)); err != nil {
				return err
			}
		}

		if err := u.SaveCampaign(ctx, c); err != nil {
			return err
		}
		if err := u.emit(ctx, domain.EventBatchClaimed, caller, map[string]string{
			"processed": strconv.Itoa(out.Processed),
			"skipped":   strconv.Itoa(out.Skipped),
			"total":     out.Total.Dec(),
			"memo":      req.Memo,
		}); err != nil {
			return err
		}

		for _, s := range out.Settlements {
			if err := e.ledger.Transfer(ctx, c.Asset, s.Recipient, s.Amount); err != nil {
				return ledgerFailure("transfer", err)
			}
		}
		return nil
	})
	if err != nil {
		return port.BatchResult{}, err
	}
	return out, nil
}

// claimable runs the single-claim preconditions up to eligibility.
func (e *Engine) claimable(ctx context.Context, u *unit, op domain.Operation, caller, recipient common.Address) (domain.Campaign, error) {
	settings, err := e.authorize(ctx, u, op, caller, recipient)
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := requireNotPaused(settings); err != nil {
		return domain.Campaign{}, err
	}
	if err := requireAddress("recipient", recipient); err != nil {
		return domain.Campaign{}, err
	}
	c, err := started(ctx, u)
	if err != nil {
		return domain.Campaign{}, err
	}
	if err := e.eligible(ctx, u, c, recipient); err != nil {
		return domain.Campaign{}, err
	}
	return c, nil
}

func started(ctx context.Context, u *unit) (domain.Campaign, error) {
	c, err := campaign(ctx, u)
	if err != nil {
		return domain.Campaign{}, err
	}
	if !c.Started(u.now) {
		return domain.Campaign{}, domain.WithMetadata(domain.CodeCampaignNotStarted, "campaign has not started", map[string]string{
			"now":   u.now.Format(timeLayout),
			"start": c.StartTime.Format(timeLayout),
		})
	}
	return c, nil
}

// eligible rejects blacklisted recipients and, when the campaign names an
// allow-list, recipients the oracle does not admit.
func (e *Engine) eligible(ctx context.Context, u *unit, c domain.Campaign, recipient common.Address) error {
	blacklisted, err := u.IsBlacklisted(ctx, recipient)
	if err != nil {
		return err
	}
	if blacklisted {
		return domain.WithMetadata(domain.CodeBlacklisted, "recipient is blacklisted", map[string]string{
			"recipient": recipient.Hex(),
		})
	}
	if !c.HasAllowList() {
		return nil
	}
	if e.allowList == nil {
		return domain.WithMetadata(domain.CodeAllowListFailure, "campaign names an allow-list but no oracle is configured", map[string]string{
			"list": c.AllowList.Hex(),
		})
	}
	ok, err := e.allowList.IsAllowed(ctx, c.AllowList, recipient)
	if err != nil {
		return domain.Wrap(domain.CodeAllowListFailure, "allow-list check failed", err)
	}
	if !ok {
		return domain.WithMetadata(domain.CodeNotAllowListed, "recipient is not on the allow-list", map[string]string{
			"recipient": recipient.Hex(),
			"list":      c.AllowList.Hex(),
		})
	}
	return nil
}

type evaluation struct {
	recipient  common.Address
	allocation uint256.Int
	claims     []domain.Claim
	result     schedule.Result
}

func (e *Engine) evaluate(ctx context.Context, u *unit, c domain.Campaign, recipient common.Address) (evaluation, error) {
	allocation, err := u.Allocation(ctx, recipient)
	if err != nil {
		return evaluation{}, err
	}
	if allocation.IsZero() {
		return evaluation{}, domain.WithMetadata(domain.CodeNoAllocation, "recipient has no allocation", map[string]string{
			"recipient": recipient.Hex(),
		})
	}
	claims, err := u.Claims(ctx, recipient, len(c.Distributions))
	if err != nil {
		return evaluation{}, err
	}
	res, err := schedule.Evaluate(schedule.Input{
		Distributions: c.Distributions,
		Allocation:    allocation,
		Claims:        claims,
		At:            c.EffectiveTime(u.now),
	})
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{recipient: recipient, allocation: allocation, claims: claims, result: res}, nil
}

// settle draws amount from the evaluated slots, records the touched claims
// and adds amount to the campaign total. c is saved by the caller.
func (e *Engine) settle(ctx context.Context, u *unit, c *domain.Campaign, ev evaluation, amount uint256.Int) (port.Settlement, error) {
	perSlot := schedule.Allocate(c.Distributions, ev.result.PerSlot, amount)
	for i, take := range perSlot {
		if take.IsZero() {
			continue
		}
		claimed, err := domain.AddAmounts(ev.claims[i].Claimed, take)
		if err != nil {
			return port.Settlement{}, err
		}
		ev.claims[i] = domain.Claim{Claimed: claimed, LastClaimedAt: u.now}
		if err := u.SaveClaim(ctx, ev.recipient, i, ev.claims[i]); err != nil {
			return port.Settlement{}, err
		}
	}

	total, err := domain.TotalClaimed(ev.claims)
	if err != nil {
		return port.Settlement{}, err
	}
	if total.Gt(&ev.allocation) {
		return port.Settlement{}, domain.WithMetadata(domain.CodeClaimExceedsAllocation, "claims would exceed allocation", map[string]string{
			"recipient": ev.recipient.Hex(),
			"actual":    total.Dec(),
			"expected":  ev.allocation.Dec(),
		})
	}
	if c.TotalClaimed, err = domain.AddAmounts(c.TotalClaimed, amount); err != nil {
		return port.Settlement{}, err
	}
	return port.Settlement{Recipient: ev.recipient, Amount: amount, PerSlot: perSlot}, nil
}

func insufficientBalance(recipient common.Address, balance, amount uint256.Int) error {
	return domain.WithMetadata(domain.CodeInsufficientBalance, "engine balance does not cover the claim", map[string]string{
		"recipient": recipient.Hex(),
		"actual":    balance.Dec(),
		"expected":  amount.Dec(),
	})
}

func settledAttrs(s port.Settlement) map[string]string {
	return map[string]string{
		"recipient": s.Recipient.Hex(),
		"amount":    s.Amount.Dec(),
	}
}
