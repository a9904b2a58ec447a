package usecase

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

// CreateCampaign implements port.Engine.
func (e *Engine) CreateCampaign(ctx context.Context, caller common.Address, params domain.CampaignParams) (domain.Campaign, error) {
	var created domain.Campaign
	err := e.mutate(ctx, "CreateCampaign", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpCreateCampaign, caller, common.Address{})
		if err != nil {
			return err
		}
		if err := requireNotPaused(settings); err != nil {
			return err
		}

		existing, err := u.Campaign(ctx)
		if err != nil {
			return err
		}
		if existing.Exists {
			return domain.ErrCampaignExists
		}

		params = params.Normalize()
		if err := params.Validate(u.now); err != nil {
			return err
		}

		funded, err := e.ledger.BalanceOf(ctx, params.Asset, e.holder)
		if err != nil {
			return ledgerFailure("balance", err)
		}
		if funded.Lt(&params.TotalReward) {
			return domain.WithMetadata(domain.CodeInsufficientFunding, "engine balance does not cover the total reward", map[string]string{
				"actual":   funded.Dec(),
				"expected": params.TotalReward.Dec(),
			})
		}

		created = domain.NewCampaign(params, u.now)
		if err := u.SaveCampaign(ctx, created); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventCampaignCreated, caller, map[string]string{
			"name":          created.Name,
			"asset":         created.Asset.Hex(),
			"total_reward":  created.TotalReward.Dec(),
			"distributions": strconv.Itoa(len(created.Distributions)),
			"start_time":    created.StartTime.Format(timeLayout),
			"end_time":      created.EndTime.Format(timeLayout),
		})
	})
	if err != nil {
		return domain.Campaign{}, err
	}
	return created, nil
}

// CloseCampaign implements port.Engine. The whole remaining balance of the
// reward asset goes back to the owner, including unclaimed vested amounts;
// recipients can still settle only what the ledger can cover afterwards.
func (e *Engine) CloseCampaign(ctx context.Context, caller common.Address) (port.CloseResult, error) {
	var res port.CloseResult
	err := e.mutate(ctx, "CloseCampaign", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpCloseCampaign, caller, common.Address{})
		if err != nil {
			return err
		}
		c, err := campaign(ctx, u)
		if err != nil {
			return err
		}
		if c.Closed() {
			return domain.ErrCampaignClosed
		}
		if u.now.Before(c.EndTime) {
			return domain.WithMetadata(domain.CodeCampaignNotEnded, "campaign has not ended", map[string]string{
				"now": u.now.Format(timeLayout),
				"end": c.EndTime.Format(timeLayout),
			})
		}

		c.ClosedAt = u.now
		if err := u.SaveCampaign(ctx, c); err != nil {
			return err
		}

		balance, err := e.ledger.BalanceOf(ctx, c.Asset, e.holder)
		if err != nil {
			return ledgerFailure("balance", err)
		}
		if err := u.emit(ctx, domain.EventCampaignClosed, caller, map[string]string{
			"closed_at": c.ClosedAt.Format(timeLayout),
			"returned":  balance.Dec(),
			"owner":     settings.Owner.Hex(),
		}); err != nil {
			return err
		}
		if !balance.IsZero() {
			if err := e.ledger.Transfer(ctx, c.Asset, settings.Owner, balance); err != nil {
				return ledgerFailure("transfer", err)
			}
		}
		res = port.CloseResult{Campaign: c, Returned: balance}
		return nil
	})
	if err != nil {
		return port.CloseResult{}, err
	}
	return res, nil
}

// Sweep implements port.Engine. The reward asset of an open campaign is
// never sweepable; it leaves the engine only through claims or close.
func (e *Engine) Sweep(ctx context.Context, caller, asset common.Address) (uint256.Int, error) {
	var swept uint256.Int
	err := e.mutate(ctx, "Sweep", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpSweep, caller, common.Address{})
		if err != nil {
			return err
		}
		if err := requireAddress("asset", asset); err != nil {
			return err
		}
		c, err := u.Campaign(ctx)
		if err != nil {
			return err
		}
		if c.Open() && c.Asset == asset {
			return domain.WithMetadata(domain.CodeRewardAssetNotSweepable, "reward asset of the open campaign cannot be swept", map[string]string{
				"asset": asset.Hex(),
			})
		}

		balance, err := e.ledger.BalanceOf(ctx, asset, e.holder)
		if err != nil {
			return ledgerFailure("balance", err)
		}
		if balance.IsZero() {
			return domain.WithMetadata(domain.CodeNothingToSweep, "nothing to sweep", map[string]string{"asset": asset.Hex()})
		}
		if err := u.emit(ctx, domain.EventAssetSwept, caller, map[string]string{
			"asset":  asset.Hex(),
			"amount": balance.Dec(),
			"to":     settings.Owner.Hex(),
		}); err != nil {
			return err
		}
		if err := e.ledger.Transfer(ctx, asset, settings.Owner, balance); err != nil {
			return ledgerFailure("transfer", err)
		}
		swept = balance
		return nil
	})
	return swept, err
}
