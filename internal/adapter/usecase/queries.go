package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

const (
	defaultInvestorPage = 100
	maxInvestorPage     = 1000
)

// Campaign implements port.Engine.
func (e *Engine) Campaign(ctx context.Context) (domain.Campaign, error) {
	var c domain.Campaign
	err := e.view(ctx, "Campaign", func(ctx context.Context, u *unit) error {
		var err error
		c, err = campaign(ctx, u)
		return err
	})
	return c, err
}

// Status implements port.Engine.
func (e *Engine) Status(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings
	err := e.view(ctx, "Status", func(ctx context.Context, u *unit) error {
		var err error
		s, err = u.Settings(ctx)
		return err
	})
	return s, err
}

// Position reports what recipient holds, has claimed and could claim now.
// It does not apply the blacklist or allow-list; Blacklisted is reported
// for the caller to interpret.
func (e *Engine) Position(ctx context.Context, recipient common.Address) (domain.Position, error) {
	var pos domain.Position
	err := e.view(ctx, "Position", func(ctx context.Context, u *unit) error {
		c, err := campaign(ctx, u)
		if err != nil {
			return err
		}
		allocation, err := u.Allocation(ctx, recipient)
		if err != nil {
			return err
		}
		claims, err := u.Claims(ctx, recipient, len(c.Distributions))
		if err != nil {
			return err
		}
		blacklisted, err := u.IsBlacklisted(ctx, recipient)
		if err != nil {
			return err
		}

		pos = domain.Position{
			Recipient:     recipient,
			Allocation:    allocation,
			Claims:        claims,
			Claimable:     make([]uint256.Int, len(c.Distributions)),
			Blacklisted:   blacklisted,
			EffectiveTime: c.EffectiveTime(u.now),
		}
		if allocation.IsZero() || !c.Started(u.now) {
			return nil
		}
		ev, err := e.evaluate(ctx, u, c, recipient)
		if err != nil {
			return err
		}
		pos.Claimable = ev.result.PerSlot
		pos.TotalClaimable = ev.result.Total
		return nil
	})
	return pos, err
}

// Investors implements port.Engine. A non-positive limit selects the default
// page size.
func (e *Engine) Investors(ctx context.Context, offset, limit int) (port.InvestorPage, error) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = defaultInvestorPage
	case limit > maxInvestorPage:
		limit = maxInvestorPage
	}
	var page port.InvestorPage
	err := e.view(ctx, "Investors", func(ctx context.Context, u *unit) error {
		items, total, err := u.Investors(ctx, offset, limit)
		if err != nil {
			return err
		}
		page = port.InvestorPage{Investors: items, Total: total}
		return nil
	})
	return page, err
}

// IsBlacklisted implements port.Engine.
func (e *Engine) IsBlacklisted(ctx context.Context, identity common.Address) (bool, error) {
	var out bool
	err := e.view(ctx, "IsBlacklisted", func(ctx context.Context, u *unit) error {
		var err error
		out, err = u.IsBlacklisted(ctx, identity)
		return err
	})
	return out, err
}

// AuthorizedWallets implements port.Engine.
func (e *Engine) AuthorizedWallets(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	err := e.view(ctx, "AuthorizedWallets", func(ctx context.Context, u *unit) error {
		var err error
		out, err = u.AuthorizedWallets(ctx)
		return err
	})
	return out, err
}
