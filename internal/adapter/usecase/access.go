package usecase

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"mesa-vesting/internal/core/domain"
)

// SetBlacklist implements port.Engine.
func (e *Engine) SetBlacklist(ctx context.Context, caller, identity common.Address, blacklisted bool) error {
	return e.mutate(ctx, "SetBlacklist", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpSetBlacklist, caller, identity)
		if err != nil {
			return err
		}
		if err := requireAddress("identity", identity); err != nil {
			return err
		}
		if blacklisted && identity == settings.Owner {
			return domain.WithMetadata(domain.CodeOwnerNotBlockable, "owner cannot be blacklisted", map[string]string{
				"identity": identity.Hex(),
			})
		}
		if err := u.SetBlacklisted(ctx, identity, blacklisted); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventBlacklistUpdated, caller, map[string]string{
			"identity":    identity.Hex(),
			"blacklisted": strconv.FormatBool(blacklisted),
		})
	})
}

// SetAuthorized implements port.Engine.
func (e *Engine) SetAuthorized(ctx context.Context, caller, wallet common.Address, authorized bool) error {
	return e.mutate(ctx, "SetAuthorized", func(ctx context.Context, u *unit) error {
		if _, err := e.authorize(ctx, u, domain.OpSetAuthorized, caller, wallet); err != nil {
			return err
		}
		if err := requireAddress("wallet", wallet); err != nil {
			return err
		}
		if err := u.SetAuthorized(ctx, wallet, authorized); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventAuthorizationUpdated, caller, map[string]string{
			"wallet":     wallet.Hex(),
			"authorized": strconv.FormatBool(authorized),
		})
	})
}

// Pause implements port.Engine.
func (e *Engine) Pause(ctx context.Context, caller common.Address) error {
	return e.mutate(ctx, "Pause", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpPause, caller, common.Address{})
		if err != nil {
			return err
		}
		if settings.Paused {
			return domain.ErrPaused
		}
		settings.Paused = true
		if err := u.SaveSettings(ctx, settings); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventPaused, caller, nil)
	})
}

// Unpause implements port.Engine.
func (e *Engine) Unpause(ctx context.Context, caller common.Address) error {
	return e.mutate(ctx, "Unpause", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpUnpause, caller, common.Address{})
		if err != nil {
			return err
		}
		if !settings.Paused {
			return domain.ErrNotPaused
		}
		settings.Paused = false
		if err := u.SaveSettings(ctx, settings); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventUnpaused, caller, nil)
	})
}

// TransferOwnership starts the two-step handover; newOwner takes over only
// after calling AcceptOwnership.
func (e *Engine) TransferOwnership(ctx context.Context, caller, newOwner common.Address) error {
	return e.mutate(ctx, "TransferOwnership", func(ctx context.Context, u *unit) error {
		settings, err := e.authorize(ctx, u, domain.OpTransferOwnership, caller, newOwner)
		if err != nil {
			return err
		}
		if err := requireAddress("new_owner", newOwner); err != nil {
			return err
		}
		if newOwner == settings.Owner {
			return domain.WithMetadata(domain.CodeSameIdentity, "new owner is the current owner", map[string]string{
				"owner": newOwner.Hex(),
			})
		}
		settings.PendingOwner = newOwner
		if err := u.SaveSettings(ctx, settings); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventOwnershipTransferStarted, caller, map[string]string{
			"owner":         settings.Owner.Hex(),
			"pending_owner": newOwner.Hex(),
		})
	})
}

// AcceptOwnership completes the handover. The new owner is removed from the
// blacklist since the owner can never be blacklisted.
func (e *Engine) AcceptOwnership(ctx context.Context, caller common.Address) error {
	return e.mutate(ctx, "AcceptOwnership", func(ctx context.Context, u *unit) error {
		current, err := u.Settings(ctx)
		if err != nil {
			return err
		}
		if !current.HasPendingOwner() {
			return domain.ErrNoPendingOwner
		}
		settings, err := e.authorize(ctx, u, domain.OpAcceptOwnership, caller, common.Address{})
		if err != nil {
			return err
		}

		previous := settings.Owner
		settings.Owner = settings.PendingOwner
		settings.PendingOwner = common.Address{}
		if err := u.SaveSettings(ctx, settings); err != nil {
			return err
		}
		if err := u.SetBlacklisted(ctx, settings.Owner, false); err != nil {
			return err
		}
		return u.emit(ctx, domain.EventOwnershipTransferred, caller, map[string]string{
			"previous_owner": previous.Hex(),
			"owner":          settings.Owner.Hex(),
		})
	})
}
