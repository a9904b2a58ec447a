package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

// repoTx implements port.Tx on top of a pgx transaction. Amounts are
// written as NUMERIC(78,0) and read back as decimal text; addresses are
// stored as 20-byte BYTEA.
type repoTx struct {
	tx pgx.Tx
}

var _ port.Tx = (*repoTx)(nil)

func (r *repoTx) Settings(ctx context.Context) (domain.Settings, error) {
	var (
		s              domain.Settings
		owner, pending []byte
	)
	err := r.tx.QueryRow(ctx, `SELECT owner, pending_owner, paused FROM engine_settings WHERE id = 1`).
		Scan(&owner, &pending, &s.Paused)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("select settings: %w", err)
	}
	s.Owner = toAddress(owner)
	s.PendingOwner = toAddress(pending)
	return s, nil
}

func (r *repoTx) SaveSettings(ctx context.Context, s domain.Settings) error {
	_, err := r.tx.Exec(ctx, `UPDATE engine_settings SET owner = $1, pending_owner = $2, paused = $3, updated_at = now() WHERE id = 1`,
		nullableAddress(s.Owner), nullableAddress(s.PendingOwner), s.Paused)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func (r *repoTx) Campaign(ctx context.Context) (domain.Campaign, error) {
	var (
		c                               domain.Campaign
		asset, allowList                []byte
		totalReward, allocated, claimed string
		closedAt                        *time.Time
	)
	err := r.tx.QueryRow(ctx, `
        SELECT name, description, category, asset,
               total_reward::text, total_allocated::text, total_claimed::text,
               start_time, end_time, closed_at, allow_list, created_at
        FROM campaign WHERE id = 1`).
		Scan(&c.Name, &c.Description, &c.Category, &asset,
			&totalReward, &allocated, &claimed,
			&c.StartTime, &c.EndTime, &closedAt, &allowList, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Campaign{}, nil
	}
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("select campaign: %w", err)
	}

	c.Exists = true
	c.Asset = toAddress(asset)
	c.AllowList = toAddress(allowList)
	c.StartTime = c.StartTime.UTC()
	c.EndTime = c.EndTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	if closedAt != nil {
		c.ClosedAt = closedAt.UTC()
	}
	if c.TotalReward, err = toAmount(totalReward); err != nil {
		return domain.Campaign{}, err
	}
	if c.TotalAllocated, err = toAmount(allocated); err != nil {
		return domain.Campaign{}, err
	}
	if c.TotalClaimed, err = toAmount(claimed); err != nil {
		return domain.Campaign{}, err
	}

	rows, err := r.tx.Query(ctx, `SELECT kind, basis_points, start_time, end_time, cliff_seconds FROM distributions ORDER BY slot`)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("select distributions: %w", err)
	}
	c.Distributions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Distribution, error) {
		var (
			d       domain.Distribution
			kind    string
			bps     int32
			endTime *time.Time
			cliff   int64
		)
		if err := row.Scan(&kind, &bps, &d.StartTime, &endTime, &cliff); err != nil {
			return d, err
		}
		k, err := domain.ParseDistributionKind(kind)
		if err != nil {
			return d, err
		}
		d.Kind = k
		d.BasisPoints = uint16(bps)
		d.StartTime = d.StartTime.UTC()
		if endTime != nil {
			d.EndTime = endTime.UTC()
		}
		d.Cliff = time.Duration(cliff) * time.Second
		return d, nil
	})
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("scan distributions: %w", err)
	}
	return c, nil
}

// SaveCampaign upserts the campaign row. Distribution slots are written
// once; later saves leave them untouched.
func (r *repoTx) SaveCampaign(ctx context.Context, c domain.Campaign) error {
	var closedAt *time.Time
	if c.Closed() {
		closedAt = &c.ClosedAt
	}
	_, err := r.tx.Exec(ctx, `
        INSERT INTO campaign
            (id, name, description, category, asset, total_reward, total_allocated, total_claimed,
             start_time, end_time, closed_at, allow_list, created_at)
        VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO UPDATE SET
            total_allocated = EXCLUDED.total_allocated,
            total_claimed   = EXCLUDED.total_claimed,
            closed_at       = EXCLUDED.closed_at`,
		c.Name, c.Description, c.Category, c.Asset.Bytes(),
		numeric(c.TotalReward), numeric(c.TotalAllocated), numeric(c.TotalClaimed),
		c.StartTime, c.EndTime, closedAt, nullableAddress(c.AllowList), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}

	batch := &pgx.Batch{}
	for slot, d := range c.Distributions {
		var endTime *time.Time
		if d.Kind == domain.LinearVesting {
			endTime = &d.EndTime
		}
		batch.Queue(`
            INSERT INTO distributions (slot, kind, basis_points, start_time, end_time, cliff_seconds)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (slot) DO NOTHING`,
			slot, d.Kind.String(), int32(d.BasisPoints), d.StartTime, endTime, int64(d.Cliff/time.Second))
	}
	if err := r.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert distributions: %w", err)
	}
	return nil
}

func (r *repoTx) Allocation(ctx context.Context, recipient common.Address) (uint256.Int, error) {
	var amount string
	err := r.tx.QueryRow(ctx, `SELECT amount::text FROM allocations WHERE recipient = $1`, recipient.Bytes()).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return uint256.Int{}, nil
	}
	if err != nil {
		return uint256.Int{}, fmt.Errorf("select allocation: %w", err)
	}
	return toAmount(amount)
}

func (r *repoTx) SetAllocation(ctx context.Context, recipient common.Address, amount uint256.Int) error {
	var err error
	if amount.IsZero() {
		_, err = r.tx.Exec(ctx, `DELETE FROM allocations WHERE recipient = $1`, recipient.Bytes())
	} else {
		_, err = r.tx.Exec(ctx, `
            INSERT INTO allocations (recipient, amount) VALUES ($1, $2)
            ON CONFLICT (recipient) DO UPDATE SET amount = EXCLUDED.amount`,
			recipient.Bytes(), numeric(amount))
	}
	if err != nil {
		return fmt.Errorf("set allocation: %w", err)
	}
	return nil
}

func (r *repoTx) Claims(ctx context.Context, recipient common.Address, slots int) ([]domain.Claim, error) {
	rows, err := r.tx.Query(ctx, `
        SELECT slot, claimed::text, last_claimed_at
        FROM claims WHERE recipient = $1 ORDER BY slot`, recipient.Bytes())
	if err != nil {
		return nil, fmt.Errorf("select claims: %w", err)
	}
	type rawClaim struct {
		slot    int16
		claimed string
		at      *time.Time
	}
	raw, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rawClaim, error) {
		var rc rawClaim
		err := row.Scan(&rc.slot, &rc.claimed, &rc.at)
		return rc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan claims: %w", err)
	}

	out := make([]domain.Claim, slots)
	for _, rc := range raw {
		slot := int(rc.slot)
		out = domain.SlotClaims(out, slot+1)
		if out[slot].Claimed, err = toAmount(rc.claimed); err != nil {
			return nil, err
		}
		if rc.at != nil {
			out[slot].LastClaimedAt = rc.at.UTC()
		}
	}
	return out, nil
}

func (r *repoTx) SaveClaim(ctx context.Context, recipient common.Address, slot int, claim domain.Claim) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO claims (recipient, slot, claimed, last_claimed_at) VALUES ($1, $2, $3, $4)
        ON CONFLICT (recipient, slot) DO UPDATE
        SET claimed = EXCLUDED.claimed, last_claimed_at = EXCLUDED.last_claimed_at`,
		recipient.Bytes(), int16(slot), numeric(claim.Claimed), claim.LastClaimedAt)
	if err != nil {
		return fmt.Errorf("upsert claim: %w", err)
	}
	return nil
}

func (r *repoTx) MoveClaims(ctx context.Context, from, to common.Address) error {
	if _, err := r.tx.Exec(ctx, `UPDATE claims SET recipient = $2 WHERE recipient = $1`, from.Bytes(), to.Bytes()); err != nil {
		return fmt.Errorf("move claims: %w", err)
	}
	return nil
}

func (r *repoTx) IsBlacklisted(ctx context.Context, identity common.Address) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM blacklist WHERE identity = $1)`, identity)
}

func (r *repoTx) SetBlacklisted(ctx context.Context, identity common.Address, blacklisted bool) error {
	return r.toggle(ctx, blacklisted,
		`INSERT INTO blacklist (identity) VALUES ($1) ON CONFLICT DO NOTHING`,
		`DELETE FROM blacklist WHERE identity = $1`,
		identity)
}

func (r *repoTx) IsAuthorized(ctx context.Context, wallet common.Address) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM authorized_wallets WHERE wallet = $1)`, wallet)
}

func (r *repoTx) SetAuthorized(ctx context.Context, wallet common.Address, authorized bool) error {
	return r.toggle(ctx, authorized,
		`INSERT INTO authorized_wallets (wallet) VALUES ($1) ON CONFLICT DO NOTHING`,
		`DELETE FROM authorized_wallets WHERE wallet = $1`,
		wallet)
}

func (r *repoTx) AuthorizedWallets(ctx context.Context) ([]common.Address, error) {
	rows, err := r.tx.Query(ctx, `SELECT wallet FROM authorized_wallets ORDER BY wallet`)
	if err != nil {
		return nil, fmt.Errorf("select authorized wallets: %w", err)
	}
	return collectAddresses(rows)
}

// AppendInvestor places recipient at the next free position. Positions are
// kept dense, so the row count is the next position.
func (r *repoTx) AppendInvestor(ctx context.Context, recipient common.Address) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO investor_index (position, recipient)
        SELECT count(*), $1 FROM investor_index
        ON CONFLICT (recipient) DO NOTHING`, recipient.Bytes())
	if err != nil {
		return fmt.Errorf("append investor: %w", err)
	}
	return nil
}

// RemoveInvestor deletes recipient and moves the last row into the freed
// position.
func (r *repoTx) RemoveInvestor(ctx context.Context, recipient common.Address) error {
	var pos int32
	err := r.tx.QueryRow(ctx, `DELETE FROM investor_index WHERE recipient = $1 RETURNING position`, recipient.Bytes()).Scan(&pos)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove investor: %w", err)
	}
	_, err = r.tx.Exec(ctx, `
        UPDATE investor_index SET position = $1
        WHERE position = (SELECT max(position) FROM investor_index) AND position > $1`, pos)
	if err != nil {
		return fmt.Errorf("compact investor index: %w", err)
	}
	return nil
}

func (r *repoTx) ReplaceInvestor(ctx context.Context, old, repl common.Address) error {
	if _, err := r.tx.Exec(ctx, `UPDATE investor_index SET recipient = $2 WHERE recipient = $1`, old.Bytes(), repl.Bytes()); err != nil {
		return fmt.Errorf("replace investor: %w", err)
	}
	return nil
}

func (r *repoTx) Investors(ctx context.Context, offset, limit int) ([]common.Address, int, error) {
	var total int
	if err := r.tx.QueryRow(ctx, `SELECT count(*) FROM investor_index`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count investors: %w", err)
	}
	rows, err := r.tx.Query(ctx, `SELECT recipient FROM investor_index ORDER BY position OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("select investors: %w", err)
	}
	items, err := collectAddresses(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoTx) AppendEvent(ctx context.Context, event domain.Event) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO events (id, kind, initiator, attributes, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		event.ID, string(event.Kind), event.Initiator.Bytes(), event.Attributes, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *repoTx) exists(ctx context.Context, query string, addr common.Address) (bool, error) {
	var ok bool
	if err := r.tx.QueryRow(ctx, query, addr.Bytes()).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}

func (r *repoTx) toggle(ctx context.Context, on bool, insert, remove string, addr common.Address) error {
	query := remove
	if on {
		query = insert
	}
	if _, err := r.tx.Exec(ctx, query, addr.Bytes()); err != nil {
		return fmt.Errorf("toggle: %w", err)
	}
	return nil
}

func collectAddresses(rows pgx.Rows) ([]common.Address, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (common.Address, error) {
		var b []byte
		err := row.Scan(&b)
		return toAddress(b), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan addresses: %w", err)
	}
	return out, nil
}

func toAddress(b []byte) common.Address {
	if len(b) == 0 {
		return common.Address{}
	}
	return common.BytesToAddress(b)
}

// nullableAddress maps the zero address to SQL NULL.
func nullableAddress(a common.Address) []byte {
	if a == (common.Address{}) {
		return nil
	}
	return a.Bytes()
}

func numeric(a uint256.Int) pgtype.Numeric {
	return pgtype.Numeric{Int: a.ToBig(), Valid: true}
}

func toAmount(s string) (uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("decode amount %q: %w", s, err)
	}
	return *v, nil
}
