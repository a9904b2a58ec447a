package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

type state struct {
	settings    domain.Settings
	campaign    domain.Campaign
	allocations map[common.Address]uint256.Int
	claims      map[common.Address][]domain.Claim
	blacklist   map[common.Address]struct{}
	authorized  map[common.Address]struct{}
	investors   *domain.InvestorIndex
	events      []domain.Event
}

func newState() *state {
	return &state{
		allocations: make(map[common.Address]uint256.Int),
		claims:      make(map[common.Address][]domain.Claim),
		blacklist:   make(map[common.Address]struct{}),
		authorized:  make(map[common.Address]struct{}),
		investors:   domain.NewInvestorIndex(),
	}
}

func (s *state) clone() *state {
	claims := make(map[common.Address][]domain.Claim, len(s.claims))
	for k, v := range s.claims {
		claims[k] = append([]domain.Claim(nil), v...)
	}
	return &state{
		settings:    s.settings,
		campaign:    s.campaign.Clone(),
		allocations: maps.Clone(s.allocations),
		claims:      claims,
		blacklist:   maps.Clone(s.blacklist),
		authorized:  maps.Clone(s.authorized),
		investors:   s.investors.Clone(),
		events:      s.events[:len(s.events):len(s.events)],
	}
}

// Store implements port.Store in process memory. Each unit of work runs on
// a private copy of the state which replaces the live state only when fn
// succeeds, so a failed operation leaves nothing behind.
type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ port.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// Atomic implements port.Store.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// Events returns every committed event in order.
func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Event(nil), s.state.events...)
}

type tx struct {
	st *state
}

func (t *tx) Settings(context.Context) (domain.Settings, error) {
	return t.st.settings, nil
}

func (t *tx) SaveSettings(_ context.Context, s domain.Settings) error {
	t.st.settings = s
	return nil
}

func (t *tx) Campaign(context.Context) (domain.Campaign, error) {
	return t.st.campaign.Clone(), nil
}

func (t *tx) SaveCampaign(_ context.Context, c domain.Campaign) error {
	t.st.campaign = c.Clone()
	return nil
}

func (t *tx) Allocation(_ context.Context, recipient common.Address) (uint256.Int, error) {
	return t.st.allocations[recipient], nil
}

func (t *tx) SetAllocation(_ context.Context, recipient common.Address, amount uint256.Int) error {
	if amount.IsZero() {
		delete(t.st.allocations, recipient)
		return nil
	}
	t.st.allocations[recipient] = amount
	return nil
}

func (t *tx) Claims(_ context.Context, recipient common.Address, slots int) ([]domain.Claim, error) {
	out := append([]domain.Claim(nil), t.st.claims[recipient]...)
	return domain.SlotClaims(out, slots), nil
}

func (t *tx) SaveClaim(_ context.Context, recipient common.Address, slot int, claim domain.Claim) error {
	claims := domain.SlotClaims(t.st.claims[recipient], slot+1)
	claims[slot] = claim
	t.st.claims[recipient] = claims
	return nil
}

func (t *tx) MoveClaims(_ context.Context, from, to common.Address) error {
	claims, ok := t.st.claims[from]
	if !ok {
		return nil
	}
	delete(t.st.claims, from)
	t.st.claims[to] = claims
	return nil
}

func (t *tx) IsBlacklisted(_ context.Context, identity common.Address) (bool, error) {
	_, ok := t.st.blacklist[identity]
	return ok, nil
}

func (t *tx) SetBlacklisted(_ context.Context, identity common.Address, blacklisted bool) error {
	if blacklisted {
		t.st.blacklist[identity] = struct{}{}
	} else {
		delete(t.st.blacklist, identity)
	}
	return nil
}

func (t *tx) IsAuthorized(_ context.Context, wallet common.Address) (bool, error) {
	_, ok := t.st.authorized[wallet]
	return ok, nil
}

func (t *tx) SetAuthorized(_ context.Context, wallet common.Address, authorized bool) error {
	if authorized {
		t.st.authorized[wallet] = struct{}{}
	} else {
		delete(t.st.authorized, wallet)
	}
	return nil
}

func (t *tx) AuthorizedWallets(context.Context) ([]common.Address, error) {
	out := make([]common.Address, 0, len(t.st.authorized))
	for w := range t.st.authorized {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out, nil
}

func (t *tx) AppendInvestor(_ context.Context, recipient common.Address) error {
	t.st.investors.Append(recipient)
	return nil
}

func (t *tx) RemoveInvestor(_ context.Context, recipient common.Address) error {
	t.st.investors.Remove(recipient)
	return nil
}

func (t *tx) ReplaceInvestor(_ context.Context, old, repl common.Address) error {
	t.st.investors.Replace(old, repl)
	return nil
}

func (t *tx) Investors(_ context.Context, offset, limit int) ([]common.Address, int, error) {
	return t.st.investors.Page(offset, limit), t.st.investors.Len(), nil
}

func (t *tx) AppendEvent(_ context.Context, event domain.Event) error {
	t.st.events = append(t.st.events, event)
	return nil
}
