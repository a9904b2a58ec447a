package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"mesa-vesting/internal/core/port"
)

// AllowList is an in-process allow-list oracle keyed by list reference.
type AllowList struct {
	mu    sync.RWMutex
	lists map[common.Address]map[common.Address]struct{}
}

var _ port.AllowList = (*AllowList)(nil)

// NewAllowList returns an oracle with no lists.
func NewAllowList() *AllowList {
	return &AllowList{lists: make(map[common.Address]map[common.Address]struct{})}
}

// Allow adds identities to list.
func (a *AllowList) Allow(list common.Address, identities ...common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.lists[list]
	if !ok {
		set = make(map[common.Address]struct{})
		a.lists[list] = set
	}
	for _, id := range identities {
		set[id] = struct{}{}
	}
}

// IsAllowed implements port.AllowList.
func (a *AllowList) IsAllowed(_ context.Context, list, identity common.Address) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.lists[list][identity]
	return ok, nil
}
