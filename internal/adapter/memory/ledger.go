package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/domain"
	"mesa-vesting/internal/core/port"
)

// Ledger is an in-process asset ledger. Transfers always debit the holder
// account the ledger was created for, mirroring a token contract called by
// the engine's own key.
type Ledger struct {
	mu       sync.Mutex
	holder   common.Address
	balances map[common.Address]map[common.Address]uint256.Int
}

var _ port.AssetLedger = (*Ledger)(nil)

// NewLedger returns an empty ledger debiting holder on Transfer.
func NewLedger(holder common.Address) *Ledger {
	return &Ledger{
		holder:   holder,
		balances: make(map[common.Address]map[common.Address]uint256.Int),
	}
}

// Holder returns the account debited by Transfer.
func (l *Ledger) Holder() common.Address {
	return l.holder
}

// Mint credits amount of asset to account.
func (l *Ledger) Mint(asset, account common.Address, amount uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.book(asset)
	sum, err := domain.AddAmounts(book[account], amount)
	if err != nil {
		return err
	}
	book[account] = sum
	return nil
}

// BalanceOf implements port.AssetLedger.
func (l *Ledger) BalanceOf(_ context.Context, asset, holder common.Address) (uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.book(asset)[holder], nil
}

// Transfer implements port.AssetLedger.
func (l *Ledger) Transfer(_ context.Context, asset, to common.Address, amount uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	book := l.book(asset)
	from := book[l.holder]
	if from.Lt(&amount) {
		return fmt.Errorf("transfer %s of %s: balance %s too low", amount.Dec(), asset.Hex(), from.Dec())
	}
	credited, err := domain.AddAmounts(book[to], amount)
	if err != nil {
		return err
	}
	book[l.holder] = domain.SaturatingSub(from, amount)
	book[to] = credited
	return nil
}

func (l *Ledger) book(asset common.Address) map[common.Address]uint256.Int {
	book, ok := l.balances[asset]
	if !ok {
		book = make(map[common.Address]uint256.Int)
		l.balances[asset] = book
	}
	return book
}
