package domain

import "github.com/ethereum/go-ethereum/common"

// InvestorIndex is the enumerable set of recipients with an allocation: an
// ordered arena plus a reverse position map. Removal swaps the last entry
// into the freed position, so iteration order does not survive a removal.
type InvestorIndex struct {
	items     []common.Address
	positions map[common.Address]int
}

// NewInvestorIndex returns an empty index.
func NewInvestorIndex() *InvestorIndex {
	return &InvestorIndex{positions: make(map[common.Address]int)}
}

// Len returns the number of indexed recipients.
func (x *InvestorIndex) Len() int {
	return len(x.items)
}

// Contains reports whether addr is indexed.
func (x *InvestorIndex) Contains(addr common.Address) bool {
	_, ok := x.positions[addr]
	return ok
}

// Position returns the slot of addr.
func (x *InvestorIndex) Position(addr common.Address) (int, bool) {
	pos, ok := x.positions[addr]
	return pos, ok
}

// Append adds addr at the end. It is a no-op when addr is already indexed.
func (x *InvestorIndex) Append(addr common.Address) bool {
	if x.Contains(addr) {
		return false
	}
	x.positions[addr] = len(x.items)
	x.items = append(x.items, addr)
	return true
}

// Remove drops addr in O(1) by moving the last entry into its position.
func (x *InvestorIndex) Remove(addr common.Address) bool {
	pos, ok := x.positions[addr]
	if !ok {
		return false
	}
	last := len(x.items) - 1
	if pos != last {
		moved := x.items[last]
		x.items[pos] = moved
		x.positions[moved] = pos
	}
	x.items[last] = common.Address{}
	x.items = x.items[:last]
	delete(x.positions, addr)
	return true
}

// Replace repoints the entry of old to repl without reordering.
func (x *InvestorIndex) Replace(old, repl common.Address) bool {
	pos, ok := x.positions[old]
	if !ok || x.Contains(repl) {
		return false
	}
	x.items[pos] = repl
	delete(x.positions, old)
	x.positions[repl] = pos
	return true
}

// Page returns up to limit entries starting at offset.
func (x *InvestorIndex) Page(offset, limit int) []common.Address {
	if offset < 0 || offset >= len(x.items) || limit <= 0 {
		return []common.Address{}
	}
	end := offset + limit
	if end > len(x.items) {
		end = len(x.items)
	}
	return append([]common.Address(nil), x.items[offset:end]...)
}

// Clone returns an independent copy.
func (x *InvestorIndex) Clone() *InvestorIndex {
	out := &InvestorIndex{
		items:     append([]common.Address(nil), x.items...),
		positions: make(map[common.Address]int, len(x.positions)),
	}
	for k, v := range x.positions {
		out.positions[k] = v
	}
	return out
}
