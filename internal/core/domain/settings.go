package domain

import "github.com/ethereum/go-ethereum/common"

// Settings is the engine-wide access state: the owner, a pending owner for
// the two-step handover, and the pause switch.
type Settings struct {
	Owner        common.Address
	PendingOwner common.Address
	Paused       bool
}

// HasPendingOwner reports whether an ownership handover is in progress.
func (s Settings) HasPendingOwner() bool {
	return s.PendingOwner != (common.Address{})
}
