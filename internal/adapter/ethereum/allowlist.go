package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"mesa-vesting/internal/core/port"
)

// AllowList implements port.AllowList by calling isAllowed(address) on the
// list contract.
type AllowList struct {
	client *Client
}

var _ port.AllowList = (*AllowList)(nil)

func NewAllowList(c *Client) *AllowList {
	return &AllowList{client: c}
}

// IsAllowed implements port.AllowList.
func (a *AllowList) IsAllowed(ctx context.Context, list, identity common.Address) (bool, error) {
	var out []interface{}
	err := a.client.contract(list, a.client.allowList).Call(&bind.CallOpts{Context: ctx}, &out, "isAllowed", identity)
	if err != nil {
		return false, fmt.Errorf("isAllowed %s on %s: %w", identity.Hex(), list.Hex(), err)
	}
	ok, isBool := out[0].(bool)
	if !isBool {
		return false, fmt.Errorf("isAllowed on %s: unexpected result %T", list.Hex(), out[0])
	}
	return ok, nil
}
