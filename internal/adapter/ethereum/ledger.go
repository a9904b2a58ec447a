package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/core/port"
)

var (
	// ErrTransferReverted is returned when a transfer was mined but failed.
	ErrTransferReverted = errors.New("transfer reverted")
	// ErrTransferRejected is returned when the token signals failure without
	// reverting: transfer returns false, or no Transfer event is emitted.
	ErrTransferRejected = errors.New("transfer rejected by token")
)

// Ledger implements port.AssetLedger over ERC-20 contracts. Every transfer
// is signed by the client's key and waited for until mined.
type Ledger struct {
	client *Client
}

var _ port.AssetLedger = (*Ledger)(nil)

// NewLedger returns a ledger on top of c.
func NewLedger(c *Client) *Ledger {
	return &Ledger{client: c}
}

// BalanceOf implements port.AssetLedger.
func (l *Ledger) BalanceOf(ctx context.Context, asset, holder common.Address) (uint256.Int, error) {
	var out []interface{}
	err := l.client.contract(asset, l.client.erc20).Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", holder)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("balanceOf %s on %s: %w", holder.Hex(), asset.Hex(), err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return uint256.Int{}, fmt.Errorf("balanceOf on %s: unexpected result %T", asset.Hex(), out[0])
	}
	return toUint256(balance)
}

// Transfer implements port.AssetLedger. The call is simulated first so a
// token returning false never gets a transaction sent; the mined receipt
// must then carry the matching Transfer event.
func (l *Ledger) Transfer(ctx context.Context, asset, to common.Address, amount uint256.Int) error {
	if err := l.simulate(ctx, asset, to, amount); err != nil {
		return err
	}

	opts, err := l.client.transactor(ctx)
	if err != nil {
		return fmt.Errorf("transactor: %w", err)
	}
	tx, err := l.client.contract(asset, l.client.erc20).Transact(opts, "transfer", to, amount.ToBig())
	if err != nil {
		return fmt.Errorf("transfer %s of %s to %s: %w", amount.Dec(), asset.Hex(), to.Hex(), err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.client.receiptTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, l.client.backend, tx)
	if err != nil {
		return fmt.Errorf("wait for transfer %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: tx %s", ErrTransferReverted, tx.Hash().Hex())
	}
	if !l.transferLogged(receipt, asset, to) {
		return fmt.Errorf("%w: no Transfer event in tx %s", ErrTransferRejected, tx.Hash().Hex())
	}
	return nil
}

// simulate runs transfer as an eth_call from the holder. Tokens that return
// nothing are accepted; a decoded false is not.
func (l *Ledger) simulate(ctx context.Context, asset, to common.Address, amount uint256.Int) error {
	input, err := l.client.erc20.Pack("transfer", to, amount.ToBig())
	if err != nil {
		return fmt.Errorf("pack transfer: %w", err)
	}
	output, err := l.client.backend.CallContract(ctx, geth.CallMsg{
		From: l.client.Holder(),
		To:   &asset,
		Data: input,
	}, nil)
	if err != nil {
		return fmt.Errorf("simulate transfer %s of %s to %s: %w", amount.Dec(), asset.Hex(), to.Hex(), err)
	}
	if len(output) == 0 {
		return nil
	}
	out, err := l.client.erc20.Unpack("transfer", output)
	if err != nil {
		return fmt.Errorf("decode transfer result on %s: %w", asset.Hex(), err)
	}
	if ok, isBool := out[0].(bool); !isBool || !ok {
		return fmt.Errorf("%w: transfer of %s to %s returned false", ErrTransferRejected, asset.Hex(), to.Hex())
	}
	return nil
}

// transferLogged reports whether receipt holds a Transfer event of asset
// from the holder to to. The value is not compared, fee-taking tokens emit
// less than was sent.
func (l *Ledger) transferLogged(receipt *types.Receipt, asset, to common.Address) bool {
	topic := l.client.erc20.Events["Transfer"].ID
	from := common.BytesToHash(l.client.Holder().Bytes())
	dest := common.BytesToHash(to.Bytes())
	for _, lg := range receipt.Logs {
		if lg.Address != asset || len(lg.Topics) != 3 {
			continue
		}
		if lg.Topics[0] == topic && lg.Topics[1] == from && lg.Topics[2] == dest {
			return true
		}
	}
	return false
}
