package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"mesa-vesting/internal/config/configs"
)

// Backend is what the adapters need from a node connection. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Client signs and submits calls to token and allow-list contracts with the
// engine's key.
type Client struct {
	backend        Backend
	privateKey     *ecdsa.PrivateKey
	chainID        *big.Int
	receiptTimeout time.Duration
	closer         func()

	erc20     abi.ABI
	allowList abi.ABI
}

// erc20ABI is the subset of ERC-20 the ledger uses.
const erc20ABI = `[
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "value", "type": "uint256"}
		],
		"name": "Transfer",
		"type": "event"
	}
]`

const allowListABI = `[
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "isAllowed",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// Dial connects to cfg.RPCURL and builds a client for cfg.PrivateKey. When
// cfg.ChainID is zero the chain id is read from the node.
func Dial(ctx context.Context, cfg configs.Ethereum) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	chainID := new(big.Int).SetUint64(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = ec.ChainID(ctx); err != nil {
			ec.Close()
			return nil, fmt.Errorf("failed to read chain id: %w", err)
		}
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		ec.Close()
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	c, err := NewClient(ec, key, chainID, cfg.ReceiptTimeout)
	if err != nil {
		ec.Close()
		return nil, err
	}
	c.closer = ec.Close
	return c, nil
}

// NewClient builds a client over an existing backend.
func NewClient(backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, receiptTimeout time.Duration) (*Client, error) {
	erc20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}
	allowList, err := abi.JSON(strings.NewReader(allowListABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse allow-list ABI: %w", err)
	}
	if receiptTimeout <= 0 {
		receiptTimeout = 2 * time.Minute
	}
	return &Client{
		backend:        backend,
		privateKey:     key,
		chainID:        chainID,
		receiptTimeout: receiptTimeout,
		erc20:          erc20,
		allowList:      allowList,
	}, nil
}

// Holder is the account derived from the signing key. Funds held by this
// account are what the engine distributes.
func (c *Client) Holder() common.Address {
	return crypto.PubkeyToAddress(c.privateKey.PublicKey)
}

// Close releases the node connection if the client opened it.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

func (c *Client) contract(addr common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(addr, parsed, c.backend, c.backend, c.backend)
}

func (c *Client) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func toUint256(v *big.Int) (uint256.Int, error) {
	if v == nil {
		return uint256.Int{}, nil
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return uint256.Int{}, fmt.Errorf("value %s does not fit 256 bits", v)
	}
	return *out, nil
}
