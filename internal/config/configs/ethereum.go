package configs

import "time"

// Ethereum configures the node connection used by the ERC-20 ledger and the
// allow-list oracle.
type Ethereum struct {
	RPCURL string `env:"RPC_URL" envDefault:"http://localhost:8545"`
	// PrivateKey is the hex encoded key of the holder account.
	PrivateKey string `env:"PRIVATE_KEY"`
	// ChainID of zero means ask the node.
	ChainID        uint64        `env:"CHAIN_ID" envDefault:"0"`
	ReceiptTimeout time.Duration `env:"RECEIPT_TIMEOUT" envDefault:"2m"`
}
