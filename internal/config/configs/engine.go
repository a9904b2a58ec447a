package configs

import (
	"github.com/ethereum/go-ethereum/common"
)

// Backend names accepted by Engine.Store and Engine.Ledger.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendEthereum = "ethereum"
)

// Engine configures the distribution engine itself.
type Engine struct {
	// Owner is installed as the engine owner on first start. A persisted
	// owner always wins.
	Owner common.Address `env:"OWNER"`
	// Holder is the account whose balance funds claims. Ignored for the
	// ethereum ledger, where the signing key decides it.
	Holder common.Address `env:"HOLDER" envDefault:"0x000000000000000000000000000000000000dEaD"`

	Store  string `env:"STORE" envDefault:"memory"`
	Ledger string `env:"LEDGER" envDefault:"memory"`

	// DevFunding mints this decimal amount of DevAsset to the holder when
	// the memory ledger is used.
	DevAsset   common.Address `env:"DEV_ASSET"`
	DevFunding string         `env:"DEV_FUNDING" envDefault:"0"`
}
