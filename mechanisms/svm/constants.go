package svm

import (
	"github.com/spikesonicguest/blip-x402-go/units"
)

const (
	// AssetSOL is the asset identifier for native SOL payments
	AssetSOL = "SOL"

	// Decimals is the decimal exponent of SOL (lamports per SOL = 10^9)
	Decimals = units.SOLDecimals

	// Network identifiers
	NetworkMainnet = "solana"
	NetworkDevnet  = "solana-devnet"
	NetworkTestnet = "solana-testnet"

	// CAIP-2 identifiers
	SolanaMainnetCAIP2 = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	SolanaDevnetCAIP2  = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	SolanaTestnetCAIP2 = "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"

	// Default requirement values
	DefaultNetwork     = NetworkMainnet
	DefaultResource    = "/"
	DefaultDescription = "Payment required"
)

var (
	// NetworkConfigs maps network names to their configuration
	NetworkConfigs = map[string]NetworkConfig{
		NetworkMainnet: {
			CAIP2:  SolanaMainnetCAIP2,
			RPCURL: "https://api.mainnet-beta.solana.com",
		},
		NetworkDevnet: {
			CAIP2:  SolanaDevnetCAIP2,
			RPCURL: "https://api.devnet.solana.com",
		},
		NetworkTestnet: {
			CAIP2:  SolanaTestnetCAIP2,
			RPCURL: "https://api.testnet.solana.com",
		},
	}
)
