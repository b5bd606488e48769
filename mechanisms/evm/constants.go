package evm

// AddressHexLength is the number of hex characters after the 0x prefix
const AddressHexLength = 40

var (
	// networks holds the CAIP-2 ids of the EVM chains facilitators list
	networks = map[string]struct{}{
		"eip155:1":     {},
		"eip155:8453":  {},
		"eip155:84532": {},
		"eip155:137":   {},
		"eip155:43114": {},
		"eip155:42161": {},
	}

	// networkAliases maps the legacy network names used by facilitators to CAIP-2
	networkAliases = map[string]string{
		"ethereum":     "eip155:1",
		"base":         "eip155:8453",
		"base-mainnet": "eip155:8453",
		"base-sepolia": "eip155:84532",
		"polygon":      "eip155:137",
		"avalanche":    "eip155:43114",
		"arbitrum":     "eip155:42161",
	}
)
