package x402

import (
	"sort"
	"strings"
)

// FacilitatorInfo is a static registry entry for a known facilitator.
type FacilitatorInfo struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Networks    []string `json:"networks"`
	Description string   `json:"description"`
}

// SupportsNetwork reports whether network is in the entry's network list.
func (f FacilitatorInfo) SupportsNetwork(network string) bool {
	for _, n := range f.Networks {
		if n == network {
			return true
		}
	}
	return false
}

// facilitators is never written after package initialization.
var facilitators = map[string]FacilitatorInfo{
	"payai": {
		Name:        "PayAI",
		URL:         "https://facilitator.payai.network",
		Networks:    []string{"solana", "solana-devnet", "base", "base-sepolia", "avalanche", "polygon"},
		Description: "Solana-first, multi-network facilitator with no API keys required",
	},
	"coinbase": {
		Name:        "Coinbase CDP",
		URL:         "https://facilitator.cdp.coinbase.com",
		Networks:    []string{"base", "base-sepolia", "ethereum", "polygon"},
		Description: "Production-ready facilitator by Coinbase with USDC support",
	},
	"x402org": {
		Name:        "x402.org",
		URL:         "https://facilitator.x402.org",
		Networks:    []string{"solana", "base", "ethereum", "polygon", "arbitrum"},
		Description: "Community-run facilitator supporting multiple chains",
	},
}

// Facilitator looks up a registry entry by key. The returned value shares
// nothing with the registry.
func Facilitator(key string) (FacilitatorInfo, bool) {
	info, ok := facilitators[key]
	if !ok {
		return FacilitatorInfo{}, false
	}
	return info.clone(), true
}

// FacilitatorKeys returns the registry keys in sorted order.
func FacilitatorKeys() []string {
	keys := make([]string, 0, len(facilitators))
	for k := range facilitators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SupportedFacilitators returns every registered facilitator that lists
// network, ordered by registry key.
func SupportedFacilitators(network string) []FacilitatorInfo {
	var result []FacilitatorInfo
	for _, key := range FacilitatorKeys() {
		info := facilitators[key]
		if info.SupportsNetwork(network) {
			result = append(result, info.clone())
		}
	}
	return result
}

// DefaultSupportedKinds derives one SupportedKind per registered network of
// info. It is the fallback for a failed /supported query.
func DefaultSupportedKinds(info FacilitatorInfo) []SupportedKind {
	kinds := make([]SupportedKind, 0, len(info.Networks))
	for _, network := range info.Networks {
		kinds = append(kinds, SupportedKind{
			Scheme:  ChainFamily(network),
			Network: network,
		})
	}
	return kinds
}

// ChainFamily infers the ledger family from a network name.
func ChainFamily(network string) string {
	if strings.Contains(network, "solana") {
		return FamilySolana
	}
	return FamilyEVM
}

func (f FacilitatorInfo) clone() FacilitatorInfo {
	f.Networks = append([]string(nil), f.Networks...)
	return f
}
