// Package evm recognises EVM networks and addresses so that requirements
// naming an EVM chain are validated against the right address format.
package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeNetwork resolves a legacy network name to its CAIP-2 identifier.
// Unknown names are returned unchanged.
func NormalizeNetwork(network string) string {
	if caip, ok := networkAliases[network]; ok {
		return caip
	}
	return network
}

// IsValidNetwork reports whether network is a listed EVM chain or any
// eip155 CAIP-2 id.
func IsValidNetwork(network string) bool {
	caip := NormalizeNetwork(network)
	if _, ok := networks[caip]; ok {
		return true
	}
	return strings.HasPrefix(caip, "eip155:") && len(caip) > len("eip155:")
}

// IsValidAddress checks if a string is a 0x-prefixed 20-byte hex address
func IsValidAddress(address string) bool {
	if len(address) != 2+AddressHexLength {
		return false
	}
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	return common.IsHexAddress(address)
}
