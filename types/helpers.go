package types

import (
	"encoding/json"
	"fmt"
)

// GetSchemeAndNetwork extracts scheme and network from payment payload bytes
func GetSchemeAndNetwork(version int, payloadBytes []byte) (scheme string, network string, err error) {
	if version != 1 {
		return "", "", fmt.Errorf("unsupported version: %d", version)
	}
	var partial struct {
		Scheme  string `json:"scheme"`
		Network string `json:"network"`
	}
	if err := json.Unmarshal(payloadBytes, &partial); err != nil {
		return "", "", fmt.Errorf("failed to parse v1 payload: %w", err)
	}
	return partial.Scheme, partial.Network, nil
}

// MatchPayloadToRequirements reports whether a payload targets the scheme and
// network of the given requirements
func MatchPayloadToRequirements(version int, payloadBytes []byte, requirementsBytes []byte) (bool, error) {
	payloadScheme, payloadNetwork, err := GetSchemeAndNetwork(version, payloadBytes)
	if err != nil {
		return false, err
	}

	reqInfo, err := ExtractRequirementsInfo(requirementsBytes)
	if err != nil {
		return false, err
	}

	return payloadScheme == reqInfo.Scheme && payloadNetwork == reqInfo.Network, nil
}
