// Package types decodes x402 wire documents partially, before committing to
// a concrete Go type.
package types

import (
	"encoding/json"
	"fmt"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

// DetectVersion extracts x402Version from JSON bytes
func DetectVersion(data []byte) (int, error) {
	var detector struct {
		X402Version int `json:"x402Version"`
	}
	if err := json.Unmarshal(data, &detector); err != nil {
		return 0, fmt.Errorf("failed to detect version: %w", err)
	}
	if detector.X402Version < 1 {
		return 0, fmt.Errorf("invalid version: %d", detector.X402Version)
	}
	return detector.X402Version, nil
}

// RequirementsInfo is minimal info extracted from requirements for routing
type RequirementsInfo struct {
	Scheme  string
	Network string
}

// ExtractRequirementsInfo gets scheme and network from requirements bytes
func ExtractRequirementsInfo(data []byte) (*RequirementsInfo, error) {
	var info struct {
		Scheme  string `json:"scheme"`
		Network string `json:"network"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &RequirementsInfo{
		Scheme:  info.Scheme,
		Network: info.Network,
	}, nil
}

// PaymentRequiredPartial is a 402 body with accepts kept as raw bytes so that
// each entry can be validated before it is decoded.
type PaymentRequiredPartial struct {
	X402Version int               `json:"x402Version"`
	Error       string            `json:"error,omitempty"`
	Accepts     []json.RawMessage `json:"accepts"`
}

// ToPaymentRequiredPartial unmarshals a 402 body keeping accepts as raw bytes
func ToPaymentRequiredPartial(data []byte) (*PaymentRequiredPartial, error) {
	var required PaymentRequiredPartial
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, err
	}
	return &required, nil
}

// DecodeRequirements decodes one raw accepts entry
func DecodeRequirements(raw json.RawMessage) (x402.PaymentRequirements, error) {
	var req x402.PaymentRequirements
	if err := json.Unmarshal(raw, &req); err != nil {
		return x402.PaymentRequirements{}, fmt.Errorf("failed to decode requirements: %w", err)
	}
	return req, nil
}
