// Package validation checks addresses, amounts and payment requirements
// before they reach a ledger or a facilitator.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/xeipuuv/gojsonschema"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/mechanisms/evm"
	"github.com/spikesonicguest/blip-x402-go/units"
)

// PublicKeyLength is the byte length of a Solana public key.
const PublicKeyLength = 32

// requirementsSchema describes the wire shape of a single accepts entry.
const requirementsSchema = `{
  "type": "object",
  "required": ["scheme", "network", "maxAmountRequired", "resource", "payTo", "maxTimeoutSeconds", "asset"],
  "properties": {
    "scheme": {"type": "string", "minLength": 1},
    "network": {"type": "string", "minLength": 1},
    "maxAmountRequired": {"type": "string", "pattern": "^[0-9]+$"},
    "resource": {"type": "string"},
    "description": {"type": "string"},
    "mimeType": {"type": "string"},
    "outputSchema": {"type": ["object", "null"]},
    "payTo": {"type": "string", "minLength": 1},
    "maxTimeoutSeconds": {"type": "integer", "minimum": 0},
    "asset": {"type": "string", "minLength": 1},
    "extra": {"type": ["object", "null"]}
  }
}`

var requirementsSchemaLoader = gojsonschema.NewStringLoader(requirementsSchema)

// IsValidAddress reports whether s is a base-58 string decoding to exactly
// 32 bytes.
func IsValidAddress(s string) bool {
	if s == "" {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == PublicKeyLength
}

// IsValidAddressForNetwork validates address against the chain family of
// network. Unknown networks are treated as Solana.
func IsValidAddressForNetwork(address, network string) bool {
	if evm.IsValidNetwork(network) {
		return evm.IsValidAddress(address)
	}
	return IsValidAddress(address)
}

// ValidateAmount checks that s is a non-negative integer in smallest units.
func ValidateAmount(s string) error {
	_, err := units.ParseSmallestUnit(s)
	return err
}

// ValidatePaymentRequirements checks the wire shape of req, its amount and
// its payTo address.
func ValidatePaymentRequirements(req x402.PaymentRequirements) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal requirements: %w", err)
	}
	if err := ValidateRequirementsJSON(data); err != nil {
		return err
	}
	if err := ValidateAmount(req.MaxAmountRequired); err != nil {
		return err
	}
	if !IsValidAddressForNetwork(req.PayTo, req.Network) {
		return fmt.Errorf("%w: payTo %q", x402.ErrInvalidAddress, req.PayTo)
	}
	return nil
}

// ValidateRequirementsJSON validates a raw accepts entry against the
// requirements schema.
func ValidateRequirementsJSON(data []byte) error {
	result, err := gojsonschema.Validate(requirementsSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid requirements document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	if hasAmountError(result.Errors()) {
		return fmt.Errorf("%w: %s", x402.ErrInvalidAmount, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid requirements: %s", strings.Join(msgs, "; "))
}

func hasAmountError(errs []gojsonschema.ResultError) bool {
	for _, e := range errs {
		if e.Field() == "maxAmountRequired" {
			return true
		}
	}
	return false
}
