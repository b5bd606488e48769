package svm

import (
	"strings"

	"github.com/shopspring/decimal"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/units"
)

// BuildPaymentRequirements returns the 402 body for a SOL payment of amount to payTo.
// Blank network, resource and description take their defaults. Sub-lamport
// fractions are truncated and negative amounts become zero. payTo is not validated.
func BuildPaymentRequirements(payTo string, amount decimal.Decimal, network, resource, description string) x402.PaymentRequiredResponse {
	if strings.TrimSpace(network) == "" {
		network = DefaultNetwork
	}
	if strings.TrimSpace(resource) == "" {
		resource = DefaultResource
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}

	lamports := units.TruncateToSmallestUnit(amount, Decimals)

	return x402.PaymentRequiredResponse{
		X402Version: x402.ProtocolVersion,
		Accepts: []x402.PaymentRequirements{
			{
				Scheme:            x402.SchemeExact,
				Network:           network,
				MaxAmountRequired: lamports.String(),
				Resource:          resource,
				Description:       description,
				MimeType:          x402.MimeTypeJSON,
				PayTo:             payTo,
				MaxTimeoutSeconds: x402.DefaultMaxTimeoutSeconds,
				Asset:             AssetSOL,
				Extra: map[string]interface{}{
					"decimals": int(Decimals),
					"symbol":   AssetSOL,
				},
			},
		},
	}
}
