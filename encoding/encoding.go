// Package encoding converts payment payloads to and from the text carried in
// the X-PAYMENT and X-PAYMENT-RESPONSE headers.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	x402 "github.com/spikesonicguest/blip-x402-go"
	"github.com/spikesonicguest/blip-x402-go/types"
)

// EncodePaymentHeader returns the standard base64 of the payload's JSON.
func EncodePaymentHeader(payload x402.PaymentPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payment payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ParsePaymentHeader decodes an X-PAYMENT header value. Payload values keep
// their JSON types, with numbers decoded as json.Number so that integers of
// any size survive a decode and re-encode unchanged.
func ParsePaymentHeader(header string) (x402.PaymentPayload, error) {
	data, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return x402.PaymentPayload{}, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}
	if _, err := types.DetectVersion(data); err != nil {
		return x402.PaymentPayload{}, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload x402.PaymentPayload
	if err := dec.Decode(&payload); err != nil {
		return x402.PaymentPayload{}, fmt.Errorf("%w: %v", x402.ErrMalformedHeader, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return x402.PaymentPayload{}, fmt.Errorf("%w: trailing data after payload", x402.ErrMalformedHeader)
	}
	return payload, nil
}

// DecodePaymentHeader is ParsePaymentHeader returning nil on malformed input.
func DecodePaymentHeader(header string) *x402.PaymentPayload {
	payload, err := ParsePaymentHeader(header)
	if err != nil {
		return nil
	}
	return &payload
}

// EncodeSettlementHeader returns the X-PAYMENT-RESPONSE value for a settlement.
func EncodeSettlementHeader(settlement x402.SettleResponse) (string, error) {
	data, err := json.Marshal(settlement)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settlement: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeSettlementHeader decodes an X-PAYMENT-RESPONSE value, returning nil on malformed input.
func DecodeSettlementHeader(header string) *x402.SettleResponse {
	data, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil
	}
	var settlement x402.SettleResponse
	if err := json.Unmarshal(data, &settlement); err != nil {
		return nil
	}
	return &settlement
}
