package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paymentRequiredBody = `{
  "x402Version": 1,
  "error": "X-PAYMENT header is required",
  "accepts": [
    {"scheme":"exact","network":"solana-devnet","maxAmountRequired":"1000","resource":"/","description":"d",
     "mimeType":"application/json","payTo":"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v","maxTimeoutSeconds":30,
     "asset":"SOL","extra":{"decimals":9,"symbol":"SOL"}},
    {"scheme":"exact","network":"base"}
  ]
}`

func TestDetectVersion(t *testing.T) {
	v, err := DetectVersion([]byte(`{"x402Version":1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = DetectVersion([]byte(`{}`))
	assert.Error(t, err)

	_, err = DetectVersion([]byte(`nope`))
	assert.Error(t, err)
}

func TestToPaymentRequiredPartial(t *testing.T) {
	partial, err := ToPaymentRequiredPartial([]byte(paymentRequiredBody))
	require.NoError(t, err)

	assert.Equal(t, 1, partial.X402Version)
	assert.Equal(t, "X-PAYMENT header is required", partial.Error)
	require.Len(t, partial.Accepts, 2)

	req, err := DecodeRequirements(partial.Accepts[0])
	require.NoError(t, err)
	assert.Equal(t, "1000", req.MaxAmountRequired)
	assert.Equal(t, "solana-devnet", req.Network)

	info, err := ExtractRequirementsInfo(partial.Accepts[1])
	require.NoError(t, err)
	assert.Equal(t, &RequirementsInfo{Scheme: "exact", Network: "base"}, info)
}

func TestMatchPayloadToRequirements(t *testing.T) {
	payload := []byte(`{"x402Version":1,"scheme":"exact","network":"solana","payload":{}}`)

	ok, err := MatchPayloadToRequirements(1, payload, []byte(`{"scheme":"exact","network":"solana"}`))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchPayloadToRequirements(1, payload, []byte(`{"scheme":"exact","network":"solana-devnet"}`))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = MatchPayloadToRequirements(2, payload, []byte(`{}`))
	assert.Error(t, err)
}
