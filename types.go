package x402

// PaymentRequirements describes one accepted way of paying for a resource.
type PaymentRequirements struct {
	Scheme  string `json:"scheme"`
	Network string `json:"network"`

	// MaxAmountRequired is a non-negative integer in the asset's smallest unit.
	// It is always a string so that no precision is lost on the wire.
	MaxAmountRequired string `json:"maxAmountRequired"`

	Resource          string                 `json:"resource"`
	Description       string                 `json:"description"`
	MimeType          string                 `json:"mimeType"`
	OutputSchema      map[string]interface{} `json:"outputSchema,omitempty"`
	PayTo             string                 `json:"payTo"`
	MaxTimeoutSeconds int                    `json:"maxTimeoutSeconds"`
	Asset             string                 `json:"asset"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// PaymentRequiredResponse is the body of a 402 reply.
type PaymentRequiredResponse struct {
	X402Version int                   `json:"x402Version"`
	Accepts     []PaymentRequirements `json:"accepts"`
	Error       string                `json:"error,omitempty"`
}

// FirstAccepted returns accepts[0]. Choosing among several requirements is
// left to the caller.
func (r PaymentRequiredResponse) FirstAccepted() (PaymentRequirements, bool) {
	if len(r.Accepts) == 0 {
		return PaymentRequirements{}, false
	}
	return r.Accepts[0], true
}

// PaymentPayload is the payer's constructed payment tagged with protocol metadata.
type PaymentPayload struct {
	X402Version int                    `json:"x402Version"`
	Scheme      string                 `json:"scheme"`
	Network     string                 `json:"network"`
	Payload     map[string]interface{} `json:"payload"`
}

// VerifyResponse is returned by a facilitator's /verify endpoint.
type VerifyResponse struct {
	IsValid       bool    `json:"isValid"`
	InvalidReason *string `json:"invalidReason"`
}

// Reason returns the invalid reason or an empty string.
func (r VerifyResponse) Reason() string {
	if r.InvalidReason == nil {
		return ""
	}
	return *r.InvalidReason
}

// SettleResponse is returned by a facilitator's /settle endpoint.
type SettleResponse struct {
	Success   bool    `json:"success"`
	Error     *string `json:"error"`
	TxHash    *string `json:"txHash"`
	NetworkID *string `json:"networkId"`
}

// ErrorReason returns the settlement error or an empty string.
func (r SettleResponse) ErrorReason() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// Transaction returns the settlement transaction hash or an empty string.
func (r SettleResponse) Transaction() string {
	if r.TxHash == nil {
		return ""
	}
	return *r.TxHash
}

// SupportedKind is one scheme/network pair a facilitator can process.
type SupportedKind struct {
	Scheme  string `json:"scheme"`
	Network string `json:"network"`
}

// SupportedResponse is returned by a facilitator's /supported endpoint.
type SupportedResponse struct {
	Kinds []SupportedKind `json:"kinds"`
}

// PaymentResponse records a transfer that was signed and submitted directly
// to the ledger, bypassing the facilitator.
type PaymentResponse struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
