package x402

// Version constants
const (
	// Version is the SDK version
	Version = "1.0.0"

	// ProtocolVersion is the x402 protocol version spoken to facilitators
	ProtocolVersion = 1
)

// Scheme and wire constants
const (
	// SchemeExact is the only payment scheme this client builds
	SchemeExact = "exact"

	// MimeTypeJSON is the mime type declared for paid resources
	MimeTypeJSON = "application/json"

	// DefaultMaxTimeoutSeconds is the time budget declared in payment requirements
	DefaultMaxTimeoutSeconds = 30

	// PaymentHeader is the request header carrying an encoded PaymentPayload
	PaymentHeader = "X-PAYMENT"

	// PaymentResponseHeader is the response header carrying an encoded SettleResponse
	PaymentResponseHeader = "X-PAYMENT-RESPONSE"
)

// Chain families reported by the supported-methods fallback
const (
	FamilySolana = "solana"
	FamilyEVM    = "evm"
)
