package x402

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for payment operations.
var (
	// ErrInvalidAddress indicates an address failed structural validation.
	ErrInvalidAddress = errors.New("x402: invalid address")

	// ErrInvalidAmount indicates an amount that is negative, fractional in
	// smallest units, or not a number.
	ErrInvalidAmount = errors.New("x402: invalid amount")

	// ErrLedgerUnavailable indicates a ledger read (e.g. the recent blockhash) failed.
	ErrLedgerUnavailable = errors.New("x402: ledger unavailable")

	// ErrFacilitatorTransport indicates a network or timeout failure calling a facilitator.
	ErrFacilitatorTransport = errors.New("x402: facilitator transport error")

	// ErrFacilitatorProtocol indicates a non-2xx reply or a malformed body from a facilitator.
	ErrFacilitatorProtocol = errors.New("x402: facilitator protocol error")

	// ErrMalformedHeader indicates a payment header could not be decoded.
	ErrMalformedHeader = errors.New("x402: malformed payment header")

	// ErrUnknownFacilitator indicates a registry key with no entry.
	ErrUnknownFacilitator = errors.New("x402: unknown facilitator")

	// ErrNoRequirements indicates a 402 response with an empty accepts list.
	ErrNoRequirements = errors.New("x402: no payment requirements offered")

	// ErrTransactionExpired indicates a submitted transaction did not confirm
	// before its blockhash expired or the confirmation deadline passed.
	ErrTransactionExpired = errors.New("x402: transaction expired before confirmation")

	// ErrUnsupported indicates the configured collaborator lacks a capability.
	ErrUnsupported = errors.New("x402: operation not supported by collaborator")
)

// StatusError is a non-2xx reply from a facilitator.
type StatusError struct {
	// Op names the failed operation ("Verification", "Settlement", ...).
	Op         string
	StatusCode int
	Body       string
}

// Error formats the status code and body, falling back to the status text
// when the body is empty.
func (e *StatusError) Error() string {
	text := e.Body
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.StatusCode, text)
}

// Unwrap makes errors.Is(err, ErrFacilitatorProtocol) hold.
func (e *StatusError) Unwrap() error {
	return ErrFacilitatorProtocol
}
