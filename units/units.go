// Package units converts amounts between a ledger's smallest integer unit and
// its human-denominated decimal unit.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

const (
	// SOLDecimals is the exponent between SOL and lamports.
	SOLDecimals int32 = 9

	// DisplayPrecision is the default number of fraction digits shown for SOL.
	DisplayPrecision int32 = 4
)

// ToSmallestUnit multiplies amount by 10^exponent. The result must be a
// non-negative integer; amounts with more fraction digits than exponent are
// rejected rather than silently truncated.
func ToSmallestUnit(amount decimal.Decimal, exponent int32) (*big.Int, error) {
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", x402.ErrInvalidAmount, amount)
	}
	shifted := amount.Shift(exponent)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d fraction digits", x402.ErrInvalidAmount, amount, exponent)
	}
	return shifted.BigInt(), nil
}

// TruncateToSmallestUnit is ToSmallestUnit for callers that cannot fail:
// excess fraction digits are dropped and negative amounts become zero.
func TruncateToSmallestUnit(amount decimal.Decimal, exponent int32) *big.Int {
	if amount.Sign() <= 0 {
		return new(big.Int)
	}
	return amount.Shift(exponent).Truncate(0).BigInt()
}

// ToDecimalUnit divides smallest by 10^exponent without loss.
func ToDecimalUnit(smallest *big.Int, exponent int32) decimal.Decimal {
	if smallest == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(smallest, -exponent)
}

// FormatDecimal renders amount with exactly precision fraction digits,
// rounding half away from zero.
func FormatDecimal(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}

// ParseDecimal parses a human-denominated amount.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", x402.ErrInvalidAmount, s)
	}
	return d, nil
}

// ParseSmallestUnit parses a non-negative base-10 integer string such as
// PaymentRequirements.MaxAmountRequired.
func ParseSmallestUnit(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", x402.ErrInvalidAmount, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", x402.ErrInvalidAmount, s)
	}
	return v, nil
}

// SolToLamports converts SOL to lamports.
func SolToLamports(sol decimal.Decimal) (uint64, error) {
	v, err := ToSmallestUnit(sol, SOLDecimals)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s SOL overflows lamports", x402.ErrInvalidAmount, sol)
	}
	return v.Uint64(), nil
}

// LamportsToSol converts lamports to SOL.
func LamportsToSol(lamports uint64) decimal.Decimal {
	return ToDecimalUnit(new(big.Int).SetUint64(lamports), SOLDecimals)
}

// FormatSOL renders a SOL amount with DisplayPrecision fraction digits.
func FormatSOL(amount decimal.Decimal) string {
	return FormatDecimal(amount, DisplayPrecision)
}
