package units

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402 "github.com/spikesonicguest/blip-x402-go"
)

func TestToSmallestUnit(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		exponent int32
		want     string
		wantErr  bool
	}{
		{"whole SOL", "1", 9, "1000000000", false},
		{"fractional SOL", "1.5", 9, "1500000000", false},
		{"one lamport", "0.000000001", 9, "1", false},
		{"zero", "0", 9, "0", false},
		{"usdc", "0.10", 6, "100000", false},
		{"large", "123456789.123456789", 9, "123456789123456789", false},
		{"too many digits", "0.0000000001", 9, "", true},
		{"negative", "-1", 9, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSmallestUnit(decimal.RequireFromString(tt.amount), tt.exponent)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, x402.ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTruncateToSmallestUnit(t *testing.T) {
	assert.Equal(t, "1", TruncateToSmallestUnit(decimal.RequireFromString("0.0000000019"), 9).String())
	assert.Equal(t, "0", TruncateToSmallestUnit(decimal.RequireFromString("-3"), 9).String())
	assert.Equal(t, "1500000000", TruncateToSmallestUnit(decimal.RequireFromString("1.5"), 9).String())
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"0", "1", "1.5", "0.000000001", "0.123456789", "42.1", "999999999.999999999", "0.1", "0.2", "0.3",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			x := decimal.RequireFromString(in)
			smallest, err := ToSmallestUnit(x, SOLDecimals)
			require.NoError(t, err)
			back := ToDecimalUnit(smallest, SOLDecimals)
			assert.True(t, back.Equal(x), "round trip %s -> %s -> %s", x, smallest, back)
		})
	}
}

func TestToDecimalUnit(t *testing.T) {
	assert.Equal(t, "1.5", ToDecimalUnit(big.NewInt(1500000000), 9).String())
	assert.True(t, ToDecimalUnit(nil, 9).IsZero())
	assert.Equal(t, "0.000001", ToDecimalUnit(big.NewInt(1), 6).String())
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		amount    string
		precision int32
		want      string
	}{
		{"1.5", 4, "1.5000"},
		{"1.23455", 4, "1.2346"},
		{"1.23454", 4, "1.2345"},
		{"0.00005", 4, "0.0001"},
		{"2", 0, "2"},
		{"2.5", 0, "3"},
		{"10", 2, "10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDecimal(decimal.RequireFromString(tt.amount), tt.precision))
		})
	}
}

func TestParseSmallestUnit(t *testing.T) {
	v, err := ParseSmallestUnit("1500000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1500000000), v.Int64())

	for _, bad := range []string{"", "1.5", "abc", "-1"} {
		_, err := ParseSmallestUnit(bad)
		assert.True(t, errors.Is(err, x402.ErrInvalidAmount), bad)
	}
}

func TestSolLamports(t *testing.T) {
	lamports, err := SolToLamports(decimal.RequireFromString("2.25"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2250000000), lamports)

	_, err = SolToLamports(decimal.RequireFromString("99999999999999999999"))
	assert.Error(t, err)

	assert.Equal(t, "2.25", LamportsToSol(2250000000).String())
	assert.Equal(t, "2.2500", FormatSOL(LamportsToSol(2250000000)))
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 0.5 ")
	require.NoError(t, err)
	assert.Equal(t, "0.5", d.String())

	_, err = ParseDecimal("half")
	assert.True(t, errors.Is(err, x402.ErrInvalidAmount))
}
