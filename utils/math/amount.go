package math

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string such as "1.5" into smallest units.
// It returns nil when the text is empty, negative, malformed, or more precise than decimals allows.
func ParseAmount(text string, decimals uint8) *big.Int {
	text = strings.TrimSpace(text)
	// plain positional notation only: no sign, no exponent
	if text == "" || strings.ContainsAny(text, "eE+-") {
		return nil
	}

	value, err := decimal.NewFromString(text)
	if err != nil || value.IsNegative() {
		return nil
	}
	if value.Exponent() < -int32(decimals) {
		return nil
	}
	return value.Shift(int32(decimals)).BigInt()
}

// FormatAmount renders smallest units as a decimal string without trailing zeros
func FormatAmount(raw *big.Int, decimals uint8) string {
	return FormatAmountPrecision(raw, decimals, int(decimals))
}

// FormatAmountPrecision is FormatAmount truncated to at most precision fractional digits.
// A negative precision keeps every digit.
func FormatAmountPrecision(raw *big.Int, decimals uint8, precision int) string {
	if raw == nil {
		return "0"
	}

	value := decimal.NewFromBigInt(raw, -int32(decimals))
	if precision >= 0 {
		value = value.Truncate(int32(precision))
	}
	return value.String()
}
