package math

import (
	"math/big"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		text     string
		decimals uint8
		want     string // empty means nil
	}{
		{"1.5", 18, "1500000000000000000"},
		{"1", 6, "1000000"},
		{" 0.000001 ", 6, "1"},
		{".5", 1, "5"},
		{"2.", 2, "200"},
		{"0", 18, "0"},
		{"0.00", 6, "0"},
		{"007", 0, "7"},
		{"", 18, ""},
		{".", 18, ""},
		{"-1", 18, ""},
		{"1.2.3", 18, ""},
		{"abc", 18, ""},
		{"1e18", 18, ""},
		{"0.0000001", 6, ""},
		{"1.5", 0, ""},
		{"+1", 18, ""},
		{"1.50", 1, ""},
	}

	for _, tt := range tests {
		got := ParseAmount(tt.text, tt.decimals)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ParseAmount(%q, %d) = %v; want nil", tt.text, tt.decimals, got)
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("ParseAmount(%q, %d) = %v; want %s", tt.text, tt.decimals, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	raw, _ := new(big.Int).SetString("1500000000000000000", 10)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"fractional", FormatAmount(raw, 18), "1.5"},
		{"whole", FormatAmount(big.NewInt(3_000_000), 6), "3"},
		{"small", FormatAmount(big.NewInt(1), 6), "0.000001"},
		{"no decimals", FormatAmount(big.NewInt(42), 0), "42"},
		{"negative", FormatAmount(big.NewInt(-1_500_000), 6), "-1.5"},
		{"nil", FormatAmount(nil, 18), "0"},
		{"truncated", FormatAmountPrecision(big.NewInt(1_234_567), 6, 2), "1.23"},
		{"truncated to zero", FormatAmountPrecision(big.NewInt(1), 6, 2), "0"},
		{"negative truncated", FormatAmountPrecision(big.NewInt(-1_239_000), 6, 2), "-1.23"},
		{"full precision", FormatAmountPrecision(big.NewInt(1_234_567), 6, -1), "1.234567"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %s; want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestParseFormatInverse(t *testing.T) {
	for _, text := range []string{"1.5", "0.000123", "123456789.987654321"} {
		if got := FormatAmount(ParseAmount(text, 18), 18); got != text {
			t.Errorf("FormatAmount(ParseAmount(%q)) = %s", text, got)
		}
	}
}
