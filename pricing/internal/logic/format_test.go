package logic

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertAndFormat(t *testing.T) {
	table := testRates()
	tests := []struct {
		name    string
		minor   *int64
		ledger  string
		display string
		want    string
	}{
		{"nil amount", nil, "USD", "AUD", Placeholder},
		{"same currency", Cents(11200), "usd", "usd", "$112.00"},
		{"converted", Cents(1000), "usd", "aud", "A$15.00"},
		{"single digit cents", Cents(105), "usd", "usd", "$1.05"},
		{"zero", Cents(0), "usd", "eur", "€0.00"},
		{"negative", Cents(-150), "usd", "usd", "-$1.50"},
		{"unknown currency", Cents(1234), "usd", "chf", "CHF 12.34"},
		{"jpy", Cents(100), "usd", "jpy", "¥150.00"},
		{"overflow", Cents(math.MaxInt64), "usd", "jpy", Placeholder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertAndFormat(tt.minor, tt.ledger, tt.display, table); got != tt.want {
				t.Errorf("ConvertAndFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertAndFormatPlaceholderNeverZero(t *testing.T) {
	got := ConvertAndFormat(nil, "USD", "AUD", RateTable{})
	if got == "$0.00" || got == "A$0.00" || got == "NaN" {
		t.Errorf("ConvertAndFormat(nil) = %q", got)
	}
}

func TestConvertAndFormatExactHalf(t *testing.T) {
	// 1 * 1.5 / 3 is exactly half a cent; dividing first loses it to
	// the sixteen digit division precision and rounds down.
	table := NewRateTable("USD", map[string]decimal.Decimal{
		"GBP": decimal.RequireFromString("3"),
		"EUR": decimal.RequireFromString("1.5"),
	})
	if got := ConvertAndFormat(Cents(1), "gbp", "eur", table); got != "€0.01" {
		t.Errorf("ConvertAndFormat() = %q, want %q", got, "€0.01")
	}
}

func TestFormatMinorExtremes(t *testing.T) {
	tests := []struct {
		name  string
		minor int64
		want  string
	}{
		{"min int64", math.MinInt64, "-$92233720368547758.08"},
		{"max int64", math.MaxInt64, "$92233720368547758.07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMinor(tt.minor, "usd"); got != tt.want {
				t.Errorf("FormatMinor() = %q, want %q", got, tt.want)
			}
		})
	}
}
