package logic

import (
	"strconv"
	"strings"
)

// Placeholder is rendered for amounts that are unknown or not applicable.
const Placeholder = "—"

var currencySymbols = map[string]string{
	"usd": "$",
	"aud": "A$",
	"cad": "C$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
	"nzd": "NZ$",
	"sgd": "S$",
}

// Symbol returns the display prefix for a currency. Codes without a known
// symbol are shown as the uppercase code followed by a space.
func Symbol(code string) string {
	code = normalizeCode(code)
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return strings.ToUpper(code) + " "
}

// ConvertAndFormat converts a ledger amount into the display currency and
// renders it with the currency symbol and two decimals. A nil amount renders
// as Placeholder, as does an amount whose conversion leaves the int64 range.
func ConvertAndFormat(minor *int64, ledgerCurrency, displayCurrency string, table RateTable) string {
	if minor == nil {
		return Placeholder
	}
	converted, ok := convertMinor(*minor, table.Rate(ledgerCurrency), table.Rate(displayCurrency))
	if !ok {
		return Placeholder
	}
	return FormatMinor(converted, displayCurrency)
}

// FormatMinor renders an amount already in the target currency.
func FormatMinor(minor int64, currency string) string {
	sign := ""
	// Unsigned negation keeps math.MinInt64 representable.
	mag := uint64(minor)
	if minor < 0 {
		sign = "-"
		mag = -mag
	}
	whole := mag / 100
	frac := mag % 100

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(Symbol(currency))
	b.WriteString(strconv.FormatUint(whole, 10))
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatUint(frac, 10))
	return b.String()
}
