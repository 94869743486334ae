package logic

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultBaseCurrency is the ledger currency listings and costs are stored in.
const DefaultBaseCurrency = "usd"

// NoConversionRate is used for any currency the rate table has no entry for:
// without conversion data the amount is shown 1:1.
var NoConversionRate = decimal.NewFromInt(1)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an amount of minor units (cents) tagged with its currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney normalizes the currency code to lowercase.
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: normalizeCode(currency)}
}

// Add sums two amounts of the same currency.
func (m Money) Add(o Money) (Money, error) {
	if normalizeCode(m.Currency) != normalizeCode(o.Currency) {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: normalizeCode(m.Currency)}, nil
}

// Convert moves the amount into another currency through the rate table.
// Results beyond the int64 range saturate.
func (m Money) Convert(to string, table RateTable) Money {
	amount, ok := convertMinor(m.Amount, table.Rate(m.Currency), table.Rate(to))
	if !ok {
		amount = math.MaxInt64
		if m.Amount < 0 {
			amount = math.MinInt64
		}
	}
	return Money{Amount: amount, Currency: normalizeCode(to)}
}

// RateTable maps lowercase currency codes to multipliers relative to Base.
type RateTable struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// NewRateTable copies rates into a table keyed by lowercase code. An empty
// base falls back to DefaultBaseCurrency.
func NewRateTable(base string, rates map[string]decimal.Decimal) RateTable {
	t := RateTable{Base: normalizeCode(base), Rates: make(map[string]decimal.Decimal, len(rates))}
	if t.Base == "" {
		t.Base = DefaultBaseCurrency
	}
	for code, rate := range rates {
		t.Rates[normalizeCode(code)] = rate
	}
	return t
}

// Rate returns the multiplier for code. The base currency is always 1, and
// unknown or non-positive entries resolve to NoConversionRate.
func (t RateTable) Rate(code string) decimal.Decimal {
	code = normalizeCode(code)
	if code == t.base() {
		return decimal.NewFromInt(1)
	}
	rate, ok := t.Rates[code]
	if !ok || !rate.IsPositive() {
		return NoConversionRate
	}
	return rate
}

// CrossRate is the multiplier taking an amount in from to an amount in to.
func (t RateTable) CrossRate(from, to string) decimal.Decimal {
	return t.Rate(to).Div(t.Rate(from))
}

// Has reports whether the table carries real conversion data for code.
func (t RateTable) Has(code string) bool {
	code = normalizeCode(code)
	if code == t.base() {
		return true
	}
	rate, ok := t.Rates[code]
	return ok && rate.IsPositive()
}

func (t RateTable) base() string {
	if t.Base == "" {
		return DefaultBaseCurrency
	}
	return normalizeCode(t.Base)
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// minorUnits reports false when d does not fit in an int64.
func minorUnits(d decimal.Decimal) (int64, bool) {
	if d.GreaterThan(maxMinor) || d.LessThan(minMinor) {
		return 0, false
	}
	return d.IntPart(), true
}

// convertMinor multiplies before dividing so exact halves survive the
// division precision and round away from zero.
func convertMinor(minor int64, rateFrom, rateTo decimal.Decimal) (int64, bool) {
	return minorUnits(decimal.NewFromInt(minor).Mul(rateTo).Div(rateFrom).Round(0))
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
