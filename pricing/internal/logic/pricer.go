package logic

import (
	"github.com/shopspring/decimal"
)

// PricingMode selects how a listing derives its sale price.
type PricingMode string

const (
	ModeFixed  PricingMode = "fixed"
	ModeMarket PricingMode = "market"
)

// PriceQuote is a resolved sale price in the ledger and display currencies.
// Nil fields mean no price could be derived.
type PriceQuote struct {
	Internal    *int64 `json:"internal_price"`
	Display     *int64 `json:"display_price"`
	MatchedRule *int   `json:"matched_rule_index"`
}

// ListingPricing holds the pricing fields of a storefront listing.
type ListingPricing struct {
	Mode             PricingMode      `json:"pricing_mode"`
	FixedPrice       *int64           `json:"fixed_price_cents"`
	MarketMultiplier *decimal.Decimal `json:"market_multiplier"`
	MarketRoundTo    *int64           `json:"market_round_to_cents"`
	Quantity         int              `json:"quantity"`
}

// ResolveFixedPrice passes a ledger price through and converts it for display.
// A display amount beyond the int64 range is left nil.
func ResolveFixedPrice(fixed *int64, displayRate decimal.Decimal) PriceQuote {
	if fixed == nil {
		return PriceQuote{}
	}
	rate := sanitizeRate(displayRate)
	q := PriceQuote{Internal: Cents(*fixed)}
	if display, ok := minorUnits(decimal.NewFromInt(*fixed).Mul(rate).Round(0)); ok {
		q.Display = Cents(display)
	}
	return q
}

// ResolveRuleBasedPrice derives a sale price from the higher of market value
// and cost, rounded up to the matched rule's increment in the display
// currency and converted back for the ledger. Prices beyond the int64 range
// yield an empty quote.
func ResolveRuleBasedPrice(rules RuleSet, market, cost *int64, displayRate decimal.Decimal) PriceQuote {
	base := max(valueOrZero(market), valueOrZero(cost))
	if base <= 0 {
		return PriceQuote{}
	}

	matched, ok := rules.match(base)
	if !ok {
		return PriceQuote{}
	}

	rate := sanitizeRate(displayRate)
	roundTo := decimal.NewFromInt(matched.rule.RoundTo)

	raw := decimal.NewFromInt(base).Mul(matched.rule.Multiplier).Mul(rate)
	display := raw.Div(roundTo).Ceil().Mul(roundTo)
	internalMinor, okInternal := minorUnits(display.Div(rate).Round(0))
	displayMinor, okDisplay := minorUnits(display)
	if !okInternal || !okDisplay {
		return PriceQuote{}
	}

	idx := matched.index
	return PriceQuote{
		Internal:    Cents(internalMinor),
		Display:     Cents(displayMinor),
		MatchedRule: &idx,
	}
}

// ResolveListingPrice applies the listing's pricing mode. Market listings with
// their own multiplier are priced by a single catch-all rule built from it;
// the rest use the seller's rule set.
func ResolveListingPrice(l ListingPricing, market, cost *int64, sellerRules RuleSet, displayRate decimal.Decimal) PriceQuote {
	switch l.Mode {
	case ModeFixed:
		return ResolveFixedPrice(l.FixedPrice, displayRate)
	case ModeMarket:
		return ResolveRuleBasedPrice(l.marketRules(sellerRules), market, cost, displayRate)
	default:
		return PriceQuote{}
	}
}

func (l ListingPricing) marketRules(sellerRules RuleSet) RuleSet {
	if l.MarketMultiplier == nil {
		return sellerRules
	}
	roundTo := int64(1)
	if l.MarketRoundTo != nil && *l.MarketRoundTo > 0 {
		roundTo = *l.MarketRoundTo
	}
	own, err := NewRuleSet([]PricingRule{{Multiplier: *l.MarketMultiplier, RoundTo: roundTo}})
	if err != nil {
		return sellerRules
	}
	return own
}

func sanitizeRate(rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return NoConversionRate
	}
	return rate
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
