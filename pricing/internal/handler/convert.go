package handler

import (
	"fmt"

	"op_trader/pricing/internal/logic"
	"op_trader/pricing/rpc"

	"github.com/shopspring/decimal"
)

func toRPCRules(rules []logic.PricingRule) []*rpc.Rule {
	out := make([]*rpc.Rule, len(rules))
	for i, r := range rules {
		out[i] = &rpc.Rule{
			ThresholdCents: r.Threshold,
			Multiplier:     r.Multiplier.String(),
			RoundToCents:   r.RoundTo,
		}
	}
	return out
}

func fromRPCRules(rules []*rpc.Rule) ([]logic.PricingRule, error) {
	out := make([]logic.PricingRule, 0, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("rule %d is empty", i)
		}
		m, err := decimal.NewFromString(r.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("rule %d: multiplier %q is not a number", i, r.Multiplier)
		}
		out = append(out, logic.PricingRule{
			Threshold:  r.ThresholdCents,
			Multiplier: m,
			RoundTo:    r.RoundToCents,
		})
	}
	return out, nil
}

func listingPricing(l *rpc.ListingInput) (logic.ListingPricing, error) {
	p := logic.ListingPricing{
		Mode:          logic.PricingMode(l.PricingMode),
		FixedPrice:    l.FixedPriceCents,
		MarketRoundTo: l.MarketRoundToCents,
		Quantity:      int(l.Quantity),
	}
	switch p.Mode {
	case logic.ModeFixed, logic.ModeMarket:
	default:
		return p, fmt.Errorf("unknown pricing mode %q", l.PricingMode)
	}
	if l.MarketMultiplier != nil && *l.MarketMultiplier != "" {
		m, err := decimal.NewFromString(*l.MarketMultiplier)
		if err != nil {
			return p, fmt.Errorf("market multiplier %q is not a number", *l.MarketMultiplier)
		}
		p.MarketMultiplier = &m
	}
	return p, nil
}
