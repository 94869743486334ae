package logic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrNoRules            = errors.New("rule set has no rules")
	ErrMultipleCatchAll   = errors.New("rule set has more than one catch-all rule")
	ErrInvalidMultiplier  = errors.New("multiplier must be positive")
	ErrInvalidRoundTo     = errors.New("round-to must be positive")
	ErrNegativeThreshold  = errors.New("threshold must not be negative")
	ErrDuplicateThreshold = errors.New("threshold is used by more than one rule")
)

// PricingRule maps a base value above Threshold to a sale price. A nil
// Threshold marks the catch-all rule.
type PricingRule struct {
	Threshold  *int64          `json:"threshold_cents"`
	Multiplier decimal.Decimal `json:"multiplier"`
	RoundTo    int64           `json:"round_to_cents"`
}

// IsCatchAll reports whether the rule has no threshold.
func (r PricingRule) IsCatchAll() bool {
	return r.Threshold == nil
}

// RuleSet is an ordered, validated list of pricing rules. The zero value is
// an empty set, which resolves every price to nil.
type RuleSet struct {
	rules []PricingRule
}

// NewRuleSet validates rules and keeps them in the caller's order.
func NewRuleSet(rules []PricingRule) (RuleSet, error) {
	if len(rules) == 0 {
		return RuleSet{}, ErrNoRules
	}

	catchAll := 0
	seen := make(map[int64]int, len(rules))
	for i, r := range rules {
		if !r.Multiplier.IsPositive() {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrInvalidMultiplier)
		}
		if r.RoundTo <= 0 {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrInvalidRoundTo)
		}
		if r.IsCatchAll() {
			catchAll++
			if catchAll > 1 {
				return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrMultipleCatchAll)
			}
			continue
		}
		if *r.Threshold < 0 {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, ErrNegativeThreshold)
		}
		if prev, ok := seen[*r.Threshold]; ok {
			return RuleSet{}, fmt.Errorf("rules %d and %d: %w", prev, i, ErrDuplicateThreshold)
		}
		seen[*r.Threshold] = i
	}

	out := make([]PricingRule, len(rules))
	for i, r := range rules {
		out[i] = r.clone()
	}
	return RuleSet{rules: out}, nil
}

// MustRuleSet is NewRuleSet for static rule sets known to be valid.
func MustRuleSet(rules []PricingRule) RuleSet {
	rs, err := NewRuleSet(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// DefaultRules is the ladder applied to sellers that never configured rules.
func DefaultRules() RuleSet {
	return MustRuleSet([]PricingRule{
		{Threshold: Cents(20000), Multiplier: decimal.RequireFromString("1.1"), RoundTo: 500},
		{Threshold: Cents(10000), Multiplier: decimal.RequireFromString("1.15"), RoundTo: 500},
		{Threshold: nil, Multiplier: decimal.RequireFromString("1.4"), RoundTo: 100},
	})
}

// Len returns the number of rules.
func (s RuleSet) Len() int {
	return len(s.rules)
}

// Rules returns a copy of the rules in their original order.
func (s RuleSet) Rules() []PricingRule {
	out := make([]PricingRule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.clone()
	}
	return out
}

type indexedRule struct {
	index int
	rule  PricingRule
}

// sorted orders rules by threshold descending with the catch-all last. The
// original index travels with each rule.
func (s RuleSet) sorted() []indexedRule {
	out := make([]indexedRule, len(s.rules))
	for i, r := range s.rules {
		out[i] = indexedRule{index: i, rule: r}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].rule, out[j].rule
		if a.IsCatchAll() || b.IsCatchAll() {
			return !a.IsCatchAll() && b.IsCatchAll()
		}
		return *a.Threshold > *b.Threshold
	})
	return out
}

// match picks the first rule, in descending threshold order, whose threshold
// is strictly below base. A base equal to a threshold falls through to the
// next bracket.
func (s RuleSet) match(base int64) (indexedRule, bool) {
	ordered := s.sorted()
	if len(ordered) == 0 {
		return indexedRule{}, false
	}
	for _, ir := range ordered {
		if !ir.rule.IsCatchAll() && *ir.rule.Threshold < base {
			return ir, true
		}
	}
	for _, ir := range ordered {
		if ir.rule.IsCatchAll() {
			return ir, true
		}
	}
	return ordered[len(ordered)-1], true
}

func (r PricingRule) clone() PricingRule {
	if r.Threshold != nil {
		r.Threshold = Cents(*r.Threshold)
	}
	return r
}

// Cents returns a pointer to v for optional minor-unit fields.
func Cents(v int64) *int64 {
	return &v
}
