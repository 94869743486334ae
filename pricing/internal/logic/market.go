package logic

import "strings"

// Grading services recognised by ResolveMarketValue. Anything else, including
// SGC, is priced as ungraded.
const (
	GradingUngraded = "ungraded"
	GradingPSA      = "psa"
	GradingBGS      = "bgs"
	GradingCGC      = "cgc"
	GradingSGC      = "sgc"
)

// MarketData is the set of market price points recorded for one catalog item,
// in ledger minor units. Missing points are nil.
type MarketData struct {
	ItemID   string `json:"item_id"`
	Ungraded *int64 `json:"ungraded"`
	PSA1     *int64 `json:"psa_1"`
	PSA2     *int64 `json:"psa_2"`
	PSA3     *int64 `json:"psa_3"`
	PSA4     *int64 `json:"psa_4"`
	PSA5     *int64 `json:"psa_5"`
	PSA6     *int64 `json:"psa_6"`
	PSA7     *int64 `json:"psa_7"`
	PSA8     *int64 `json:"psa_8"`
	PSA9     *int64 `json:"psa_9"`
	PSA95    *int64 `json:"psa_9_5"`
	PSA10    *int64 `json:"psa_10"`
	BGS      *int64 `json:"bgs"`
	CGC      *int64 `json:"cgc"`
}

// ResolveMarketValue picks the price point matching a grading service and
// grade. A nil record yields nil.
func ResolveMarketValue(md *MarketData, gradingService, grade string) *int64 {
	if md == nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(gradingService)) {
	case GradingPSA:
		if p, ok := md.psaGrade(strings.TrimSpace(grade)); ok {
			return p
		}
		return md.Ungraded
	case GradingBGS:
		return md.BGS
	case GradingCGC:
		return md.CGC
	default:
		return md.Ungraded
	}
}

func (md *MarketData) psaGrade(grade string) (*int64, bool) {
	switch grade {
	case "1":
		return md.PSA1, true
	case "2":
		return md.PSA2, true
	case "3":
		return md.PSA3, true
	case "4":
		return md.PSA4, true
	case "5":
		return md.PSA5, true
	case "6":
		return md.PSA6, true
	case "7":
		return md.PSA7, true
	case "8":
		return md.PSA8, true
	case "9":
		return md.PSA9, true
	case "9.5":
		return md.PSA95, true
	case "10":
		return md.PSA10, true
	}
	return nil, false
}

// PricePoints lists every price field in storage column order.
func (md *MarketData) PricePoints() []**int64 {
	return []**int64{
		&md.Ungraded,
		&md.PSA1, &md.PSA2, &md.PSA3, &md.PSA4, &md.PSA5,
		&md.PSA6, &md.PSA7, &md.PSA8, &md.PSA9, &md.PSA95, &md.PSA10,
		&md.BGS, &md.CGC,
	}
}
