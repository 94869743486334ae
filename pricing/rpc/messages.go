// Package rpc holds the wire types and service descriptor of the pricing
// gRPC API. Messages travel as JSON through the codec registered in codec.go.
package rpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Rule struct {
	ThresholdCents *int64 `json:"threshold_cents,omitempty"`
	Multiplier     string `json:"multiplier"`
	RoundToCents   int64  `json:"round_to_cents"`
}

// ListingInput is one listing to quote. MarketMultiplier is a decimal string.
type ListingInput struct {
	ListingID          string  `json:"listing_id"`
	ItemID             string  `json:"item_id"`
	GradingService     string  `json:"grading_service"`
	Grade              string  `json:"grade"`
	PricingMode        string  `json:"pricing_mode"`
	FixedPriceCents    *int64  `json:"fixed_price_cents,omitempty"`
	MarketMultiplier   *string `json:"market_multiplier,omitempty"`
	MarketRoundToCents *int64  `json:"market_round_to_cents,omitempty"`
	CostCents          *int64  `json:"cost_cents,omitempty"`
	Quantity           int32   `json:"quantity"`
}

type Quote struct {
	ListingID        string `json:"listing_id"`
	MarketValueCents *int64 `json:"market_value_cents,omitempty"`
	InternalCents    *int64 `json:"internal_cents,omitempty"`
	DisplayCents     *int64 `json:"display_cents,omitempty"`
	MatchedRuleIndex *int32 `json:"matched_rule_index,omitempty"`
	Formatted        string `json:"formatted"`
	FormattedMarket  string `json:"formatted_market"`
}

type QuoteListingsRequest struct {
	SellerID        string          `json:"seller_id"`
	DisplayCurrency string          `json:"display_currency"`
	Listings        []*ListingInput `json:"listings"`
}

type QuoteListingsResponse struct {
	DisplayCurrency string                 `json:"display_currency"`
	Quotes          []*Quote               `json:"quotes"`
	RatesAsOf       *timestamppb.Timestamp `json:"rates_as_of,omitempty"`
}

type GetRulesRequest struct {
	SellerID string `json:"seller_id"`
}

type GetRulesResponse struct {
	SellerID  string  `json:"seller_id"`
	Rules     []*Rule `json:"rules"`
	IsDefault bool    `json:"is_default"`
}

type SetRulesRequest struct {
	SellerID string  `json:"seller_id"`
	Rules    []*Rule `json:"rules"`
}

type SetRulesResponse struct {
	SellerID string  `json:"seller_id"`
	Rules    []*Rule `json:"rules"`
}

// FormatAmountsRequest renders ledger amounts; nil entries render as the
// placeholder.
type FormatAmountsRequest struct {
	AmountsCents    []*int64 `json:"amounts_cents"`
	LedgerCurrency  string   `json:"ledger_currency"`
	DisplayCurrency string   `json:"display_currency"`
}

type FormatAmountsResponse struct {
	Formatted []string `json:"formatted"`
}

type GetRatesResponse struct {
	Base  string                 `json:"base"`
	Rates map[string]string      `json:"rates"`
	AsOf  *timestamppb.Timestamp `json:"as_of,omitempty"`
}
