package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"op_trader/pricing/internal/logic"
	"op_trader/pricing/internal/rates"
	"op_trader/pricing/internal/store"
	"op_trader/pricing/rpc"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// MarketDataReader loads market price points for catalog items.
type MarketDataReader interface {
	GetMarketDataBatch(ctx context.Context, itemIDs []string) (map[string]*logic.MarketData, error)
}

// RuleRepository reads and replaces a seller's pricing rules.
type RuleRepository interface {
	store.RuleReader
	ReplaceRules(ctx context.Context, sellerID string, rules logic.RuleSet) error
}

// RateSource exposes the latest exchange-rate table.
type RateSource interface {
	Snapshot() (logic.RateTable, time.Time)
}

type PricingHandler struct {
	rpc.UnimplementedPricingServiceServer
	market MarketDataReader
	rules  RuleRepository
	rates  RateSource
	logger *slog.Logger
}

// NewPricingHandler constructs a pricing gRPC handler.
func NewPricingHandler(market MarketDataReader, rules RuleRepository, rates RateSource, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		market: market,
		rules:  rules,
		rates:  rates,
		logger: logger.With("component", "grpc"),
	}
}

// QuoteListings resolves sale prices for a seller's listings in the
// requested display currency.
func (h *PricingHandler) QuoteListings(ctx context.Context, req *rpc.QuoteListingsRequest) (*rpc.QuoteListingsResponse, error) {
	h.logger.Debug("QuoteListings called", "seller_id", req.SellerID, "listings", len(req.Listings))
	if req.SellerID == "" {
		return nil, status.Errorf(codes.InvalidArgument, "seller_id is required")
	}
	display, err := currencyOrDefault(req.DisplayCurrency)
	if err != nil {
		return nil, err
	}

	rules, err := h.loadRules(ctx, req.SellerID)
	if err != nil {
		return nil, err
	}

	// 1. Market data for every distinct item in one query
	itemIDs := make([]string, 0, len(req.Listings))
	seen := make(map[string]bool, len(req.Listings))
	for _, l := range req.Listings {
		if l == nil || l.ItemID == "" || seen[l.ItemID] {
			continue
		}
		seen[l.ItemID] = true
		itemIDs = append(itemIDs, l.ItemID)
	}
	market, err := h.market.GetMarketDataBatch(ctx, itemIDs)
	if err != nil {
		h.logger.Error("market data fetch failed", "seller_id", req.SellerID, "err", err)
		return nil, status.Errorf(codes.Internal, "failed to fetch market data: %v", err)
	}

	// 2. Display rate from the current snapshot
	table, asOf := h.rates.Snapshot()
	displayRate := table.CrossRate(logic.DefaultBaseCurrency, display)

	// 3. Resolve each listing
	quotes := make([]*rpc.Quote, 0, len(req.Listings))
	for i, l := range req.Listings {
		if l == nil {
			return nil, status.Errorf(codes.InvalidArgument, "listing %d is empty", i)
		}
		pricing, err := listingPricing(l)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "listing %s: %v", l.ListingID, err)
		}

		marketValue := logic.ResolveMarketValue(market[l.ItemID], l.GradingService, l.Grade)
		quote := logic.ResolveListingPrice(pricing, marketValue, l.CostCents, rules, displayRate)

		q := &rpc.Quote{
			ListingID:        l.ListingID,
			MarketValueCents: marketValue,
			InternalCents:    quote.Internal,
			DisplayCents:     quote.Display,
			Formatted:        logic.Placeholder,
			FormattedMarket:  logic.ConvertAndFormat(marketValue, logic.DefaultBaseCurrency, display, table),
		}
		if quote.Display != nil {
			q.Formatted = logic.FormatMinor(*quote.Display, display)
		}
		if quote.MatchedRule != nil {
			idx := int32(*quote.MatchedRule)
			q.MatchedRuleIndex = &idx
		}
		quotes = append(quotes, q)
	}

	resp := &rpc.QuoteListingsResponse{DisplayCurrency: display, Quotes: quotes}
	if !asOf.IsZero() {
		resp.RatesAsOf = timestamppb.New(asOf)
	}
	h.logger.Debug("QuoteListings complete", "seller_id", req.SellerID, "quotes", len(quotes))
	return resp, nil
}

// GetRules returns the seller's rules, or the default ladder.
func (h *PricingHandler) GetRules(ctx context.Context, req *rpc.GetRulesRequest) (*rpc.GetRulesResponse, error) {
	if req.SellerID == "" {
		return nil, status.Errorf(codes.InvalidArgument, "seller_id is required")
	}
	rs, isDefault, err := store.LoadRuleSet(ctx, h.rules, req.SellerID)
	if err != nil {
		return nil, h.ruleError(req.SellerID, err)
	}
	return &rpc.GetRulesResponse{
		SellerID:  req.SellerID,
		Rules:     toRPCRules(rs.Rules()),
		IsDefault: isDefault,
	}, nil
}

// SetRules validates and replaces the seller's rules.
func (h *PricingHandler) SetRules(ctx context.Context, req *rpc.SetRulesRequest) (*rpc.SetRulesResponse, error) {
	h.logger.Info("SetRules called", "seller_id", req.SellerID, "rules", len(req.Rules))
	if req.SellerID == "" {
		return nil, status.Errorf(codes.InvalidArgument, "seller_id is required")
	}

	rules, err := fromRPCRules(req.Rules)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	rs, err := logic.NewRuleSet(rules)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid rule set: %v", err)
	}

	if err := h.rules.ReplaceRules(ctx, req.SellerID, rs); err != nil {
		h.logger.Error("SetRules failed", "seller_id", req.SellerID, "err", err)
		return nil, status.Errorf(codes.Internal, "failed to save rules: %v", err)
	}
	h.logger.Info("SetRules success", "seller_id", req.SellerID, "rules", rs.Len())

	return &rpc.SetRulesResponse{SellerID: req.SellerID, Rules: toRPCRules(rs.Rules())}, nil
}

// FormatAmounts converts ledger amounts and renders them for display.
func (h *PricingHandler) FormatAmounts(_ context.Context, req *rpc.FormatAmountsRequest) (*rpc.FormatAmountsResponse, error) {
	ledger, err := currencyOrDefault(req.LedgerCurrency)
	if err != nil {
		return nil, err
	}
	display, err := currencyOrDefault(req.DisplayCurrency)
	if err != nil {
		return nil, err
	}

	table, _ := h.rates.Snapshot()
	out := make([]string, len(req.AmountsCents))
	for i, amount := range req.AmountsCents {
		out[i] = logic.ConvertAndFormat(amount, ledger, display, table)
	}
	return &rpc.FormatAmountsResponse{Formatted: out}, nil
}

// GetRates returns the current rate snapshot.
func (h *PricingHandler) GetRates(_ context.Context, _ *emptypb.Empty) (*rpc.GetRatesResponse, error) {
	table, asOf := h.rates.Snapshot()
	resp := &rpc.GetRatesResponse{
		Base:  table.Base,
		Rates: make(map[string]string, len(table.Rates)),
	}
	for code, rate := range table.Rates {
		resp.Rates[code] = rate.String()
	}
	if !asOf.IsZero() {
		resp.AsOf = timestamppb.New(asOf)
	}
	return resp, nil
}

func (h *PricingHandler) loadRules(ctx context.Context, sellerID string) (logic.RuleSet, error) {
	rs, _, err := store.LoadRuleSet(ctx, h.rules, sellerID)
	if err != nil {
		return logic.RuleSet{}, h.ruleError(sellerID, err)
	}
	return rs, nil
}

func (h *PricingHandler) ruleError(sellerID string, err error) error {
	if errors.Is(err, store.ErrInvalidStoredRules) {
		h.logger.Warn("stored rules rejected", "seller_id", sellerID, "err", err)
		return status.Errorf(codes.FailedPrecondition, "%v", err)
	}
	h.logger.Error("rule fetch failed", "seller_id", sellerID, "err", err)
	return status.Errorf(codes.Internal, "failed to fetch rules: %v", err)
}

func currencyOrDefault(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return logic.DefaultBaseCurrency, nil
	}
	if !rates.ValidCode(code) {
		return "", status.Errorf(codes.InvalidArgument, "unknown currency %q", code)
	}
	return code, nil
}
