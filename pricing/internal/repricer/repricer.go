// Package repricer periodically re-resolves market-mode listings and
// announces price moves.
package repricer

import (
	"context"
	"log/slog"
	"time"

	"op_trader/pricing/internal/events"
	"op_trader/pricing/internal/logic"
	"op_trader/pricing/internal/store"
)

const (
	DefaultInterval  = time.Hour
	DefaultPageSize  = 500
	DefaultPassLimit = 15 * time.Minute
)

type ListingSource interface {
	ListMarketListings(ctx context.Context, afterID string, limit int) ([]store.MarketListing, error)
	SaveQuote(ctx context.Context, listingID string, quote logic.PriceQuote, at time.Time) error
}

type MarketDataReader interface {
	GetMarketDataBatch(ctx context.Context, itemIDs []string) (map[string]*logic.MarketData, error)
}

type EventPublisher interface {
	PublishPriceChange(ev events.PriceChange) error
}

// Summary counts what one pass did.
type Summary struct {
	Scanned int
	Saved   int
	Changed int
	Failed  int
}

type Repricer struct {
	listings  ListingSource
	market    MarketDataReader
	rules     store.RuleReader
	events    EventPublisher
	logger    *slog.Logger
	pageSize  int
	passLimit time.Duration
	now       func() time.Time
}

func New(listings ListingSource, market MarketDataReader, rules store.RuleReader, events EventPublisher, logger *slog.Logger) *Repricer {
	return &Repricer{
		listings:  listings,
		market:    market,
		rules:     rules,
		events:    events,
		logger:    logger.With("component", "repricer"),
		pageSize:  DefaultPageSize,
		passLimit: DefaultPassLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run re-prices on every tick until ctx is cancelled.
func (r *Repricer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("background re-pricer is active", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, r.passLimit)
			sum, err := r.RunOnce(passCtx)
			cancel()
			if err != nil {
				r.logger.Error("re-price pass failed", "err", err)
				continue
			}
			r.logger.Info("re-price pass complete",
				"scanned", sum.Scanned, "saved", sum.Saved, "changed", sum.Changed, "failed", sum.Failed)
		}
	}
}

// RunOnce walks every market listing once, saving each quote in the ledger
// currency. A listing that fails is logged and counted but does not stop the
// pass.
func (r *Repricer) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	ruleCache := make(map[string]logic.RuleSet)
	after := ""

	for {
		page, err := r.listings.ListMarketListings(ctx, after, r.pageSize)
		if err != nil {
			return sum, err
		}
		if len(page) == 0 {
			return sum, nil
		}
		after = page[len(page)-1].ListingID

		itemIDs := make([]string, 0, len(page))
		for _, l := range page {
			itemIDs = append(itemIDs, l.ItemID)
		}
		market, err := r.market.GetMarketDataBatch(ctx, itemIDs)
		if err != nil {
			return sum, err
		}

		for _, l := range page {
			sum.Scanned++
			rules, ok := ruleCache[l.SellerID]
			if !ok {
				rules, _, err = store.LoadRuleSet(ctx, r.rules, l.SellerID)
				if err != nil {
					r.logger.Warn("skipping seller rules", "seller_id", l.SellerID, "err", err)
					sum.Failed++
					continue
				}
				ruleCache[l.SellerID] = rules
			}

			marketValue := logic.ResolveMarketValue(market[l.ItemID], l.GradingService, l.Grade)
			quote := logic.ResolveListingPrice(l.Pricing, marketValue, l.CostCents, rules, logic.NoConversionRate)

			at := r.now()
			if err := r.listings.SaveQuote(ctx, l.ListingID, quote, at); err != nil {
				r.logger.Error("save quote failed", "listing_id", l.ListingID, "err", err)
				sum.Failed++
				continue
			}
			sum.Saved++

			if !priceMoved(l.QuotedCents, quote.Internal) {
				continue
			}
			sum.Changed++
			r.publish(l, quote, at)
		}

		if len(page) < r.pageSize {
			return sum, nil
		}
	}
}

func (r *Repricer) publish(l store.MarketListing, quote logic.PriceQuote, at time.Time) {
	if r.events == nil {
		return
	}
	ev := events.PriceChange{
		ListingID: l.ListingID,
		ItemID:    l.ItemID,
		OldPrice:  valueOr(l.QuotedCents, 0),
		NewPrice:  valueOr(quote.Internal, 0),
		Currency:  logic.DefaultBaseCurrency,
		RuleIndex: -1,
		At:        at,
	}
	if quote.MatchedRule != nil {
		ev.RuleIndex = int32(*quote.MatchedRule)
	}
	if err := r.events.PublishPriceChange(ev); err != nil {
		r.logger.Warn("publish price change failed", "listing_id", l.ListingID, "err", err)
		return
	}
	r.logger.Info("re-priced listing", "listing_id", l.ListingID, "old", ev.OldPrice, "new", ev.NewPrice)
}

func priceMoved(old, next *int64) bool {
	if old == nil || next == nil {
		return old != next
	}
	return *old != *next
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}
	return *v
}
