package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"op_trader/pricing/internal/logic"

	"github.com/shopspring/decimal"
)

// MarketListing is an active market-mode listing as the re-pricer sees it.
type MarketListing struct {
	ListingID      string
	SellerID       string
	ItemID         string
	GradingService string
	Grade          string
	Pricing        logic.ListingPricing
	CostCents      *int64
	QuotedCents    *int64
}

// ListingStore is the pricing service's view of the shared listings table.
type ListingStore struct {
	db *sql.DB
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// ListMarketListings pages through active market-mode listings by id.
// Pass the last id of the previous page as afterID.
func (s *ListingStore) ListMarketListings(ctx context.Context, afterID string, limit int) ([]MarketListing, error) {
	query := `
		SELECT l.id, l.seller_id, l.item_id, l.grading_service, l.grade,
		       l.market_multiplier, l.market_round_to_cents, l.quantity,
		       ci.cost_cents, l.quoted_price_cents
		FROM listings l
		LEFT JOIN collection_items ci ON ci.id = l.collection_item_id
		WHERE l.pricing_mode = 'market' AND l.status = 'active' AND l.id > $1
		ORDER BY l.id
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market listings: %w", err)
	}
	defer rows.Close()

	var out []MarketListing
	for rows.Next() {
		var (
			l          MarketListing
			multiplier decimal.NullDecimal
			roundTo    sql.NullInt64
			cost       sql.NullInt64
			quoted     sql.NullInt64
		)
		err := rows.Scan(
			&l.ListingID, &l.SellerID, &l.ItemID, &l.GradingService, &l.Grade,
			&multiplier, &roundTo, &l.Pricing.Quantity,
			&cost, &quoted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market listing: %w", err)
		}
		l.Pricing.Mode = logic.ModeMarket
		if multiplier.Valid {
			m := multiplier.Decimal
			l.Pricing.MarketMultiplier = &m
		}
		l.Pricing.MarketRoundTo = centsOrNil(roundTo)
		l.CostCents = centsOrNil(cost)
		l.QuotedCents = centsOrNil(quoted)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read market listings: %w", err)
	}
	return out, nil
}

// SaveQuote records the latest ledger price resolved for a listing.
func (s *ListingStore) SaveQuote(ctx context.Context, listingID string, quote logic.PriceQuote, at time.Time) error {
	var ruleIndex sql.NullInt64
	if quote.MatchedRule != nil {
		ruleIndex = sql.NullInt64{Int64: int64(*quote.MatchedRule), Valid: true}
	}

	query := `
		UPDATE listings
		SET quoted_price_cents = $2, quoted_rule_index = $3, quoted_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, listingID, nullableCents(quote.Internal), ruleIndex, at)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to save quote: listing %s not found", listingID)
	}
	return nil
}
