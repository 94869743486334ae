package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// MarketPriceColumns are the price points of the market_prices table.
var MarketPriceColumns = []string{
	"ungraded",
	"psa1", "psa2", "psa3", "psa4", "psa5",
	"psa6", "psa7", "psa8", "psa9", "psa9_5", "psa10",
	"bgs", "cgc",
}

// IsMarketPriceColumn reports whether col is one of MarketPriceColumns.
func IsMarketPriceColumn(col string) bool {
	for _, c := range MarketPriceColumns {
		if c == col {
			return true
		}
	}
	return false
}

// MarketPriceStore writes imported price-guide rows. Reading them back is the
// pricing service's job.
type MarketPriceStore struct {
	db *sql.DB
}

func NewMarketPriceStore(db *sql.DB) *MarketPriceStore {
	return &MarketPriceStore{db: db}
}

// UpsertMarketPrices sets the given price points for an item, leaving the
// other points untouched.
func (s *MarketPriceStore) UpsertMarketPrices(ctx context.Context, itemID string, prices map[string]int64) error {
	query, args, err := marketPriceUpsert(itemID, prices)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert market prices for %s: %w", itemID, err)
	}
	return nil
}

func marketPriceUpsert(itemID string, prices map[string]int64) (string, []any, error) {
	if len(prices) == 0 {
		return "", nil, fmt.Errorf("no market prices for %s", itemID)
	}

	cols := []string{"item_id"}
	args := []any{itemID}
	var updates []string
	// Iterate in column order so the statement text is stable.
	for _, col := range MarketPriceColumns {
		v, ok := prices[col]
		if !ok {
			continue
		}
		cols = append(cols, col)
		args = append(args, v)
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	if len(cols)-1 != len(prices) {
		return "", nil, fmt.Errorf("unknown market price column for %s", itemID)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	updates = append(updates, "updated_at = NOW()")

	query := "INSERT INTO market_prices (" + strings.Join(cols, ", ") + ")" +
		" VALUES (" + strings.Join(placeholders, ", ") + ")" +
		" ON CONFLICT (item_id) DO UPDATE SET " + strings.Join(updates, ", ")
	return query, args, nil
}
