package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"op_trader/pricing/internal/logic"

	"github.com/lib/pq"
)

// marketColumns follows logic.MarketData.PricePoints order.
var marketColumns = []string{
	"ungraded",
	"psa1", "psa2", "psa3", "psa4", "psa5",
	"psa6", "psa7", "psa8", "psa9", "psa9_5", "psa10",
	"bgs", "cgc",
}

// MarketDataStore reads the market_prices table. The storefront importer
// owns the writes.
type MarketDataStore struct {
	db *sql.DB
}

// NewMarketDataStore expects main.go to pass it a working database connection.
func NewMarketDataStore(db *sql.DB) *MarketDataStore {
	return &MarketDataStore{db: db}
}

// GetMarketDataBatch loads several items in one round trip. Items without
// prices are absent from the map.
func (s *MarketDataStore) GetMarketDataBatch(ctx context.Context, itemIDs []string) (map[string]*logic.MarketData, error) {
	out := make(map[string]*logic.MarketData, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	query := `SELECT item_id, ` + strings.Join(marketColumns, ", ") + `
		FROM market_prices
		WHERE item_id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		md, err := scanMarketData(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market data: %w", err)
		}
		out[md.ItemID] = md
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read market data: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarketData(row rowScanner) (*logic.MarketData, error) {
	md := &logic.MarketData{}
	points := md.PricePoints()
	raw := make([]sql.NullInt64, len(points))

	dest := make([]any, 0, len(points)+1)
	dest = append(dest, &md.ItemID)
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, v := range raw {
		*points[i] = centsOrNil(v)
	}
	return md, nil
}

func centsOrNil(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return logic.Cents(v.Int64)
}

func nullableCents(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
