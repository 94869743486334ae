package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMarketPriceUpsert(t *testing.T) {
	query, args, err := marketPriceUpsert("op01-001", map[string]int64{
		"psa10":    50000,
		"ungraded": 1200,
	})
	if err != nil {
		t.Fatalf("marketPriceUpsert() error = %v", err)
	}
	want := "INSERT INTO market_prices (item_id, ungraded, psa10) VALUES ($1, $2, $3)" +
		" ON CONFLICT (item_id) DO UPDATE SET ungraded = EXCLUDED.ungraded, psa10 = EXCLUDED.psa10, updated_at = NOW()"
	if query != want {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
	if len(args) != 3 || args[0] != "op01-001" || args[1] != int64(1200) || args[2] != int64(50000) {
		t.Errorf("args = %v", args)
	}
}

func TestMarketPriceUpsertRejects(t *testing.T) {
	tests := []struct {
		name   string
		prices map[string]int64
	}{
		{"empty", nil},
		{"unknown column", map[string]int64{"ungraded": 1, "psa11": 2}},
		{"injection attempt", map[string]int64{"ungraded = 0; DROP TABLE x; --": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := marketPriceUpsert("x", tt.prices); err == nil {
				t.Error("marketPriceUpsert() error = nil, want error")
			}
		})
	}
}

func TestIsMarketPriceColumn(t *testing.T) {
	if !IsMarketPriceColumn("psa9_5") {
		t.Error("psa9_5 should be a market price column")
	}
	if IsMarketPriceColumn("item_id") {
		t.Error("item_id should not be a market price column")
	}
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *time.Time:
			*d = v.(time.Time)
		case *sql.NullString:
			if v == nil {
				*d = sql.NullString{}
			} else {
				*d = sql.NullString{String: v.(string), Valid: true}
			}
		case *sql.NullInt64:
			if v == nil {
				*d = sql.NullInt64{}
			} else {
				*d = sql.NullInt64{Int64: v.(int64), Valid: true}
			}
		case *decimal.NullDecimal:
			if v == nil {
				*d = decimal.NullDecimal{}
			} else {
				*d = decimal.NewNullDecimal(decimal.RequireFromString(v.(string)))
			}
		default:
			return errors.New("unexpected destination type")
		}
	}
	return nil
}

func TestScanListing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	row := fakeRow{values: []any{
		"lst-1", "seller-1", "ci-1", "op01-001",
		"Roronoa Zoro", "OP01", "001",
		"psa", "10", ModeMarket,
		nil, "1.25", int64(500),
		int64(4000), 2, StatusActive, now, now,
	}}

	l, err := scanListing(row)
	if err != nil {
		t.Fatalf("scanListing() error = %v", err)
	}
	if l.CollectionItemID == nil || *l.CollectionItemID != "ci-1" {
		t.Errorf("CollectionItemID = %v, want ci-1", l.CollectionItemID)
	}
	if l.FixedPriceCents != nil {
		t.Errorf("FixedPriceCents = %d, want nil", *l.FixedPriceCents)
	}
	if l.MarketMultiplier == nil || !l.MarketMultiplier.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("MarketMultiplier = %v, want 1.25", l.MarketMultiplier)
	}
	if l.MarketRoundToCents == nil || *l.MarketRoundToCents != 500 {
		t.Errorf("MarketRoundToCents = %v, want 500", l.MarketRoundToCents)
	}
	if l.CostCents == nil || *l.CostCents != 4000 {
		t.Errorf("CostCents = %v, want 4000", l.CostCents)
	}
	if l.Quantity != 2 || l.Name != "Roronoa Zoro" {
		t.Errorf("listing = %+v", l)
	}
}

func TestScanListingNoRows(t *testing.T) {
	_, err := scanListing(fakeRow{err: sql.ErrNoRows})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("scanListing() error = %v, want sql.ErrNoRows", err)
	}
}
