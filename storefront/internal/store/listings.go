package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	ModeFixed  = "fixed"
	ModeMarket = "market"

	StatusActive = "active"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrNoCollectionItems  = errors.New("no collection items selected")
	ErrCollectionMismatch = errors.New("collection item not found for seller")
)

// Listing is a storefront listing joined with its catalog entry and the cost
// of the collection item it was listed from.
type Listing struct {
	ID                 string
	SellerID           string
	CollectionItemID   *string
	ItemID             string
	Name               string
	SetCode            string
	CardNumber         string
	GradingService     string
	Grade              string
	PricingMode        string
	FixedPriceCents    *int64
	MarketMultiplier   *decimal.Decimal
	MarketRoundToCents *int64
	CostCents          *int64
	Quantity           int
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PriceUpdate is an inline price edit. Fixed edits clear the market fields
// and market edits clear the fixed price. A nil Quantity keeps the current
// quantity.
type PriceUpdate struct {
	Mode               string
	FixedPriceCents    *int64
	MarketMultiplier   *decimal.Decimal
	MarketRoundToCents *int64
	Quantity           *int
}

type ListingStore struct {
	db *sql.DB
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

const listingSelect = `
	SELECT l.id, l.seller_id, l.collection_item_id, l.item_id,
	       c.name, c.set_code, c.card_number,
	       l.grading_service, l.grade, l.pricing_mode,
	       l.fixed_price_cents, l.market_multiplier, l.market_round_to_cents,
	       ci.cost_cents, l.quantity, l.status, l.created_at, l.updated_at
	FROM listings l
	JOIN catalog_items c ON c.id = l.item_id
	LEFT JOIN collection_items ci ON ci.id = l.collection_item_id
`

// ListBySeller returns a seller's listings, newest first.
func (s *ListingStore) ListBySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	query := listingSelect + `
		WHERE l.seller_id = $1
		ORDER BY l.created_at DESC, l.id
	`
	rows, err := s.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// GetListing returns nil, nil when the listing does not exist or belongs to
// another seller.
func (s *ListingStore) GetListing(ctx context.Context, sellerID, id string) (*Listing, error) {
	query := listingSelect + `WHERE l.seller_id = $1 AND l.id = $2`

	l, err := scanListing(s.db.QueryRowContext(ctx, query, sellerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

// listingPriceUpdate writes the pricing fields and the optional quantity in
// one statement so an edit never lands half applied.
const listingPriceUpdate = `
		UPDATE listings
		SET pricing_mode = $3, fixed_price_cents = $4,
		    market_multiplier = $5, market_round_to_cents = $6,
		    quantity = COALESCE($7, quantity),
		    updated_at = NOW()
		WHERE seller_id = $1 AND id = $2
	`

func (s *ListingStore) UpdatePrice(ctx context.Context, sellerID, id string, u PriceUpdate) error {
	args, err := priceUpdateArgs(sellerID, id, u)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, listingPriceUpdate, args...)
	if err != nil {
		return fmt.Errorf("failed to update listing price: %w", err)
	}
	return expectOneRow(res)
}

func priceUpdateArgs(sellerID, id string, u PriceUpdate) ([]any, error) {
	var (
		fixed      sql.NullInt64
		multiplier decimal.NullDecimal
		roundTo    sql.NullInt64
		quantity   sql.NullInt64
	)
	switch u.Mode {
	case ModeFixed:
		fixed = nullableCents(u.FixedPriceCents)
	case ModeMarket:
		if u.MarketMultiplier != nil {
			multiplier = decimal.NewNullDecimal(*u.MarketMultiplier)
		}
		roundTo = nullableCents(u.MarketRoundToCents)
	default:
		return nil, fmt.Errorf("unknown pricing mode %q", u.Mode)
	}
	if u.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*u.Quantity), Valid: true}
	}
	return []any{sellerID, id, u.Mode, fixed, multiplier, roundTo, quantity}, nil
}

// CreateFromCollection lists every selected collection item in market mode
// with the seller's rules. Either all listings are created or none are.
func (s *ListingStore) CreateFromCollection(ctx context.Context, sellerID string, collectionItemIDs []string) ([]string, error) {
	if len(collectionItemIDs) == 0 {
		return nil, ErrNoCollectionItems
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// A. Load the selected items, scoped to the seller
	rows, err := tx.QueryContext(ctx, `
		SELECT id, item_id, grading_service, grade, quantity
		FROM collection_items
		WHERE seller_id = $1 AND id = ANY($2)
	`, sellerID, pq.Array(collectionItemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection items: %w", err)
	}
	type source struct {
		id, itemID, grader, grade string
		quantity                  int
	}
	found := make(map[string]source, len(collectionItemIDs))
	for rows.Next() {
		var src source
		if err := rows.Scan(&src.id, &src.itemID, &src.grader, &src.grade, &src.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}
		found[src.id] = src
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// B. Insert one listing per item
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listings (id, seller_id, collection_item_id, item_id,
		                      grading_service, grade, pricing_mode, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(collectionItemIDs))
	for _, itemID := range collectionItemIDs {
		src, ok := found[itemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCollectionMismatch, itemID)
		}
		id := uuid.NewString()
		_, err := stmt.ExecContext(ctx, id, sellerID, src.id, src.itemID,
			src.grader, src.grade, ModeMarket, max(src.quantity, 1), StatusActive)
		if err != nil {
			return nil, fmt.Errorf("failed to list collection item %s: %w", itemID, err)
		}
		ids = append(ids, id)
	}

	// C. Commit
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ListingStore) DeleteListing(ctx context.Context, sellerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE seller_id = $1 AND id = $2`, sellerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		l          Listing
		collection sql.NullString
		fixed      sql.NullInt64
		multiplier decimal.NullDecimal
		roundTo    sql.NullInt64
		cost       sql.NullInt64
	)
	err := row.Scan(
		&l.ID, &l.SellerID, &collection, &l.ItemID,
		&l.Name, &l.SetCode, &l.CardNumber,
		&l.GradingService, &l.Grade, &l.PricingMode,
		&fixed, &multiplier, &roundTo,
		&cost, &l.Quantity, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}
	if collection.Valid {
		l.CollectionItemID = &collection.String
	}
	if multiplier.Valid {
		m := multiplier.Decimal
		l.MarketMultiplier = &m
	}
	l.FixedPriceCents = centsOrNil(fixed)
	l.MarketRoundToCents = centsOrNil(roundTo)
	l.CostCents = centsOrNil(cost)
	return &l, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

func centsOrNil(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullableCents(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
