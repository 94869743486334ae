package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CatalogItem is a card in the shared catalog.
type CatalogItem struct {
	ID         string
	Name       string
	SetCode    string
	CardNumber string
}

// CollectionItem is a card a seller owns, listed or not.
type CollectionItem struct {
	ID             string
	SellerID       string
	ItemID         string
	Name           string
	SetCode        string
	CardNumber     string
	GradingService string
	Grade          string
	Quantity       int
	CostCents      *int64
	Source         string
	CreatedAt      time.Time
}

type CollectionStore struct {
	db *sql.DB
}

func NewCollectionStore(db *sql.DB) *CollectionStore {
	return &CollectionStore{db: db}
}

func (s *CollectionStore) ListCollection(ctx context.Context, sellerID string) ([]CollectionItem, error) {
	query := `
		SELECT ci.id, ci.seller_id, ci.item_id, c.name, c.set_code, c.card_number,
		       ci.grading_service, ci.grade, ci.quantity, ci.cost_cents,
		       ci.source, ci.created_at
		FROM collection_items ci
		JOIN catalog_items c ON c.id = ci.item_id
		WHERE ci.seller_id = $1
		ORDER BY c.set_code, c.card_number, ci.grading_service, ci.grade
	`
	rows, err := s.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var out []CollectionItem
	for rows.Next() {
		var (
			it   CollectionItem
			cost sql.NullInt64
		)
		err := rows.Scan(&it.ID, &it.SellerID, &it.ItemID, &it.Name, &it.SetCode, &it.CardNumber,
			&it.GradingService, &it.Grade, &it.Quantity, &cost, &it.Source, &it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection item: %w", err)
		}
		it.CostCents = centsOrNil(cost)
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertCollectionItem inserts an item or, when the seller already holds the
// same card at the same grade, replaces its quantity and cost. It reports
// whether a new row was created.
func (s *CollectionStore) UpsertCollectionItem(ctx context.Context, it CollectionItem) (bool, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.GradingService == "" {
		it.GradingService = "ungraded"
	}
	query := `
		INSERT INTO collection_items (id, seller_id, item_id, grading_service, grade,
		                              quantity, cost_cents, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (seller_id, item_id, grading_service, grade) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    cost_cents = COALESCE(EXCLUDED.cost_cents, collection_items.cost_cents),
		    source = EXCLUDED.source,
		    updated_at = NOW()
		RETURNING (xmax = 0)
	`
	var inserted bool
	err := s.db.QueryRowContext(ctx, query,
		it.ID, it.SellerID, it.ItemID, it.GradingService, it.Grade,
		it.Quantity, nullableCents(it.CostCents), it.Source,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert collection item %s: %w", it.ItemID, err)
	}
	return inserted, nil
}

// FindCatalogItem looks a card up by set code and card number, ignoring case
// and leading zeros on the number. Returns nil, nil when nothing matches.
func (s *CollectionStore) FindCatalogItem(ctx context.Context, setCode, cardNumber string) (*CatalogItem, error) {
	query := `
		SELECT id, name, set_code, card_number
		FROM catalog_items
		WHERE LOWER(set_code) = LOWER($1)
		  AND LTRIM(LOWER(card_number), '0') = LTRIM(LOWER($2), '0')
		LIMIT 1
	`
	var c CatalogItem
	err := s.db.QueryRowContext(ctx, query, strings.TrimSpace(setCode), strings.TrimSpace(cardNumber)).
		Scan(&c.ID, &c.Name, &c.SetCode, &c.CardNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find catalog item: %w", err)
	}
	return &c, nil
}
