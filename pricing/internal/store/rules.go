package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"op_trader/pricing/internal/logic"

	"github.com/shopspring/decimal"
)

// RuleStore persists each seller's pricing rules in their configured order.
type RuleStore struct {
	db *sql.DB
}

func NewRuleStore(db *sql.DB) *RuleStore {
	return &RuleStore{db: db}
}

// GetRules returns the seller's rules ordered by position. An empty slice
// means the seller never configured any.
func (s *RuleStore) GetRules(ctx context.Context, sellerID string) ([]logic.PricingRule, error) {
	query := `
		SELECT threshold_cents, multiplier, round_to_cents
		FROM pricing_rules
		WHERE seller_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []logic.PricingRule
	for rows.Next() {
		var (
			threshold  sql.NullInt64
			multiplier decimal.Decimal
			roundTo    int64
		)
		if err := rows.Scan(&threshold, &multiplier, &roundTo); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, logic.PricingRule{
			Threshold:  centsOrNil(threshold),
			Multiplier: multiplier,
			RoundTo:    roundTo,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}
	return rules, nil
}

// ReplaceRules swaps the seller's whole rule set in one transaction.
func (s *RuleStore) ReplaceRules(ctx context.Context, sellerID string, rules logic.RuleSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pricing_rules WHERE seller_id = $1`, sellerID); err != nil {
		return fmt.Errorf("failed to delete rules: %w", err)
	}

	insert := `
		INSERT INTO pricing_rules (seller_id, position, threshold_cents, multiplier, round_to_cents)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, r := range rules.Rules() {
		if _, err := tx.ExecContext(ctx, insert, sellerID, i, nullableCents(r.Threshold), r.Multiplier, r.RoundTo); err != nil {
			return fmt.Errorf("failed to insert rule %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	return nil
}

// ErrInvalidStoredRules marks a persisted rule set that no longer passes
// validation.
var ErrInvalidStoredRules = errors.New("stored pricing rules are invalid")

// RuleReader is the read side of RuleStore.
type RuleReader interface {
	GetRules(ctx context.Context, sellerID string) ([]logic.PricingRule, error)
}

// LoadRuleSet returns the seller's validated rules, or logic.DefaultRules
// with isDefault set when the seller has none.
func LoadRuleSet(ctx context.Context, r RuleReader, sellerID string) (rs logic.RuleSet, isDefault bool, err error) {
	rules, err := r.GetRules(ctx, sellerID)
	if err != nil {
		return logic.RuleSet{}, false, err
	}
	if len(rules) == 0 {
		return logic.DefaultRules(), true, nil
	}
	rs, err = logic.NewRuleSet(rules)
	if err != nil {
		return logic.RuleSet{}, false, fmt.Errorf("%w: seller %s: %v", ErrInvalidStoredRules, sellerID, err)
	}
	return rs, false, nil
}
