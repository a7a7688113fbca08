package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// RuleRepository reads the stored roster rules.
type RuleRepository struct {
	db DB
}

// NewRuleRepository creates the rule repository.
func NewRuleRepository(db DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// ActiveRules returns the rules that are switched on and not expired as of
// the given date, heaviest first.
func (r *RuleRepository) ActiveRules(ctx context.Context, asOf time.Time) ([]*model.RosterRule, error) {
	query := `
		SELECT id, rule_text, constraint_type, parameters, weight, is_active, expires_at,
			created_at, updated_at
		FROM roster_rules
		WHERE is_active = TRUE
			AND (expires_at IS NULL OR expires_at >= $1)
			AND deleted_at IS NULL
		ORDER BY weight DESC, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, asOf.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("querying roster rules: %w", err)
	}
	defer rows.Close()

	var rules []*model.RosterRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// scanRule reads one rule row.
func scanRule(row Scanner) (*model.RosterRule, error) {
	rule := &model.RosterRule{}
	var paramsJSON []byte
	var ruleText sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(
		&rule.ID, &ruleText, &rule.Type, &paramsJSON, &rule.Weight, &rule.IsActive,
		&expiresAt, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning rule row: %w", err)
	}

	rule.RuleText = ruleText.String
	if expiresAt.Valid {
		t := expiresAt.Time
		rule.ExpiresAt = &t
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &rule.Params); err != nil {
			return nil, fmt.Errorf("parsing parameters of rule %s: %w", rule.ID, err)
		}
	}
	return rule, nil
}
