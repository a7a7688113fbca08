// Package model defines the core data types of the roster engine.
package model

import "time"

// Rule weight bands. A weight at or above HardRuleWeight makes the rule a
// hard constraint; HighPriorityWeight and above marks soft rules that may
// override default policy such as the weekly hour cap.
const (
	HardRuleWeight     = 100
	HighPriorityWeight = 90
)

// RosterRule is a structured scheduling rule. Rules are produced externally;
// the engine treats Params as a type-specific bag validated against the
// catalog schema for the rule's Type.
type RosterRule struct {
	BaseModel
	RuleText  string     `json:"rule_text,omitempty" db:"rule_text"`
	Type      string     `json:"constraint_type" db:"constraint_type"`
	Params    JSONMap    `json:"parameters" db:"parameters"`
	Weight    int        `json:"weight" db:"weight"` // 0-100
	IsActive  bool       `json:"is_active" db:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// IsHard reports whether the rule is a hard constraint.
func (r *RosterRule) IsHard() bool {
	return r.Weight >= HardRuleWeight
}

// ActiveOn reports whether the rule applies on the given date.
func (r *RosterRule) ActiveOn(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.ExpiresAt == nil {
		return true
	}
	y1, m1, d1 := r.ExpiresAt.Date()
	y2, m2, d2 := t.Date()
	expires := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	day := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return !expires.Before(day)
}
