// Package model defines the core data types of the roster engine.
package model

import (
	"github.com/google/uuid"
)

// StaffMember is an employee eligible for rostering. Read-only input to a
// generation or evaluation run.
type StaffMember struct {
	BaseModel
	Name            string   `json:"name" db:"name"`
	Nickname        string   `json:"nickname,omitempty" db:"nickname"`
	Email           string   `json:"email,omitempty" db:"email"`
	Roles           []string `json:"roles" db:"roles"`
	HasKeys         bool     `json:"has_keys" db:"has_keys"`
	MaxHoursPerWeek float64  `json:"max_hours_per_week" db:"max_hours_per_week"`
	HourlyRate      float64  `json:"hourly_rate" db:"hourly_rate"`
	IsActive        bool     `json:"is_active" db:"is_active"`
}

// HasRole reports whether the staff member can fill the given role.
func (s *StaffMember) HasRole(role string) bool {
	if role == "" {
		return true
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName prefers the nickname when one is set.
func (s *StaffMember) DisplayName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Name
}

// AvailabilityWindow is one recurring weekly availability entry. Multiple
// non-overlapping windows per staff/day define the weekly pattern.
type AvailabilityWindow struct {
	BaseModel
	StaffID uuid.UUID          `json:"staff_id" db:"staff_id"`
	Day     Weekday            `json:"day_of_week" db:"day_of_week"`
	Range   ClockRange         `json:"range"`
	Status  AvailabilityStatus `json:"status" db:"status"`
}

// TimeOff is a one-off exclusion for a concrete date. It takes precedence
// over the recurring availability pattern for that date.
type TimeOff struct {
	BaseModel
	StaffID uuid.UUID  `json:"staff_id" db:"staff_id"`
	Date    string     `json:"date" db:"date"` // YYYY-MM-DD
	Range   ClockRange `json:"range"`
	AllDay  bool       `json:"all_day" db:"all_day"`
	Reason  string     `json:"reason,omitempty" db:"reason"`
}

// Blocks reports whether the time off excludes the given range on the given date.
func (t *TimeOff) Blocks(date string, r ClockRange) bool {
	if t.Date != date {
		return false
	}
	if t.AllDay {
		return true
	}
	return t.Range.Overlaps(r)
}

// PreferredTime is a soft weekly preference, never a hard constraint.
type PreferredTime struct {
	BaseModel
	StaffID uuid.UUID  `json:"staff_id" db:"staff_id"`
	Day     Weekday    `json:"day_of_week" db:"day_of_week"`
	Range   ClockRange `json:"range"`
}
