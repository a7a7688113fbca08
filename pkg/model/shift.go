// Package model defines the core data types of the roster engine.
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Shift type labels used by the cafe.
const (
	ShiftOpening = "opening"
	ShiftDay     = "day"
	ShiftEvening = "evening"
	ShiftClosing = "closing"
)

// ShiftDemand is a slot that must (or may) be filled, the generation target.
type ShiftDemand struct {
	Day          Weekday    `json:"day_of_week"`
	ShiftType    string     `json:"shift_type"`
	Role         string     `json:"role_required,omitempty"`
	Range        ClockRange `json:"range"`
	MinStaff     int        `json:"min_staff"`
	MaxStaff     int        `json:"max_staff"`
	RequiresKeys bool       `json:"requires_keys,omitempty"`
}

// Key identifies the slot for grouping assignments against demand.
func (d *ShiftDemand) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", d.Day, d.ShiftType, d.Role, d.Range)
}

// ShiftAssignment is one staff-to-slot assignment, the unit of output and of
// evaluation input.
type ShiftAssignment struct {
	ID               uuid.UUID  `json:"id"`
	StaffID          uuid.UUID  `json:"staff_id"`
	Day              Weekday    `json:"day_of_week"`
	ShiftType        string     `json:"shift_type"`
	Role             string     `json:"role_required,omitempty"`
	Range            ClockRange `json:"range"`
	HasViolation     bool       `json:"has_violation"`
	ViolationMessage string     `json:"violation_message,omitempty"`
}

// Hours returns the assignment's duration in hours.
func (a *ShiftAssignment) Hours() float64 {
	return a.Range.Hours()
}

// SlotKey matches the assignment to its demand slot.
func (a *ShiftAssignment) SlotKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", a.Day, a.ShiftType, a.Role, a.Range)
}

// OverlapsWith reports whether two assignments for the same staff member
// collide in time.
func (a *ShiftAssignment) OverlapsWith(other *ShiftAssignment) bool {
	return a.StaffID == other.StaffID && a.Day == other.Day && a.Range.Overlaps(other.Range)
}

// Violation is one atomic constraint violation.
type Violation struct {
	ConstraintType string      `json:"constraint_type"`
	Severity       Severity    `json:"severity"`
	StaffID        uuid.UUID   `json:"staff_id,omitempty"`
	Day            Weekday     `json:"day_of_week,omitempty"`
	Message        string      `json:"message"`
	AssignmentIDs  []uuid.UUID `json:"affected_assignment_ids,omitempty"`
	Penalty        float64     `json:"penalty"`
}

// Solution is a complete candidate week roster with its evaluation.
type Solution struct {
	WeekStart   string             `json:"week_start"`
	Assignments []*ShiftAssignment `json:"assignments"`
	Score       float64            `json:"score"` // lower is better, 0 = no soft violations
	IsValid     bool               `json:"is_valid"`
	Violations  []Violation        `json:"violations"`
}

// Clone deep-copies the solution so a search move never mutates the original.
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		WeekStart:   s.WeekStart,
		Assignments: make([]*ShiftAssignment, len(s.Assignments)),
		Score:       s.Score,
		IsValid:     s.IsValid,
		Violations:  make([]Violation, len(s.Violations)),
	}
	for i, a := range s.Assignments {
		cloneA := *a
		clone.Assignments[i] = &cloneA
	}
	copy(clone.Violations, s.Violations)
	return clone
}

// StaffHours sums assigned hours per staff member.
func (s *Solution) StaffHours() map[uuid.UUID]float64 {
	hours := make(map[uuid.UUID]float64)
	for _, a := range s.Assignments {
		hours[a.StaffID] += a.Hours()
	}
	return hours
}

// RosterStats summarizes a solution for review.
type RosterStats struct {
	TotalShifts    int                   `json:"total_shifts"`
	UniqueStaff    int                   `json:"unique_staff"`
	TotalHours     float64               `json:"total_hours"`
	StaffHours     map[uuid.UUID]float64 `json:"staff_hours"`
	HardViolations int                   `json:"hard_violations"`
	SoftViolations int                   `json:"soft_violations"`
}

// Stats computes the summary for the solution.
func (s *Solution) Stats() *RosterStats {
	stats := &RosterStats{
		TotalShifts: len(s.Assignments),
		StaffHours:  s.StaffHours(),
	}
	for _, h := range stats.StaffHours {
		stats.TotalHours += h
	}
	stats.UniqueStaff = len(stats.StaffHours)
	for _, v := range s.Violations {
		switch v.Severity {
		case SeverityHard:
			stats.HardViolations++
		case SeveritySoft:
			stats.SoftViolations++
		}
	}
	return stats
}
