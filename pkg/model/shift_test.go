package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestShiftAssignment_OverlapsWith(t *testing.T) {
	staff := uuid.New()

	a := &ShiftAssignment{StaffID: staff, Day: Monday, Range: ClockRange{Start: 540, End: 1020}}
	b := &ShiftAssignment{StaffID: staff, Day: Monday, Range: ClockRange{Start: 960, End: 1320}}
	c := &ShiftAssignment{StaffID: staff, Day: Tuesday, Range: ClockRange{Start: 960, End: 1320}}
	d := &ShiftAssignment{StaffID: uuid.New(), Day: Monday, Range: ClockRange{Start: 960, End: 1320}}

	if !a.OverlapsWith(b) {
		t.Error("Same staff, same day, overlapping time: expected overlap")
	}
	if a.OverlapsWith(c) {
		t.Error("Different days should not overlap")
	}
	if a.OverlapsWith(d) {
		t.Error("Different staff should not overlap")
	}
}

func TestSolution_Clone(t *testing.T) {
	original := &Solution{
		WeekStart: "2026-01-05",
		Assignments: []*ShiftAssignment{
			{ID: uuid.New(), StaffID: uuid.New(), Day: Monday, Range: ClockRange{Start: 540, End: 1020}},
		},
		Score:   12.5,
		IsValid: true,
	}

	clone := original.Clone()
	clone.Assignments[0].StaffID = uuid.New()
	clone.Score = 99

	if original.Score != 12.5 {
		t.Error("Clone mutated original score")
	}
	if original.Assignments[0].StaffID == clone.Assignments[0].StaffID {
		t.Error("Clone shares assignment storage with original")
	}
}

func TestSolution_Stats(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	s := &Solution{
		Assignments: []*ShiftAssignment{
			{StaffID: alice, Day: Monday, Range: ClockRange{Start: 540, End: 1020}},   // 8h
			{StaffID: alice, Day: Tuesday, Range: ClockRange{Start: 540, End: 780}},   // 4h
			{StaffID: bob, Day: Monday, Range: ClockRange{Start: 1020, End: 1320}},    // 5h
		},
		Violations: []Violation{
			{Severity: SeverityHard},
			{Severity: SeveritySoft},
			{Severity: SeverityNotice},
		},
	}

	stats := s.Stats()
	if stats.TotalShifts != 3 {
		t.Errorf("TotalShifts = %d, want 3", stats.TotalShifts)
	}
	if stats.UniqueStaff != 2 {
		t.Errorf("UniqueStaff = %d, want 2", stats.UniqueStaff)
	}
	if stats.TotalHours != 17 {
		t.Errorf("TotalHours = %.1f, want 17", stats.TotalHours)
	}
	if stats.StaffHours[alice] != 12 {
		t.Errorf("alice hours = %.1f, want 12", stats.StaffHours[alice])
	}
	if stats.HardViolations != 1 || stats.SoftViolations != 1 {
		t.Errorf("Violation counts = %d/%d, want 1/1", stats.HardViolations, stats.SoftViolations)
	}
}

func TestRosterRule_IsHard(t *testing.T) {
	hard := &RosterRule{Weight: 100}
	soft := &RosterRule{Weight: 80}

	if !hard.IsHard() {
		t.Error("Weight 100 should be hard")
	}
	if soft.IsHard() {
		t.Error("Weight 80 should be soft")
	}
}
