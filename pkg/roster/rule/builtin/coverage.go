package builtin

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// coverageWindow counts distinct staff whose assignments overlap a window on
// a day, optionally filtered by role.
func coverageWindow(ctx *rule.Context, day model.Weekday, r model.ClockRange, role string) (int, []uuid.UUID) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, a := range ctx.DayAssignments(day) {
		if !a.Range.Overlaps(r) {
			continue
		}
		if role != "" && a.Role != role {
			continue
		}
		if !seen[a.StaffID] {
			seen[a.StaffID] = true
			ids = append(ids, a.ID)
		}
	}
	return len(seen), ids
}

// coverageDays resolves the days a coverage rule applies to.
func (c *BaseConstraint) coverageDays() []model.Weekday {
	if d, ok := c.paramDay("day"); ok {
		return []model.Weekday{d}
	}
	return model.Weekdays
}

// MinCoverageConstraint requires at least N staff in a time window.
type MinCoverageConstraint struct {
	*BaseConstraint
}

// NewMinCoverageConstraint builds the constraint from a rule.
func NewMinCoverageConstraint(r *model.RosterRule) *MinCoverageConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MinCoverageConstraint{
		BaseConstraint: NewBaseConstraint("minimum coverage", rule.TypeMinCoverage, cat, r.Weight),
	}
	c.SetParams(r.Params)
	// A required marker promotes the rule to hard regardless of weight.
	if c.ParamBool("required", false) {
		c.category = rule.CategoryHard
	}
	return c
}

// Evaluate counts staff per window per applicable day.
func (c *MinCoverageConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	min := c.ParamInt("count", 1)
	role := c.ParamString("role", "")
	window, ok := c.paramClockRange("start", "end", "00:00", "24:00")
	if !ok {
		return true, 0, nil
	}

	var violations []model.Violation
	var penalty float64

	for _, day := range c.coverageDays() {
		got, ids := coverageWindow(ctx, day, window, role)
		if got < min {
			p := float64(c.Weight() * (min - got))
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s %s needs at least %d staff, has %d", day, window, min, got), p)
			v.Day = day
			v.AssignmentIDs = ids
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// MaxCoverageConstraint caps the staff count in a time window.
type MaxCoverageConstraint struct {
	*BaseConstraint
}

// NewMaxCoverageConstraint builds the constraint from a rule.
func NewMaxCoverageConstraint(r *model.RosterRule) *MaxCoverageConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MaxCoverageConstraint{
		BaseConstraint: NewBaseConstraint("maximum coverage", rule.TypeMaxCoverage, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate counts staff per window per applicable day.
func (c *MaxCoverageConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	max := c.ParamInt("count", 1)
	role := c.ParamString("role", "")
	window, ok := c.paramClockRange("start", "end", "00:00", "24:00")
	if !ok {
		return true, 0, nil
	}

	var violations []model.Violation
	var penalty float64

	for _, day := range c.coverageDays() {
		got, ids := coverageWindow(ctx, day, window, role)
		if got > max {
			p := float64(c.Weight() * (got - max))
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s %s allows at most %d staff, has %d", day, window, max, got), p)
			v.Day = day
			v.AssignmentIDs = ids
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// OpeningTimeConstraint requires the earliest assignment on a day to start
// at the shop's opening time.
type OpeningTimeConstraint struct {
	*BaseConstraint
}

// NewOpeningTimeConstraint builds the constraint from a rule.
func NewOpeningTimeConstraint(r *model.RosterRule) *OpeningTimeConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &OpeningTimeConstraint{
		BaseConstraint: NewBaseConstraint("opening time", rule.TypeOpeningTime, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate checks the earliest start on each applicable day.
func (c *OpeningTimeConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	openStr := c.ParamString("time", "09:00")
	open, err := model.ParseClock(openStr)
	if err != nil {
		return true, 0, nil
	}

	var violations []model.Violation

	for _, day := range c.coverageDays() {
		assignments := ctx.DayAssignments(day)
		if len(assignments) == 0 {
			continue
		}
		earliest := assignments[0].Range.Start
		for _, a := range assignments[1:] {
			if a.Range.Start < earliest {
				earliest = a.Range.Start
			}
		}
		if earliest != open {
			v := c.violation(
				fmt.Sprintf("%s first shift starts %s, opening is %s", day, model.FormatClock(earliest), openStr),
				float64(c.Weight()))
			v.Day = day
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// MinShiftLengthConstraint requires every assignment to last at least a
// minimum number of hours.
type MinShiftLengthConstraint struct {
	*BaseConstraint
}

// NewMinShiftLengthConstraint builds the constraint from a rule.
func NewMinShiftLengthConstraint(r *model.RosterRule) *MinShiftLengthConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MinShiftLengthConstraint{
		BaseConstraint: NewBaseConstraint("minimum shift length", rule.TypeMinShiftLength, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate checks every assignment's duration.
func (c *MinShiftLengthConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	minHours := c.ParamFloat("hours", 3)

	var violations []model.Violation

	for _, a := range ctx.Assignments {
		if a.Hours() < minHours {
			s := ctx.MustStaff(a.StaffID)
			v := c.violation(
				fmt.Sprintf("%s shift %s %s is %.1fh, below the %.1fh minimum",
					s.DisplayName(), a.Day, a.Range, a.Hours(), minHours),
				float64(c.Weight()))
			v.StaffID = a.StaffID
			v.Day = a.Day
			v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment checks one candidate's duration.
func (c *MinShiftLengthConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if a.Hours() < c.ParamFloat("hours", 3) {
		return false, float64(c.Weight())
	}
	return true, 0
}
