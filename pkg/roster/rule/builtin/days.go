package builtin

import (
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// DayOffConstraint keeps targeted staff free on a named day, or guarantees a
// minimum number of free days when no day is named.
type DayOffConstraint struct {
	*BaseConstraint
}

// NewDayOffConstraint builds the constraint from a rule.
func NewDayOffConstraint(r *model.RosterRule) *DayOffConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &DayOffConstraint{
		BaseConstraint: NewBaseConstraint("day off", rule.TypeDayOff, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate checks the named day, or counts free days.
func (c *DayOffConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation
	var penalty float64

	if day, ok := c.paramDay("day"); ok {
		for _, s := range c.targetStaff(ctx) {
			var worked int
			for _, a := range ctx.StaffAssignments(s.ID) {
				if a.Day == day {
					worked++
				}
			}
			if worked > 0 {
				p := float64(c.Weight() * worked)
				penalty += p
				v := c.violation(fmt.Sprintf("%s is rostered on %s, which should be a day off", s.DisplayName(), day), p)
				v.StaffID = s.ID
				v.Day = day
				violations = append(violations, v)
			}
		}
		return len(violations) == 0, penalty, violations
	}

	minOff := c.ParamInt("min_days_off", 1)
	for _, s := range c.targetStaff(ctx) {
		off := 7 - len(ctx.DaysWorked(s.ID))
		if off < minOff {
			p := float64(c.Weight() * (minOff - off))
			penalty += p
			v := c.violation(fmt.Sprintf("%s has %d days off, wanted at least %d", s.DisplayName(), off, minOff), p)
			v.StaffID = s.ID
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// EvaluateAssignment rejects a candidate landing on the named day off.
func (c *DayOffConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	day, ok := c.paramDay("day")
	if !ok || a.Day != day || !c.appliesTo(ctx, a.StaffID) {
		return true, 0
	}
	return false, float64(c.Weight())
}

// MaxConsecutiveDaysConstraint limits the longest run of worked days.
type MaxConsecutiveDaysConstraint struct {
	*BaseConstraint
}

// NewMaxConsecutiveDaysConstraint builds the constraint from a rule.
func NewMaxConsecutiveDaysConstraint(r *model.RosterRule) *MaxConsecutiveDaysConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MaxConsecutiveDaysConstraint{
		BaseConstraint: NewBaseConstraint("consecutive days", rule.TypeMaxConsecutiveDays, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate finds the longest run of worked days per targeted staff member.
func (c *MaxConsecutiveDaysConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	maxRun := c.ParamInt("days", 5)

	var violations []model.Violation
	var penalty float64

	for _, s := range c.targetStaff(ctx) {
		longest, run := 0, 0
		for _, day := range model.Weekdays {
			if ctx.HoursOn(s.ID, day) > 0 {
				run++
				if run > longest {
					longest = run
				}
			} else {
				run = 0
			}
		}
		if longest > maxRun {
			p := float64(c.Weight() * (longest - maxRun))
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s works %d days in a row, the limit is %d", s.DisplayName(), longest, maxRun), p)
			v.StaffID = s.ID
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// EvaluateAssignment checks the run length the candidate would create.
func (c *MaxConsecutiveDaysConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if !c.appliesTo(ctx, a.StaffID) {
		return true, 0
	}
	maxRun := c.ParamInt("days", 5)
	if ctx.ConsecutiveDays(a.StaffID, a.Day) > maxRun {
		return false, float64(c.Weight())
	}
	return true, 0
}

// NoDayAndNightConstraint forbids working both a morning shift and an
// evening shift on the same day.
type NoDayAndNightConstraint struct {
	*BaseConstraint
}

// NewNoDayAndNightConstraint builds the constraint from a rule.
func NewNoDayAndNightConstraint(r *model.RosterRule) *NoDayAndNightConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &NoDayAndNightConstraint{
		BaseConstraint: NewBaseConstraint("no split day", rule.TypeNoDayAndNight, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// boundaries reads the morning end and evening start clocks.
func (c *NoDayAndNightConstraint) boundaries() (int, int) {
	dayEnd, err := model.ParseClock(c.ParamString("day_end", "16:00"))
	if err != nil {
		dayEnd = 16 * 60
	}
	nightStart, err := model.ParseClock(c.ParamString("night_start", "18:00"))
	if err != nil {
		nightStart = 18 * 60
	}
	return dayEnd, nightStart
}

// Evaluate looks for a morning and an evening assignment on the same day.
func (c *NoDayAndNightConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	dayEnd, nightStart := c.boundaries()

	var violations []model.Violation

	for _, s := range c.targetStaff(ctx) {
		for _, day := range model.Weekdays {
			var morning, evening *model.ShiftAssignment
			for _, a := range ctx.StaffAssignments(s.ID) {
				if a.Day != day {
					continue
				}
				if a.Range.Start < dayEnd && morning == nil {
					morning = a
				}
				if a.Range.End > nightStart && evening == nil {
					evening = a
				}
			}
			if morning != nil && evening != nil && morning.ID != evening.ID {
				v := c.violation(
					fmt.Sprintf("%s works both %s and %s on %s", s.DisplayName(), morning.Range, evening.Range, day),
					float64(c.Weight()))
				v.StaffID = s.ID
				v.Day = day
				v.AssignmentIDs = append(v.AssignmentIDs, morning.ID, evening.ID)
				violations = append(violations, v)
			}
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment rejects a candidate completing a split day.
func (c *NoDayAndNightConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if !c.appliesTo(ctx, a.StaffID) {
		return true, 0
	}
	dayEnd, nightStart := c.boundaries()
	for _, other := range ctx.StaffAssignments(a.StaffID) {
		if other.Day != a.Day || other.ID == a.ID {
			continue
		}
		if (a.Range.Start < dayEnd && other.Range.End > nightStart) ||
			(other.Range.Start < dayEnd && a.Range.End > nightStart) {
			return false, float64(c.Weight())
		}
	}
	return true, 0
}

// NoBackToBackConstraint requires a rest gap between a late shift and the
// next day's early shift.
type NoBackToBackConstraint struct {
	*BaseConstraint
}

// NewNoBackToBackConstraint builds the constraint from a rule.
func NewNoBackToBackConstraint(r *model.RosterRule) *NoBackToBackConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &NoBackToBackConstraint{
		BaseConstraint: NewBaseConstraint("rest between days", rule.TypeNoBackToBack, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate measures rest between each day's last shift and the next day's first.
func (c *NoBackToBackConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	minRest := int(c.ParamFloat("min_rest_hours", 10) * 60)

	var violations []model.Violation

	for _, s := range c.targetStaff(ctx) {
		for i := 0; i < len(model.Weekdays)-1; i++ {
			today, tomorrow := model.Weekdays[i], model.Weekdays[i+1]
			lastEnd := -1
			for _, a := range ctx.StaffAssignments(s.ID) {
				if a.Day == today && a.Range.End > lastEnd {
					lastEnd = a.Range.End
				}
			}
			if lastEnd < 0 {
				continue
			}
			firstStart := -1
			for _, a := range ctx.StaffAssignments(s.ID) {
				if a.Day == tomorrow && (firstStart < 0 || a.Range.Start < firstStart) {
					firstStart = a.Range.Start
				}
			}
			if firstStart < 0 {
				continue
			}
			rest := (24*60 - lastEnd) + firstStart
			if rest < minRest {
				v := c.violation(
					fmt.Sprintf("%s has %.1fh rest between %s and %s, wanted %.1fh",
						s.DisplayName(), float64(rest)/60, today, tomorrow, float64(minRest)/60),
					float64(c.Weight()))
				v.StaffID = s.ID
				v.Day = tomorrow
				violations = append(violations, v)
			}
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}
