package builtin

import (
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// MinHoursConstraint requires targeted staff to be rostered for at least a
// weekly hour floor. Staff with no assignments at all are not penalized
// unless strict is set, so the empty roster stays feasible.
type MinHoursConstraint struct {
	*BaseConstraint
}

// NewMinHoursConstraint builds the constraint from a rule.
func NewMinHoursConstraint(r *model.RosterRule) *MinHoursConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MinHoursConstraint{
		BaseConstraint: NewBaseConstraint("minimum weekly hours", rule.TypeMinHours, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate sums hours per targeted staff member.
func (c *MinHoursConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	minHours := c.ParamFloat("hours", 0)
	strict := c.ParamBool("strict", false)

	var violations []model.Violation
	var penalty float64

	for _, s := range c.targetStaff(ctx) {
		hours := ctx.StaffHours(s.ID)
		if hours == 0 && !strict {
			continue
		}
		if hours < minHours {
			p := float64(c.Weight()) * (minHours - hours)
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s has %.1fh this week, below the %.1fh minimum", s.DisplayName(), hours, minHours), p)
			v.StaffID = s.ID
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// MaxHoursConstraint caps the weekly hours of targeted staff. A high weight
// rule of this type can also raise the baseline weekly cap, which the
// baseline constraint reports separately.
type MaxHoursConstraint struct {
	*BaseConstraint
}

// NewMaxHoursConstraint builds the constraint from a rule.
func NewMaxHoursConstraint(r *model.RosterRule) *MaxHoursConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &MaxHoursConstraint{
		BaseConstraint: NewBaseConstraint("maximum weekly hours", rule.TypeMaxHours, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate sums hours per targeted staff member.
func (c *MaxHoursConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	maxHours := c.ParamFloat("hours", float64(ctx.DefaultMaxHours))

	var violations []model.Violation
	var penalty float64

	for _, s := range c.targetStaff(ctx) {
		hours := ctx.StaffHours(s.ID)
		if hours > maxHours {
			p := float64(c.Weight()) * (hours - maxHours)
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s has %.1fh this week, above the %.1fh cap", s.DisplayName(), hours, maxHours), p)
			v.StaffID = s.ID
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, penalty, violations
}

// EvaluateAssignment checks whether adding the candidate would break the cap.
func (c *MaxHoursConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if !c.appliesTo(ctx, a.StaffID) {
		return true, 0
	}
	maxHours := c.ParamFloat("hours", float64(ctx.DefaultMaxHours))
	projected := ctx.StaffHours(a.StaffID) + a.Hours()
	if projected > maxHours {
		return false, float64(c.Weight()) * (projected - maxHours)
	}
	return true, 0
}

// WeeklyFrequencyConstraint bounds how many distinct days a staff member
// works in the week.
type WeeklyFrequencyConstraint struct {
	*BaseConstraint
}

// NewWeeklyFrequencyConstraint builds the constraint from a rule.
func NewWeeklyFrequencyConstraint(r *model.RosterRule) *WeeklyFrequencyConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &WeeklyFrequencyConstraint{
		BaseConstraint: NewBaseConstraint("weekly frequency", rule.TypeWeeklyFrequency, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate counts worked days per targeted staff member.
func (c *WeeklyFrequencyConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	minDays := c.ParamInt("min_days", 0)
	maxDays := c.ParamInt("max_days", 7)

	var violations []model.Violation
	var penalty float64

	for _, s := range c.targetStaff(ctx) {
		days := len(ctx.DaysWorked(s.ID))
		if days == 0 && minDays > 0 && !c.ParamBool("strict", false) {
			continue
		}
		var gap int
		switch {
		case days < minDays:
			gap = minDays - days
		case days > maxDays:
			gap = days - maxDays
		default:
			continue
		}
		p := float64(c.Weight() * gap)
		penalty += p
		v := c.violation(
			fmt.Sprintf("%s works %d days, wanted %d-%d", s.DisplayName(), days, minDays, maxDays), p)
		v.StaffID = s.ID
		violations = append(violations, v)
	}

	return len(violations) == 0, penalty, violations
}
