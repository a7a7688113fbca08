package builtin

import (
	"fmt"
	"math"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// FairnessConstraint penalizes uneven hour totals across the staff pool.
// The magnitude is the coefficient of variation of weekly hours, so the
// penalty is comparable across rosters of different sizes.
type FairnessConstraint struct {
	*BaseConstraint
}

// NewFairnessConstraint builds the constraint from a rule.
func NewFairnessConstraint(r *model.RosterRule) *FairnessConstraint {
	c := &FairnessConstraint{
		BaseConstraint: NewBaseConstraint("fair hours", rule.TypeFairness, rule.CategorySoft, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// HoursSpread returns the mean and coefficient of variation of weekly hours
// over the given staff.
func HoursSpread(ctx *rule.Context, staff []*model.StaffMember) (mean, cv float64) {
	if len(staff) == 0 {
		return 0, 0
	}
	var total float64
	for _, s := range staff {
		total += ctx.StaffHours(s.ID)
	}
	mean = total / float64(len(staff))
	if mean == 0 {
		return 0, 0
	}
	var variance float64
	for _, s := range staff {
		d := ctx.StaffHours(s.ID) - mean
		variance += d * d
	}
	variance /= float64(len(staff))
	return mean, math.Sqrt(variance) / mean
}

// Evaluate measures the spread of hours across targeted staff.
func (c *FairnessConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	staff := c.targetStaff(ctx)
	mean, cv := HoursSpread(ctx, staff)
	tolerance := c.ParamFloat("tolerance", 0.1)
	if cv <= tolerance {
		return true, 0, nil
	}

	penalty := float64(c.Weight()) * (cv - tolerance)
	v := c.violation(
		fmt.Sprintf("hours are unevenly spread (mean %.1fh, spread %.0f%%)", mean, cv*100), penalty)
	return false, penalty, []model.Violation{v}
}

// EvaluateAssignment steers candidates toward the staff member with the
// fewest hours.
func (c *FairnessConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	staff := c.targetStaff(ctx)
	mean, _ := HoursSpread(ctx, staff)
	projected := ctx.StaffHours(a.StaffID) + a.Hours()
	if projected <= mean {
		return true, 0
	}
	return true, float64(c.Weight()) * (projected - mean) / 8
}

// PreferredTimeConstraint nudges assignments into each staff member's
// preferred working windows. Staff with no recorded preferences are neutral.
type PreferredTimeConstraint struct {
	*BaseConstraint
}

// NewPreferredTimeConstraint builds the constraint with a fixed weight; it
// backs the tie-breaking behavior rather than a stored rule.
func NewPreferredTimeConstraint(weight int) *PreferredTimeConstraint {
	return &PreferredTimeConstraint{
		BaseConstraint: NewBaseConstraint("preferred times", rule.TypePreferredTime, rule.CategorySoft, weight),
	}
}

// Evaluate flags assignments outside a staff member's preferred windows.
func (c *PreferredTimeConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, a := range ctx.Assignments {
		if !ctx.HasPreferences(a.StaffID) || ctx.PrefersTime(a.StaffID, a.Day, a.Range) {
			continue
		}
		s := ctx.MustStaff(a.StaffID)
		v := c.violation(
			fmt.Sprintf("%s %s falls outside %s's preferred times", a.Day, a.Range, s.DisplayName()),
			float64(c.Weight()))
		v.StaffID = a.StaffID
		v.Day = a.Day
		v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
		violations = append(violations, v)
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment penalizes a candidate outside preferred windows.
func (c *PreferredTimeConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if !ctx.HasPreferences(a.StaffID) || ctx.PrefersTime(a.StaffID, a.Day, a.Range) {
		return true, 0
	}
	return true, float64(c.Weight())
}

// ReluctantTimeConstraint penalizes assignments that only fit inside a staff
// member's preferred_not windows. The shift stays legal; the cost steers the
// search toward staff who actually want the slot.
type ReluctantTimeConstraint struct {
	*BaseConstraint
}

// NewReluctantTimeConstraint builds the constraint with a fixed weight.
func NewReluctantTimeConstraint(weight int) *ReluctantTimeConstraint {
	return &ReluctantTimeConstraint{
		BaseConstraint: NewBaseConstraint("reluctant times", rule.TypeReluctantTime, rule.CategorySoft, weight),
	}
}

// Evaluate flags assignments covered only reluctantly.
func (c *ReluctantTimeConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, a := range ctx.Assignments {
		if ctx.Availability(a.StaffID, a.Day, a.Range) != rule.AvailableReluctant {
			continue
		}
		s := ctx.MustStaff(a.StaffID)
		v := c.violation(
			fmt.Sprintf("%s would rather not work %s %s", s.DisplayName(), a.Day, a.Range),
			float64(c.Weight()))
		v.StaffID = a.StaffID
		v.Day = a.Day
		v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
		violations = append(violations, v)
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment penalizes a reluctantly covered candidate.
func (c *ReluctantTimeConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if ctx.Availability(a.StaffID, a.Day, a.Range) == rule.AvailableReluctant {
		return true, float64(c.Weight())
	}
	return true, 0
}
