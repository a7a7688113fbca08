package builtin

import (
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// StaffPairingConstraint keeps two staff members on overlapping shifts
// (mode together) or off overlapping shifts (mode apart).
type StaffPairingConstraint struct {
	*BaseConstraint
}

// NewStaffPairingConstraint builds the constraint from a rule.
func NewStaffPairingConstraint(r *model.RosterRule) *StaffPairingConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	c := &StaffPairingConstraint{
		BaseConstraint: NewBaseConstraint("staff pairing", rule.TypeStaffPairing, cat, r.Weight),
	}
	c.SetParams(r.Params)
	return c
}

// pair resolves the two staff members the rule names.
func (c *StaffPairingConstraint) pair(ctx *rule.Context) (*model.StaffMember, *model.StaffMember) {
	first := ctx.FindStaffByName(c.ParamString("staff_name", ""))
	second := ctx.FindStaffByName(c.ParamString("other_name", ""))
	return first, second
}

// overlapDays lists the days where the two staff members' shifts overlap.
func overlapDays(ctx *rule.Context, a, b *model.StaffMember) []model.Weekday {
	var days []model.Weekday
	for _, day := range model.Weekdays {
		found := false
		for _, sa := range ctx.StaffAssignments(a.ID) {
			if sa.Day != day {
				continue
			}
			for _, sb := range ctx.StaffAssignments(b.ID) {
				if sb.Day == day && sa.Range.Overlaps(sb.Range) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			days = append(days, day)
		}
	}
	return days
}

// Evaluate checks the pairing mode against the overlapping days.
func (c *StaffPairingConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	first, second := c.pair(ctx)
	if first == nil || second == nil {
		return true, 0, nil
	}

	mode := c.ParamString("mode", "apart")
	overlaps := overlapDays(ctx, first, second)

	var violations []model.Violation

	switch mode {
	case "apart":
		for _, day := range overlaps {
			v := c.violation(
				fmt.Sprintf("%s and %s overlap on %s but should work apart",
					first.DisplayName(), second.DisplayName(), day),
				float64(c.Weight()))
			v.Day = day
			violations = append(violations, v)
		}
	case "together":
		overlapSet := make(map[model.Weekday]bool, len(overlaps))
		for _, d := range overlaps {
			overlapSet[d] = true
		}
		for _, day := range model.Weekdays {
			firstWorks := ctx.HoursOn(first.ID, day) > 0
			secondWorks := ctx.HoursOn(second.ID, day) > 0
			if (firstWorks || secondWorks) && !overlapSet[day] {
				v := c.violation(
					fmt.Sprintf("%s and %s should share a shift on %s",
						first.DisplayName(), second.DisplayName(), day),
					float64(c.Weight()))
				v.Day = day
				violations = append(violations, v)
			}
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// RequiredRoleConstraint requires at least one staff member with a role on
// shift during a window.
type RequiredRoleConstraint struct {
	*BaseConstraint
	paramKey string
}

// NewRequiredRoleConstraint builds the constraint from a rule. The same
// implementation backs both the role and the skill rule types, which differ
// only in the parameter name.
func NewRequiredRoleConstraint(r *model.RosterRule) *RequiredRoleConstraint {
	cat := rule.CategorySoft
	if r.IsHard() {
		cat = rule.CategoryHard
	}
	name, paramKey := "required role", "role"
	if r.Type == rule.TypeRequiredSkill {
		name, paramKey = "required skill", "skill"
	}
	c := &RequiredRoleConstraint{
		BaseConstraint: NewBaseConstraint(name, r.Type, cat, r.Weight),
		paramKey:       paramKey,
	}
	c.SetParams(r.Params)
	return c
}

// Evaluate checks each applicable day's window for a qualifying staff member.
func (c *RequiredRoleConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	role := c.ParamString(c.paramKey, "")
	if role == "" {
		return true, 0, nil
	}
	window, ok := c.paramClockRange("start", "end", "00:00", "24:00")
	if !ok {
		return true, 0, nil
	}

	var violations []model.Violation

	for _, day := range c.coverageDays() {
		assignments := ctx.DayAssignments(day)
		inWindow := false
		covered := false
		for _, a := range assignments {
			if !a.Range.Overlaps(window) {
				continue
			}
			inWindow = true
			if ctx.MustStaff(a.StaffID).HasRole(role) {
				covered = true
				break
			}
		}
		if inWindow && !covered {
			v := c.violation(
				fmt.Sprintf("%s %s has no one qualified as %s on shift", day, window, role),
				float64(c.Weight()))
			v.Day = day
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}
