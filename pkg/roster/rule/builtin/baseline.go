package builtin

import (
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// The baseline constraints are the hard invariants every roster must satisfy
// regardless of configured rules: no double-booking, availability, role
// match, the weekly hour cap, demand coverage, and key-holder coverage for
// opening shifts.

// NoDoubleBookingConstraint forbids overlapping assignments for one staff
// member on one day.
type NoDoubleBookingConstraint struct {
	*BaseConstraint
}

// NewNoDoubleBookingConstraint creates the double-booking invariant.
func NewNoDoubleBookingConstraint() *NoDoubleBookingConstraint {
	return &NoDoubleBookingConstraint{
		BaseConstraint: NewBaseConstraint("no double booking", rule.TypeDoubleBooking, rule.CategoryHard, model.HardRuleWeight),
	}
}

// Evaluate checks every staff/day pair for overlapping assignments.
func (c *NoDoubleBookingConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, s := range ctx.Staff {
		assignments := ctx.StaffAssignments(s.ID)
		for i := 0; i < len(assignments); i++ {
			for j := i + 1; j < len(assignments); j++ {
				if assignments[i].OverlapsWith(assignments[j]) {
					v := c.violation(
						fmt.Sprintf("%s is double-booked on %s (%s and %s)",
							s.DisplayName(), assignments[i].Day, assignments[i].Range, assignments[j].Range),
						float64(c.Weight()))
					v.StaffID = s.ID
					v.Day = assignments[i].Day
					v.AssignmentIDs = append(v.AssignmentIDs, assignments[i].ID, assignments[j].ID)
					violations = append(violations, v)
				}
			}
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment checks a candidate against the staff member's existing
// assignments.
func (c *NoDoubleBookingConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	for _, existing := range ctx.StaffAssignments(a.StaffID) {
		if existing.ID != a.ID && existing.OverlapsWith(a) {
			return false, float64(c.Weight())
		}
	}
	return true, 0
}

// AvailabilityConstraint requires every assignment to lie within an
// available window, with time off and unavailable windows as exclusions.
type AvailabilityConstraint struct {
	*BaseConstraint
}

// NewAvailabilityConstraint creates the availability invariant.
func NewAvailabilityConstraint() *AvailabilityConstraint {
	return &AvailabilityConstraint{
		BaseConstraint: NewBaseConstraint("availability", rule.TypeAvailability, rule.CategoryHard, model.HardRuleWeight),
	}
}

// Evaluate checks all assignments against the availability snapshot.
func (c *AvailabilityConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, a := range ctx.Assignments {
		s := ctx.MustStaff(a.StaffID)
		if ctx.Availability(a.StaffID, a.Day, a.Range) == rule.Unavailable {
			v := c.violation(
				fmt.Sprintf("%s is not available %s %s", s.DisplayName(), a.Day, a.Range),
				float64(c.Weight()))
			v.StaffID = a.StaffID
			v.Day = a.Day
			v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment checks one candidate's availability.
func (c *AvailabilityConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	if ctx.Availability(a.StaffID, a.Day, a.Range) == rule.Unavailable {
		return false, float64(c.Weight())
	}
	return true, 0
}

// RoleMatchConstraint requires the assignee to be capable of the slot's role.
type RoleMatchConstraint struct {
	*BaseConstraint
}

// NewRoleMatchConstraint creates the role-match invariant.
func NewRoleMatchConstraint() *RoleMatchConstraint {
	return &RoleMatchConstraint{
		BaseConstraint: NewBaseConstraint("role match", rule.TypeRoleMatch, rule.CategoryHard, model.HardRuleWeight),
	}
}

// Evaluate checks every assignment's role requirement.
func (c *RoleMatchConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, a := range ctx.Assignments {
		s := ctx.MustStaff(a.StaffID)
		if !s.HasRole(a.Role) {
			v := c.violation(
				fmt.Sprintf("%s cannot fill role %q on %s", s.DisplayName(), a.Role, a.Day),
				float64(c.Weight()))
			v.StaffID = a.StaffID
			v.Day = a.Day
			v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}

// EvaluateAssignment checks one candidate's role capability.
func (c *RoleMatchConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	s := ctx.GetStaff(a.StaffID)
	if s == nil || !s.HasRole(a.Role) {
		return false, float64(c.Weight())
	}
	return true, 0
}

// WeeklyHourCapConstraint enforces each staff member's weekly hour cap. An
// active max_hours rule at high-priority weight may raise the cap; the raise
// is surfaced as a notice rather than applied silently.
type WeeklyHourCapConstraint struct {
	*BaseConstraint
	overrideHours float64
	overrideName  string
}

// NewWeeklyHourCapConstraint creates the weekly cap invariant.
// overrideHours > 0 raises caps below it, crediting overrideName.
func NewWeeklyHourCapConstraint(overrideHours float64, overrideName string) *WeeklyHourCapConstraint {
	return &WeeklyHourCapConstraint{
		BaseConstraint: NewBaseConstraint("weekly hour cap", rule.TypeWeeklyHourCap, rule.CategoryHard, model.HardRuleWeight),
		overrideHours:  overrideHours,
		overrideName:   overrideName,
	}
}

// capFor returns the effective cap and whether the override raised it.
func (c *WeeklyHourCapConstraint) capFor(ctx *rule.Context, s *model.StaffMember) (float64, bool) {
	cap := ctx.MaxHoursFor(s)
	if c.overrideHours > cap {
		return c.overrideHours, true
	}
	return cap, false
}

// Evaluate checks summed weekly hours per staff member.
func (c *WeeklyHourCapConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation
	valid := true
	var penalty float64

	for _, s := range ctx.Staff {
		hours := ctx.StaffHours(s.ID)
		cap, raised := c.capFor(ctx, s)

		if hours > cap {
			valid = false
			p := float64(c.Weight()) * (hours - cap)
			penalty += p
			v := c.violation(
				fmt.Sprintf("%s is assigned %.1fh, above the %.1fh weekly cap", s.DisplayName(), hours, cap),
				p)
			v.StaffID = s.ID
			violations = append(violations, v)
			continue
		}

		if raised && hours > ctx.MaxHoursFor(s) {
			v := model.Violation{
				ConstraintType: rule.TypeWeeklyHourCap,
				Severity:       model.SeverityNotice,
				StaffID:        s.ID,
				Message: fmt.Sprintf("%s exceeds their %.1fh cap (%.1fh assigned), permitted by rule %q",
					s.DisplayName(), ctx.MaxHoursFor(s), hours, c.overrideName),
			}
			violations = append(violations, v)
		}
	}

	return valid, penalty, violations
}

// EvaluateAssignment checks the cap including the candidate's hours.
func (c *WeeklyHourCapConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	s := ctx.GetStaff(a.StaffID)
	if s == nil {
		return false, float64(c.Weight())
	}
	cap, _ := c.capFor(ctx, s)
	total := ctx.StaffHours(a.StaffID) + a.Hours()
	if total > cap {
		return false, float64(c.Weight()) * (total - cap)
	}
	return true, 0
}

// DemandCoverageConstraint requires each demand slot to reach its minimum
// staffing, reported as a min_coverage violation.
type DemandCoverageConstraint struct {
	*BaseConstraint
}

// NewDemandCoverageConstraint creates the demand-coverage invariant.
func NewDemandCoverageConstraint() *DemandCoverageConstraint {
	return &DemandCoverageConstraint{
		BaseConstraint: NewBaseConstraint("demand coverage", rule.TypeMinCoverage, rule.CategoryHard, model.HardRuleWeight),
	}
}

// Evaluate counts assignments per demand slot against MinStaff.
func (c *DemandCoverageConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, d := range ctx.Demand {
		min := d.MinStaff
		if min <= 0 {
			min = 1
		}
		assigned := ctx.AssignedToSlot(d)
		if len(assigned) < min {
			v := c.violation(
				fmt.Sprintf("%s %s %s needs %d staff, has %d", d.Day, d.ShiftType, d.Range, min, len(assigned)),
				float64(c.Weight()*(min-len(assigned))))
			v.Day = d.Day
			for _, a := range assigned {
				v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
			}
			violations = append(violations, v)
		}
	}

	var penalty float64
	for _, v := range violations {
		penalty += v.Penalty
	}
	return len(violations) == 0, penalty, violations
}

// KeysForOpeningConstraint requires key-holding staff on slots flagged as
// needing keys (opening and closing shifts).
type KeysForOpeningConstraint struct {
	*BaseConstraint
}

// NewKeysForOpeningConstraint creates the key-holder invariant.
func NewKeysForOpeningConstraint() *KeysForOpeningConstraint {
	return &KeysForOpeningConstraint{
		BaseConstraint: NewBaseConstraint("keys for opening", rule.TypeRequiresKeys, rule.CategoryHard, model.HardRuleWeight),
	}
}

// Evaluate checks that every keyed slot has at least one key holder.
func (c *KeysForOpeningConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	var violations []model.Violation

	for _, d := range ctx.Demand {
		if !d.RequiresKeys {
			continue
		}
		assigned := ctx.AssignedToSlot(d)
		if len(assigned) == 0 {
			continue // unfilled slots are demand coverage's concern
		}
		hasKeys := false
		for _, a := range assigned {
			if ctx.MustStaff(a.StaffID).HasKeys {
				hasKeys = true
				break
			}
		}
		if !hasKeys {
			v := c.violation(
				fmt.Sprintf("%s %s %s has no key holder assigned", d.Day, d.ShiftType, d.Range),
				float64(c.Weight()))
			v.Day = d.Day
			for _, a := range assigned {
				v.AssignmentIDs = append(v.AssignmentIDs, a.ID)
			}
			violations = append(violations, v)
		}
	}

	return len(violations) == 0, float64(len(violations) * c.Weight()), violations
}
