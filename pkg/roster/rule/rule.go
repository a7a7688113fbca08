// Package rule defines the constraint interface, evaluation context, and
// constraint manager of the roster engine.
package rule

import (
	"github.com/meeplecafe/rosterd/pkg/model"
)

// Constraint type names understood by the catalog.
const (
	TypeMinCoverage        = "min_coverage"
	TypeMaxCoverage        = "max_coverage"
	TypeOpeningTime        = "opening_time"
	TypeMinShiftLength     = "min_shift_length"
	TypeNoDayAndNight      = "no_day_and_night"
	TypeMinHours           = "min_hours"
	TypeMaxHours           = "max_hours"
	TypeDayOff             = "day_off"
	TypeMaxConsecutiveDays = "max_consecutive_days"
	TypeStaffPairing       = "staff_pairing"
	TypeRequiredRole       = "required_role"
	TypeRequiredSkill      = "required_skill"
	TypeFairness           = "fairness"
	TypeWeeklyFrequency    = "weekly_frequency"
	TypeNoBackToBack       = "no_back_to_back"
	TypeRequiresKeys       = "requires_keys_for_opening"
	TypePreferredTime      = "preferred_time"
	TypeReluctantTime      = "reluctant_time"

	// Types emitted by the engine itself, never configured as rules.
	TypeUnfillableSlot = "unfillable_slot"
	TypeUnevaluable    = "unevaluable"
	TypeDoubleBooking  = "double_booking"
	TypeAvailability   = "availability"
	TypeRoleMatch      = "role_match"
	TypeWeeklyHourCap  = "weekly_hour_cap"
)

// Category splits constraints into hard and soft.
type Category string

const (
	CategoryHard Category = "hard" // must hold for a valid roster
	CategorySoft Category = "soft" // scored, never invalidating
)

// Constraint is one evaluable scheduling constraint.
type Constraint interface {
	// Name returns a human-readable identifier, unique within a run.
	Name() string

	// Type returns the constraint type name.
	Type() string

	// Category returns hard or soft.
	Category() Category

	// Weight returns the rule weight (0-100). Weight 0 still evaluates but
	// contributes nothing to the score.
	Weight() int

	// Evaluate checks the whole roster.
	// Returns: satisfied, weighted penalty, atomic violations.
	Evaluate(ctx *Context) (valid bool, penalty float64, details []model.Violation)

	// EvaluateAssignment checks the marginal effect of a single assignment
	// against the current context state.
	EvaluateAssignment(ctx *Context, a *model.ShiftAssignment) (valid bool, penalty float64)
}
