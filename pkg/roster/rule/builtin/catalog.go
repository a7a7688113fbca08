package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meeplecafe/rosterd/pkg/errors"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// ParamSpec documents one parameter a rule type accepts.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Definition describes one rule type in the catalog.
type Definition struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`
	Build       func(r *model.RosterRule) rule.Constraint `json:"-"`
}

// Catalog maps rule types to their definitions and builds constraints from
// stored rules. Unknown rule types fail closed: building them yields no
// constraint and an unevaluable marker instead.
type Catalog struct {
	definitions map[string]Definition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{definitions: make(map[string]Definition)}
}

// Register adds a rule type definition.
func (c *Catalog) Register(def Definition) {
	c.definitions[def.Type] = def
}

// Definitions lists the registered rule types sorted by type name.
func (c *Catalog) Definitions() []Definition {
	defs := make([]Definition, 0, len(c.definitions))
	for _, def := range c.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	return defs
}

// Supports reports whether the catalog knows the rule type.
func (c *Catalog) Supports(ruleType string) bool {
	_, ok := c.definitions[ruleType]
	return ok
}

// missingParams lists the required parameters absent from the bag.
func (d Definition) missingParams(params model.JSONMap) []string {
	var missing []string
	for _, p := range d.Params {
		if !p.Required {
			continue
		}
		if v, ok := params[p.Name]; !ok || v == nil {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// Build turns one stored rule into a constraint. An unknown type or missing
// required parameters yield a nil constraint and an unevaluable violation so
// the caller can surface the skipped rule rather than silently dropping it.
func (c *Catalog) Build(r *model.RosterRule) (rule.Constraint, *model.Violation) {
	def, ok := c.definitions[r.Type]
	if !ok {
		v := model.Violation{
			ConstraintType: rule.TypeUnevaluable,
			Severity:       model.SeverityNotice,
			Message:        fmt.Sprintf("rule %q has unsupported type %q and was not evaluated", r.RuleText, r.Type),
		}
		return nil, &v
	}
	if missing := def.missingParams(r.Params); len(missing) > 0 {
		v := model.Violation{
			ConstraintType: rule.TypeUnevaluable,
			Severity:       model.SeverityNotice,
			Message: fmt.Sprintf("rule %q is missing required parameters (%s) and was not evaluated",
				r.RuleText, strings.Join(missing, ", ")),
		}
		return nil, &v
	}
	return def.Build(r), nil
}

// BuildAll builds constraints for every rule, collecting unevaluable markers
// for the types the catalog does not support.
func (c *Catalog) BuildAll(rules []*model.RosterRule) ([]rule.Constraint, []model.Violation) {
	var constraints []rule.Constraint
	var skipped []model.Violation
	for _, r := range rules {
		built, unevaluable := c.Build(r)
		if unevaluable != nil {
			skipped = append(skipped, *unevaluable)
			continue
		}
		constraints = append(constraints, built)
	}
	return constraints, skipped
}

// Validate checks that a rule's type is known, its required parameters are
// present, and its weight is in range.
func (c *Catalog) Validate(r *model.RosterRule) error {
	def, ok := c.definitions[r.Type]
	if !ok {
		return errors.RuleUnevaluable(r.Type, "unsupported rule type")
	}
	if missing := def.missingParams(r.Params); len(missing) > 0 {
		return errors.RuleUnevaluable(r.Type, "missing required parameters: "+strings.Join(missing, ", "))
	}
	if r.Weight < 0 || r.Weight > model.HardRuleWeight {
		return errors.InvalidInput("weight", fmt.Sprintf("%d is outside 0-%d", r.Weight, model.HardRuleWeight))
	}
	return nil
}

// Baseline assembles the always-on constraints every roster must satisfy.
// A high priority max_hours rule raises the weekly hour cap; the cap
// constraint names that rule when the override is exercised.
func Baseline(rules []*model.RosterRule, defaultMaxHours int) []rule.Constraint {
	overrideHours, overrideName := 0.0, ""
	for _, r := range rules {
		if r.Type != rule.TypeMaxHours || r.Weight < model.HighPriorityWeight {
			continue
		}
		var hours float64
		switch v := r.Params["hours"].(type) {
		case float64:
			hours = v
		case int:
			hours = float64(v)
		}
		if hours <= float64(defaultMaxHours) {
			continue
		}
		if hours > overrideHours {
			overrideHours, overrideName = hours, r.RuleText
		}
	}

	return []rule.Constraint{
		NewNoDoubleBookingConstraint(),
		NewAvailabilityConstraint(),
		NewRoleMatchConstraint(),
		NewWeeklyHourCapConstraint(overrideHours, overrideName),
		NewDemandCoverageConstraint(),
		NewKeysForOpeningConstraint(),
	}
}

// Default weights for the always-on soft preferences.
const (
	PreferredTimeWeight = 10
	ReluctantTimeWeight = 20
)

// SoftBaseline assembles the always-on soft preferences: keep staff inside
// their preferred windows and away from their preferred_not windows. These
// shape the score without ever invalidating a roster.
func SoftBaseline() []rule.Constraint {
	return []rule.Constraint{
		NewPreferredTimeConstraint(PreferredTimeWeight),
		NewReluctantTimeConstraint(ReluctantTimeWeight),
	}
}

// DefaultCatalog registers every built-in rule type.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Register(Definition{
		Type:        rule.TypeMinCoverage,
		Description: "require at least N staff during a time window",
		Params: []ParamSpec{
			{Name: "count", Type: "int", Required: true, Description: "minimum staff on shift"},
			{Name: "day", Type: "string", Description: "limit to one weekday"},
			{Name: "start", Type: "clock", Description: "window start, default 00:00"},
			{Name: "end", Type: "clock", Description: "window end, default 24:00"},
			{Name: "role", Type: "string", Description: "count only staff with this role"},
			{Name: "required", Type: "bool", Description: "treat as a hard requirement"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMinCoverageConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeMaxCoverage,
		Description: "allow at most N staff during a time window",
		Params: []ParamSpec{
			{Name: "count", Type: "int", Required: true, Description: "maximum staff on shift"},
			{Name: "day", Type: "string", Description: "limit to one weekday"},
			{Name: "start", Type: "clock", Description: "window start, default 00:00"},
			{Name: "end", Type: "clock", Description: "window end, default 24:00"},
			{Name: "role", Type: "string", Description: "count only staff with this role"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMaxCoverageConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeOpeningTime,
		Description: "the first shift of the day must start at opening time",
		Params: []ParamSpec{
			{Name: "time", Type: "clock", Required: true, Description: "opening time"},
			{Name: "day", Type: "string", Description: "limit to one weekday"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewOpeningTimeConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeMinShiftLength,
		Description: "every shift must last at least N hours",
		Params: []ParamSpec{
			{Name: "hours", Type: "float", Required: true, Description: "minimum shift length in hours"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMinShiftLengthConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeNoDayAndNight,
		Description: "no one works both a morning and an evening shift the same day",
		Params: []ParamSpec{
			{Name: "day_end", Type: "clock", Description: "morning shifts start before this, default 16:00"},
			{Name: "night_start", Type: "clock", Description: "evening shifts end after this, default 18:00"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewNoDayAndNightConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeMinHours,
		Description: "rostered staff should reach a weekly hour floor",
		Params: []ParamSpec{
			{Name: "hours", Type: "float", Required: true, Description: "minimum weekly hours"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
			{Name: "strict", Type: "bool", Description: "also penalize staff with no shifts"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMinHoursConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeMaxHours,
		Description: "staff should stay under a weekly hour cap",
		Params: []ParamSpec{
			{Name: "hours", Type: "float", Required: true, Description: "maximum weekly hours"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMaxHoursConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeDayOff,
		Description: "keep a day free, or guarantee a number of free days",
		Params: []ParamSpec{
			{Name: "day", Type: "string", Description: "the day to keep free"},
			{Name: "min_days_off", Type: "int", Description: "minimum free days when no day is named, default 1"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewDayOffConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeMaxConsecutiveDays,
		Description: "cap the longest run of worked days",
		Params: []ParamSpec{
			{Name: "days", Type: "int", Required: true, Description: "maximum consecutive days"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewMaxConsecutiveDaysConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeNoBackToBack,
		Description: "require a rest gap between a late shift and the next early shift",
		Params: []ParamSpec{
			{Name: "min_rest_hours", Type: "float", Description: "minimum rest between days, default 10"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewNoBackToBackConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeWeeklyFrequency,
		Description: "bound how many distinct days someone works per week",
		Params: []ParamSpec{
			{Name: "min_days", Type: "int", Description: "minimum worked days"},
			{Name: "max_days", Type: "int", Description: "maximum worked days, default 7"},
			{Name: "staff_name", Type: "string", Description: "limit to one staff member"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewWeeklyFrequencyConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeStaffPairing,
		Description: "keep two staff members on shift together, or apart",
		Params: []ParamSpec{
			{Name: "staff_name", Type: "string", Required: true, Description: "first staff member"},
			{Name: "other_name", Type: "string", Required: true, Description: "second staff member"},
			{Name: "mode", Type: "string", Description: "together or apart, default apart"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewStaffPairingConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeRequiredRole,
		Description: "someone with a role must be on shift during a window",
		Params: []ParamSpec{
			{Name: "role", Type: "string", Required: true, Description: "the role that must be present"},
			{Name: "day", Type: "string", Description: "limit to one weekday"},
			{Name: "start", Type: "clock", Description: "window start, default 00:00"},
			{Name: "end", Type: "clock", Description: "window end, default 24:00"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewRequiredRoleConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeRequiredSkill,
		Description: "someone with a skill must be on shift during a window",
		Params: []ParamSpec{
			{Name: "skill", Type: "string", Required: true, Description: "the skill that must be present"},
			{Name: "day", Type: "string", Description: "limit to one weekday"},
			{Name: "start", Type: "clock", Description: "window start, default 00:00"},
			{Name: "end", Type: "clock", Description: "window end, default 24:00"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewRequiredRoleConstraint(r) },
	})
	c.Register(Definition{
		Type:        rule.TypeFairness,
		Description: "spread hours evenly across the pool",
		Params: []ParamSpec{
			{Name: "tolerance", Type: "float", Description: "accepted spread as a fraction of the mean, default 0.1"},
		},
		Build: func(r *model.RosterRule) rule.Constraint { return NewFairnessConstraint(r) },
	})

	return c
}
