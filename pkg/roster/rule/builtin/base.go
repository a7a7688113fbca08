// Package builtin provides the built-in constraint implementations and the
// constraint catalog.
package builtin

import (
	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// BaseConstraint carries the common constraint fields. Concrete constraints
// embed it and override Evaluate / EvaluateAssignment.
type BaseConstraint struct {
	name     string
	typ      string
	category rule.Category
	weight   int
	params   model.JSONMap
}

// NewBaseConstraint creates the embedded base.
func NewBaseConstraint(name, typ string, cat rule.Category, weight int) *BaseConstraint {
	return &BaseConstraint{
		name:     name,
		typ:      typ,
		category: cat,
		weight:   weight,
		params:   make(model.JSONMap),
	}
}

// Name returns the constraint name.
func (c *BaseConstraint) Name() string { return c.name }

// Type returns the constraint type name.
func (c *BaseConstraint) Type() string { return c.typ }

// Category returns hard or soft.
func (c *BaseConstraint) Category() rule.Category { return c.category }

// Weight returns the rule weight.
func (c *BaseConstraint) Weight() int { return c.weight }

// SetParams sets the parameter bag.
func (c *BaseConstraint) SetParams(params model.JSONMap) {
	if params != nil {
		c.params = params
	}
}

// ParamInt reads an integer parameter.
func (c *BaseConstraint) ParamInt(key string, defaultVal int) int {
	if val, ok := c.params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case int64:
			return int(v)
		}
	}
	return defaultVal
}

// ParamFloat reads a float parameter.
func (c *BaseConstraint) ParamFloat(key string, defaultVal float64) float64 {
	if val, ok := c.params[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultVal
}

// ParamString reads a string parameter.
func (c *BaseConstraint) ParamString(key string, defaultVal string) string {
	if val, ok := c.params[key].(string); ok {
		return val
	}
	return defaultVal
}

// ParamBool reads a boolean parameter.
func (c *BaseConstraint) ParamBool(key string, defaultVal bool) bool {
	if val, ok := c.params[key].(bool); ok {
		return val
	}
	return defaultVal
}

// severity maps the category to a violation severity.
func (c *BaseConstraint) severity() model.Severity {
	if c.category == rule.CategoryHard {
		return model.SeverityHard
	}
	return model.SeveritySoft
}

// violation builds a violation entry carrying the constraint's identity.
func (c *BaseConstraint) violation(message string, penalty float64) model.Violation {
	return model.Violation{
		ConstraintType: c.typ,
		Severity:       c.severity(),
		Message:        message,
		Penalty:        penalty,
	}
}

// targetStaff resolves the staff members a rule applies to. A rule may name
// one staff member by staff_id or staff_name; with neither it applies to the
// whole pool.
func (c *BaseConstraint) targetStaff(ctx *rule.Context) []*model.StaffMember {
	if name := c.ParamString("staff_name", ""); name != "" {
		if s := ctx.FindStaffByName(name); s != nil {
			return []*model.StaffMember{s}
		}
		return nil
	}
	if id := c.ParamString("staff_id", ""); id != "" {
		for _, s := range ctx.Staff {
			if s.ID.String() == id {
				return []*model.StaffMember{s}
			}
		}
		return nil
	}
	return ctx.Staff
}

// appliesTo reports whether a rule targets the given staff member.
func (c *BaseConstraint) appliesTo(ctx *rule.Context, staffID uuid.UUID) bool {
	for _, s := range c.targetStaff(ctx) {
		if s.ID == staffID {
			return true
		}
	}
	return false
}

// parseDay reads an optional day parameter; the zero value means all days.
func (c *BaseConstraint) paramDay(key string) (model.Weekday, bool) {
	s := c.ParamString(key, "")
	if s == "" {
		return "", false
	}
	d := model.Weekday(s)
	if !d.Valid() {
		return "", false
	}
	return d, true
}

// paramClockRange reads a start/end pair of "HH:MM" parameters.
func (c *BaseConstraint) paramClockRange(startKey, endKey, defStart, defEnd string) (model.ClockRange, bool) {
	start := c.ParamString(startKey, defStart)
	end := c.ParamString(endKey, defEnd)
	if start == "" || end == "" {
		return model.ClockRange{}, false
	}
	r, err := model.NewClockRange(start, end)
	if err != nil {
		return model.ClockRange{}, false
	}
	return r, true
}

// Evaluate is the default whole-roster evaluation (always satisfied).
func (c *BaseConstraint) Evaluate(ctx *rule.Context) (bool, float64, []model.Violation) {
	return true, 0, nil
}

// EvaluateAssignment is the default per-assignment evaluation (always satisfied).
func (c *BaseConstraint) EvaluateAssignment(ctx *rule.Context, a *model.ShiftAssignment) (bool, float64) {
	return true, 0
}
