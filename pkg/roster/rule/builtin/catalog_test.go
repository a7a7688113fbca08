package builtin

import (
	"testing"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

func TestCatalogBuildKnownTypes(t *testing.T) {
	c := DefaultCatalog()
	cases := map[string]model.JSONMap{
		rule.TypeMinCoverage:        {"count": 2.0},
		rule.TypeMaxCoverage:        {"count": 3.0},
		rule.TypeOpeningTime:        {"time": "10:00"},
		rule.TypeMinShiftLength:     {"hours": 4.0},
		rule.TypeNoDayAndNight:      nil,
		rule.TypeMinHours:           {"hours": 8.0},
		rule.TypeMaxHours:           {"hours": 40.0},
		rule.TypeDayOff:             nil,
		rule.TypeMaxConsecutiveDays: {"days": 5.0},
		rule.TypeNoBackToBack:       nil,
		rule.TypeWeeklyFrequency:    nil,
		rule.TypeStaffPairing:       {"staff_name": "Alex", "other_name": "Sam"},
		rule.TypeRequiredRole:       {"role": "barista"},
		rule.TypeRequiredSkill:      {"skill": "latte art"},
		rule.TypeFairness:           nil,
	}
	for typ, params := range cases {
		built, unevaluable := c.Build(newRule(typ, 50, params))
		if unevaluable != nil {
			t.Errorf("%s: unexpected unevaluable marker: %s", typ, unevaluable.Message)
			continue
		}
		if built == nil || built.Type() != typ {
			t.Errorf("%s: built %v", typ, built)
		}
	}
}

func TestCatalogBuildMissingRequiredParams(t *testing.T) {
	c := DefaultCatalog()
	cases := []struct {
		typ    string
		params model.JSONMap
	}{
		{rule.TypeStaffPairing, nil},
		{rule.TypeStaffPairing, model.JSONMap{"staff_name": "Alex"}},
		{rule.TypeMinCoverage, model.JSONMap{"day": "saturday"}},
		{rule.TypeMaxHours, model.JSONMap{"staff_name": "Alex"}},
		{rule.TypeOpeningTime, model.JSONMap{"time": nil}},
	}
	for _, tc := range cases {
		built, unevaluable := c.Build(newRule(tc.typ, 50, tc.params))
		if built != nil {
			t.Errorf("%s with params %v must not build", tc.typ, tc.params)
		}
		if unevaluable == nil {
			t.Errorf("%s with params %v must yield an unevaluable marker", tc.typ, tc.params)
			continue
		}
		if unevaluable.Severity != model.SeverityNotice {
			t.Errorf("%s: marker severity = %s", tc.typ, unevaluable.Severity)
		}
	}
}

func TestCatalogBuildUnknownTypeFailsClosed(t *testing.T) {
	c := DefaultCatalog()
	built, unevaluable := c.Build(newRule("lunar_phase", 50, nil))
	if built != nil {
		t.Fatal("unknown rule type must not produce a constraint")
	}
	if unevaluable == nil {
		t.Fatal("unknown rule type must produce an unevaluable marker")
	}
	if unevaluable.ConstraintType != rule.TypeUnevaluable {
		t.Errorf("marker type = %s", unevaluable.ConstraintType)
	}
	if unevaluable.Severity != model.SeverityNotice {
		t.Errorf("marker severity = %s", unevaluable.Severity)
	}
}

func TestCatalogBuildAll(t *testing.T) {
	c := DefaultCatalog()
	rules := []*model.RosterRule{
		newRule(rule.TypeDayOff, 50, model.JSONMap{"day": "sunday"}),
		newRule("vibes", 20, nil),
		newRule(rule.TypeFairness, 30, nil),
	}
	constraints, skipped := c.BuildAll(rules)
	if len(constraints) != 2 {
		t.Errorf("built %d constraints, want 2", len(constraints))
	}
	if len(skipped) != 1 {
		t.Errorf("skipped %d rules, want 1", len(skipped))
	}
}

func TestCatalogValidate(t *testing.T) {
	c := DefaultCatalog()
	if err := c.Validate(newRule(rule.TypeDayOff, 50, nil)); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}
	if err := c.Validate(newRule("vibes", 50, nil)); err == nil {
		t.Error("unknown type should fail validation")
	}
	if err := c.Validate(newRule(rule.TypeDayOff, 120, nil)); err == nil {
		t.Error("weight above 100 should fail validation")
	}
	if err := c.Validate(newRule(rule.TypeStaffPairing, 50, model.JSONMap{"staff_name": "Alex"})); err == nil {
		t.Error("missing required params should fail validation")
	}
	if err := c.Validate(newRule(rule.TypeDayOff, -1, nil)); err == nil {
		t.Error("negative weight should fail validation")
	}
}

func TestCatalogDefinitionsSorted(t *testing.T) {
	defs := DefaultCatalog().Definitions()
	if len(defs) == 0 {
		t.Fatal("catalog is empty")
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Type >= defs[i].Type {
			t.Fatalf("definitions out of order: %s before %s", defs[i-1].Type, defs[i].Type)
		}
	}
}

func TestBaselineCapOverride(t *testing.T) {
	rules := []*model.RosterRule{
		newRule(rule.TypeMaxHours, 95, model.JSONMap{"hours": 48.0}),
		newRule(rule.TypeMaxHours, 50, model.JSONMap{"hours": 60.0}), // too light to override
	}
	constraints := Baseline(rules, 40)

	var capConstraint *WeeklyHourCapConstraint
	for _, c := range constraints {
		if wc, ok := c.(*WeeklyHourCapConstraint); ok {
			capConstraint = wc
		}
	}
	if capConstraint == nil {
		t.Fatal("baseline is missing the weekly cap")
	}

	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday} {
		ctx.AddAssignment(newAssignment(alex.ID, d, "09:00", "17:00", "barista")) // 48h
	}

	valid, _, violations := capConstraint.Evaluate(ctx)
	if !valid {
		t.Error("48h should be permitted under the 48h override")
	}
	notice := false
	for _, v := range violations {
		if v.Severity == model.SeverityNotice {
			notice = true
		}
	}
	if !notice {
		t.Error("the exercised override should leave a notice")
	}
}

func TestBaselineHardFirst(t *testing.T) {
	for _, c := range Baseline(nil, 40) {
		if c.Category() != rule.CategoryHard {
			t.Errorf("baseline constraint %s is not hard", c.Name())
		}
	}
}
