package builtin

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

func hr(start, end string) model.ClockRange {
	r, err := model.NewClockRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func newStaff(name string, roles ...string) *model.StaffMember {
	return &model.StaffMember{
		BaseModel:       model.NewBaseModel(),
		Name:            name,
		Roles:           roles,
		MaxHoursPerWeek: 40,
		IsActive:        true,
	}
}

func newAssignment(staffID uuid.UUID, day model.Weekday, start, end, role string) *model.ShiftAssignment {
	return &model.ShiftAssignment{
		ID:      uuid.New(),
		StaffID: staffID,
		Day:     day,
		Role:    role,
		Range:   hr(start, end),
	}
}

// openContext builds a context where every staff member is available all
// week.
func openContext(staff ...*model.StaffMember) *rule.Context {
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff(staff)
	var windows []*model.AvailabilityWindow
	for _, s := range staff {
		for _, d := range model.Weekdays {
			windows = append(windows, &model.AvailabilityWindow{
				StaffID: s.ID,
				Day:     d,
				Range:   hr("00:00", "24:00"),
				Status:  model.StatusAvailable,
			})
		}
	}
	ctx.SetAvailability(windows, nil, nil)
	return ctx
}

func newRule(typ string, weight int, params model.JSONMap) *model.RosterRule {
	return &model.RosterRule{
		BaseModel: model.NewBaseModel(),
		RuleText:  typ + " test rule",
		Type:      typ,
		Params:    params,
		Weight:    weight,
		IsActive:  true,
	}
}

func TestNoDoubleBooking(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista"))

	c := NewNoDoubleBookingConstraint()
	if valid, _, _ := c.Evaluate(ctx); !valid {
		t.Fatal("single assignment should not be a double booking")
	}

	overlap := newAssignment(alex.ID, model.Monday, "16:00", "20:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, overlap); ok {
		t.Error("overlapping candidate should be rejected")
	}

	ctx.AddAssignment(overlap)
	valid, penalty, violations := c.Evaluate(ctx)
	if valid {
		t.Error("overlapping assignments should be invalid")
	}
	if penalty == 0 || len(violations) != 1 {
		t.Errorf("penalty = %.0f, violations = %d", penalty, len(violations))
	}
	if len(violations[0].AssignmentIDs) != 2 {
		t.Errorf("violation should cite both assignments, got %d", len(violations[0].AssignmentIDs))
	}

	// same day, non-overlapping is fine
	ctx2 := openContext(alex)
	ctx2.AddAssignment(newAssignment(alex.ID, model.Monday, "09:00", "13:00", "barista"))
	ctx2.AddAssignment(newAssignment(alex.ID, model.Monday, "13:00", "17:00", "barista"))
	if valid, _, _ := c.Evaluate(ctx2); !valid {
		t.Error("back-to-back shifts on one day are not a double booking")
	}
}

func TestAvailability(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff([]*model.StaffMember{alex})
	ctx.SetAvailability([]*model.AvailabilityWindow{
		{StaffID: alex.ID, Day: model.Monday, Range: hr("09:00", "17:00"), Status: model.StatusAvailable},
	}, nil, nil)

	c := NewAvailabilityConstraint()

	inside := newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, inside); !ok {
		t.Error("assignment inside the window should pass")
	}

	outside := newAssignment(alex.ID, model.Tuesday, "09:00", "17:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, outside); ok {
		t.Error("assignment on a day with no window should fail")
	}

	ctx.AddAssignment(outside)
	if valid, _, _ := c.Evaluate(ctx); valid {
		t.Error("roster with an unavailable assignment should be invalid")
	}
}

func TestAvailabilityTimeOff(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff([]*model.StaffMember{alex})
	ctx.SetAvailability([]*model.AvailabilityWindow{
		{StaffID: alex.ID, Day: model.Monday, Range: hr("09:00", "17:00"), Status: model.StatusAvailable},
	}, []*model.TimeOff{
		{StaffID: alex.ID, Date: "2026-01-05", AllDay: true, Reason: "holiday"},
	}, nil)

	c := NewAvailabilityConstraint()
	a := newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, a); ok {
		t.Error("time off should block the whole day")
	}
}

func TestRoleMatch(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)

	c := NewRoleMatchConstraint()
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista")); !ok {
		t.Error("matching role should pass")
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "17:00", "games_host")); ok {
		t.Error("missing role should fail")
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "17:00", "")); !ok {
		t.Error("a slot with no role requirement accepts anyone")
	}
}

func TestWeeklyHourCap(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		ctx.AddAssignment(newAssignment(alex.ID, d, "09:00", "18:00", "barista")) // 9h x 5 = 45h
	}

	c := NewWeeklyHourCapConstraint(0, "")
	valid, penalty, _ := c.Evaluate(ctx)
	if valid {
		t.Error("45h against a 40h cap should be invalid")
	}
	if penalty != float64(model.HardRuleWeight)*5 {
		t.Errorf("penalty = %.0f, want %d", penalty, model.HardRuleWeight*5)
	}
}

func TestWeeklyHourCapOverride(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		ctx.AddAssignment(newAssignment(alex.ID, d, "09:00", "18:00", "barista"))
	}

	c := NewWeeklyHourCapConstraint(48, "crunch week")
	valid, penalty, violations := c.Evaluate(ctx)
	if !valid || penalty != 0 {
		t.Fatalf("override should permit 45h: valid=%v penalty=%.0f", valid, penalty)
	}
	if len(violations) != 1 || violations[0].Severity != model.SeverityNotice {
		t.Fatalf("exercised override should leave a notice, got %v", violations)
	}
	if !strings.Contains(violations[0].Message, "crunch week") {
		t.Errorf("notice should name the permitting rule: %s", violations[0].Message)
	}
}

func TestDemandCoverage(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	demand := &model.ShiftDemand{
		Day: model.Saturday, ShiftType: model.ShiftDay, Role: "barista",
		Range: hr("10:00", "22:00"), MinStaff: 2,
	}
	ctx.SetDemand([]*model.ShiftDemand{demand})

	a := newAssignment(alex.ID, model.Saturday, "10:00", "22:00", "barista")
	a.ShiftType = model.ShiftDay
	ctx.AddAssignment(a)

	c := NewDemandCoverageConstraint()
	valid, _, violations := c.Evaluate(ctx)
	if valid {
		t.Fatal("one of two required staff should be invalid")
	}
	if violations[0].ConstraintType != rule.TypeMinCoverage {
		t.Errorf("constraint type = %s, want %s", violations[0].ConstraintType, rule.TypeMinCoverage)
	}
}

func TestKeysForOpening(t *testing.T) {
	alex := newStaff("Alex", "barista")
	sam := newStaff("Sam", "barista")
	sam.HasKeys = true
	ctx := openContext(alex, sam)
	demand := &model.ShiftDemand{
		Day: model.Monday, ShiftType: model.ShiftOpening,
		Range: hr("08:00", "12:00"), MinStaff: 1, RequiresKeys: true,
	}
	ctx.SetDemand([]*model.ShiftDemand{demand})

	a := newAssignment(alex.ID, model.Monday, "08:00", "12:00", "")
	a.ShiftType = model.ShiftOpening
	ctx.AddAssignment(a)

	c := NewKeysForOpeningConstraint()
	if valid, _, _ := c.Evaluate(ctx); valid {
		t.Error("an opening shift without a key holder should be invalid")
	}

	b := newAssignment(sam.ID, model.Monday, "08:00", "12:00", "")
	b.ShiftType = model.ShiftOpening
	ctx.AddAssignment(b)
	if valid, _, _ := c.Evaluate(ctx); !valid {
		t.Error("adding a key holder should satisfy the invariant")
	}
}

func TestMinCoverageRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Saturday, "10:00", "22:00", "barista"))

	c := NewMinCoverageConstraint(newRule(rule.TypeMinCoverage, 80, model.JSONMap{
		"count": 2, "day": "saturday", "start": "10:00", "end": "22:00",
	}))

	valid, penalty, violations := c.Evaluate(ctx)
	if valid {
		t.Fatal("one of two required staff should violate")
	}
	if penalty != 80 {
		t.Errorf("penalty = %.0f, want 80", penalty)
	}
	if violations[0].Day != model.Saturday {
		t.Errorf("violation day = %s", violations[0].Day)
	}
}

func TestMinCoverageRequiredIsHard(t *testing.T) {
	c := NewMinCoverageConstraint(newRule(rule.TypeMinCoverage, 80, model.JSONMap{
		"count": 2, "required": true,
	}))
	if c.Category() != rule.CategoryHard {
		t.Error("required marker should promote the rule to hard")
	}
}

func TestMaxCoverageRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	sam := newStaff("Sam", "barista")
	ctx := openContext(alex, sam)
	ctx.AddAssignment(newAssignment(alex.ID, model.Tuesday, "09:00", "13:00", "barista"))
	ctx.AddAssignment(newAssignment(sam.ID, model.Tuesday, "09:00", "13:00", "barista"))

	c := NewMaxCoverageConstraint(newRule(rule.TypeMaxCoverage, 40, model.JSONMap{
		"count": 1, "day": "tuesday",
	}))
	if valid, penalty, _ := c.Evaluate(ctx); valid || penalty != 40 {
		t.Errorf("two staff against a cap of one: valid=%v penalty=%.0f", valid, penalty)
	}
}

func TestOpeningTimeRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Monday, "10:00", "17:00", "barista"))

	c := NewOpeningTimeConstraint(newRule(rule.TypeOpeningTime, 60, model.JSONMap{
		"time": "09:00", "day": "monday",
	}))
	if valid, _, violations := c.Evaluate(ctx); valid || len(violations) != 1 {
		t.Errorf("late first shift should violate, got valid=%v", valid)
	}
}

func TestMinShiftLengthRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)

	c := NewMinShiftLengthConstraint(newRule(rule.TypeMinShiftLength, 30, model.JSONMap{"hours": 4}))

	short := newAssignment(alex.ID, model.Monday, "09:00", "11:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, short); ok {
		t.Error("2h shift against a 4h minimum should be rejected")
	}
	long := newAssignment(alex.ID, model.Monday, "09:00", "14:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, long); !ok {
		t.Error("5h shift should pass")
	}
}

func TestMaxHoursRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista"))
	ctx.AddAssignment(newAssignment(alex.ID, model.Tuesday, "09:00", "17:00", "barista"))

	c := NewMaxHoursConstraint(newRule(rule.TypeMaxHours, 70, model.JSONMap{
		"hours": 20, "staff_name": "Alex",
	}))

	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Wednesday, "09:00", "17:00", "barista")); ok {
		t.Error("candidate pushing past 20h should be rejected")
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Wednesday, "09:00", "13:00", "barista")); !ok {
		t.Error("candidate landing exactly on 20h should pass")
	}
}

func TestDayOffRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Sunday, "10:00", "16:00", "barista"))

	c := NewDayOffConstraint(newRule(rule.TypeDayOff, 50, model.JSONMap{"day": "sunday"}))

	valid, penalty, _ := c.Evaluate(ctx)
	if valid || penalty != 50 {
		t.Errorf("working the day off: valid=%v penalty=%.0f", valid, penalty)
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Sunday, "16:00", "20:00", "barista")); ok {
		t.Error("candidate on the day off should be rejected")
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "13:00", "barista")); !ok {
		t.Error("other days are unaffected")
	}
}

func TestMaxConsecutiveDaysRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday, model.Saturday} {
		ctx.AddAssignment(newAssignment(alex.ID, d, "09:00", "14:00", "barista"))
	}

	c := NewMaxConsecutiveDaysConstraint(newRule(rule.TypeMaxConsecutiveDays, 45, model.JSONMap{"days": 5}))
	if valid, _, _ := c.Evaluate(ctx); valid {
		t.Error("six days in a row against a limit of five should violate")
	}
	if ok, _ := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Sunday, "09:00", "14:00", "barista")); ok {
		t.Error("extending the run to seven should be rejected")
	}
}

func TestNoDayAndNightRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Friday, "09:00", "13:00", "barista"))

	c := NewNoDayAndNightConstraint(newRule(rule.TypeNoDayAndNight, 65, nil))

	evening := newAssignment(alex.ID, model.Friday, "18:00", "23:00", "barista")
	if ok, _ := c.EvaluateAssignment(ctx, evening); ok {
		t.Error("evening shift after a morning shift should be rejected")
	}

	ctx.AddAssignment(evening)
	if valid, _, violations := c.Evaluate(ctx); valid || len(violations) != 1 {
		t.Errorf("split day should violate, got valid=%v", valid)
	}
}

func TestNoBackToBackRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)
	ctx.AddAssignment(newAssignment(alex.ID, model.Monday, "18:00", "26:00", "barista")) // ends 02:00
	ctx.AddAssignment(newAssignment(alex.ID, model.Tuesday, "09:00", "17:00", "barista"))

	c := NewNoBackToBackConstraint(newRule(rule.TypeNoBackToBack, 55, model.JSONMap{"min_rest_hours": 10}))
	valid, _, violations := c.Evaluate(ctx)
	if valid {
		t.Fatal("7h rest after an overnight close should violate")
	}
	if violations[0].Day != model.Tuesday {
		t.Errorf("violation day = %s, want tuesday", violations[0].Day)
	}
}

func TestStaffPairingRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	sam := newStaff("Sam", "barista")
	ctx := openContext(alex, sam)
	ctx.AddAssignment(newAssignment(alex.ID, model.Wednesday, "09:00", "17:00", "barista"))
	ctx.AddAssignment(newAssignment(sam.ID, model.Wednesday, "12:00", "20:00", "barista"))

	apart := NewStaffPairingConstraint(newRule(rule.TypeStaffPairing, 35, model.JSONMap{
		"staff_name": "Alex", "other_name": "Sam", "mode": "apart",
	}))
	if valid, _, _ := apart.Evaluate(ctx); valid {
		t.Error("overlapping shifts should violate mode apart")
	}

	together := NewStaffPairingConstraint(newRule(rule.TypeStaffPairing, 35, model.JSONMap{
		"staff_name": "Alex", "other_name": "Sam", "mode": "together",
	}))
	if valid, _, _ := together.Evaluate(ctx); !valid {
		t.Error("overlapping shifts satisfy mode together")
	}

	ctx.AddAssignment(newAssignment(alex.ID, model.Friday, "09:00", "17:00", "barista"))
	if valid, _, _ := together.Evaluate(ctx); valid {
		t.Error("a solo day should violate mode together")
	}
}

func TestRequiredRoleRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	sam := newStaff("Sam", "barista", "games_host")
	ctx := openContext(alex, sam)
	ctx.AddAssignment(newAssignment(alex.ID, model.Thursday, "17:00", "23:00", "barista"))

	c := NewRequiredRoleConstraint(newRule(rule.TypeRequiredRole, 75, model.JSONMap{
		"role": "games_host", "day": "thursday", "start": "17:00", "end": "23:00",
	}))
	if valid, _, _ := c.Evaluate(ctx); valid {
		t.Fatal("window staffed without the required role should violate")
	}

	ctx.AddAssignment(newAssignment(sam.ID, model.Thursday, "17:00", "23:00", "barista"))
	if valid, _, _ := c.Evaluate(ctx); !valid {
		t.Error("a games host on shift satisfies the rule")
	}
}

func TestFairnessRule(t *testing.T) {
	alex := newStaff("Alex", "barista")
	sam := newStaff("Sam", "barista")
	ctx := openContext(alex, sam)
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		ctx.AddAssignment(newAssignment(alex.ID, d, "09:00", "17:00", "barista"))
	}

	c := NewFairnessConstraint(newRule(rule.TypeFairness, 50, nil))
	valid, penalty, _ := c.Evaluate(ctx)
	if valid || penalty <= 0 {
		t.Errorf("40h vs 0h should violate fairness: valid=%v penalty=%.1f", valid, penalty)
	}

	// balancing the hours removes the violation
	for _, d := range []model.Weekday{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday} {
		ctx.AddAssignment(newAssignment(sam.ID, d, "09:00", "17:00", "barista"))
	}
	if valid, penalty, _ := c.Evaluate(ctx); !valid || penalty != 0 {
		t.Errorf("equal hours should be fair: valid=%v penalty=%.1f", valid, penalty)
	}
}

func TestPreferredTimeConstraint(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff([]*model.StaffMember{alex})
	ctx.SetAvailability([]*model.AvailabilityWindow{
		{StaffID: alex.ID, Day: model.Monday, Range: hr("00:00", "24:00"), Status: model.StatusAvailable},
	}, nil, []*model.PreferredTime{
		{StaffID: alex.ID, Day: model.Monday, Range: hr("09:00", "14:00")},
	})

	c := NewPreferredTimeConstraint(10)
	if _, p := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "14:00", "barista")); p != 0 {
		t.Errorf("preferred slot should carry no penalty, got %.0f", p)
	}
	if _, p := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "16:00", "22:00", "barista")); p == 0 {
		t.Error("slot outside preferences should be penalized")
	}
}

func TestReluctantTimeConstraint(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff([]*model.StaffMember{alex})
	ctx.SetAvailability([]*model.AvailabilityWindow{
		{StaffID: alex.ID, Day: model.Monday, Range: hr("00:00", "24:00"), Status: model.StatusAvailable},
		{StaffID: alex.ID, Day: model.Tuesday, Range: hr("00:00", "24:00"), Status: model.StatusPreferredNot},
	}, nil, nil)

	c := NewReluctantTimeConstraint(20)
	if _, p := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Monday, "09:00", "14:00", "barista")); p != 0 {
		t.Errorf("available slot should carry no penalty, got %.0f", p)
	}
	if valid, p := c.EvaluateAssignment(ctx, newAssignment(alex.ID, model.Tuesday, "09:00", "14:00", "barista")); !valid || p == 0 {
		t.Errorf("preferred_not slot should cost but stay legal: valid=%v penalty=%.0f", valid, p)
	}

	ctx.AddAssignment(newAssignment(alex.ID, model.Tuesday, "09:00", "14:00", "barista"))
	valid, penalty, violations := c.Evaluate(ctx)
	if valid || penalty == 0 {
		t.Errorf("reluctant assignment should be reported: valid=%v penalty=%.1f", valid, penalty)
	}
	if len(violations) != 1 || violations[0].ConstraintType != rule.TypeReluctantTime {
		t.Errorf("violations = %+v", violations)
	}
}

func TestSoftBaselineStaysSoft(t *testing.T) {
	for _, c := range SoftBaseline() {
		if c.Category() != rule.CategorySoft {
			t.Errorf("%s is not soft", c.Name())
		}
		if c.Weight() <= 0 {
			t.Errorf("%s has no weight", c.Name())
		}
	}
}

// Raising a rule's weight on a fixed roster must never shrink its penalty.
func TestWeightMonotonicity(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		params model.JSONMap
		build  func(r *model.RosterRule) rule.Constraint
	}{
		{"min_coverage", rule.TypeMinCoverage, model.JSONMap{"count": 3, "day": "monday"},
			func(r *model.RosterRule) rule.Constraint { return NewMinCoverageConstraint(r) }},
		{"day_off", rule.TypeDayOff, model.JSONMap{"day": "monday", "staff_name": "Alex"},
			func(r *model.RosterRule) rule.Constraint { return NewDayOffConstraint(r) }},
		{"min_hours", rule.TypeMinHours, model.JSONMap{"hours": 30.0},
			func(r *model.RosterRule) rule.Constraint { return NewMinHoursConstraint(r) }},
		{"fairness", rule.TypeFairness, nil,
			func(r *model.RosterRule) rule.Constraint { return NewFairnessConstraint(r) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alex := newStaff("Alex", "barista")
			sam := newStaff("Sam", "barista")
			ctx := openContext(alex, sam)
			ctx.AddAssignment(newAssignment(alex.ID, model.Monday, "09:00", "17:00", "barista"))
			ctx.AddAssignment(newAssignment(alex.ID, model.Tuesday, "09:00", "17:00", "barista"))

			last := -1.0
			for _, w := range []int{0, 10, 40, 70, 100} {
				_, penalty, _ := tc.build(newRule(tc.typ, w, tc.params)).Evaluate(ctx)
				if penalty < last {
					t.Fatalf("penalty fell from %.2f to %.2f when weight rose to %d", last, penalty, w)
				}
				last = penalty
			}
			if last == 0 {
				t.Fatal("the fixture roster should violate the rule at full weight")
			}
		})
	}
}

func TestZeroWeightRuleContributesNothing(t *testing.T) {
	alex := newStaff("Alex", "barista")
	ctx := openContext(alex)

	c := NewMinCoverageConstraint(newRule(rule.TypeMinCoverage, 0, model.JSONMap{
		"count": 2, "day": "saturday",
	}))
	valid, penalty, violations := c.Evaluate(ctx)
	if valid {
		t.Error("the rule still runs at weight zero")
	}
	if penalty != 0 {
		t.Errorf("weight zero must contribute nothing, got %.0f", penalty)
	}
	for _, v := range violations {
		if v.Penalty != 0 {
			t.Errorf("violation penalty = %.0f, want 0", v.Penalty)
		}
	}
}
