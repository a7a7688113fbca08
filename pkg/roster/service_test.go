package roster

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meeplecafe/rosterd/pkg/errors"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/generate"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// fakeStore is an in-memory Store for facade tests.
type fakeStore struct {
	staff     []*model.StaffMember
	windows   []*model.AvailabilityWindow
	timeOff   []*model.TimeOff
	preferred []*model.PreferredTime
	demand    []*model.ShiftDemand
	rules     []*model.RosterRule
}

func (f *fakeStore) StaffRoster(ctx context.Context) ([]*model.StaffMember, error) {
	return f.staff, nil
}

func (f *fakeStore) AvailabilityForWeek(ctx context.Context, weekStart string) ([]*model.AvailabilityWindow, []*model.TimeOff, []*model.PreferredTime, error) {
	return f.windows, f.timeOff, f.preferred, nil
}

func (f *fakeStore) ActiveRules(ctx context.Context, asOf time.Time) ([]*model.RosterRule, error) {
	return f.rules, nil
}

func (f *fakeStore) DemandTemplate(ctx context.Context) ([]*model.ShiftDemand, error) {
	return f.demand, nil
}

func mustRange(t *testing.T, start, end string) model.ClockRange {
	t.Helper()
	r, err := model.NewClockRange(start, end)
	if err != nil {
		t.Fatalf("clock range %s-%s: %v", start, end, err)
	}
	return r
}

func serviceStaff(name string, roles ...string) *model.StaffMember {
	return &model.StaffMember{
		BaseModel: model.NewBaseModel(),
		Name:      name,
		Roles:     roles,
		IsActive:  true,
	}
}

func openAllWeek(t *testing.T, staff ...*model.StaffMember) []*model.AvailabilityWindow {
	t.Helper()
	var windows []*model.AvailabilityWindow
	for _, s := range staff {
		for _, day := range model.Weekdays {
			windows = append(windows, &model.AvailabilityWindow{
				BaseModel: model.NewBaseModel(),
				StaffID:   s.ID,
				Day:       day,
				Range:     mustRange(t, "08:00", "26:00"),
				Status:    model.StatusAvailable,
			})
		}
	}
	return windows
}

func testService(store *fakeStore) *Service {
	opts := generate.DefaultOptions()
	opts.Seed = 7
	opts.MaxIterations = 100
	opts.TimeBudget = 0
	return NewService(store, opts)
}

func TestParseWeekStart(t *testing.T) {
	if _, err := ParseWeekStart("2026-09-07"); err != nil {
		t.Errorf("2026-09-07 is a Monday, got error %v", err)
	}
	if _, err := ParseWeekStart("2026-09-08"); !errors.Is(err, errors.CodeInvalidWeekStart) {
		t.Errorf("tuesday week start should fail, got %v", err)
	}
	if _, err := ParseWeekStart("not-a-date"); !errors.Is(err, errors.CodeInvalidWeekStart) {
		t.Errorf("garbage week start should fail, got %v", err)
	}
}

func TestServiceGenerate(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
		demand: []*model.ShiftDemand{{
			Day:       model.Monday,
			ShiftType: model.ShiftDay,
			Range:     mustRange(t, "09:00", "17:00"),
			MinStaff:  1,
			MaxStaff:  1,
		}},
	}

	res, err := testService(store).Generate(context.Background(), GenerateParams{WeekStart: "2026-09-07"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Solution.IsValid || res.Solution.Score != 0 {
		t.Errorf("solution valid=%v score=%v, want valid with score 0", res.Solution.IsValid, res.Solution.Score)
	}
	if len(res.Solution.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(res.Solution.Assignments))
	}
	if got := res.Solution.Assignments[0].StaffID; got != alex.ID {
		t.Errorf("assigned staff = %s, want Alex", got)
	}
	if res.Stats.TotalShifts != 1 || res.Stats.TotalHours != 8 {
		t.Errorf("stats = %+v, want 1 shift of 8 hours", res.Stats)
	}
	if res.Coverage.OverallRate != 100 {
		t.Errorf("coverage = %v, want 100", res.Coverage.OverallRate)
	}
}

func TestServiceGenerateRejectsNonMonday(t *testing.T) {
	_, err := testService(&fakeStore{}).Generate(context.Background(), GenerateParams{WeekStart: "2026-09-09"})
	if !errors.Is(err, errors.CodeInvalidWeekStart) {
		t.Errorf("err = %v, want invalid week start", err)
	}
}

func TestServiceGenerateSurfacesUnknownRule(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
		demand: []*model.ShiftDemand{{
			Day:       model.Monday,
			ShiftType: model.ShiftDay,
			Range:     mustRange(t, "09:00", "17:00"),
			MinStaff:  1,
			MaxStaff:  1,
		}},
		rules: []*model.RosterRule{{
			BaseModel: model.NewBaseModel(),
			RuleText:  "everyone wears the hat",
			Type:      "must_wear_hat",
			Weight:    50,
			IsActive:  true,
		}},
	}

	res, err := testService(store).Generate(context.Background(), GenerateParams{WeekStart: "2026-09-07"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Solution.IsValid {
		t.Error("an unevaluable rule must not invalidate the roster")
	}
	found := false
	for _, v := range res.Solution.Violations {
		if v.ConstraintType == rule.TypeUnevaluable && v.Severity == model.SeverityNotice {
			found = true
		}
	}
	if !found {
		t.Errorf("violations = %+v, want an unevaluable notice", res.Solution.Violations)
	}
}

func TestServiceGenerateSkipsExpiredRule(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	expired := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
		demand: []*model.ShiftDemand{{
			Day:       model.Sunday,
			ShiftType: model.ShiftDay,
			Range:     mustRange(t, "09:00", "17:00"),
			MinStaff:  1,
			MaxStaff:  1,
		}},
		rules: []*model.RosterRule{{
			BaseModel: model.NewBaseModel(),
			RuleText:  "Alex keeps Sundays free",
			Type:      rule.TypeDayOff,
			Params:    model.JSONMap{"day": "sunday", "staff_name": "Alex"},
			Weight:    80,
			IsActive:  true,
			ExpiresAt: &expired,
		}},
	}

	res, err := testService(store).Generate(context.Background(), GenerateParams{WeekStart: "2026-09-07"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Solution.Score != 0 {
		t.Errorf("score = %v, want 0 once the day_off rule has expired", res.Solution.Score)
	}
	if len(res.Solution.Assignments) != 1 {
		t.Errorf("assignments = %d, want Alex on the Sunday slot", len(res.Solution.Assignments))
	}
}

func TestServiceEvaluate(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
		demand: []*model.ShiftDemand{{
			Day:       model.Monday,
			ShiftType: model.ShiftDay,
			Range:     mustRange(t, "09:00", "17:00"),
			MinStaff:  1,
			MaxStaff:  1,
		}},
	}
	roster := []*model.ShiftAssignment{{
		ID:        uuid.New(),
		StaffID:   alex.ID,
		Day:       model.Monday,
		ShiftType: model.ShiftDay,
		Range:     mustRange(t, "09:00", "17:00"),
	}}

	res, err := testService(store).Evaluate(context.Background(), "2026-09-07", roster)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Solution.IsValid || res.Solution.Score != 0 {
		t.Errorf("valid=%v score=%v, want a clean evaluation", res.Solution.IsValid, res.Solution.Score)
	}
}

func TestServiceEvaluateUnknownStaff(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
	}
	roster := []*model.ShiftAssignment{{
		ID:      uuid.New(),
		StaffID: uuid.New(),
		Day:     model.Monday,
		Range:   mustRange(t, "09:00", "17:00"),
	}}

	_, err := testService(store).Evaluate(context.Background(), "2026-09-07", roster)
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("err = %v, want invalid input for an unknown staff ID", err)
	}
}

func TestServiceSwapCandidates(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	sam := serviceStaff("Sam", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex, sam},
		windows: openAllWeek(t, alex, sam),
	}
	shift := &model.ShiftAssignment{
		ID:        uuid.New(),
		StaffID:   alex.ID,
		Day:       model.Monday,
		ShiftType: model.ShiftDay,
		Role:      "barista",
		Range:     mustRange(t, "09:00", "17:00"),
	}

	recs, err := testService(store).SwapCandidates(context.Background(), "2026-09-07", []*model.ShiftAssignment{shift}, shift.ID, 5)
	if err != nil {
		t.Fatalf("SwapCandidates: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("recommendations = %d, want Sam only", len(recs))
	}
	if recs[0].Staff.ID != sam.ID {
		t.Errorf("candidate = %s, want Sam", recs[0].Staff.Name)
	}
}

func TestServiceSwapCandidatesUnknownAssignment(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	store := &fakeStore{
		staff:   []*model.StaffMember{alex},
		windows: openAllWeek(t, alex),
	}

	_, err := testService(store).SwapCandidates(context.Background(), "2026-09-07", nil, uuid.New(), 5)
	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestServiceGenerateAvoidsReluctantStaff(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	sam := serviceStaff("Sam", "barista")

	// Alex can work Saturday but would rather not; Sam is plainly available.
	windows := []*model.AvailabilityWindow{
		{BaseModel: model.NewBaseModel(), StaffID: alex.ID, Day: model.Saturday,
			Range: mustRange(t, "08:00", "26:00"), Status: model.StatusPreferredNot},
		{BaseModel: model.NewBaseModel(), StaffID: sam.ID, Day: model.Saturday,
			Range: mustRange(t, "08:00", "26:00"), Status: model.StatusAvailable},
	}
	store := &fakeStore{
		staff:   []*model.StaffMember{alex, sam},
		windows: windows,
		demand: []*model.ShiftDemand{{
			Day:       model.Saturday,
			ShiftType: model.ShiftDay,
			Range:     mustRange(t, "10:00", "18:00"),
			MinStaff:  1,
			MaxStaff:  1,
		}},
	}

	result, err := testService(store).Generate(context.Background(), GenerateParams{WeekStart: "2026-09-07"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !result.Solution.IsValid || result.Solution.Score != 0 {
		t.Fatalf("Sam covers Saturday at no cost: valid=%v score=%.1f violations=%+v",
			result.Solution.IsValid, result.Solution.Score, result.Solution.Violations)
	}
	if len(result.Solution.Assignments) != 1 || result.Solution.Assignments[0].StaffID != sam.ID {
		t.Errorf("the willing staff member should take the slot: %+v", result.Solution.Assignments)
	}
}

func TestServiceEvaluateFlagsReluctantAssignment(t *testing.T) {
	alex := serviceStaff("Alex", "barista")
	windows := []*model.AvailabilityWindow{
		{BaseModel: model.NewBaseModel(), StaffID: alex.ID, Day: model.Saturday,
			Range: mustRange(t, "08:00", "26:00"), Status: model.StatusPreferredNot},
	}
	store := &fakeStore{staff: []*model.StaffMember{alex}, windows: windows}

	assignments := []*model.ShiftAssignment{{
		ID:      uuid.New(),
		StaffID: alex.ID,
		Day:     model.Saturday,
		Range:   mustRange(t, "10:00", "18:00"),
	}}
	result, err := testService(store).Evaluate(context.Background(), "2026-09-07", assignments)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Solution.IsValid {
		t.Fatalf("a reluctant shift is still legal: %+v", result.Solution.Violations)
	}
	if result.Solution.Score == 0 {
		t.Fatal("a reluctant shift should carry a soft cost")
	}
	found := false
	for _, v := range result.Solution.Violations {
		if v.ConstraintType == rule.TypeReluctantTime {
			found = true
		}
	}
	if !found {
		t.Errorf("violations should cite reluctant_time: %+v", result.Solution.Violations)
	}
}

func TestServiceRulesLibrary(t *testing.T) {
	svc := testService(&fakeStore{})
	defs := svc.RulesLibrary()
	if len(defs) != 15 {
		t.Fatalf("rule types = %d, want 15", len(defs))
	}
	for i := 1; i < len(defs); i++ {
		if defs[i-1].Type >= defs[i].Type {
			t.Errorf("definitions not sorted: %s before %s", defs[i-1].Type, defs[i].Type)
		}
	}
}
