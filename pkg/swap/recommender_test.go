package swap

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
	"github.com/meeplecafe/rosterd/pkg/roster/rule/builtin"
)

func clock(t *testing.T, start, end string) model.ClockRange {
	t.Helper()
	r, err := model.NewClockRange(start, end)
	if err != nil {
		t.Fatalf("bad range: %v", err)
	}
	return r
}

func member(name string, roles ...string) *model.StaffMember {
	return &model.StaffMember{
		BaseModel:       model.NewBaseModel(),
		Name:            name,
		Roles:           roles,
		MaxHoursPerWeek: 40,
		IsActive:        true,
	}
}

func coverContext(t *testing.T, staff ...*model.StaffMember) *rule.Context {
	t.Helper()
	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff(staff)
	var windows []*model.AvailabilityWindow
	for _, s := range staff {
		for _, d := range model.Weekdays {
			windows = append(windows, &model.AvailabilityWindow{
				StaffID: s.ID, Day: d, Range: clock(t, "00:00", "24:00"), Status: model.StatusAvailable,
			})
		}
	}
	ctx.SetAvailability(windows, nil, nil)
	return ctx
}

func TestRecommendTakeOver(t *testing.T) {
	alex := member("Alex", "barista")
	sam := member("Sam", "barista")
	ctx := coverContext(t, alex, sam)

	shift := &model.ShiftAssignment{
		ID: uuid.New(), StaffID: alex.ID, Day: model.Monday,
		Role: "barista", Range: clock(t, "09:00", "17:00"),
	}
	ctx.AddAssignment(shift)

	r := NewRecommender(builtin.Baseline(nil, 40))
	recs := r.Recommend(ctx, shift, nil)

	if len(recs) == 0 {
		t.Fatal("Sam should be able to take the shift over")
	}
	if recs[0].Staff.ID != sam.ID || recs[0].SwapType != "take_over" {
		t.Errorf("unexpected top recommendation: %+v", recs[0])
	}
	if recs[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", recs[0].Rank)
	}
}

func TestRecommendSkipsWrongRole(t *testing.T) {
	alex := member("Alex", "barista")
	sam := member("Sam", "games_host")
	ctx := coverContext(t, alex, sam)

	shift := &model.ShiftAssignment{
		ID: uuid.New(), StaffID: alex.ID, Day: model.Monday,
		Role: "barista", Range: clock(t, "09:00", "17:00"),
	}
	ctx.AddAssignment(shift)

	recs := NewRecommender(builtin.Baseline(nil, 40)).Recommend(ctx, shift, nil)
	for _, rec := range recs {
		if rec.Staff.ID == sam.ID && rec.SwapType == "take_over" {
			t.Error("a games host cannot cover a barista shift")
		}
	}
}

func TestRecommendSkipsUnavailable(t *testing.T) {
	alex := member("Alex", "barista")
	sam := member("Sam", "barista")

	ctx := rule.NewContext("2026-01-05")
	ctx.SetStaff([]*model.StaffMember{alex, sam})
	// only Alex is available on Monday
	ctx.SetAvailability([]*model.AvailabilityWindow{
		{StaffID: alex.ID, Day: model.Monday, Range: clock(t, "00:00", "24:00"), Status: model.StatusAvailable},
	}, nil, nil)

	shift := &model.ShiftAssignment{
		ID: uuid.New(), StaffID: alex.ID, Day: model.Monday,
		Role: "barista", Range: clock(t, "09:00", "17:00"),
	}
	ctx.AddAssignment(shift)

	recs := NewRecommender(builtin.Baseline(nil, 40)).Recommend(ctx, shift, nil)
	if len(recs) != 0 {
		t.Errorf("no one can cover, got %d recommendations", len(recs))
	}
}

func TestCanCover(t *testing.T) {
	alex := member("Alex", "barista")
	sam := member("Sam", "barista")
	ctx := coverContext(t, alex, sam)

	shift := &model.ShiftAssignment{
		ID: uuid.New(), StaffID: alex.ID, Day: model.Monday,
		Role: "barista", Range: clock(t, "09:00", "17:00"),
	}
	ctx.AddAssignment(shift)

	e := NewCoverEvaluator(builtin.Baseline(nil, 40))
	if ok, reason := e.CanCover(ctx, &CoverRequest{Assignment: shift, Candidate: sam}); !ok {
		t.Errorf("Sam can cover: %s", reason)
	}

	sam.IsActive = false
	if ok, _ := e.CanCover(ctx, &CoverRequest{Assignment: shift, Candidate: sam}); ok {
		t.Error("inactive staff cannot cover")
	}
}

func TestBestCover(t *testing.T) {
	alex := member("Alex", "barista")
	sam := member("Sam", "barista")
	ctx := coverContext(t, alex, sam)
	ctx.AddAssignment(&model.ShiftAssignment{
		ID: uuid.New(), StaffID: alex.ID, Day: model.Wednesday,
		Role: "barista", Range: clock(t, "09:00", "17:00"),
	})

	r := NewRecommender(builtin.Baseline(nil, 40))
	best := r.BestCover(ctx, alex.ID, model.Wednesday)
	if best == nil || best.Staff.ID != sam.ID {
		t.Errorf("best cover = %+v, want Sam", best)
	}
	if r.BestCover(ctx, alex.ID, model.Friday) != nil {
		t.Error("no shift on friday, no cover")
	}
}
