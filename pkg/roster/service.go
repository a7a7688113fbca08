// Package roster is the engine facade: it loads the staffing snapshot,
// resolves the active rules, and runs generation, evaluation, and cover
// recommendation for a week.
package roster

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meeplecafe/rosterd/pkg/errors"
	"github.com/meeplecafe/rosterd/pkg/logger"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/evaluate"
	"github.com/meeplecafe/rosterd/pkg/roster/generate"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
	"github.com/meeplecafe/rosterd/pkg/roster/rule/builtin"
	"github.com/meeplecafe/rosterd/pkg/stats"
	"github.com/meeplecafe/rosterd/pkg/swap"
)

// Store loads the read-only engine inputs. All four reads happen before a
// run starts; the engine never touches storage mid-run.
type Store interface {
	StaffRoster(ctx context.Context) ([]*model.StaffMember, error)
	AvailabilityForWeek(ctx context.Context, weekStart string) ([]*model.AvailabilityWindow, []*model.TimeOff, []*model.PreferredTime, error)
	ActiveRules(ctx context.Context, asOf time.Time) ([]*model.RosterRule, error)
	DemandTemplate(ctx context.Context) ([]*model.ShiftDemand, error)
}

// Service wires the store, the rule catalog, and the solvers together.
type Service struct {
	store    Store
	catalog  *builtin.Catalog
	defaults generate.Options
	log      *logger.RosterLogger
}

// NewService creates the facade. The options act as defaults; per-request
// parameters override them.
func NewService(store Store, defaults generate.Options) *Service {
	return &Service{
		store:    store,
		catalog:  builtin.DefaultCatalog(),
		defaults: defaults,
		log:      logger.NewRosterLogger(),
	}
}

// GenerateParams selects the week and tunes one generation run.
type GenerateParams struct {
	WeekStart       string `json:"week_start" validate:"required"`
	MaxHoursPerWeek int    `json:"max_hours_per_week" validate:"gte=0,lte=80"`
	PreferFairness  bool   `json:"prefer_fairness"`
	Seed            int64  `json:"seed"`
}

// GenerateResult is a generated roster with its review statistics.
type GenerateResult struct {
	Solution *model.Solution        `json:"solution"`
	Stats    *model.RosterStats     `json:"stats"`
	Fairness *stats.FairnessMetrics `json:"fairness"`
	Coverage *stats.CoverageMetrics `json:"coverage"`
}

// snapshot is everything a run needs, loaded up front.
type snapshot struct {
	staff     []*model.StaffMember
	windows   []*model.AvailabilityWindow
	timeOff   []*model.TimeOff
	preferred []*model.PreferredTime
	demand    []*model.ShiftDemand
	rules     []*model.RosterRule
}

// ParseWeekStart validates that weekStart is a Monday in YYYY-MM-DD form.
func ParseWeekStart(weekStart string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", weekStart)
	if err != nil || t.Weekday() != time.Monday {
		return time.Time{}, errors.InvalidWeekStart(weekStart)
	}
	return t, nil
}

// load pulls the full snapshot for the week and filters the rules down to
// the ones active on its Monday.
func (s *Service) load(ctx context.Context, weekStart string) (*snapshot, time.Time, error) {
	monday, err := ParseWeekStart(weekStart)
	if err != nil {
		return nil, time.Time{}, err
	}

	staff, err := s.store.StaffRoster(ctx)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, errors.CodeDatabaseError, "loading staff roster")
	}
	windows, timeOff, preferred, err := s.store.AvailabilityForWeek(ctx, weekStart)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, errors.CodeDatabaseError, "loading availability")
	}
	demand, err := s.store.DemandTemplate(ctx)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, errors.CodeDatabaseError, "loading demand template")
	}
	rules, err := s.store.ActiveRules(ctx, monday)
	if err != nil {
		return nil, time.Time{}, errors.Wrap(err, errors.CodeDatabaseError, "loading rules")
	}

	active := rules[:0:0]
	for _, r := range rules {
		if r.ActiveOn(monday) {
			active = append(active, r)
		}
	}

	return &snapshot{
		staff:     staff,
		windows:   windows,
		timeOff:   timeOff,
		preferred: preferred,
		demand:    demand,
		rules:     active,
	}, monday, nil
}

// buildContext assembles the rule context from a snapshot.
func (s *Service) buildContext(snap *snapshot, weekStart string) *rule.Context {
	rctx := rule.NewContext(weekStart)
	rctx.SetStaff(snap.staff)
	rctx.SetAvailability(snap.windows, snap.timeOff, snap.preferred)
	rctx.SetDemand(snap.demand)
	return rctx
}

// buildConstraints turns the snapshot's rules into the full constraint set:
// the baseline invariants, the always-on soft preferences, and every
// catalog-built rule. Rules the catalog cannot evaluate come back as notice
// violations instead of constraints.
func (s *Service) buildConstraints(snap *snapshot, maxHours int) ([]rule.Constraint, []model.Violation) {
	built, skipped := s.catalog.BuildAll(snap.rules)
	for _, v := range skipped {
		s.log.RuleSkipped(v.ConstraintType, v.Message)
	}
	constraints := builtin.Baseline(snap.rules, maxHours)
	constraints = append(constraints, builtin.SoftBaseline()...)
	return append(constraints, built...), skipped
}

// Generate builds a roster for the week described by params.
func (s *Service) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	snap, _, err := s.load(ctx, params.WeekStart)
	if err != nil {
		return nil, err
	}

	opts := s.defaults
	if params.MaxHoursPerWeek > 0 {
		opts.MaxHoursPerWeek = params.MaxHoursPerWeek
	}
	if params.Seed != 0 {
		opts.Seed = params.Seed
	}
	opts.PreferFairness = opts.PreferFairness || params.PreferFairness
	maxHours := opts.MaxHoursPerWeek
	if maxHours <= 0 {
		maxHours = generate.DefaultOptions().MaxHoursPerWeek
	}

	constraints, skipped := s.buildConstraints(snap, maxHours)
	rctx := s.buildContext(snap, params.WeekStart)

	sol, err := generate.New(constraints, opts).Generate(ctx, rctx)
	if err != nil {
		return nil, err
	}
	sol.Violations = append(sol.Violations, skipped...)

	return &GenerateResult{
		Solution: sol,
		Stats:    sol.Stats(),
		Fairness: stats.NewFairnessAnalyzer().Analyze(sol, snap.staff),
		Coverage: stats.NewCoverageAnalyzer().Analyze(sol, snap.demand),
	}, nil
}

// Evaluate scores an externally supplied roster for the week without
// changing it. Assignments must reference staff from the pool.
func (s *Service) Evaluate(ctx context.Context, weekStart string, assignments []*model.ShiftAssignment) (*GenerateResult, error) {
	snap, _, err := s.load(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	if err := checkStaffKnown(snap.staff, assignments); err != nil {
		return nil, err
	}

	maxHours := s.defaults.MaxHoursPerWeek
	if maxHours <= 0 {
		maxHours = generate.DefaultOptions().MaxHoursPerWeek
	}
	constraints, skipped := s.buildConstraints(snap, maxHours)

	rctx := s.buildContext(snap, weekStart)
	rctx.DefaultMaxHours = float64(maxHours)
	rctx.SetAssignments(assignments)

	result := evaluate.Evaluate(rctx, constraints)
	sol := result.Solution(rctx)
	sol.Violations = append(sol.Violations, skipped...)

	return &GenerateResult{
		Solution: sol,
		Stats:    sol.Stats(),
		Fairness: stats.NewFairnessAnalyzer().Analyze(sol, snap.staff),
		Coverage: stats.NewCoverageAnalyzer().Analyze(sol, snap.demand),
	}, nil
}

// SwapCandidates ranks the staff who could take over one assignment in the
// given roster, best first.
func (s *Service) SwapCandidates(ctx context.Context, weekStart string, assignments []*model.ShiftAssignment, assignmentID uuid.UUID, max int) ([]swap.Recommendation, error) {
	snap, _, err := s.load(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	if err := checkStaffKnown(snap.staff, assignments); err != nil {
		return nil, err
	}

	var target *model.ShiftAssignment
	for _, a := range assignments {
		if a.ID == assignmentID {
			target = a
			break
		}
	}
	if target == nil {
		return nil, errors.NotFound("assignment", assignmentID.String())
	}

	maxHours := s.defaults.MaxHoursPerWeek
	if maxHours <= 0 {
		maxHours = generate.DefaultOptions().MaxHoursPerWeek
	}
	constraints, _ := s.buildConstraints(snap, maxHours)

	rctx := s.buildContext(snap, weekStart)
	rctx.DefaultMaxHours = float64(maxHours)
	rctx.SetAssignments(assignments)

	opts := swap.DefaultOptions()
	if max > 0 {
		opts.MaxRecommendations = max
	}
	return swap.NewRecommender(constraints).Recommend(rctx, target, opts), nil
}

// RulesLibrary lists the catalog's rule types with their parameter schemas.
func (s *Service) RulesLibrary() []builtin.Definition {
	return s.catalog.Definitions()
}

// ValidateRule checks a stored rule against the catalog schema.
func (s *Service) ValidateRule(r *model.RosterRule) error {
	return s.catalog.Validate(r)
}

// checkStaffKnown rejects assignments referencing staff outside the pool
// before they reach the evaluator, which treats that as a caller bug.
func checkStaffKnown(staff []*model.StaffMember, assignments []*model.ShiftAssignment) error {
	known := make(map[uuid.UUID]bool, len(staff))
	for _, s := range staff {
		known[s.ID] = true
	}
	for _, a := range assignments {
		if !known[a.StaffID] {
			return errors.InvalidInput("staff_id", "assignment references staff "+a.StaffID.String()+" not in the roster")
		}
	}
	return nil
}
