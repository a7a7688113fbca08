// Package generate builds weekly rosters. A greedy pass fills demand slots
// with hard-feasible staff, then simulated annealing works the soft score
// down. Both phases draw randomness from one seeded source, so a fixed seed
// reproduces the same roster.
package generate

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/errors"
	"github.com/meeplecafe/rosterd/pkg/logger"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/evaluate"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
	"github.com/meeplecafe/rosterd/pkg/roster/rule/builtin"
)

// hasFairness reports whether a fairness constraint is already registered.
func hasFairness(constraints []rule.Constraint) bool {
	for _, c := range constraints {
		if c.Type() == rule.TypeFairness {
			return true
		}
	}
	return false
}

// Options tunes a generation run. Unset values fall back to the defaults,
// except TimeBudget, where zero means no wall-clock limit.
type Options struct {
	MaxHoursPerWeek  int           `json:"max_hours_per_week"`
	PreferFairness   bool          `json:"prefer_fairness"`
	TimeBudget       time.Duration `json:"time_budget"`
	MaxIterations    int           `json:"max_iterations"`
	Seed             int64         `json:"seed"`
	InitialTemp      float64       `json:"initial_temp"`
	CoolingRate      float64       `json:"cooling_rate"`
	TabuSize         int           `json:"tabu_size"`
	NeighborhoodSize int           `json:"neighborhood_size"`
	PlateauThreshold int           `json:"plateau_threshold"`
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		MaxHoursPerWeek:  40,
		TimeBudget:       10 * time.Second,
		MaxIterations:    1000,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		TabuSize:         50,
		NeighborhoodSize: 12,
		PlateauThreshold: 150,
	}
}

// normalize fills unset options from the defaults.
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.MaxHoursPerWeek <= 0 {
		o.MaxHoursPerWeek = def.MaxHoursPerWeek
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.InitialTemp <= 0 {
		o.InitialTemp = def.InitialTemp
	}
	if o.CoolingRate <= 0 || o.CoolingRate >= 1 {
		o.CoolingRate = def.CoolingRate
	}
	if o.TabuSize <= 0 {
		o.TabuSize = def.TabuSize
	}
	if o.NeighborhoodSize <= 0 {
		o.NeighborhoodSize = def.NeighborhoodSize
	}
	if o.PlateauThreshold <= 0 {
		o.PlateauThreshold = def.PlateauThreshold
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}
	return o
}

// Generator generates rosters against a fixed constraint set.
type Generator struct {
	constraints []rule.Constraint
	manager     *rule.Manager
	opts        Options
	rng         *rand.Rand
	ids         *idSource
	neighbors   *NeighborhoodGenerator
	log         *logger.RosterLogger
}

// idSource mints assignment IDs from the run's seeded randomness, so two
// runs with the same seed and inputs produce byte-identical solutions.
type idSource struct {
	rng *rand.Rand
}

func newIDSource(rng *rand.Rand) *idSource {
	return &idSource{rng: rng}
}

func (s *idSource) next() uuid.UUID {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		// *rand.Rand.Read never fails
		return uuid.New()
	}
	return id
}

// New creates a generator. The constraint slice should hold the baseline
// invariants plus the built rules for the week.
func New(constraints []rule.Constraint, opts Options) *Generator {
	opts = opts.normalize()

	manager := rule.NewManager()
	for _, c := range constraints {
		manager.Register(c)
	}
	if opts.PreferFairness && !hasFairness(constraints) {
		manager.Register(builtin.NewFairnessConstraint(&model.RosterRule{
			BaseModel: model.NewBaseModel(),
			RuleText:  "spread hours evenly",
			Type:      rule.TypeFairness,
			Weight:    25,
			IsActive:  true,
		}))
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	return &Generator{
		ids:         newIDSource(rng),
		constraints: manager.GetAll(),
		manager:     manager,
		opts:        opts,
		rng:         rng,
		neighbors:   NewNeighborhoodGenerator(rng),
		log:         logger.NewRosterLogger(),
	}
}

// Generate builds a roster for the context's week. Running out of time or a
// cancelled context is not an error: the best roster found so far comes
// back. The only errors are unusable inputs.
func (g *Generator) Generate(ctx context.Context, rctx *rule.Context) (*model.Solution, error) {
	start := time.Now()
	g.log.StartGeneration(rctx.WeekStart, len(rctx.Staff), len(rctx.Demand))

	if len(rctx.Staff) == 0 {
		return nil, errors.InvalidInput("staff", "no staff in the pool")
	}
	if g.opts.MaxHoursPerWeek > 0 {
		rctx.DefaultMaxHours = float64(g.opts.MaxHoursPerWeek)
	}

	work := rctx.Clone()
	g.greedyFill(ctx, work)

	initial := g.evaluateAssignments(rctx, cloneAssignments(work.Assignments))
	best := initial
	if g.opts.MaxIterations > 0 && len(initial.assignments) > 0 {
		best = g.improve(ctx, rctx, initial)
	}

	final := rctx.Clone()
	final.SetAssignments(best.assignments)
	result := evaluate.Evaluate(final, g.constraints)
	sol := result.Solution(final)
	sol.Violations = append(sol.Violations, g.unfillable(final)...)
	if len(sol.Violations) > 0 {
		for _, v := range sol.Violations {
			if v.ConstraintType == rule.TypeUnfillableSlot {
				sol.IsValid = false
			}
		}
	}

	g.log.GenerationComplete(rctx.WeekStart, time.Since(start), sol.Score, sol.IsValid)
	return sol, nil
}

// demandSeat is one unfilled seat on a demand slot during the greedy pass.
type demandSeat struct {
	demand     *model.ShiftDemand
	candidates int
}

// greedyFill assigns hard-feasible staff to every demand seat, hardest
// slots first. Seats with no feasible candidate are left open for the
// evaluator to flag.
func (g *Generator) greedyFill(ctx context.Context, work *rule.Context) {
	seats := make([]demandSeat, 0, len(work.Demand))
	for _, d := range work.Demand {
		seats = append(seats, demandSeat{demand: d, candidates: len(g.feasibleStaff(work, d))})
	}
	sort.SliceStable(seats, func(i, j int) bool {
		if seats[i].candidates != seats[j].candidates {
			return seats[i].candidates < seats[j].candidates
		}
		di, dj := seats[i].demand, seats[j].demand
		if di.Day != dj.Day {
			return di.Day.Index() < dj.Day.Index()
		}
		if di.Range.Start != dj.Range.Start {
			return di.Range.Start < dj.Range.Start
		}
		return di.Key() < dj.Key()
	})

	for _, seat := range seats {
		if ctx.Err() != nil {
			return
		}
		d := seat.demand
		target := d.MinStaff
		if target <= 0 {
			target = 1
		}
		for assigned := len(work.AssignedToSlot(d)); assigned < target; assigned++ {
			pick := g.pickStaff(work, d)
			if pick == nil {
				break
			}
			work.AddAssignment(&model.ShiftAssignment{
				ID:        g.ids.next(),
				StaffID:   pick.ID,
				Day:       d.Day,
				ShiftType: d.ShiftType,
				Role:      d.Role,
				Range:     d.Range,
			})
		}
	}
}

// feasibleStaff lists the staff who could take the slot without breaking a
// hard constraint, given the current assignments.
func (g *Generator) feasibleStaff(work *rule.Context, d *model.ShiftDemand) []*model.StaffMember {
	var out []*model.StaffMember
	for _, s := range work.Staff {
		if !s.IsActive {
			continue
		}
		trial := &model.ShiftAssignment{
			ID:        g.ids.next(),
			StaffID:   s.ID,
			Day:       d.Day,
			ShiftType: d.ShiftType,
			Role:      d.Role,
			Range:     d.Range,
		}
		if ok, _ := g.manager.CanAssign(work, trial); ok {
			out = append(out, s)
		}
	}
	return out
}

// pickStaff chooses the best candidate for one seat: lowest marginal soft
// penalty, then preferred time, then fewest assigned hours, then name.
func (g *Generator) pickStaff(work *rule.Context, d *model.ShiftDemand) *model.StaffMember {
	type scored struct {
		staff   *model.StaffMember
		penalty float64
		prefers bool
		hours   float64
	}

	var candidates []scored
	for _, s := range g.feasibleStaff(work, d) {
		assigned := work.AssignedToSlot(d)
		taken := false
		for _, a := range assigned {
			if a.StaffID == s.ID {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		trial := &model.ShiftAssignment{
			ID:        g.ids.next(),
			StaffID:   s.ID,
			Day:       d.Day,
			ShiftType: d.ShiftType,
			Role:      d.Role,
			Range:     d.Range,
		}
		candidates = append(candidates, scored{
			staff:   s,
			penalty: g.manager.AssignmentPenalty(work, trial),
			prefers: work.PrefersTime(s.ID, d.Day, d.Range),
			hours:   work.StaffHours(s.ID),
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.penalty != b.penalty {
			return a.penalty < b.penalty
		}
		if a.prefers != b.prefers {
			return a.prefers
		}
		if a.hours != b.hours {
			return a.hours < b.hours
		}
		return a.staff.Name < b.staff.Name
	})
	return candidates[0].staff
}

// unfillable reports the demand seats still below minimum that no staff
// member could feasibly take, given the final roster.
func (g *Generator) unfillable(final *rule.Context) []model.Violation {
	var out []model.Violation
	for _, d := range final.Demand {
		min := d.MinStaff
		if min <= 0 {
			min = 1
		}
		assigned := len(final.AssignedToSlot(d))
		if assigned >= min {
			continue
		}
		if len(g.feasibleStaff(final, d)) > 0 {
			continue
		}
		out = append(out, model.Violation{
			ConstraintType: rule.TypeUnfillableSlot,
			Severity:       model.SeverityHard,
			Day:            d.Day,
			Message: fmt.Sprintf("%s %s %s: no staff member can take this slot (%d of %d filled)",
				d.Day, d.ShiftType, d.Range, assigned, min),
		})
	}
	return out
}
