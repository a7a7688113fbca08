package swap

import (
	"sort"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// Recommendation is one ranked cover candidate.
type Recommendation struct {
	Staff       *model.StaffMember     `json:"staff"`
	Exchange    *model.ShiftAssignment `json:"exchange,omitempty"`
	SwapType    string                 `json:"swap_type"` // take_over or exchange
	ScoreDelta  float64                `json:"score_delta"`
	HoursChange float64                `json:"hours_change"`
	Preferred   bool                   `json:"preferred"`
	Rank        int                    `json:"rank"`
}

// Options tunes a recommendation run.
type Options struct {
	MaxRecommendations int
	Exclude            []uuid.UUID
	AllowExchange      bool
}

// DefaultOptions returns the standard recommendation options.
func DefaultOptions() *Options {
	return &Options{
		MaxRecommendations: 5,
		AllowExchange:      true,
	}
}

// Recommender ranks staff who could take over an assignment.
type Recommender struct {
	evaluator *CoverEvaluator
}

// NewRecommender creates a recommender over the given constraints.
func NewRecommender(constraints []rule.Constraint) *Recommender {
	return &Recommender{evaluator: NewCoverEvaluator(constraints)}
}

// Recommend lists feasible covers for the assignment, best first. Ties
// break toward preferred time, then lower added hours, then name, so the
// ranking is stable run to run.
func (r *Recommender) Recommend(rctx *rule.Context, assignment *model.ShiftAssignment, opts *Options) []Recommendation {
	if opts == nil {
		opts = DefaultOptions()
	}

	exclude := map[uuid.UUID]bool{assignment.StaffID: true}
	for _, id := range opts.Exclude {
		exclude[id] = true
	}

	var out []Recommendation
	for _, s := range rctx.Staff {
		if exclude[s.ID] || !s.IsActive {
			continue
		}

		eval := r.evaluator.Evaluate(rctx, &CoverRequest{Assignment: assignment, Candidate: s})
		if eval.Feasible {
			out = append(out, Recommendation{
				Staff:       s,
				SwapType:    "take_over",
				ScoreDelta:  eval.ScoreDelta,
				HoursChange: eval.HoursChange,
				Preferred:   eval.Preferred,
			})
		}

		if opts.AllowExchange {
			out = append(out, r.exchanges(rctx, assignment, s)...)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ScoreDelta != b.ScoreDelta {
			return a.ScoreDelta < b.ScoreDelta
		}
		if a.Preferred != b.Preferred {
			return a.Preferred
		}
		if a.HoursChange != b.HoursChange {
			return a.HoursChange < b.HoursChange
		}
		return a.Staff.Name < b.Staff.Name
	})

	if len(out) > opts.MaxRecommendations {
		out = out[:opts.MaxRecommendations]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// exchanges evaluates handing one of the candidate's shifts back to the
// assignment's owner. Same-day exchanges are skipped, they rarely help.
func (r *Recommender) exchanges(rctx *rule.Context, assignment *model.ShiftAssignment, candidate *model.StaffMember) []Recommendation {
	var out []Recommendation
	for _, theirs := range rctx.StaffAssignments(candidate.ID) {
		if theirs.Day == assignment.Day {
			continue
		}
		eval := r.evaluator.Evaluate(rctx, &CoverRequest{
			Assignment: assignment,
			Candidate:  candidate,
			Exchange:   theirs,
		})
		if !eval.Feasible {
			continue
		}
		out = append(out, Recommendation{
			Staff:       candidate,
			Exchange:    theirs,
			SwapType:    "exchange",
			ScoreDelta:  eval.ScoreDelta,
			HoursChange: eval.HoursChange,
			Preferred:   eval.Preferred,
		})
	}
	return out
}

// BestCover returns the single best feasible cover for a staff member's
// shift on a day, or nil when no one can take it.
func (r *Recommender) BestCover(rctx *rule.Context, staffID uuid.UUID, day model.Weekday) *Recommendation {
	var target *model.ShiftAssignment
	for _, a := range rctx.StaffAssignments(staffID) {
		if a.Day == day {
			target = a
			break
		}
	}
	if target == nil {
		return nil
	}

	recs := r.Recommend(rctx, target, &Options{MaxRecommendations: 1})
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}
