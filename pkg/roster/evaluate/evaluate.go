// Package evaluate scores a roster against a set of constraints. Evaluation
// is pure: it never mutates the context or the assignments it reads.
package evaluate

import (
	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// Result is the outcome of one evaluation pass.
//
// Score sums the soft penalties, so zero means no soft violations.
// HardPenalty sums the hard penalties separately; the local search uses it
// to compare two infeasible states without letting hard weight drown the
// soft signal.
type Result struct {
	Score         float64           `json:"score"`
	HardPenalty   float64           `json:"-"`
	IsValid       bool              `json:"is_valid"`
	Violations    []model.Violation `json:"violations,omitempty"`
	PerAssignment map[uuid.UUID][]model.Violation `json:"-"`
}

// Evaluate runs every constraint against the context. Constraints are run
// in the order given, so a sorted constraint list yields deterministic
// violation ordering.
func Evaluate(ctx *rule.Context, constraints []rule.Constraint) *Result {
	res := &Result{
		IsValid:       true,
		PerAssignment: make(map[uuid.UUID][]model.Violation),
	}

	for _, c := range constraints {
		valid, penalty, violations := c.Evaluate(ctx)
		switch c.Category() {
		case rule.CategoryHard:
			if !valid {
				res.IsValid = false
			}
			res.HardPenalty += penalty
		case rule.CategorySoft:
			res.Score += penalty
		}
		for _, v := range violations {
			res.Violations = append(res.Violations, v)
			for _, id := range v.AssignmentIDs {
				res.PerAssignment[id] = append(res.PerAssignment[id], v)
			}
		}
	}

	return res
}

// HardViolations returns only the hard violations.
func (r *Result) HardViolations() []model.Violation {
	var out []model.Violation
	for _, v := range r.Violations {
		if v.Severity == model.SeverityHard {
			out = append(out, v)
		}
	}
	return out
}

// Annotate stamps violation flags onto the assignments. Notices do not flag
// an assignment.
func (r *Result) Annotate(assignments []*model.ShiftAssignment) {
	for _, a := range assignments {
		a.HasViolation = false
		a.ViolationMessage = ""
		for _, v := range r.PerAssignment[a.ID] {
			if v.Severity == model.SeverityNotice {
				continue
			}
			a.HasViolation = true
			if a.ViolationMessage == "" {
				a.ViolationMessage = v.Message
			}
		}
	}
}

// Solution packages the context's assignments and the result into a
// solution. The assignments are deep-copied so later context mutations do
// not leak into the returned solution.
func (r *Result) Solution(ctx *rule.Context) *model.Solution {
	sol := &model.Solution{
		WeekStart:  ctx.WeekStart,
		Score:      r.Score,
		IsValid:    r.IsValid,
		Violations: append([]model.Violation(nil), r.Violations...),
	}
	for _, a := range ctx.Assignments {
		copied := *a
		sol.Assignments = append(sol.Assignments, &copied)
	}
	r.Annotate(sol.Assignments)
	return sol
}
