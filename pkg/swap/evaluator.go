// Package swap finds cover for shifts: who can take over an assignment when
// its owner drops it, and what that does to the roster.
package swap

import (
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/evaluate"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// CoverRequest asks whether a candidate can take over an assignment.
// Exchange is set when the candidate hands one of their own shifts to the
// original owner in return.
type CoverRequest struct {
	Assignment *model.ShiftAssignment `json:"assignment"`
	Candidate  *model.StaffMember     `json:"candidate"`
	Exchange   *model.ShiftAssignment `json:"exchange,omitempty"`
}

// CoverIssue is one problem found while evaluating a cover.
type CoverIssue struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// CoverEvaluation is the outcome of evaluating one cover request.
type CoverEvaluation struct {
	Feasible    bool         `json:"feasible"`
	ScoreDelta  float64      `json:"score_delta"`
	HoursChange float64      `json:"hours_change"`
	Issues      []CoverIssue `json:"issues,omitempty"`
	Preferred   bool         `json:"preferred"`
}

// CoverEvaluator scores cover requests against a constraint set.
type CoverEvaluator struct {
	constraints []rule.Constraint
}

// NewCoverEvaluator creates an evaluator over the given constraints.
func NewCoverEvaluator(constraints []rule.Constraint) *CoverEvaluator {
	return &CoverEvaluator{constraints: constraints}
}

// simulate returns a context in which the request has been applied.
func (e *CoverEvaluator) simulate(rctx *rule.Context, req *CoverRequest) *rule.Context {
	sim := rctx.Clone()
	var next []*model.ShiftAssignment
	for _, a := range sim.Assignments {
		copied := *a
		switch {
		case a.ID == req.Assignment.ID:
			copied.StaffID = req.Candidate.ID
		case req.Exchange != nil && a.ID == req.Exchange.ID:
			copied.StaffID = req.Assignment.StaffID
		}
		next = append(next, &copied)
	}
	sim.SetAssignments(next)
	return sim
}

// Evaluate applies the request to a copy of the roster and reports
// feasibility and the score change.
func (e *CoverEvaluator) Evaluate(rctx *rule.Context, req *CoverRequest) *CoverEvaluation {
	out := &CoverEvaluation{}

	if req.Assignment == nil || req.Candidate == nil {
		out.Issues = append(out.Issues, CoverIssue{
			Type: "invalid_request", Severity: "error", Message: "cover request is missing the assignment or the candidate",
		})
		return out
	}
	if !req.Candidate.IsActive {
		out.Issues = append(out.Issues, CoverIssue{
			Type: "inactive_staff", Severity: "error",
			Message: fmt.Sprintf("%s is not active", req.Candidate.DisplayName()),
		})
		return out
	}
	if !req.Candidate.HasRole(req.Assignment.Role) {
		out.Issues = append(out.Issues, CoverIssue{
			Type: "role_mismatch", Severity: "error",
			Message: fmt.Sprintf("%s cannot fill role %q", req.Candidate.DisplayName(), req.Assignment.Role),
		})
		return out
	}

	before := evaluate.Evaluate(rctx, e.constraints)
	sim := e.simulate(rctx, req)
	after := evaluate.Evaluate(sim, e.constraints)

	out.Feasible = after.IsValid || (!before.IsValid && after.HardPenalty <= before.HardPenalty)
	out.ScoreDelta = after.Score - before.Score
	out.HoursChange = req.Assignment.Hours()
	if req.Exchange != nil {
		out.HoursChange -= req.Exchange.Hours()
	}
	out.Preferred = rctx.PrefersTime(req.Candidate.ID, req.Assignment.Day, req.Assignment.Range)

	for _, v := range after.HardViolations() {
		if v.StaffID == req.Candidate.ID {
			out.Issues = append(out.Issues, CoverIssue{
				Type: v.ConstraintType, Severity: "error", Message: v.Message,
			})
		}
	}
	if !after.IsValid && len(out.Issues) > 0 {
		out.Feasible = false
	}

	return out
}

// CanCover is the quick form: feasible or not, with the first blocking
// issue.
func (e *CoverEvaluator) CanCover(rctx *rule.Context, req *CoverRequest) (bool, string) {
	result := e.Evaluate(rctx, req)
	if !result.Feasible {
		if len(result.Issues) > 0 {
			return false, result.Issues[0].Message
		}
		return false, "the cover would break the roster"
	}
	return true, ""
}
