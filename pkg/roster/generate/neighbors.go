package generate

import (
	"math/rand"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// MoveType is a neighborhood move kind.
type MoveType int

const (
	MoveSwap     MoveType = iota // swap the staff of two assignments
	MoveRelocate                 // hand one assignment to another staff member
	MoveInsert                   // add a seat on an under-filled slot
	MoveRemove                   // drop one assignment
)

// moveWeight pairs a move type with its selection weight. A slice keeps the
// cumulative draw deterministic for a fixed seed.
type moveWeight struct {
	move   MoveType
	weight float64
}

// NeighborhoodGenerator produces candidate rosters one move away from the
// current one. All randomness comes from the injected source so runs with
// the same seed explore the same neighborhood.
type NeighborhoodGenerator struct {
	rng     *rand.Rand
	ids     *idSource
	weights []moveWeight
}

// NewNeighborhoodGenerator creates a generator with the default move mix.
func NewNeighborhoodGenerator(rng *rand.Rand) *NeighborhoodGenerator {
	return &NeighborhoodGenerator{
		rng: rng,
		ids: newIDSource(rng),
		weights: []moveWeight{
			{MoveSwap, 0.40},
			{MoveRelocate, 0.30},
			{MoveInsert, 0.15},
			{MoveRemove, 0.15},
		},
	}
}

// SetMoveWeights replaces the move mix.
func (n *NeighborhoodGenerator) SetMoveWeights(weights []moveWeight) {
	n.weights = weights
}

// selectMove draws a move type by weight.
func (n *NeighborhoodGenerator) selectMove() MoveType {
	r := n.rng.Float64()
	cumulative := 0.0
	for _, w := range n.weights {
		cumulative += w.weight
		if r < cumulative {
			return w.move
		}
	}
	return MoveSwap
}

// Generate returns a mutated copy of the assignments, or nil when the drawn
// move does not apply to the current roster.
func (n *NeighborhoodGenerator) Generate(rctx *rule.Context, current []*model.ShiftAssignment) []*model.ShiftAssignment {
	switch n.selectMove() {
	case MoveSwap:
		return n.swap(current)
	case MoveRelocate:
		return n.relocate(rctx, current)
	case MoveInsert:
		return n.insert(rctx, current)
	case MoveRemove:
		return n.remove(current)
	}
	return nil
}

func cloneAssignments(assignments []*model.ShiftAssignment) []*model.ShiftAssignment {
	out := make([]*model.ShiftAssignment, len(assignments))
	for i, a := range assignments {
		copied := *a
		out[i] = &copied
	}
	return out
}

// swap exchanges the staff of two assignments.
func (n *NeighborhoodGenerator) swap(current []*model.ShiftAssignment) []*model.ShiftAssignment {
	if len(current) < 2 {
		return nil
	}
	neighbor := cloneAssignments(current)
	i := n.rng.Intn(len(neighbor))
	j := n.rng.Intn(len(neighbor))
	for tries := 0; neighbor[i].StaffID == neighbor[j].StaffID && tries < 8; tries++ {
		j = n.rng.Intn(len(neighbor))
	}
	if neighbor[i].StaffID == neighbor[j].StaffID {
		return nil
	}
	neighbor[i].StaffID, neighbor[j].StaffID = neighbor[j].StaffID, neighbor[i].StaffID
	return neighbor
}

// relocate hands one assignment to a different staff member.
func (n *NeighborhoodGenerator) relocate(rctx *rule.Context, current []*model.ShiftAssignment) []*model.ShiftAssignment {
	if len(current) == 0 || len(rctx.Staff) < 2 {
		return nil
	}
	neighbor := cloneAssignments(current)
	a := neighbor[n.rng.Intn(len(neighbor))]
	replacement := rctx.Staff[n.rng.Intn(len(rctx.Staff))]
	if replacement.ID == a.StaffID {
		return nil
	}
	a.StaffID = replacement.ID
	return neighbor
}

// insert adds a staff member to a slot that has room left.
func (n *NeighborhoodGenerator) insert(rctx *rule.Context, current []*model.ShiftAssignment) []*model.ShiftAssignment {
	if len(rctx.Staff) == 0 || len(rctx.Demand) == 0 {
		return nil
	}

	filled := make(map[string]int)
	for _, a := range current {
		filled[a.SlotKey()]++
	}

	var open []*model.ShiftDemand
	for _, d := range rctx.Demand {
		limit := d.MaxStaff
		if limit <= 0 {
			limit = d.MinStaff
			if limit <= 0 {
				limit = 1
			}
		}
		if filled[d.Key()] < limit {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return nil
	}

	d := open[n.rng.Intn(len(open))]
	s := rctx.Staff[n.rng.Intn(len(rctx.Staff))]

	neighbor := cloneAssignments(current)
	neighbor = append(neighbor, &model.ShiftAssignment{
		ID:        n.ids.next(),
		StaffID:   s.ID,
		Day:       d.Day,
		ShiftType: d.ShiftType,
		Role:      d.Role,
		Range:     d.Range,
	})
	return neighbor
}

// remove drops one assignment.
func (n *NeighborhoodGenerator) remove(current []*model.ShiftAssignment) []*model.ShiftAssignment {
	if len(current) <= 1 {
		return nil
	}
	neighbor := cloneAssignments(current)
	idx := n.rng.Intn(len(neighbor))
	return append(neighbor[:idx], neighbor[idx+1:]...)
}
