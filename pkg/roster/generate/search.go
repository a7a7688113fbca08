package generate

import (
	"context"
	"hash/fnv"
	"math"
	"time"

	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster/evaluate"
	"github.com/meeplecafe/rosterd/pkg/roster/rule"
)

// candidate is one evaluated roster state during the search.
type candidate struct {
	assignments []*model.ShiftAssignment
	result      *evaluate.Result
}

// cost is the search objective: soft score plus the hard penalty, so the
// search never trades feasibility for a prettier soft score.
func (c *candidate) cost() float64 {
	return c.result.Score + c.result.HardPenalty
}

// hashRoster fingerprints a roster for the tabu list. Assignment IDs are
// excluded so two rosters with the same shape hash alike.
func hashRoster(assignments []*model.ShiftAssignment) uint64 {
	if len(assignments) == 0 {
		return 0
	}
	h := fnv.New64a()
	for _, a := range assignments {
		h.Write(a.StaffID[:])
		h.Write([]byte(a.SlotKey()))
	}
	return h.Sum64()
}

// boltzmannProbability is the annealing acceptance probability for a move
// that worsens the cost by delta at the given temperature.
func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// TabuList remembers recently visited roster fingerprints, evicting the
// oldest once full.
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// NewTabuList creates a tabu list holding up to size fingerprints.
func NewTabuList(size int) *TabuList {
	return &TabuList{
		items:   make(map[uint64]struct{}),
		order:   make([]uint64, 0, size),
		maxSize: size,
	}
}

// Add records a fingerprint.
func (t *TabuList) Add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains reports whether the fingerprint was seen recently.
func (t *TabuList) Contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}

// Clear empties the list.
func (t *TabuList) Clear() {
	t.items = make(map[uint64]struct{})
	t.order = t.order[:0]
}

// evaluateAssignments scores a roster shape against the generator's
// constraints on a fresh copy of the context.
func (g *Generator) evaluateAssignments(rctx *rule.Context, assignments []*model.ShiftAssignment) *candidate {
	scratch := rctx.Clone()
	scratch.SetAssignments(assignments)
	return &candidate{
		assignments: assignments,
		result:      evaluate.Evaluate(scratch, g.constraints),
	}
}

// improve runs simulated annealing over the greedy roster. It is an anytime
// loop: cancellation or an expired time budget ends it and the best state
// found so far is returned.
func (g *Generator) improve(ctx context.Context, rctx *rule.Context, initial *candidate) *candidate {
	start := time.Now()

	current := initial
	best := initial

	temperature := g.opts.InitialTemp
	tabu := NewTabuList(g.opts.TabuSize)
	noImprovement := 0

	for i := 0; i < g.opts.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			g.log.SearchStopped("cancelled", i, best.cost())
			return best
		default:
		}
		if g.opts.TimeBudget > 0 && time.Since(start) > g.opts.TimeBudget {
			g.log.SearchStopped("time budget", i, best.cost())
			return best
		}

		neighbor := g.bestNeighbor(rctx, current)
		if neighbor == nil {
			continue
		}

		key := hashRoster(neighbor.assignments)
		accept := false
		if neighbor.cost() < current.cost() {
			accept = true
		} else if !tabu.Contains(key) {
			delta := neighbor.cost() - current.cost()
			if g.rng.Float64() < boltzmannProbability(delta, temperature) {
				accept = true
			}
		}

		if accept {
			current = neighbor
			tabu.Add(key)
			if betterThan(current, best) {
				best = current
				noImprovement = 0
			} else {
				noImprovement++
			}
		} else {
			noImprovement++
		}

		if g.opts.PlateauThreshold > 0 && noImprovement >= g.opts.PlateauThreshold {
			g.log.SearchStopped("plateau", i, best.cost())
			break
		}

		temperature *= g.opts.CoolingRate
	}

	return best
}

// bestNeighbor samples the neighborhood and returns the cheapest candidate.
func (g *Generator) bestNeighbor(rctx *rule.Context, current *candidate) *candidate {
	var best *candidate
	for i := 0; i < g.opts.NeighborhoodSize; i++ {
		assignments := g.neighbors.Generate(rctx, current.assignments)
		if assignments == nil {
			continue
		}
		c := g.evaluateAssignments(rctx, assignments)
		if best == nil || c.cost() < best.cost() {
			best = c
		}
	}
	return best
}

// betterThan prefers feasibility first, then cost.
func betterThan(a, b *candidate) bool {
	if a.result.IsValid != b.result.IsValid {
		return a.result.IsValid
	}
	return a.cost() < b.cost()
}
