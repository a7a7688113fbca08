package rule

import (
	"fmt"
	"sort"
	"sync"

	"github.com/meeplecafe/rosterd/pkg/logger"
	"github.com/meeplecafe/rosterd/pkg/model"
)

// Manager holds the constraint set for one run. Several rules of the same
// type may coexist (e.g. two min_coverage rules for different windows), so
// registration never replaces by type.
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.RosterLogger
}

// NewManager creates an empty constraint manager.
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewRosterLogger(),
	}
}

// Register adds a constraint. Hard constraints sort first, then by weight
// descending, so feasibility checks fail fast.
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.constraints = append(m.constraints, c)

	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// Unregister removes the constraint with the given name.
func (m *Manager) Unregister(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.constraints {
		if c.Name() == name {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return
		}
	}
}

// GetAll returns a copy of the registered constraints in evaluation order.
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory returns the constraints of one category.
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// CanAssign checks only the hard constraints against a single candidate
// assignment. Returns the first failing constraint's name on rejection.
func (m *Manager) CanAssign(ctx *Context, a *model.ShiftAssignment) (bool, string) {
	for _, c := range m.GetByCategory(CategoryHard) {
		valid, _ := c.EvaluateAssignment(ctx, a)
		if !valid {
			return false, c.Name()
		}
	}
	return true, ""
}

// AssignmentPenalty sums the marginal soft penalty of one candidate
// assignment, used by greedy construction to rank candidates.
func (m *Manager) AssignmentPenalty(ctx *Context, a *model.ShiftAssignment) float64 {
	var total float64
	for _, c := range m.GetByCategory(CategorySoft) {
		_, penalty := c.EvaluateAssignment(ctx, a)
		total += penalty
	}
	return total
}

// Clear removes all constraints.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count returns the number of registered constraints.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary returns hard/soft counts for logging.
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard := 0
	soft := 0
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
	}

	return map[string]interface{}{
		"total": len(m.constraints),
		"hard":  hard,
		"soft":  soft,
	}
}

// LogViolation records a violation through the roster logger.
func (m *Manager) LogViolation(constraint string, v model.Violation) {
	m.logger.ConstraintViolation(constraint, fmt.Sprintf("%s: %s", v.ConstraintType, v.Message))
}
