package stats

import (
	"sort"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// SlotCoverage is one demand slot with the staffing it actually got.
type SlotCoverage struct {
	Day       model.Weekday `json:"day_of_week"`
	ShiftType string        `json:"shift_type"`
	Role      string        `json:"role_required,omitempty"`
	Range     string        `json:"range"`
	Required  int           `json:"required"`
	Assigned  int           `json:"assigned"`
	Shortfall int           `json:"shortfall"`
}

// DayCoverage aggregates coverage for one day of the week.
type DayCoverage struct {
	Day           model.Weekday `json:"day_of_week"`
	SlotCount     int           `json:"slot_count"`
	FilledSlots   int           `json:"filled_slots"`
	AssignedHours float64       `json:"assigned_hours"`
	DemandedHours float64       `json:"demanded_hours"`
	CoverageRate  float64       `json:"coverage_rate"` // 0-100
}

// CoverageMetrics summarizes how well a roster meets its demand template.
type CoverageMetrics struct {
	TotalSlots        int            `json:"total_slots"`
	FilledSlots       int            `json:"filled_slots"`
	UnderstaffedSlots []SlotCoverage `json:"understaffed_slots,omitempty"`
	OverstaffedSlots  []SlotCoverage `json:"overstaffed_slots,omitempty"`
	DayCoverage       []DayCoverage  `json:"day_coverage"`
	OverallRate       float64        `json:"overall_rate"`  // 0-100
	OrphanShifts      int            `json:"orphan_shifts"` // assignments not matching any slot
}

// CoverageAnalyzer measures a roster against its demand template.
type CoverageAnalyzer struct{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze compares the solution's assignments against the demand slots.
func (c *CoverageAnalyzer) Analyze(sol *model.Solution, demand []*model.ShiftDemand) *CoverageMetrics {
	assignedBySlot := make(map[string]int)
	for _, a := range sol.Assignments {
		assignedBySlot[a.SlotKey()]++
	}

	metrics := &CoverageMetrics{TotalSlots: len(demand)}
	days := make(map[model.Weekday]*DayCoverage)
	for _, day := range model.Weekdays {
		days[day] = &DayCoverage{Day: day}
	}

	matched := make(map[string]bool, len(demand))
	for _, d := range demand {
		required := d.MinStaff
		if required <= 0 {
			required = 1
		}
		assigned := assignedBySlot[d.Key()]
		matched[d.Key()] = true

		dc := days[d.Day]
		dc.SlotCount++
		dc.DemandedHours += d.Range.Hours() * float64(required)
		dc.AssignedHours += d.Range.Hours() * float64(assigned)
		if assigned >= required {
			dc.FilledSlots++
			metrics.FilledSlots++
		}

		slot := SlotCoverage{
			Day:       d.Day,
			ShiftType: d.ShiftType,
			Role:      d.Role,
			Range:     d.Range.String(),
			Required:  required,
			Assigned:  assigned,
		}
		if assigned < required {
			slot.Shortfall = required - assigned
			metrics.UnderstaffedSlots = append(metrics.UnderstaffedSlots, slot)
		} else if d.MaxStaff > 0 && assigned > d.MaxStaff {
			metrics.OverstaffedSlots = append(metrics.OverstaffedSlots, slot)
		}
	}

	for _, a := range sol.Assignments {
		if !matched[a.SlotKey()] {
			metrics.OrphanShifts++
		}
	}

	for _, day := range model.Weekdays {
		dc := days[day]
		if dc.SlotCount > 0 {
			dc.CoverageRate = float64(dc.FilledSlots) / float64(dc.SlotCount) * 100
		}
		metrics.DayCoverage = append(metrics.DayCoverage, *dc)
	}
	if metrics.TotalSlots > 0 {
		metrics.OverallRate = float64(metrics.FilledSlots) / float64(metrics.TotalSlots) * 100
	} else {
		metrics.OverallRate = 100
	}

	sort.Slice(metrics.UnderstaffedSlots, func(i, j int) bool {
		a, b := metrics.UnderstaffedSlots[i], metrics.UnderstaffedSlots[j]
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		return a.Range < b.Range
	})
	return metrics
}
