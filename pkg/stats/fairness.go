// Package stats analyzes finished rosters: how fairly the hours landed and
// how well the demand was covered.
package stats

import (
	"math"
	"sort"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// StaffStat is one staff member's share of the week.
type StaffStat struct {
	StaffID       string  `json:"staff_id"`
	Name          string  `json:"name"`
	TotalHours    float64 `json:"total_hours"`
	ShiftCount    int     `json:"shift_count"`
	EveningShifts int     `json:"evening_shifts"`
	WeekendShifts int     `json:"weekend_shifts"`
	Deviation     float64 `json:"deviation"` // percent off the pool mean
}

// FairnessMetrics summarizes how evenly a roster spreads the work.
type FairnessMetrics struct {
	HoursGini      float64     `json:"hours_gini"` // 0 even, 1 skewed
	HoursVariance  float64     `json:"hours_variance"`
	HoursStdDev    float64     `json:"hours_std_dev"`
	AvgHours       float64     `json:"avg_hours"`
	MaxHours       float64     `json:"max_hours"`
	MinHours       float64     `json:"min_hours"`
	EveningGini    float64     `json:"evening_gini"`
	WeekendGini    float64     `json:"weekend_gini"`
	StaffStats     []StaffStat `json:"staff_stats"`
	FairnessScore  float64     `json:"fairness_score"` // 0-100, higher is fairer
}

// FairnessAnalyzer computes fairness metrics for a roster.
type FairnessAnalyzer struct {
	eveningStart int // minutes since midnight
}

// NewFairnessAnalyzer creates an analyzer. Shifts running past 18:00 count
// as evening shifts.
func NewFairnessAnalyzer() *FairnessAnalyzer {
	return &FairnessAnalyzer{eveningStart: 18 * 60}
}

// Analyze computes fairness metrics over the solution for the given pool.
// Staff with no assignments count as zeros, so leaving someone out shows up
// in the spread.
func (f *FairnessAnalyzer) Analyze(sol *model.Solution, staff []*model.StaffMember) *FairnessMetrics {
	if len(staff) == 0 {
		return &FairnessMetrics{FairnessScore: 100}
	}

	stats := make([]StaffStat, 0, len(staff))
	byID := make(map[string]*StaffStat, len(staff))
	for _, s := range staff {
		stats = append(stats, StaffStat{StaffID: s.ID.String(), Name: s.DisplayName()})
		byID[s.ID.String()] = &stats[len(stats)-1]
	}

	for _, a := range sol.Assignments {
		st, ok := byID[a.StaffID.String()]
		if !ok {
			continue
		}
		st.TotalHours += a.Hours()
		st.ShiftCount++
		if a.Range.End > f.eveningStart {
			st.EveningShifts++
		}
		if a.Day.IsWeekend() {
			st.WeekendShifts++
		}
	}

	hours := make([]float64, len(stats))
	evenings := make([]float64, len(stats))
	weekends := make([]float64, len(stats))
	for i, st := range stats {
		hours[i] = st.TotalHours
		evenings[i] = float64(st.EveningShifts)
		weekends[i] = float64(st.WeekendShifts)
	}

	avg := mean(hours)
	variance := varianceOf(hours, avg)
	stdDev := math.Sqrt(variance)
	maxH, minH := rangeOf(hours)

	for i := range stats {
		if avg > 0 {
			stats[i].Deviation = (stats[i].TotalHours - avg) / avg * 100
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalHours != stats[j].TotalHours {
			return stats[i].TotalHours > stats[j].TotalHours
		}
		return stats[i].Name < stats[j].Name
	})

	hoursGini := gini(hours)
	eveningGini := gini(evenings)
	weekendGini := gini(weekends)

	return &FairnessMetrics{
		HoursGini:     hoursGini,
		HoursVariance: variance,
		HoursStdDev:   stdDev,
		AvgHours:      avg,
		MaxHours:      maxH,
		MinHours:      minH,
		EveningGini:   eveningGini,
		WeekendGini:   weekendGini,
		StaffStats:    stats,
		FairnessScore: fairnessScore(hoursGini, eveningGini, weekendGini, stdDev, avg),
	}
}

// Compare reports the fairness change from one roster to another.
func (f *FairnessAnalyzer) Compare(before, after *model.Solution, staff []*model.StaffMember) map[string]float64 {
	b := f.Analyze(before, staff)
	a := f.Analyze(after, staff)
	return map[string]float64{
		"hours_gini_diff":   a.HoursGini - b.HoursGini,
		"evening_gini_diff": a.EveningGini - b.EveningGini,
		"weekend_gini_diff": a.WeekendGini - b.WeekendGini,
		"score_diff":        a.FairnessScore - b.FairnessScore,
		"before_score":      b.FairnessScore,
		"after_score":       a.FairnessScore,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		d := v - mean
		sumSquares += d * d
	}
	return sumSquares / float64(len(values))
}

func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini computes the Gini coefficient of the values, clamped to [0, 1].
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g /= float64(n) * sum
	return math.Max(0, math.Min(1, g))
}

// fairnessScore folds the spread measures into one 0-100 score.
func fairnessScore(hoursGini, eveningGini, weekendGini, stdDev, avg float64) float64 {
	const (
		hoursWeight   = 0.4
		eveningWeight = 0.25
		weekendWeight = 0.25
		cvWeight      = 0.1
	)

	cvScore := 100.0
	if avg > 0 {
		cvScore = math.Max(0, 100-stdDev/avg*200)
	}

	score := hoursWeight*(1-hoursGini)*100 +
		eveningWeight*(1-eveningGini)*100 +
		weekendWeight*(1-weekendGini)*100 +
		cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
