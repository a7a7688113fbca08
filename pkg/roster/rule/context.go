package rule

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
)

// AvailabilityResult classifies whether a staff member can work a time range.
type AvailabilityResult int

const (
	Unavailable AvailabilityResult = iota
	Available
	AvailableReluctant // covered only by preferred_not windows
)

// Context is the read-only staffing snapshot plus the mutable candidate
// roster a search is working on. All inputs are fetched once before a run;
// no global state is consulted during evaluation.
type Context struct {
	WeekStart string // Monday, YYYY-MM-DD

	Staff     []*model.StaffMember
	Windows   []*model.AvailabilityWindow
	TimeOff   []*model.TimeOff
	Preferred []*model.PreferredTime
	Demand    []*model.ShiftDemand

	// DefaultMaxHours caps weekly hours for staff without their own limit.
	DefaultMaxHours float64

	Assignments []*model.ShiftAssignment

	staffMap         map[uuid.UUID]*model.StaffMember
	byStaff          map[uuid.UUID][]*model.ShiftAssignment
	byDay            map[model.Weekday][]*model.ShiftAssignment
	windowsByStaff   map[uuid.UUID]map[model.Weekday][]*model.AvailabilityWindow
	timeOffByStaff   map[uuid.UUID][]*model.TimeOff
	preferredByStaff map[uuid.UUID]map[model.Weekday][]*model.PreferredTime
}

// NewContext creates an empty context for the given week.
func NewContext(weekStart string) *Context {
	return &Context{
		WeekStart:        weekStart,
		DefaultMaxHours:  40,
		staffMap:         make(map[uuid.UUID]*model.StaffMember),
		byStaff:          make(map[uuid.UUID][]*model.ShiftAssignment),
		byDay:            make(map[model.Weekday][]*model.ShiftAssignment),
		windowsByStaff:   make(map[uuid.UUID]map[model.Weekday][]*model.AvailabilityWindow),
		timeOffByStaff:   make(map[uuid.UUID][]*model.TimeOff),
		preferredByStaff: make(map[uuid.UUID]map[model.Weekday][]*model.PreferredTime),
	}
}

// SetStaff sets the staff pool.
func (c *Context) SetStaff(staff []*model.StaffMember) {
	c.Staff = staff
	c.staffMap = make(map[uuid.UUID]*model.StaffMember)
	for _, s := range staff {
		c.staffMap[s.ID] = s
	}
}

// SetAvailability sets the recurring windows, one-off time-off entries, and
// weekly preferences.
func (c *Context) SetAvailability(windows []*model.AvailabilityWindow, timeOff []*model.TimeOff, preferred []*model.PreferredTime) {
	c.Windows = windows
	c.TimeOff = timeOff
	c.Preferred = preferred

	c.windowsByStaff = make(map[uuid.UUID]map[model.Weekday][]*model.AvailabilityWindow)
	for _, w := range windows {
		byDay := c.windowsByStaff[w.StaffID]
		if byDay == nil {
			byDay = make(map[model.Weekday][]*model.AvailabilityWindow)
			c.windowsByStaff[w.StaffID] = byDay
		}
		byDay[w.Day] = append(byDay[w.Day], w)
	}

	c.timeOffByStaff = make(map[uuid.UUID][]*model.TimeOff)
	for _, t := range timeOff {
		c.timeOffByStaff[t.StaffID] = append(c.timeOffByStaff[t.StaffID], t)
	}

	c.preferredByStaff = make(map[uuid.UUID]map[model.Weekday][]*model.PreferredTime)
	for _, p := range preferred {
		byDay := c.preferredByStaff[p.StaffID]
		if byDay == nil {
			byDay = make(map[model.Weekday][]*model.PreferredTime)
			c.preferredByStaff[p.StaffID] = byDay
		}
		byDay[p.Day] = append(byDay[p.Day], p)
	}
}

// SetDemand sets the demand slots.
func (c *Context) SetDemand(demand []*model.ShiftDemand) {
	c.Demand = demand
}

// SetAssignments replaces the candidate roster.
func (c *Context) SetAssignments(assignments []*model.ShiftAssignment) {
	c.Assignments = assignments
	c.rebuildAssignmentIndexes()
}

// AddAssignment appends one assignment to the candidate roster.
func (c *Context) AddAssignment(a *model.ShiftAssignment) {
	c.Assignments = append(c.Assignments, a)
	c.byStaff[a.StaffID] = append(c.byStaff[a.StaffID], a)
	c.byDay[a.Day] = append(c.byDay[a.Day], a)
}

// RemoveAssignment removes an assignment by ID.
func (c *Context) RemoveAssignment(id uuid.UUID) {
	for i, a := range c.Assignments {
		if a.ID == id {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			break
		}
	}
	c.rebuildAssignmentIndexes()
}

// rebuildAssignmentIndexes rebuilds the per-staff and per-day indexes.
func (c *Context) rebuildAssignmentIndexes() {
	c.byStaff = make(map[uuid.UUID][]*model.ShiftAssignment)
	c.byDay = make(map[model.Weekday][]*model.ShiftAssignment)
	for _, a := range c.Assignments {
		c.byStaff[a.StaffID] = append(c.byStaff[a.StaffID], a)
		c.byDay[a.Day] = append(c.byDay[a.Day], a)
	}
}

// GetStaff returns the staff member, or nil if unknown.
func (c *Context) GetStaff(id uuid.UUID) *model.StaffMember {
	return c.staffMap[id]
}

// MustStaff returns the staff member and panics if the ID is not in the
// pool. Assignments referencing unknown staff are a caller contract
// violation, not a schedulability property of the data.
func (c *Context) MustStaff(id uuid.UUID) *model.StaffMember {
	s := c.staffMap[id]
	if s == nil {
		panic("rule: assignment references staff " + id.String() + " not in staff pool")
	}
	return s
}

// FindStaffByName matches a staff member by name or nickname.
func (c *Context) FindStaffByName(name string) *model.StaffMember {
	for _, s := range c.Staff {
		if s.Name == name || s.Nickname == name {
			return s
		}
	}
	return nil
}

// StaffAssignments returns all assignments for one staff member.
func (c *Context) StaffAssignments(staffID uuid.UUID) []*model.ShiftAssignment {
	return c.byStaff[staffID]
}

// DayAssignments returns all assignments on one day.
func (c *Context) DayAssignments(day model.Weekday) []*model.ShiftAssignment {
	return c.byDay[day]
}

// StaffHours returns the total assigned hours for one staff member.
func (c *Context) StaffHours(staffID uuid.UUID) float64 {
	var hours float64
	for _, a := range c.byStaff[staffID] {
		hours += a.Hours()
	}
	return hours
}

// HoursOn returns a staff member's assigned hours on one day.
func (c *Context) HoursOn(staffID uuid.UUID, day model.Weekday) float64 {
	var hours float64
	for _, a := range c.byStaff[staffID] {
		if a.Day == day {
			hours += a.Hours()
		}
	}
	return hours
}

// DaysWorked returns the set of days a staff member is assigned.
func (c *Context) DaysWorked(staffID uuid.UUID) map[model.Weekday]bool {
	days := make(map[model.Weekday]bool)
	for _, a := range c.byStaff[staffID] {
		days[a.Day] = true
	}
	return days
}

// ConsecutiveDays returns the longest run of consecutive assigned days a
// staff member would have if assigned on the given day.
func (c *Context) ConsecutiveDays(staffID uuid.UUID, day model.Weekday) int {
	worked := c.DaysWorked(staffID)
	worked[day] = true

	best, run := 0, 0
	for _, d := range model.Weekdays {
		if worked[d] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}

// MaxHoursFor returns the weekly hour cap for a staff member, falling back
// to the context default.
func (c *Context) MaxHoursFor(s *model.StaffMember) float64 {
	if s.MaxHoursPerWeek > 0 {
		return s.MaxHoursPerWeek
	}
	return c.DefaultMaxHours
}

// DateFor resolves a weekday to its date within the context week.
func (c *Context) DateFor(day model.Weekday) string {
	return day.DateIn(c.WeekStart)
}

func nextCalendarDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// Availability classifies whether a staff member can work the range on the
// day. Time off for the resolved date and unavailable windows are hard
// exclusions; coverage by preferred_not windows is flagged as reluctant.
// An overnight range is also checked against time off on the following
// calendar date, covering the post-midnight tail.
func (c *Context) Availability(staffID uuid.UUID, day model.Weekday, r model.ClockRange) AvailabilityResult {
	date := c.DateFor(day)
	tail, overnight := r.NextDayTail()
	nextDate := ""
	if overnight {
		nextDate = nextCalendarDate(date)
	}
	for _, t := range c.timeOffByStaff[staffID] {
		if t.Blocks(date, r) {
			return Unavailable
		}
		if overnight && t.Blocks(nextDate, tail) {
			return Unavailable
		}
	}

	windows := c.windowsByStaff[staffID][day]
	var open []*model.AvailabilityWindow
	for _, w := range windows {
		switch w.Status {
		case model.StatusUnavailable:
			if w.Range.Overlaps(r) {
				return Unavailable
			}
		case model.StatusAvailable, model.StatusPreferredNot:
			open = append(open, w)
		}
	}
	if len(open) == 0 {
		return Unavailable
	}

	// Merge the open windows and require full coverage of the shift range.
	sort.Slice(open, func(i, j int) bool { return open[i].Range.Start < open[j].Range.Start })

	covered := r.Start
	reluctant := false
	for _, w := range open {
		if w.Range.Start > covered {
			break
		}
		if w.Range.End > covered {
			if w.Status == model.StatusPreferredNot && w.Range.Overlaps(r) {
				reluctant = true
			}
			covered = w.Range.End
		}
		if covered >= r.End {
			if reluctant {
				return AvailableReluctant
			}
			return Available
		}
	}
	return Unavailable
}

// PrefersTime reports whether the range overlaps one of the staff member's
// preferred windows on the day.
func (c *Context) PrefersTime(staffID uuid.UUID, day model.Weekday, r model.ClockRange) bool {
	for _, p := range c.preferredByStaff[staffID][day] {
		if p.Range.Overlaps(r) {
			return true
		}
	}
	return false
}

// HasPreferences reports whether the staff member declared any preferred times.
func (c *Context) HasPreferences(staffID uuid.UUID) bool {
	return len(c.preferredByStaff[staffID]) > 0
}

// AssignedToSlot counts assignments matching a demand slot.
func (c *Context) AssignedToSlot(d *model.ShiftDemand) []*model.ShiftAssignment {
	var out []*model.ShiftAssignment
	for _, a := range c.byDay[d.Day] {
		if a.SlotKey() == d.Key() {
			out = append(out, a)
		}
	}
	return out
}

// Clone copies the context with a fresh assignment list so a search
// branch can mutate it independently. The read-only inputs are shared.
func (c *Context) Clone() *Context {
	clone := &Context{
		WeekStart:        c.WeekStart,
		Staff:            c.Staff,
		Windows:          c.Windows,
		TimeOff:          c.TimeOff,
		Preferred:        c.Preferred,
		Demand:           c.Demand,
		DefaultMaxHours:  c.DefaultMaxHours,
		staffMap:         c.staffMap,
		windowsByStaff:   c.windowsByStaff,
		timeOffByStaff:   c.timeOffByStaff,
		preferredByStaff: c.preferredByStaff,
	}
	assignments := make([]*model.ShiftAssignment, len(c.Assignments))
	for i, a := range c.Assignments {
		copyA := *a
		assignments[i] = &copyA
	}
	clone.SetAssignments(assignments)
	return clone
}
