// Package model defines the core data types of the roster engine.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Weekday is a day of the ISO week, Monday first.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days of the week in ISO order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// weekdayIndex maps a day name to its ISO position (Monday=0).
var weekdayIndex = map[Weekday]int{
	Monday: 0, Tuesday: 1, Wednesday: 2, Thursday: 3, Friday: 4, Saturday: 5, Sunday: 6,
}

// Index returns the ISO position of the day (Monday=0, Sunday=6), or -1 if unknown.
func (d Weekday) Index() int {
	if i, ok := weekdayIndex[d]; ok {
		return i
	}
	return -1
}

// Valid reports whether the day name is one of the seven known values.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// DateIn resolves the day to a concrete YYYY-MM-DD date inside the week
// starting at weekStart (a Monday).
func (d Weekday) DateIn(weekStart string) string {
	t, err := time.Parse("2006-01-02", weekStart)
	if err != nil || !d.Valid() {
		return ""
	}
	return t.AddDate(0, 0, d.Index()).Format("2006-01-02")
}

// IsWeekend reports whether the day is Saturday or Sunday.
func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

// AvailabilityStatus classifies a recurring availability window.
type AvailabilityStatus string

const (
	StatusAvailable    AvailabilityStatus = "available"
	StatusPreferredNot AvailabilityStatus = "preferred_not"
	StatusUnavailable  AvailabilityStatus = "unavailable"
)

// Severity classifies a constraint violation.
type Severity string

const (
	SeverityHard   Severity = "hard"   // invalidates the schedule
	SeveritySoft   Severity = "soft"   // contributes to the score only
	SeverityNotice Severity = "notice" // informational, e.g. a rule overriding a default cap
)

// BaseModel carries the common identity and audit fields.
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel returns a BaseModel with a fresh ID and timestamps.
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap holds JSONB column data.
type JSONMap map[string]interface{}

// ClockRange is a time-of-day range in minutes since midnight. End may exceed
// 1440 (up to 1560, i.e. 26:00) when the range crosses midnight, so Start < End
// always holds within a single range.
type ClockRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

const minutesPerDay = 1440

// NewClockRange builds a range from "HH:MM" strings. An end of "00:00" is read
// as midnight at the close of the day, and an end earlier than the start is
// shifted into the extended 24-26h window.
func NewClockRange(start, end string) (ClockRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ClockRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ClockRange{}, err
	}
	if e == 0 {
		e = minutesPerDay
	}
	if e <= s {
		e += minutesPerDay
	}
	if e > s+minutesPerDay {
		return ClockRange{}, fmt.Errorf("range %s-%s longer than a day", start, end)
	}
	return ClockRange{Start: s, End: e}, nil
}

// ParseClock parses "HH:MM" into minutes since midnight. Hours 24-26 are
// accepted for the extended overnight encoding.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 26 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM", folding extended
// hours back to the 24h clock.
func FormatClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h >= 24 {
		h -= 24
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Hours returns the duration of the range in hours.
func (r ClockRange) Hours() float64 {
	return float64(r.End-r.Start) / 60.0
}

// Minutes returns the duration of the range in minutes.
func (r ClockRange) Minutes() int {
	return r.End - r.Start
}

// Overnight reports whether the range crosses midnight.
func (r ClockRange) Overnight() bool {
	return r.End > minutesPerDay
}

// NextDayTail returns the part of an overnight range that falls on the next
// calendar day, folded back to a 0-based clock. ok is false when the range
// ends at or before midnight.
func (r ClockRange) NextDayTail() (ClockRange, bool) {
	if !r.Overnight() {
		return ClockRange{}, false
	}
	start := r.Start - minutesPerDay
	if start < 0 {
		start = 0
	}
	return ClockRange{Start: start, End: r.End - minutesPerDay}, true
}

// Overlaps reports whether two ranges on the same day share any time.
func (r ClockRange) Overlaps(other ClockRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether other lies entirely within r.
func (r ClockRange) Contains(other ClockRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// String renders the range as "HH:MM-HH:MM".
func (r ClockRange) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}
