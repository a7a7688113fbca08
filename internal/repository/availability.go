package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// AvailabilityRepository reads recurring windows, one-off time off, and
// weekly preferences.
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository creates the availability repository.
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// AvailabilityForWeek loads the weekly pattern plus the time off falling
// inside the week starting at weekStart (a Monday, YYYY-MM-DD).
func (r *AvailabilityRepository) AvailabilityForWeek(ctx context.Context, weekStart string) ([]*model.AvailabilityWindow, []*model.TimeOff, []*model.PreferredTime, error) {
	windows, err := r.windows(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	timeOff, err := r.timeOffForWeek(ctx, weekStart)
	if err != nil {
		return nil, nil, nil, err
	}
	preferred, err := r.preferredTimes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return windows, timeOff, preferred, nil
}

func (r *AvailabilityRepository) windows(ctx context.Context) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, staff_id, day_of_week, start_min, end_min, status, created_at, updated_at
		FROM availability_windows
		WHERE deleted_at IS NULL
		ORDER BY staff_id, day_of_week, start_min
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying availability windows: %w", err)
	}
	defer rows.Close()

	var windows []*model.AvailabilityWindow
	for rows.Next() {
		w := &model.AvailabilityWindow{}
		err := rows.Scan(
			&w.ID, &w.StaffID, &w.Day, &w.Range.Start, &w.Range.End,
			&w.Status, &w.CreatedAt, &w.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning availability window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *AvailabilityRepository) timeOffForWeek(ctx context.Context, weekStart string) ([]*model.TimeOff, error) {
	monday, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return nil, fmt.Errorf("parsing week start %q: %w", weekStart, err)
	}
	weekEnd := monday.AddDate(0, 0, 7).Format("2006-01-02")

	query := `
		SELECT id, staff_id, date, start_min, end_min, all_day, reason, created_at, updated_at
		FROM time_off
		WHERE date >= $1 AND date < $2 AND deleted_at IS NULL
		ORDER BY staff_id, date
	`

	rows, err := r.db.QueryContext(ctx, query, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("querying time off: %w", err)
	}
	defer rows.Close()

	var entries []*model.TimeOff
	for rows.Next() {
		t := &model.TimeOff{}
		var reason sql.NullString
		err := rows.Scan(
			&t.ID, &t.StaffID, &t.Date, &t.Range.Start, &t.Range.End,
			&t.AllDay, &reason, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning time off: %w", err)
		}
		t.Reason = reason.String
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

func (r *AvailabilityRepository) preferredTimes(ctx context.Context) ([]*model.PreferredTime, error) {
	query := `
		SELECT id, staff_id, day_of_week, start_min, end_min, created_at, updated_at
		FROM preferred_times
		WHERE deleted_at IS NULL
		ORDER BY staff_id, day_of_week, start_min
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying preferred times: %w", err)
	}
	defer rows.Close()

	var entries []*model.PreferredTime
	for rows.Next() {
		p := &model.PreferredTime{}
		err := rows.Scan(
			&p.ID, &p.StaffID, &p.Day, &p.Range.Start, &p.Range.End,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning preferred time: %w", err)
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}
