package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// DemandRepository reads the weekly demand template.
type DemandRepository struct {
	db DB
}

// NewDemandRepository creates the demand repository.
func NewDemandRepository(db DB) *DemandRepository {
	return &DemandRepository{db: db}
}

// DemandTemplate returns the demand slots for a week, in day and start order.
func (r *DemandRepository) DemandTemplate(ctx context.Context) ([]*model.ShiftDemand, error) {
	query := `
		SELECT day_of_week, shift_type, role_required, start_min, end_min,
			min_staff, max_staff, requires_keys
		FROM shift_demand
		WHERE deleted_at IS NULL
		ORDER BY day_of_week, start_min, shift_type
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying shift demand: %w", err)
	}
	defer rows.Close()

	var demand []*model.ShiftDemand
	for rows.Next() {
		d := &model.ShiftDemand{}
		var role sql.NullString
		err := rows.Scan(
			&d.Day, &d.ShiftType, &role, &d.Range.Start, &d.Range.End,
			&d.MinStaff, &d.MaxStaff, &d.RequiresKeys,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning demand slot: %w", err)
		}
		d.Role = role.String
		demand = append(demand, d)
	}
	return demand, rows.Err()
}
