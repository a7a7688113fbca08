package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meeplecafe/rosterd/pkg/model"
)

// StaffRepository reads the staff pool.
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates the staff repository.
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

const staffColumns = `id, name, nickname, email, roles, has_keys,
	max_hours_per_week, hourly_rate, is_active, created_at, updated_at`

// StaffRoster returns every active staff member, ordered by name.
func (r *StaffRepository) StaffRoster(ctx context.Context) ([]*model.StaffMember, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM staff
		WHERE is_active = TRUE AND deleted_at IS NULL
		ORDER BY name
	`, staffColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying staff roster: %w", err)
	}
	defer rows.Close()

	var staff []*model.StaffMember
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// GetByID returns one staff member, or nil when not found.
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StaffMember, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM staff
		WHERE id = $1 AND deleted_at IS NULL
	`, staffColumns)

	s, err := scanStaff(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// scanStaff reads one staff row.
func scanStaff(row Scanner) (*model.StaffMember, error) {
	s := &model.StaffMember{}
	var rolesJSON []byte
	var nickname, email sql.NullString

	err := row.Scan(
		&s.ID, &s.Name, &nickname, &email, &rolesJSON, &s.HasKeys,
		&s.MaxHoursPerWeek, &s.HourlyRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning staff row: %w", err)
	}

	s.Nickname = nickname.String
	s.Email = email.String
	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &s.Roles); err != nil {
			return nil, fmt.Errorf("parsing roles of staff %s: %w", s.ID, err)
		}
	}
	return s, nil
}
