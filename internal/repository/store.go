package repository

import (
	"context"
	"time"

	"github.com/meeplecafe/rosterd/pkg/model"
)

// Store bundles the four engine input reads behind one type. It satisfies
// the facade's store interface.
type Store struct {
	Staff        *StaffRepository
	Availability *AvailabilityRepository
	Rules        *RuleRepository
	Demand       *DemandRepository
}

// NewStore creates the combined store over one database handle.
func NewStore(db DB) *Store {
	return &Store{
		Staff:        NewStaffRepository(db),
		Availability: NewAvailabilityRepository(db),
		Rules:        NewRuleRepository(db),
		Demand:       NewDemandRepository(db),
	}
}

// StaffRoster returns the active staff pool.
func (s *Store) StaffRoster(ctx context.Context) ([]*model.StaffMember, error) {
	return s.Staff.StaffRoster(ctx)
}

// AvailabilityForWeek returns the availability inputs for one week.
func (s *Store) AvailabilityForWeek(ctx context.Context, weekStart string) ([]*model.AvailabilityWindow, []*model.TimeOff, []*model.PreferredTime, error) {
	return s.Availability.AvailabilityForWeek(ctx, weekStart)
}

// ActiveRules returns the rules in force as of the given date.
func (s *Store) ActiveRules(ctx context.Context, asOf time.Time) ([]*model.RosterRule, error) {
	return s.Rules.ActiveRules(ctx, asOf)
}

// DemandTemplate returns the weekly demand slots.
func (s *Store) DemandTemplate(ctx context.Context) ([]*model.ShiftDemand, error) {
	return s.Demand.DemandTemplate(ctx)
}
