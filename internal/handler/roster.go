// Package handler provides the HTTP request handlers.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meeplecafe/rosterd/internal/metrics"
	"github.com/meeplecafe/rosterd/pkg/errors"
	"github.com/meeplecafe/rosterd/pkg/model"
	"github.com/meeplecafe/rosterd/pkg/roster"
)

// RosterHandler serves the roster engine endpoints.
type RosterHandler struct {
	service  *roster.Service
	validate *validator.Validate
}

// NewRosterHandler creates the roster handler.
func NewRosterHandler(service *roster.Service) *RosterHandler {
	return &RosterHandler{
		service:  service,
		validate: validator.New(),
	}
}

// GenerateRequest is the roster generation request body.
type GenerateRequest struct {
	WeekStart       string `json:"week_start" validate:"required"`
	MaxHoursPerWeek int    `json:"max_hours_per_week" validate:"gte=0,lte=80"`
	PreferFairness  bool   `json:"prefer_fairness"`
	Seed            int64  `json:"seed"`
}

// Generate builds a roster for one week.
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "decoding request body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, validationError(err))
		return
	}

	start := time.Now()
	done := metrics.GenerationStarted()
	result, err := h.service.Generate(r.Context(), roster.GenerateParams{
		WeekStart:       req.WeekStart,
		MaxHoursPerWeek: req.MaxHoursPerWeek,
		PreferFairness:  req.PreferFairness,
		Seed:            req.Seed,
	})
	done()
	if err != nil {
		respondAppError(w, err)
		return
	}

	metrics.RecordGeneration(result.Solution.IsValid, result.Solution.Score)
	metrics.RecordGenerationDuration(time.Since(start))
	metrics.RecordFairness(result.Fairness.HoursGini)
	respondJSON(w, http.StatusOK, result)
}

// AssignmentInput is one assignment in an evaluation or swap request.
type AssignmentInput struct {
	ID        string `json:"id,omitempty"`
	StaffID   string `json:"staff_id" validate:"required,uuid"`
	Day       string `json:"day_of_week" validate:"required"`
	ShiftType string `json:"shift_type,omitempty"`
	Role      string `json:"role_required,omitempty"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
}

// EvaluateRequest is the roster evaluation request body.
type EvaluateRequest struct {
	WeekStart   string            `json:"week_start" validate:"required"`
	Assignments []AssignmentInput `json:"assignments" validate:"required,dive"`
}

// Evaluate scores a submitted roster without changing it.
func (h *RosterHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "decoding request body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, validationError(err))
		return
	}

	assignments, appErr := parseAssignments(req.Assignments)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	result, err := h.service.Evaluate(r.Context(), req.WeekStart, assignments)
	if err != nil {
		respondAppError(w, err)
		return
	}

	metrics.RecordEvaluation(result.Solution.IsValid)
	respondJSON(w, http.StatusOK, result)
}

// SwapRequest is the cover recommendation request body.
type SwapRequest struct {
	WeekStart    string            `json:"week_start" validate:"required"`
	AssignmentID string            `json:"assignment_id" validate:"required,uuid"`
	Assignments  []AssignmentInput `json:"assignments" validate:"required,dive"`
	Max          int               `json:"max" validate:"gte=0,lte=20"`
}

// SwapCandidates ranks the staff who could cover one assignment.
func (h *RosterHandler) SwapCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "decoding request body"))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, validationError(err))
		return
	}

	assignments, appErr := parseAssignments(req.Assignments)
	if appErr != nil {
		respondError(w, appErr)
		return
	}
	assignmentID, err := uuid.Parse(req.AssignmentID)
	if err != nil {
		respondError(w, errors.InvalidInput("assignment_id", "not a valid UUID"))
		return
	}

	recs, err := h.service.SwapCandidates(r.Context(), req.WeekStart, assignments, assignmentID, req.Max)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": recs,
		"count":      len(recs),
	})
}

// RulesLibrary lists the supported rule types and their parameters.
func (h *RosterHandler) RulesLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "only GET is supported"))
		return
	}

	defs := h.service.RulesLibrary()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rule_types": defs,
		"count":      len(defs),
	})
}

// parseAssignments converts request assignments to model assignments.
func parseAssignments(inputs []AssignmentInput) ([]*model.ShiftAssignment, *errors.AppError) {
	assignments := make([]*model.ShiftAssignment, 0, len(inputs))
	for i, in := range inputs {
		staffID, err := uuid.Parse(in.StaffID)
		if err != nil {
			return nil, errors.InvalidInput("staff_id", "not a valid UUID: "+in.StaffID)
		}
		day := model.Weekday(in.Day)
		if !day.Valid() {
			return nil, errors.InvalidInput("day_of_week", "unknown weekday: "+in.Day)
		}
		rng, err := model.NewClockRange(in.Start, in.End)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidTimeRange, "assignment time range").WithField("index", i)
		}

		id := uuid.New()
		if in.ID != "" {
			parsed, err := uuid.Parse(in.ID)
			if err != nil {
				return nil, errors.InvalidInput("id", "not a valid UUID: "+in.ID)
			}
			id = parsed
		}

		assignments = append(assignments, &model.ShiftAssignment{
			ID:        id,
			StaffID:   staffID,
			Day:       day,
			ShiftType: in.ShiftType,
			Role:      in.Role,
			Range:     rng,
		})
	}
	return assignments, nil
}

// validationError converts validator errors to an AppError.
func validationError(err error) *errors.AppError {
	ve := &errors.ValidationErrors{}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			ve.Add(fe.Field(), "failed "+fe.Tag()+" validation")
		}
		return ve.ToAppError()
	}
	return errors.Wrap(err, errors.CodeValidationFail, "request validation")
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an AppError response.
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// respondAppError renders any error, mapping non-AppErrors to internal.
func respondAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		respondError(w, appErr)
		return
	}
	respondError(w, errors.Wrap(err, errors.CodeInternal, "request failed"))
}
