// Package errors provides the unified error handling framework.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// Generic codes
	CodeUnknown       Code = "UNKNOWN"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeTimeout       Code = "TIMEOUT"
	CodeRateLimited   Code = "RATE_LIMITED"

	// Roster engine codes
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	CodeInfeasibleDemand    Code = "INFEASIBLE_DEMAND"
	CodeScheduleConflict    Code = "SCHEDULE_CONFLICT"
	CodeRuleUnevaluable     Code = "RULE_UNEVALUABLE"
	CodeInvalidWeekStart    Code = "INVALID_WEEK_START"
	CodeInvalidTimeRange    Code = "INVALID_TIME_RANGE"

	// Data codes
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError is the application error type.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches detail text.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the underlying cause.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField attaches a structured field.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus maps an error code to an HTTP status.
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeInvalidTimeRange, CodeInvalidWeekStart:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeScheduleConflict:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeInfeasibleDemand, CodeRuleUnevaluable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the HTTP status for an error.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Predefined errors
var (
	ErrNotFound         = New(CodeNotFound, "resource not found")
	ErrInvalidInput     = New(CodeInvalidInput, "invalid input")
	ErrInternal         = New(CodeInternal, "internal error")
	ErrTimeout          = New(CodeTimeout, "operation timed out")
	ErrInfeasibleDemand = New(CodeInfeasibleDemand, "no feasible assignment for demand")
)

// InvalidInput creates a field-level input error.
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("field '%s' invalid: %s", field, reason))
}

// NotFound creates a missing-resource error.
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' not found", resource, id))
}

// InvalidWeekStart creates an error for a week start that is not a Monday.
func InvalidWeekStart(weekStart string) *AppError {
	return New(CodeInvalidWeekStart, fmt.Sprintf("week_start '%s' must be a Monday in YYYY-MM-DD format", weekStart))
}

// RuleUnevaluable creates an error for a rule the catalog cannot evaluate.
func RuleUnevaluable(constraintType, reason string) *AppError {
	return New(CodeRuleUnevaluable, fmt.Sprintf("rule type '%s' cannot be evaluated: %s", constraintType, reason))
}

// ScheduleConflict creates an overlapping-assignment error.
func ScheduleConflict(staffID, day, details string) *AppError {
	return New(CodeScheduleConflict, fmt.Sprintf("staff %s has conflicting assignments on %s: %s", staffID, day, details))
}

// ValidationErrors collects field validation failures.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError is one field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add appends a validation failure.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any failures were collected.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts the collection to an AppError.
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
