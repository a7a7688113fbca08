// Package logger provides the unified logging framework.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level aliases the zerolog level type.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config configures the global logger.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger once.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel parses a level name.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger.
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext derives a logger carrying request-scoped fields.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug starts a debug event.
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info starts an info event.
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn starts a warning event.
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error starts an error event.
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal starts a fatal event.
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField derives a logger with one extra field.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields derives a logger with several extra fields.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// RosterLogger is the roster engine component logger.
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger creates a logger tagged with the roster component.
func NewRosterLogger() *RosterLogger {
	l := Get().With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// StartGeneration records the start of a generation run.
func (l *RosterLogger) StartGeneration(weekStart string, staff, demandSlots int) {
	l.base.Info().
		Str("week_start", weekStart).
		Int("staff", staff).
		Int("demand_slots", demandSlots).
		Msg("roster generation started")
}

// ConstraintViolation records a constraint violation.
func (l *RosterLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("constraint violated")
}

// RuleSkipped records a rule the catalog could not evaluate.
func (l *RosterLogger) RuleSkipped(constraintType, reason string) {
	l.base.Warn().
		Str("constraint_type", constraintType).
		Str("reason", reason).
		Msg("rule skipped as unevaluable")
}

// SearchStopped records why the local search ended and the best cost seen.
func (l *RosterLogger) SearchStopped(reason string, iterations int, bestCost float64) {
	l.base.Debug().
		Str("reason", reason).
		Int("iterations", iterations).
		Float64("best_cost", bestCost).
		Msg("local search stopped")
}

// GenerationComplete records a finished generation run.
func (l *RosterLogger) GenerationComplete(weekStart string, duration time.Duration, score float64, valid bool) {
	l.base.Info().
		Str("week_start", weekStart).
		Dur("duration", duration).
		Float64("score", score).
		Bool("is_valid", valid).
		Msg("roster generation complete")
}
