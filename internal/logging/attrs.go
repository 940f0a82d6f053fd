package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers can build fields without importing log/slog.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// MovieID tags a record with a catalog movie identifier.
func MovieID(id int64) Attr { return slog.Int64(FieldMovieID, id) }

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger { return slog.New(slog.DiscardHandler) }

// NewComponentLogger scopes logger to component. A nil logger yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

const (
	defaultHint   = "rerun with REELIST_LOG_LEVEL=debug for details"
	defaultImpact = "command continued with partial data"
)

// Problem describes a degraded or failed operation for whoever reads the log.
// Event becomes event_type. Blank Hint and Impact fall back to generic text.
type Problem struct {
	Event  string
	Hint   string
	Impact string
}

func (p Problem) args(withImpact bool, attrs []Attr) []any {
	hint := p.Hint
	if hint == "" {
		hint = defaultHint
	}
	args := make([]any, 0, len(attrs)+3)
	args = append(args, String(FieldEventType, p.Event), String(FieldErrorHint, hint))
	if withImpact {
		impact := p.Impact
		if impact == "" {
			impact = defaultImpact
		}
		args = append(args, String(FieldImpact, impact))
	}
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// Warn logs msg at warn level annotated with p.
func Warn(logger *slog.Logger, msg string, p Problem, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Warn(msg, p.args(true, attrs)...)
}

// Fail logs msg at error level annotated with p. Impact is only written when set.
func Fail(logger *slog.Logger, msg string, p Problem, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, p.args(p.Impact != "", attrs)...)
}
