package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelist/internal/config"
	"reelist/internal/logging"
	"reelist/internal/services"
)

func newFileLogger(t *testing.T, level, format string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "nested", "reelist.log")
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      format,
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Error("persisted failure")

	if got := readLog(t, cfg.LogFilePath()); !strings.Contains(got, "persisted failure") {
		t.Fatalf("expected message in log file, got %q", got)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	logging.NewComponentLogger(logger, "tmdb").Info("catalog request",
		logging.String("path", "/search/movie"),
		logging.Bool("cache_hit", false),
		logging.String("query", "the matrix"),
	)

	line := readLog(t, path)
	for _, want := range []string{" INFO tmdb: catalog request", "path=/search/movie", "cache_hit=false", `query="the matrix"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no source location at info level, got %q", line)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	logger, path := newFileLogger(t, "debug", "console")
	logger.Debug("with source")
	if line := readLog(t, path); !strings.Contains(line, "logger_test.go:") {
		t.Fatalf("expected source location in debug logs, got %q", line)
	}
}

func TestConsoleLoggerFlattensGroups(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	logger.WithGroup("cache").Info("lookup", logging.Int("entries", 3))
	if line := readLog(t, path); !strings.Contains(line, "cache.entries=3") {
		t.Fatalf("expected grouped key, got %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, path := newFileLogger(t, "warn", "console")
	logger.Info("hidden")
	logger.Warn("shown")
	line := readLog(t, path)
	if strings.Contains(line, "hidden") || !strings.Contains(line, "shown") {
		t.Fatalf("unexpected level filtering result: %q", line)
	}
}

func TestJSONLoggerFields(t *testing.T) {
	logger, path := newFileLogger(t, "info", "json")
	logger.Info("json message", logging.Int(logging.FieldMovieID, 603))

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace([]byte(readLog(t, path))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["msg"] != "json message" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts field")
	}
	if payload[logging.FieldMovieID] != float64(603) {
		t.Fatalf("unexpected movie id: %v", payload[logging.FieldMovieID])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := logging.ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsCommandAndCorrelation(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	ctx := services.WithCommand(context.Background(), "search")
	ctx = services.WithRequestID(ctx, "req-42")

	logging.WithContext(ctx, logger).Info("contextual")
	line := readLog(t, path)
	if !strings.Contains(line, "command=search") || !strings.Contains(line, "correlation_id=req-42") {
		t.Fatalf("expected context fields, got %q", line)
	}
}

func TestWarnFillsProblemDefaults(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	logging.Warn(logger, "user data unreadable", logging.Problem{
		Event:  "userdata_load_failed",
		Impact: "starting with empty watchlist",
	}, logging.MovieID(603))
	line := readLog(t, path)
	for _, want := range []string{
		"event_type=userdata_load_failed",
		`error_hint="rerun with REELIST_LOG_LEVEL=debug for details"`,
		`impact="starting with empty watchlist"`,
		"movie_id=603",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestFailOmitsUnsetImpact(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	logging.Fail(logger, "user data save failed", logging.Problem{
		Event: "userdata_save_failed",
		Hint:  "check that the user data path is writable",
	})
	line := readLog(t, path)
	if !strings.Contains(line, " ERROR ") {
		t.Fatalf("expected error level in %q", line)
	}
	if !strings.Contains(line, `error_hint="check that the user data path is writable"`) {
		t.Fatalf("expected hint in %q", line)
	}
	if strings.Contains(line, "impact=") {
		t.Fatalf("impact should be omitted, got %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
	logging.Warn(nil, "ignored", logging.Problem{Event: "none"})
	logging.Fail(nil, "ignored", logging.Problem{Event: "none"})
}
