package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_WithLevel_FiltersMessages(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug))

	logger.Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug message not logged after setting level to Debug")
	}

	buf.Reset()

	logger = Make(&buf, WithLevel(LevelError))
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("info message logged when level is Error")
	}

	logger.Error("error message")

	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message not logged at Error level")
	}
}

func TestLogger_Trace_BelowDebug(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON))
	logger.Trace("hidden")

	if buf.Len() > 0 {
		t.Fatalf("trace logged at debug level: %q", buf.String())
	}

	logger = logger.Wrap(WithLevel(LevelTrace))
	logger.Trace("shown")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec[slog.LevelKey] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec[slog.LevelKey])
	}
}

func TestLogger_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON))
	logger.Info("updating",
		slog.String("file", "version.go"),
		slog.Int("count", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}

	if rec[slog.MessageKey] != "updating" {
		t.Errorf("msg = %v", rec[slog.MessageKey])
	}

	if rec["file"] != "version.go" {
		t.Errorf("file = %v", rec["file"])
	}

	if rec["count"] != float64(2) {
		t.Errorf("count = %v", rec["count"])
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true), WithFormat(FormatJSON))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("output does not name the calling file: %s", buf.String())
	}
}

func TestLogger_Console_Layout(t *testing.T) {
	tests := []struct {
		name   string
		log    func(Logger)
		prefix string
		want   []string
	}{
		{
			name:   "info bare",
			log:    func(l Logger) { l.Info("updating", slog.String("file", "a.go")) },
			prefix: "updating",
			want:   []string{"file", "a.go"},
		},
		{
			name:   "warn prefixed",
			log:    func(l Logger) { l.Warn("no match", slog.String("search", "x y")) },
			prefix: colorYellow + "warning:",
			want:   []string{`"x y"`},
		},
		{
			name:   "error prefixed",
			log:    func(l Logger) { l.Error("failed", slog.Bool("ok", false)) },
			prefix: colorRed + "error:",
			want:   []string{"false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithTimeLayout("none")))

			out := buf.String()
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("output %q does not start with %q", out, tt.prefix)
			}

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q does not contain %q", out, w)
				}
			}

			if !strings.HasSuffix(out, "\n") {
				t.Errorf("output %q is not newline terminated", out)
			}
		})
	}
}

func TestLogger_Console_ExpandsErrorGroups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"))
	logger.Error("failed", slog.Group("error",
		slog.String("msg", "bad"),
		slog.Int("line", 3)))

	out := buf.String()
	for _, w := range []string{"error.msg", "error.line"} {
		if !strings.Contains(out, w) {
			t.Errorf("output %q does not contain %q", out, w)
		}
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithFormat(format)).
				With(slog.String("target", "version.go"))
			logger.Info("checking")

			if !strings.Contains(buf.String(), "version.go") {
				t.Errorf("output %q does not contain attribute", buf.String())
			}
		})
	}
}

func TestLogger_Wrap_DoesNotAffectOriginal(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelWarn))
	derived := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelWarn {
		t.Errorf("base level = %v, want warn", base.Level())
	}

	if derived.Level() != LevelDebug {
		t.Errorf("derived level = %v, want debug", derived.Level())
	}

	base.Info("suppressed")

	if buf.Len() > 0 {
		t.Errorf("base logged below its level: %q", buf.String())
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Trace("trace")
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")
	logger.InfoContext(context.Background(), "info")
	logger.With(slog.String("k", "v")).Info("with")

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("Format() = %v, want %v", logger.Format(), DefaultFormat)
	}

	var buf bytes.Buffer

	logger.Wrap(WithOutput(&buf)).Info("wrapped")

	if !strings.Contains(buf.String(), "wrapped") {
		t.Errorf("wrapped zero logger did not write: %q", buf.String())
	}
}

func TestLogger_ContextMethods_LogSuccessfully(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON))
	ctx := context.Background()

	logger.TraceContext(ctx, "t")
	logger.DebugContext(ctx, "d")
	logger.InfoContext(ctx, "i")
	logger.WarnContext(ctx, "w")
	logger.ErrorContext(ctx, "e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d records, want 5: %q", len(lines), buf.String())
	}
}

type loggedError struct{}

func (loggedError) Error() string { return "boom" }

func (loggedError) LogValue() slog.Value {
	return slog.GroupValue(slog.String("msg", "boom"), slog.Int("code", 7))
}

func TestLogger_LogValuer_Resolved(t *testing.T) {
	var buf bytes.Buffer

	var err error = loggedError{}

	Make(&buf, WithTimeLayout("none")).Error("failed", slog.Any("error", err))

	if !strings.Contains(buf.String(), "error.code") {
		t.Errorf("LogValuer not expanded: %q", buf.String())
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithTimeLayout("none"))

	var wg sync.WaitGroup

	for range 50 {
		wg.Go(func() {
			logger.Info("message")
		})
	}

	wg.Wait()

	if got := strings.Count(buf.String(), "message\n"); got != 50 {
		t.Errorf("got %d complete lines, want 50", got)
	}
}
