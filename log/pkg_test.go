package log

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	saved := defaultLog

	t.Cleanup(func() { defaultLog = saved })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelDebug), WithTimeLayout("none"))

	ctx := context.Background()

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	DebugContext(ctx, "debug ctx")
	InfoContext(ctx, "info ctx")
	WarnContext(ctx, "warn ctx")
	ErrorContext(ctx, "error ctx")
	With().Info("with")

	out := buf.String()
	for _, want := range []string{
		"debug", "info", "warning:", "error:",
		"debug ctx", "info ctx", "warn ctx", "error ctx", "with",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if Default().Level() != LevelDebug {
		t.Errorf("Default().Level() = %v, want debug", Default().Level())
	}
}
