package log

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfig_WithLevel_SetsLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := makeConfig(nil, WithLevel(tt.level))
			if cfg.level != tt.level {
				t.Errorf("level = %v, want %v", cfg.level, tt.level)
			}
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := makeConfig(nil)

	if cfg.level != DefaultLevel {
		t.Errorf("level = %v, want %v", cfg.level, DefaultLevel)
	}

	if cfg.format != DefaultFormat {
		t.Errorf("format = %v, want %v", cfg.format, DefaultFormat)
	}

	if cfg.caller != DefaultCaller {
		t.Errorf("caller = %v, want %v", cfg.caller, DefaultCaller)
	}

	if cfg.pretty != DefaultPretty {
		t.Errorf("pretty = %v, want %v", cfg.pretty, DefaultPretty)
	}

	if cfg.output == nil {
		t.Error("output is nil, want io.Discard")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String_RoundTrip(t *testing.T) {
	for name := range Levels() {
		if got := ParseLevel(name).String(); got != name {
			t.Errorf("ParseLevel(%q).String() = %q", name, got)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" JSON ", FormatJSON},
		{"text", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"text", "json"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestConfig_formatTime_FormatsTimestamp(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-05T14:07:09Z"},
		{"rfc-3339-nano", "2024-03-05T14:07:09.123456789Z"},
		{"DateTime", "2024-03-05 14:07:09"},
		{"kitchen", "2:07PM"},
		{"2006/01/02", "2024/03/05"},
		{"none", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			cfg := makeConfig(nil, WithTimeLayout(tt.layout))
			if got := cfg.formatTime(ts); got != tt.want {
				t.Errorf("formatTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_formatTime_DefaultsToRFC3339(t *testing.T) {
	ts := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	cfg := makeConfig(nil)
	if got, want := cfg.formatTime(ts), ts.Format(time.RFC3339); got != want {
		t.Errorf("formatTime = %q, want %q", got, want)
	}
}

func TestConfig_formatTime_None_OmitsTimestamp(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithTimeLayout("none"),
		WithPretty(false),
	)
	logger.Info("hello")

	if strings.Contains(buf.String(), "time=") {
		t.Errorf("output contains timestamp: %q", buf.String())
	}
}
