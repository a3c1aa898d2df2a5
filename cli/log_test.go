package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLogConfig_Scan(t *testing.T) {
	base := logConfig{Level: "info", Format: "text", TimeLayout: "none", Pretty: true}

	tests := []struct {
		name string
		args []string
		want logConfig
	}{
		{
			name: "none",
			args: []string{"vars", "-s", "x.json5"},
			want: base,
		},
		{
			name: "separate values",
			args: []string{"--log-level", "debug", "run", "--log-format", "json"},
			want: logConfig{Level: "debug", Format: "json", TimeLayout: "none", Pretty: true},
		},
		{
			name: "assigned values",
			args: []string{"--log-level=warn", "--log-time-layout=Kitchen"},
			want: logConfig{Level: "warn", Format: "text", TimeLayout: "Kitchen", Pretty: true},
		},
		{
			name: "booleans",
			args: []string{"--no-log-pretty", "--log-caller"},
			want: logConfig{Level: "info", Format: "text", TimeLayout: "none", Caller: true},
		},
		{
			name: "assigned booleans",
			args: []string{"--log-pretty=false", "--no-log-caller=false"},
			want: logConfig{Level: "info", Format: "text", TimeLayout: "none", Caller: true},
		},
		{
			name: "after terminator",
			args: []string{"--", "--log-level=error"},
			want: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base
			got.scan(tt.args)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("scan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
