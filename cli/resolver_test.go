package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	v, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q): %v", name, err)
	}

	return v
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   map[string]any
	}{
		{
			name:   "flat",
			config: `{ log_level: "debug", "log-pretty": false, script: "v.json5" }`,
			want: map[string]any{
				"log-level":  "debug",
				"log-pretty": false,
				"script":     "v.json5",
				"update":     nil,
			},
		},
		{
			name: "grouped",
			config: `// settings
{
  config: { log_format: "json", indent: 4 },
  other: { update: true },
}`,
			want: map[string]any{
				"log-format": "json",
				"indent":     "4",
				"update":     nil,
			},
		},
		{
			name:   "not an object",
			config: `["debug"]`,
			want:   map[string]any{"log-level": nil},
		},
		{
			name:   "invalid",
			config: `{ log_level: `,
			want:   map[string]any{"log-level": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolve(baseConfig)(strings.NewReader(tt.config))
			if err != nil {
				t.Fatalf("loading configuration: %v", err)
			}

			got := make(map[string]any, len(tt.want))
			for name := range tt.want {
				got[name] = resolveFlag(t, r, name)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("resolved flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlagValue_Nested(t *testing.T) {
	r, err := resolve(baseConfig)(strings.NewReader(`{ tags: ["a", 1.5, null], env: { k: 2 } }`))
	if err != nil {
		t.Fatal(err)
	}

	want := []any{"a", "1.5", nil}
	if diff := cmp.Diff(want, resolveFlag(t, r, "tags")); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string]any{"k": "2"}, resolveFlag(t, r, "env")); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
}
