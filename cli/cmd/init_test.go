package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/stampver/script"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		force   bool
		existed bool
		wantErr error
	}{
		{name: "json5", file: "version.json5"},
		{name: "yaml", file: "version.yaml"},
		{name: "hcl", file: "version.hcl"},
		{name: "existing", file: "version.json5", existed: true, wantErr: ErrFileExists},
		{name: "existing forced", file: "version.json5", existed: true, force: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)

			if tt.existed {
				if err := os.WriteFile(path, []byte("keep"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			ctx, out := testContext(t, path)

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteScript) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}

				if b, _ := os.ReadFile(path); string(b) != "keep" {
					t.Errorf("existing file replaced with %q", b)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			s, err := script.Load(ctx, path)
			if err != nil {
				t.Fatalf("loading starter script: %v", err)
			}

			if err := script.Validate(s.Root); err != nil {
				t.Fatalf("starter script is invalid: %v", err)
			}

			if err := (&Vars{Operation: "incrPatch"}).Run(ctx); err != nil {
				t.Fatalf("vars: %v", err)
			}

			want := "major=0\nminor=1\npatch=1\ntz=UTC\nversion=0.1.0\nbuildDate=20240305\n"
			if out.String() != want {
				t.Errorf("vars = %q, want %q", out.String(), want)
			}
		})
	}
}

func TestInit_Format(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ctx, _ := testContext(t, "")

	if err := (&Init{Format: "yaml"}).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s, err := script.Load(ctx, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want := filepath.Join(dir, "version.yaml"); s.Format != script.FormatYAML || filepath.Base(s.Path) != filepath.Base(want) {
		t.Errorf("script = %s (%v), want %s", s.Path, s.Format, want)
	}
}
