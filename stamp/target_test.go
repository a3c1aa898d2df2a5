package stamp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

// project writes files, keyed by slash-separated relative path, into a new
// directory and returns it.
func project(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

func newTool(dir string, buf *bytes.Buffer, opts ...Option) *Tool {
	return New(append([]Option{
		WithDir(dir),
		WithClock(testClock),
		WithEnviron([]string{"HOME=/home/test"}),
		WithLogger(log.Make(buf, log.WithTimeLayout("none"), log.WithLevel(log.LevelDebug))),
	}, opts...)...)
}

// recordingFS records the names written through it.
type recordingFS struct {
	OSFS
	written []string
}

func (r *recordingFS) WriteFile(name string, data []byte) error {
	r.written = append(r.written, filepath.Base(name))

	return r.OSFS.WriteFile(name, data)
}

func (r *recordingFS) CopyFile(src, dst string) error {
	r.written = append(r.written, filepath.Base(dst))

	return r.OSFS.CopyFile(src, dst)
}

const versionScript = `{
  vars: { major: 1, minor: 2, patch: 3, tz: "UTC" },
  operations: { incrPatch: "{patch += 1}" },
  targets: [
    {
      description: "version file",
      files: ["v.txt"],
      action: {
        updates: [
          { search: "VERSION=\\d+\\.\\d+\\.\\d+", replace: "VERSION=${major}.${minor}.${patch}" },
        ],
      },
    },
  ],
}
`

func TestTool_Run_Update(t *testing.T) {
	dir := project(t, map[string]string{
		"version.json5": versionScript,
		"v.txt":         "name=demo\nVERSION=1.2.3\n",
	})

	var buf bytes.Buffer

	err := newTool(dir, &buf).Run(context.Background(), Request{
		Operation: "incrPatch",
		Update:    true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got, want := readFile(t, dir, "v.txt"), "name=demo\nVERSION=1.2.4\n"; got != want {
		t.Errorf("v.txt = %q, want %q", got, want)
	}

	s, err := script.Load(context.Background(), filepath.Join(dir, "version.json5"))
	if err != nil {
		t.Fatalf("reloading script: %v", err)
	}

	vars := s.Root.Get("vars")
	for name, want := range map[string]any{"major": 1, "minor": 2, "patch": 4, "tz": "UTC"} {
		if got := vars.Get(name).Value; got != want {
			t.Errorf("persisted %s = %v, want %v", name, got, want)
		}
	}

	if got := s.Root.Get("operations").Get("incrPatch").Value; got != "{patch += 1}" {
		t.Errorf("operations rewritten: incrPatch = %v", got)
	}

	if !strings.Contains(buf.String(), "updating") {
		t.Errorf("log %q has no progress line", buf.String())
	}
}

func TestTool_Run_DryRun(t *testing.T) {
	dir := project(t, map[string]string{
		"version.json5": versionScript,
		"v.txt":         "VERSION=1.2.3\n",
	})

	var buf bytes.Buffer

	fsys := &recordingFS{}

	err := newTool(dir, &buf, WithFS(fsys)).Run(context.Background(), Request{
		Operation: "incrPatch",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(fsys.written) > 0 {
		t.Errorf("dry run wrote %v", fsys.written)
	}

	if got := readFile(t, dir, "v.txt"); got != "VERSION=1.2.3\n" {
		t.Errorf("v.txt changed to %q", got)
	}

	if got := readFile(t, dir, "version.json5"); got != versionScript {
		t.Errorf("script changed to:\n%s", got)
	}

	if !strings.Contains(buf.String(), "checking") {
		t.Errorf("log %q has no progress line", buf.String())
	}
}

func TestProcessTargets_FirstMatchOnly(t *testing.T) {
	r, dir := buildRun(t, `{
  vars: { v: "9", tz: "UTC" },
  operations: {},
  targets: [{
    description: "d",
    files: ["f.txt"],
    action: { updates: [{ search: "v\\d", replace: "v${v}" }] },
  }],
}`)

	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("v1 v2\nv3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.ProcessTargets(context.Background(), dir, true); err != nil {
		t.Fatalf("ProcessTargets: %v", err)
	}

	if got, want := readFile(t, dir, "f.txt"), "v9 v2\nv3\n"; got != want {
		t.Errorf("f.txt = %q, want %q", got, want)
	}
}

func TestProcessTargets_MultiLineAnchors(t *testing.T) {
	r, dir := buildRun(t, `{
  vars: { v: "2.0", tz: "UTC" },
  operations: {},
  targets: [{
    description: "d",
    files: ["f.txt"],
    action: { updates: [{ search: "^version = .*$", replace: "version = ${v}" }] },
  }],
}`)

	if err := os.WriteFile(filepath.Join(dir, "f.txt"),
		[]byte("name = x\nversion = 1.0\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.ProcessTargets(context.Background(), dir, true); err != nil {
		t.Fatalf("ProcessTargets: %v", err)
	}

	if got, want := readFile(t, dir, "f.txt"), "name = x\nversion = 2.0\nend\n"; got != want {
		t.Errorf("f.txt = %q, want %q", got, want)
	}
}

func TestProcessTargets_NoMatch(t *testing.T) {
	var buf bytes.Buffer

	fsys := &recordingFS{}

	r, dir := buildRun(t, `{
  vars: { tz: "UTC" },
  operations: {},
  targets: [{
    description: "d",
    files: ["f.txt"],
    action: { updates: [{ search: "absent", replace: "present" }] },
  }],
}`, WithFS(fsys), WithLogger(log.Make(&buf, log.WithTimeLayout("none"))))

	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("unchanged\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.ProcessTargets(context.Background(), dir, true); err != nil {
		t.Fatalf("ProcessTargets: %v", err)
	}

	if len(fsys.written) > 0 {
		t.Errorf("wrote %v with nothing matched", fsys.written)
	}

	if !strings.Contains(buf.String(), "update did not match anything") {
		t.Errorf("log %q has no warning", buf.String())
	}
}

func TestProcessTargets_Captures(t *testing.T) {
	r, dir := buildRun(t, `{
  vars: { tz: "UTC" },
  operations: {},
  targets: [{
    description: "d",
    files: ["f.txt"],
    action: {
      updates: [{ search: "build (?<n>\\d+)", replace: "{'build ' + string(int(n) + 1)}" }],
    },
  }],
}`)

	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("build 41\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.ProcessTargets(context.Background(), dir, true); err != nil {
		t.Fatalf("ProcessTargets: %v", err)
	}

	if got, want := readFile(t, dir, "f.txt"), "build 42\n"; got != want {
		t.Errorf("f.txt = %q, want %q", got, want)
	}

	if _, ok := r.Context()["n"]; ok {
		t.Error("capture group leaked into the run context")
	}
}

func TestProcessTargets_WriteAndCopy(t *testing.T) {
	src := `{
  vars: { major: 1, minor: 0, tz: "UTC" },
  operations: {},
  targets: [
    { description: "w", files: ["VERSION", "sub/VERSION"], action: { write: "${major}.${minor}\n" } },
    { description: "c", files: ["LICENSE.txt"], action: { copyFrom: "templates/LICENSE-${major}" } },
  ],
}`

	tests := []struct {
		name    string
		update  bool
		written []string
	}{
		{"update", true, []string{"VERSION", "VERSION", "LICENSE.txt"}},
		{"dry run", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := &recordingFS{}

			r, dir := buildRun(t, src, WithFS(fsys))

			for name, content := range map[string]string{
				"sub/VERSION":         "old\n",
				"templates/LICENSE-1": "MIT\n",
			} {
				path := filepath.Join(dir, filepath.FromSlash(name))
				if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			if err := r.ProcessTargets(context.Background(), dir, tt.update); err != nil {
				t.Fatalf("ProcessTargets: %v", err)
			}

			if strings.Join(fsys.written, ",") != strings.Join(tt.written, ",") {
				t.Errorf("written = %v, want %v", fsys.written, tt.written)
			}

			if !tt.update {
				return
			}

			if got := readFile(t, dir, "sub/VERSION"); got != "1.0\n" {
				t.Errorf("sub/VERSION = %q", got)
			}

			if got := readFile(t, dir, "LICENSE.txt"); got != "MIT\n" {
				t.Errorf("LICENSE.txt = %q", got)
			}
		})
	}
}

func TestProcessTargets_Errors(t *testing.T) {
	src := `{
  vars: { tz: "UTC" },
  operations: {},
  targets: [{
    description: "d",
    files: ["missing.txt"],
    action: { updates: [{ search: "x", replace: "y" }] },
  }],
}`

	t.Run("missing file", func(t *testing.T) {
		r, dir := buildRun(t, src)

		err := r.ProcessTargets(context.Background(), dir, false)
		if !errors.Is(err, script.ErrIO) {
			t.Errorf("err = %v, want ErrIO", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		r, dir := buildRun(t, src)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.ProcessTargets(ctx, dir, false)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestTool_Run_CollisionBeforeTargets(t *testing.T) {
	dir := project(t, map[string]string{
		"version.json5": `{
  vars: { patch: 1, tz: "UTC" },
  calcVars: { patch: "2" },
  operations: {},
  targets: [{ description: "d", files: ["out.txt"], action: { write: "x" } }],
}`,
	})

	var buf bytes.Buffer

	err := newTool(dir, &buf).Run(context.Background(), Request{Update: true})
	if !errors.Is(err, script.ErrScript) {
		t.Fatalf("err = %v, want ErrScript", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "out.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("target written despite the error: %v", err)
	}
}

func TestProcessTargets_DryRunSkipsWriteValues(t *testing.T) {
	src := `{
  vars: { major: 1, tz: "UTC" },
  operations: {},
  targets: [
    { description: "w", files: ["VERSION"], action: { write: "{nope + 1}" } },
    { description: "c", files: ["COPY"], action: { copyFrom: "{nope + 2}" } },
  ],
}`

	tests := []struct {
		name    string
		update  bool
		wantErr error
	}{
		{"dry run", false, nil},
		{"update", true, script.ErrScript},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dir := buildRun(t, src, WithFS(&recordingFS{}))

			err := r.ProcessTargets(context.Background(), dir, tt.update)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("ProcessTargets: %v", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
