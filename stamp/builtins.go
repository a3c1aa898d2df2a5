package stamp

// This file defines the built-in names available to every expression.
// Static entries are built once per process and cloned for each run; the
// file functions are bound per run so they resolve paths against the
// script's directory through the run's FS.
//
// Built-in names can be shadowed by script variables.

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"golang.org/x/mod/semver"
)

var staticBuiltins = sync.OnceValue(func() map[string]any {
	return map[string]any{
		// Date numbers derived from now.
		"fullDate": fullDate,
		"jdate":    jdate,

		// Formatting.
		"pad": pad,

		// Semantic versions, with or without the leading "v".
		"semver": map[string]any{
			"valid":      semverValid,
			"compare":    semverCompare,
			"major":      semverFunc(semver.Major),
			"majorMinor": semverFunc(semver.MajorMinor),
			"canonical":  semverFunc(semver.Canonical),
			"prerelease": semverFunc(semver.Prerelease),
			"build":      semverFunc(semver.Build),
		},

		// Path manipulation functions.
		"path": map[string]any{
			"abs":  pathAbs,
			"base": filepath.Base,
			"dir":  filepath.Dir,
			"ext":  filepath.Ext,
			"join": filepath.Join,
		},

		// PATH-like string manipulation via mung.
		"mung": map[string]any{
			"prefix": mungPrefix,
		},
	}
})

// builtins returns the built-in environment of a run whose relative paths
// are resolved against dir.
func builtins(fsys FS, dir string) map[string]any {
	env := maps.Clone(staticBuiltins())

	env["file"] = map[string]any{
		"exists": func(path string) bool {
			_, err := fsys.Stat(resolve(dir, path))

			return err == nil
		},
		"read": func(path string) (string, error) {
			b, err := fsys.ReadFile(resolve(dir, path))

			return string(b), err
		},
	}

	return env
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}

	return filepath.Join(dir, path)
}

// ---------------------------------------------------------------------------
// Date numbers
// ---------------------------------------------------------------------------

func nowField(now map[string]any, key string) (int, error) {
	v, ok := now[key].(int)
	if !ok {
		return 0, fmt.Errorf("now.%s is not an integer", key)
	}

	return v, nil
}

func nowDate(now map[string]any) (year, month, day int, err error) {
	if year, err = nowField(now, "year"); err != nil {
		return
	}

	if month, err = nowField(now, "month"); err != nil {
		return
	}

	day, err = nowField(now, "day")

	return
}

// fullDate returns the date of now as the number YYYYMMDD.
func fullDate(now map[string]any) (int, error) {
	year, month, day, err := nowDate(now)
	if err != nil {
		return 0, err
	}

	return year*10000 + month*100 + day, nil
}

// jdate returns the date of now as the number YMMDD, where Y counts years
// since startYear, starting at 1.
func jdate(now map[string]any, startYear int) (int, error) {
	year, month, day, err := nowDate(now)
	if err != nil {
		return 0, err
	}

	return (year-startYear+1)*10000 + month*100 + day, nil
}

// pad formats v left-padded with zeros to at least width characters.
func pad(v any, width int) string {
	s := formatValue(v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
		width--
	}

	if n := width - len(s); n > 0 {
		s = strings.Repeat("0", n) + s
	}

	if neg {
		s = "-" + s
	}

	return s
}

// ---------------------------------------------------------------------------
// Semantic versions
// ---------------------------------------------------------------------------

func withV(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}

	return "v" + v
}

func semverValid(v string) bool { return semver.IsValid(withV(v)) }

func semverCompare(a, b string) int { return semver.Compare(withV(a), withV(b)) }

// semverFunc adapts fn to accept and return versions without the leading
// "v" when given one without it.
func semverFunc(fn func(string) string) func(string) string {
	return func(v string) string {
		r := fn(withV(v))
		if !strings.HasPrefix(v, "v") {
			r = strings.TrimPrefix(r, "v")
		}

		return r
	}
}

// ---------------------------------------------------------------------------
// Path manipulation functions
// ---------------------------------------------------------------------------

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

// ---------------------------------------------------------------------------
// PATH-like string manipulation (mung)
// ---------------------------------------------------------------------------

func mungPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}
