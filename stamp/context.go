package stamp

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

// Context is the variable scope of one run: the script's vars, env, now,
// calcVars, and anything assigned by operations.
type Context map[string]any

// Option configures a [Run] or [Tool].
type Option func(config) config

type config struct {
	environ []string
	clock   func() time.Time
	logger  log.Logger
	fs      FS
	dir     string
}

func makeConfig(opts ...Option) config {
	c := config{
		clock: time.Now,
		fs:    OSFS{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.environ == nil {
		c.environ = os.Environ()
	}

	return c
}

// WithEnviron sets the process environment, as "key=value" strings, exposed
// as env. The default is [os.Environ].
func WithEnviron(environ []string) Option {
	return func(c config) config {
		c.environ = environ

		return c
	}
}

// WithClock sets the source of the current time exposed as now.
func WithClock(clock func() time.Time) Option {
	return func(c config) config {
		if clock != nil {
			c.clock = clock
		}

		return c
	}
}

// WithLogger sets the logger receiving progress and warnings.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithFS sets the file system targets are read from and written to.
func WithFS(fsys FS) Option {
	return func(c config) config {
		if fsys != nil {
			c.fs = fsys
		}

		return c
	}
}

// WithDir sets the directory a [Tool] searches for the script from. The
// default is the working directory.
func WithDir(dir string) Option {
	return func(c config) config {
		c.dir = dir

		return c
	}
}

// Run holds the state of one invocation over a validated script.
type Run struct {
	root     *script.Node
	scope    Context
	declared []string // vars, in declaration order
	computed []string // calcVars, in declaration order
	builtins map[string]any
	config
}

// Build creates the run context of the validated script root.
//
// The context holds each of the script's vars, env, and now. The time in
// now is converted to the zone named by the tz var, or left in the local
// zone with a warning when tz is unset. Then each calcVars expression is
// evaluated in declaration order and stored under its name, which must not
// already be in the context.
func Build(ctx context.Context, root *script.Node, opts ...Option) (*Run, error) {
	r := &Run{
		root:   root,
		scope:  make(Context),
		config: makeConfig(opts...),
	}

	dir := filepath.Dir(root.Pos.File)
	if root.Pos.File == "" {
		dir = ""
	}

	r.builtins = builtins(r.fs, dir)

	vars := root.Get("vars")
	for name, v := range vars.All() {
		r.scope[name] = v.Value
		r.declared = append(r.declared, name)
	}

	r.scope[EnvKey] = environMap(r.environ)

	now, err := r.now(ctx, vars.Get("tz"))
	if err != nil {
		return nil, err
	}

	r.scope[NowKey] = now

	if calcVars := root.Get("calcVars"); calcVars != nil {
		for _, m := range calcVars.Members {
			if _, ok := r.scope[m.Key]; ok {
				return nil, script.ErrScript.WithPosition(m.KeyPos).
					Wrap(fmt.Errorf("calcVar %q collides with an existing variable", m.Key))
			}

			v, err := r.Interpolate(m.Value)
			if err != nil {
				return nil, err
			}

			r.scope[m.Key] = v
			r.computed = append(r.computed, m.Key)
		}
	}

	return r, nil
}

// now returns the calendar fields of the current time in the zone named by
// tz, or in the local zone when tz is nil.
func (r *Run) now(ctx context.Context, tz *script.Node) (map[string]any, error) {
	t := r.clock()

	if name, ok := tz.Str(); ok {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, script.Errorf(tz, "unknown time zone %q: %w", name, err)
		}

		t = t.In(loc)
	} else {
		r.logger.WarnContext(ctx, "no 'tz' value set; using local time zone")

		t = t.Local()
	}

	zone, _ := t.Zone()

	return map[string]any{
		"year":   t.Year(),
		"month":  int(t.Month()),
		"day":    t.Day(),
		"hour":   t.Hour(),
		"minute": t.Minute(),
		"second": t.Second(),
		"zone":   zone,
	}, nil
}

// Context returns the run's variables. Changes to it are visible to later
// evaluation.
func (r *Run) Context() Context { return r.scope }

// Vars iterates the displayable variables: the script's vars and calcVars
// in declaration order, then any other assigned names in sorted order. env
// and now are omitted.
func (r *Run) Vars() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		seen := map[string]bool{EnvKey: true, NowKey: true}

		for _, name := range slices.Concat(r.declared, r.computed) {
			seen[name] = true

			if !yield(name, r.scope[name]) {
				return
			}
		}

		var rest []string

		for name := range r.scope {
			if !seen[name] {
				rest = append(rest, name)
			}
		}

		slices.Sort(rest)

		for _, name := range rest {
			if !yield(name, r.scope[name]) {
				return
			}
		}
	}
}

// Attrs returns the displayable variables as log attributes.
func (r *Run) Attrs() []slog.Attr {
	var attrs []slog.Attr
	for name, v := range r.Vars() {
		attrs = append(attrs, slog.Any(name, v))
	}

	return attrs
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}

	return m
}
