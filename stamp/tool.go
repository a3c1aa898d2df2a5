package stamp

import (
	"context"
	"log/slog"

	"github.com/ardnew/stampver/script"
)

// Request describes one invocation of a [Tool].
type Request struct {
	// Script is the path of the version script. When empty, the script is
	// searched for from the tool's directory upward.
	Script string
	// Operation names an operation to run before processing targets.
	Operation string
	// Update writes target files and the script. When false, the run only
	// reports what it would do.
	Update bool
}

// Tool runs version scripts.
type Tool struct {
	opts []Option
	config
}

// New returns a [Tool] that builds each [Run] with opts.
func New(opts ...Option) *Tool {
	return &Tool{opts: opts, config: makeConfig(opts...)}
}

// Prepare loads and validates the script named by req, builds its run
// context, and applies req.Operation if set.
func (t *Tool) Prepare(ctx context.Context, req Request) (*script.Script, *Run, error) {
	s, err := script.Load(ctx, req.Script,
		script.WithDir(t.dir),
		script.WithLogger(t.logger))
	if err != nil {
		return nil, nil, err
	}

	t.logger.InfoContext(ctx, "script", slog.String("path", s.Path))

	if err := script.Validate(s.Root); err != nil {
		return nil, nil, err
	}

	r, err := Build(ctx, s.Root, t.opts...)
	if err != nil {
		return nil, nil, err
	}

	if req.Operation != "" {
		if err := r.Operate(ctx, req.Operation); err != nil {
			return nil, nil, err
		}
	}

	return s, r, nil
}

// Run performs the whole invocation: [Tool.Prepare], then
// [Run.ProcessTargets], then, when req.Update is set, rewrites the script
// with the updated vars.
func (t *Tool) Run(ctx context.Context, req Request) error {
	s, r, err := t.Prepare(ctx, req)
	if err != nil {
		return err
	}

	t.logger.InfoContext(ctx, "variables", r.Attrs()...)

	if err := r.ProcessTargets(ctx, s.Dir(), req.Update); err != nil {
		return err
	}

	if !req.Update {
		t.logger.DebugContext(ctx, "dry run; no files changed")

		return nil
	}

	doc, err := r.Rewrite()
	if err != nil {
		return err
	}

	if err := s.Save(ctx, doc, script.WithLogger(t.logger)); err != nil {
		return err
	}

	t.logger.InfoContext(ctx, "updated", slog.String("path", s.Path))

	return nil
}
