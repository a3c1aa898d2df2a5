package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/stamp"
)

type (
	contextKey struct{}
	scriptKey  struct{}
	outputKey  struct{}
	optionsKey struct{}
)

// WithContext returns a copy of ctx carrying the parsed command line.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// WithScript returns a copy of ctx naming the version script. An empty path
// means the script is searched for.
func WithScript(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, scriptKey{}, path)
}

func scriptFrom(ctx context.Context) string {
	path, _ := ctx.Value(scriptKey{}).(string)

	return path
}

// WithOutput returns a copy of ctx whose commands print to w instead of
// standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// WithOptions returns a copy of ctx carrying options for every
// [stamp.Tool] the commands create, after the defaults.
func WithOptions(ctx context.Context, opts ...stamp.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// tool returns the [stamp.Tool] used by commands, logging through the
// default logger.
func tool(ctx context.Context) *stamp.Tool {
	opts, _ := ctx.Value(optionsKey{}).([]stamp.Option)

	return stamp.New(append([]stamp.Option{stamp.WithLogger(log.Default())}, opts...)...)
}
