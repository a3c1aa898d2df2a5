package cmd

import (
	"context"

	"github.com/ardnew/stampver/stamp"
)

// Run applies an operation to the version script and stamps its targets.
type Run struct {
	Operation string `arg:"" help:"Operation to apply before stamping the targets" optional:""`
	Update    bool   `       help:"Write target files and the script; without it nothing is changed" short:"u"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	return tool(ctx).Run(ctx, stamp.Request{
		Script:    scriptFrom(ctx),
		Operation: r.Operation,
		Update:    r.Update,
	})
}
