package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/stampver/stamp"
)

// Vars prints the run variables, optionally after an operation, one
// "name=value" line each. Nothing is written.
type Vars struct {
	Operation string `arg:"" help:"Operation to apply first" optional:""`
}

// Run executes the vars command.
func (v *Vars) Run(ctx context.Context) error {
	_, r, err := tool(ctx).Prepare(ctx, stamp.Request{
		Script:    scriptFrom(ctx),
		Operation: v.Operation,
	})
	if err != nil {
		return err
	}

	w := outputFrom(ctx)

	for name, value := range r.Vars() {
		if _, err := fmt.Fprintf(w, "%s=%v\n", name, value); err != nil {
			return err
		}
	}

	return nil
}
