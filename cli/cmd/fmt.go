package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

// Fmt prints the version script in the chosen format. Comments are not
// preserved.
type Fmt struct {
	JSON5 JSON5 `cmd:"" default:"1" help:"Format as JSON5 (default)." name:"json5"`
	JSON  JSON  `cmd:""              help:"Format as JSON."          name:"json"`
	YAML  YAML  `cmd:""              help:"Format as YAML."          name:"yaml"`
	HCL   HCL   `cmd:""              help:"Format as HCL."           name:"hcl"`
	Tree  Tree  `cmd:""              help:"Print the parsed node tree with positions."`
}

// JSON5 formats the script as JSON5.
type JSON5 struct {
	Indent int `default:"2" help:"Indent width" short:"i"`
}

// Run executes the json5 command.
func (f *JSON5) Run(ctx context.Context) error {
	return encode(ctx, script.FormatJSON5, f.Indent)
}

// JSON formats the script as strict JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width" short:"i"`
}

// Run executes the json command.
func (f *JSON) Run(ctx context.Context) error {
	return encode(ctx, script.FormatJSON, f.Indent)
}

// YAML formats the script as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width" short:"i"`
}

// Run executes the yaml command.
func (f *YAML) Run(ctx context.Context) error {
	return encode(ctx, script.FormatYAML, f.Indent)
}

// HCL formats the script as HCL. Objects of scalars are written as blocks.
type HCL struct{}

// Run executes the hcl command.
func (f *HCL) Run(ctx context.Context) error {
	return encode(ctx, script.FormatHCL, 0)
}

// Tree prints the script's node tree.
type Tree struct {
	Indent int `default:"2" help:"Indent width" short:"i"`
}

// Run executes the tree command.
func (f *Tree) Run(ctx context.Context) error {
	s, err := load(ctx)
	if err != nil {
		return err
	}

	return script.WriteTree(outputFrom(ctx), s.Root, f.Indent)
}

func encode(ctx context.Context, format script.Format, indent int) error {
	s, err := load(ctx)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "formatting",
		slog.String("path", s.Path),
		slog.String("from", s.Format.String()),
		slog.String("to", format.String()))

	return script.Encode(outputFrom(ctx), script.Simplify(s.Root), format, indent)
}

func load(ctx context.Context) (*script.Script, error) {
	return script.Load(ctx, scriptFrom(ctx), script.WithLogger(log.Default()))
}
