package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

// Init writes a starter version script.
type Init struct {
	Force  bool   `help:"Overwrite an existing script" short:"f"`
	Format string `default:"json5" enum:"json5,yaml,hcl" help:"Script format; ignored when --script names the file" placeholder:"${enum}"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) error {
	path, format, err := i.target(ctx)
	if err != nil {
		return err
	}

	if err := create(path, i.Force, func(f *os.File) error {
		return script.Encode(f, starter(), format, script.DefaultIndent)
	}); err != nil {
		return ErrWriteScript.With(slog.String("path", path)).Wrap(err)
	}

	log.InfoContext(ctx, "initialized version script", slog.String("path", path))

	return nil
}

// target returns the path and format of the script to write.
func (i *Init) target(ctx context.Context) (string, script.Format, error) {
	if path := scriptFrom(ctx); path != "" {
		return path, script.FormatOf(path), nil
	}

	format, err := script.ParseFormat(i.Format)
	if err != nil {
		return "", 0, err
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", 0, err
	}

	name := strings.TrimSuffix(script.Names[0], filepath.Ext(script.Names[0]))

	return filepath.Join(dir, name+format.Ext()), format, nil
}

// starter returns a script that versions a VERSION file next to it.
func starter() yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "vars", Value: yaml.MapSlice{
			{Key: "major", Value: 0},
			{Key: "minor", Value: 1},
			{Key: "patch", Value: 0},
			{Key: "tz", Value: "UTC"},
		}},
		{Key: "calcVars", Value: yaml.MapSlice{
			{Key: "version", Value: "${major}.${minor}.${patch}"},
			{Key: "buildDate", Value: "{fullDate(now)}"},
		}},
		{Key: "operations", Value: yaml.MapSlice{
			{Key: "incrMajor", Value: "{major++; minor = 0; patch = 0}"},
			{Key: "incrMinor", Value: "{minor++; patch = 0}"},
			{Key: "incrPatch", Value: "{patch++}"},
		}},
		{Key: "targets", Value: []any{
			yaml.MapSlice{
				{Key: "description", Value: "Version file"},
				{Key: "files", Value: []any{"VERSION"}},
				{Key: "action", Value: yaml.MapSlice{
					{Key: "write", Value: "${version}\n"},
				}},
			},
		}},
	}
}

// create writes path with write, refusing to replace an existing file
// unless force is set.
func create(path string, force bool, write func(*os.File) error) (err error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return ErrFileExists
	}

	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return write(f)
}
