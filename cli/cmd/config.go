package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/profile"
	"github.com/ardnew/stampver/script"
)

// Config writes the current global flag values to the configuration file,
// where they become the defaults of later invocations.
type Config struct {
	Force bool `help:"Overwrite an existing configuration file" short:"f"`
}

// Run executes the config command.
func (c *Config) Run(ctx context.Context) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ErrWriteConfig.Wrap(fmt.Errorf("no command line"))
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		return ErrWriteConfig.Wrap(fmt.Errorf("configuration path undefined"))
	}

	doc := yaml.MapSlice{{Key: ConfigIdentifier, Value: flagValues(ktx)}}

	if err := create(path, c.Force, func(f *os.File) error {
		return script.Encode(f, doc, script.FormatJSON5, script.DefaultIndent)
	}); err != nil {
		return ErrWriteConfig.With(slog.String("path", path)).Wrap(err)
	}

	log.InfoContext(ctx, "initialized configuration file", slog.String("path", path))

	return nil
}

// flagValues returns the set application flags, by name, in the order kong
// declares them.
func flagValues(ktx *kong.Context) yaml.MapSlice {
	ignore := []string{"help", "version", profile.Tag}

	var values yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := configValue(ktx.FlagValue(flag)); v != nil {
			values = append(values, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return values
}

// configValue converts a flag value to one [script.Encode] accepts, or nil
// when the flag is unset.
func configValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case bool, int, int64, float64:
		return v
	case string:
		if v == "" {
			return nil
		}

		return v
	case float32:
		return float64(v)
	case []string:
		if len(v) == 0 {
			return nil
		}

		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}

		return values
	case fmt.Stringer:
		return configValue(v.String())
	default:
		return configValue(fmt.Sprint(v))
	}
}
