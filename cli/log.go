package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stampver/log"
)

// logFormat configures the default logger as a side effect of parsing, so
// errors reported while kong is still parsing use the requested format.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the default logger as a side effect of parsing.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info" enum:"${logLevelEnum}"  help:"Set log level."                                        placeholder:"${enum}"`
	Format     logFormat `default:"text" enum:"${logFormatEnum}" help:"Set log format."                                       placeholder:"${enum}"`
	TimeLayout string    `default:"none"                         help:"Set timestamp layout (RFC3339, Kitchen, none, or a Go layout)."`
	Caller     bool      `default:"false"                        help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                         help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies every parsed logger flag to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

func (f *logConfig) options() []log.Option {
	return []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}
}

// scan applies logger flags found in args before kong parses them, so the
// logger is configured regardless of where the flags appear.
func (f *logConfig) scan(args []string) {
	var opts []log.Option

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		prefix := "--log-"

		negate := strings.HasPrefix(arg, "--no-log-")
		if negate {
			prefix = "--no-log-"
		}

		name, ok := strings.CutPrefix(arg, prefix)
		if !ok {
			continue
		}

		name, value, assigned := strings.Cut(name, "=")

		switch name {
		case "level", "format", "time-layout":
			if negate {
				continue
			}

			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			opts = append(opts, f.set(name, value))

		case "caller", "pretty":
			enable := true

			if assigned {
				v, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				enable = v
			}

			opts = append(opts, f.set(name, strconv.FormatBool(enable != negate)))
		}
	}

	log.Config(opts...)
}

// set stores value in the named field and returns the equivalent logger
// option.
func (f *logConfig) set(name, value string) log.Option {
	switch name {
	case "level":
		f.Level = logLevel(value)

		return log.WithLevel(log.ParseLevel(value))
	case "format":
		f.Format = logFormat(value)

		return log.WithFormat(log.ParseFormat(value))
	case "time-layout":
		f.TimeLayout = value

		return log.WithTimeLayout(value)
	case "caller":
		f.Caller, _ = strconv.ParseBool(value)

		return log.WithCaller(f.Caller)
	default:
		f.Pretty, _ = strconv.ParseBool(value)

		return log.WithPretty(f.Pretty)
	}
}
