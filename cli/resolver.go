package cli

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/script"
)

// resolve returns a [kong.ConfigurationLoader] for JSON5 configuration
// files, used with [kong.Configuration]:
//
//	kong.Configuration(resolve("config"), "/path/to/config")
//
// The file holds one object whose members are flag values. When the object
// has a member called name that is itself an object, that member is used
// instead, so settings may be grouped:
//
//	{
//	  config: {
//	    log_level: "debug",
//	    "log-pretty": false,
//	    script: "build/version.json5",
//	  },
//	}
//
// Flag names may be written with hyphens or underscores. Command-line flags
// override configured values. A file that cannot be parsed is ignored with a
// warning.
func resolve(name string) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		root, err := script.ParseJSON5(name, src)
		if err != nil {
			log.Warn("ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		if group := root.Get(name); group != nil && group.Type == script.TypeObject {
			root = group
		}

		if root.Type != script.TypeObject {
			return config{}, nil
		}

		c := make(config, len(root.Members))
		for _, m := range root.Members {
			c[m.Key] = flagValue(m.Value)
		}

		return c, nil
	}
}

// config implements [kong.Resolver] over a parsed configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

// flagValue converts n to a value kong can decode. Numbers are passed as
// strings, which kong parses with the flag's own type.
func flagValue(n *script.Node) any {
	switch n.Type {
	case script.TypeArray:
		values := make([]any, 0, len(n.Elements))
		for _, e := range n.Elements {
			values = append(values, flagValue(e))
		}

		return values

	case script.TypeObject:
		values := make(map[string]any, len(n.Members))
		for _, m := range n.Members {
			values[m.Key] = flagValue(m.Value)
		}

		return values
	}

	switch v := n.Value.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return v
	}
}
