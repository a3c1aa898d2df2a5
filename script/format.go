package script

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"
)

// Format is an on-disk script syntax.
type Format int

const (
	FormatJSON5 Format = iota // json5
	FormatYAML                // yaml
	FormatJSON                // json
	FormatHCL                 // hcl
)

// String returns the name of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON5:
		return "json5"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// Formats returns an iterator over the names of all formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatJSON5, FormatYAML, FormatJSON, FormatHCL} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named s, ignoring case. "yml" is accepted
// for [FormatYAML].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json5":
		return FormatJSON5, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

// FormatOf returns the format implied by the extension of path. Paths
// without a recognized extension are JSON5.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatJSON5
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + f.String() }
