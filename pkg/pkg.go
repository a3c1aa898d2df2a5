//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of stampver embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command identifier. It appears in help text, the
	// default configuration path, and the name of the default version script.
	Name = "stampver"
	// Description is a short summary used in help output.
	Description = "Version stamping tool"

	// ScriptName is the file searched for in the working directory and its
	// parents when no script is named explicitly.
	ScriptName = "version.json5"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
