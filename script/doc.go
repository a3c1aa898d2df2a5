// Package script loads, validates, and encodes version scripts.
//
// A version script is a JSON5 (or YAML) document of the form:
//
//	{
//	  vars: { major: 1, minor: 2, patch: 3, tz: "America/Chicago" },
//	  calcVars: { build: "{fullDate(now)}" },
//	  operations: { incrPatch: "{patch += 1}" },
//	  targets: [
//	    {
//	      description: "Go version",
//	      files: ["version.go"],
//	      action: {
//	        updates: [
//	          {
//	            search: 'Version = "\\d+\\.\\d+\\.\\d+"',
//	            replace: 'Version = "${major}.${minor}.${patch}"',
//	          },
//	        ],
//	      },
//	    },
//	  ],
//	}
//
// Documents are parsed into a tree of [Node] values. Every node records the
// [Position] it was read from, so errors about a script can name the file,
// line, and column of the offending value.
//
// [Load] finds and parses a script, [Validate] checks its structure, and
// [Simplify] with [Encode] write it back out.
package script
