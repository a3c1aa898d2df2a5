// Package cmd implements the stampver commands: run, vars, fmt, init, and
// config.
//
// Commands receive everything from the command line through their
// [context.Context]; see [WithContext], [WithScript], and [WithOutput].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the JSON5 configuration file. It also names the object in that file
	// holding the flag values.
	ConfigIdentifier = "config"
)
