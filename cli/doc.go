// Package cli contains the command line interface for stampver.
//
// # Usage
//
//	stampver [flags] [run] [<operation>] [-u]
//	stampver vars [<operation>]
//	stampver fmt json5|json|yaml|tree [--indent=N]
//	stampver init [--force] [--format=json5|yaml]
//
// Without a command, run is assumed, so "stampver incrPatch -u" applies the
// incrPatch operation, stamps every target, and saves the new version. Omit
// -u to see what would change without writing anything.
//
// The version script is version.json5 (or version.yaml) in the working
// directory or the nearest parent that has one, unless --script names
// another.
//
// # Configuration
//
// Default flag values are read from two files in the user configuration
// directory (for example ~/.config/stampver):
//
//   - config.json, in kong's JSON layout
//   - config, a JSON5 object of flag names and values
//
// Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, none, ...)
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o stampver .
//
// It adds two flags:
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/stampver/pprof)
package cli
