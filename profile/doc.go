// Package profile provides optional runtime profiling via
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	stampver --pprof-mode cpu --pprof-dir ./profiles run patch
//
// Without the tag, [Profiler.Start] is a no-op and [Modes] is empty.
//
// Profiles are written as <mode>.pprof in the configured directory and are
// read with go tool pprof:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// With the tag, [net/http/pprof] is also linked in, registering its
// handlers on [net/http.DefaultServeMux].
package profile
