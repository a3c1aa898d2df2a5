// Package stamp evaluates version scripts and applies them to target
// files.
//
// A [Tool] runs the whole pipeline for one [Request]: it loads and
// validates the script, builds a [Run] context from its vars, env, now, and
// calcVars, applies an optional operation, processes the targets, and, when
// updating, writes the new var values back into the script.
//
// Script strings are resolved by [Run.Interpolate]. A string wrapped in
// braces is a statement list:
//
//	"{build += 1; revision = 0}"
//
// and any other string may embed expressions:
//
//	"VERSION=${major}.${minor}.${patch}"
//
// Expressions use the expr-lang syntax. Besides the script's variables they
// may use env (the process environment), now (year, month, day, hour,
// minute, second, zone; month is 1-based), and these built-ins:
//
//	fullDate(now)            YYYYMMDD
//	jdate(now, startYear)    (year-startYear+1)*10000 + month*100 + day
//	pad(v, width)            v zero-padded to width
//	semver.valid(v)          and compare, major, majorMinor, canonical,
//	                         prerelease, build
//	file.exists(path)        relative to the script directory
//	file.read(path)
//	path.abs, path.base, path.dir, path.ext, path.join
//	mung.prefix(list, dirs...)
package stamp
