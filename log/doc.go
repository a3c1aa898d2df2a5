// Package log provides leveled structured logging built on [log/slog].
//
// A [Logger] is configured with functional options when it is made:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Attributes are always [slog.Attr] values:
//
//	logger.Info("updating", slog.String("file", path))
//
// The zero Logger discards all records, which lets library code accept an
// optional Logger without nil checks.
//
// # Formats
//
// [FormatText] with pretty printing enabled (the default) writes one
// colorized console line per record. Info records are written as the bare
// message followed by its attributes; warnings and errors are prefixed with
// "warning:" and "error:". Without pretty printing, [FormatText] uses
// [slog.TextHandler], and [FormatJSON] uses [slog.JSONHandler].
//
// # Default logger
//
// The package-level functions ([Info], [Warn], ...) write through a default
// logger that writes to stderr and is reconfigured with [Config].
package log
