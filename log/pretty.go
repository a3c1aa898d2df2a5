package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// consoleHandler writes one colorized line per record in the form
//
//	[time] level: message key=value ...
//
// Info records omit the level prefix, so progress messages read as plain
// text while warnings and errors stand out.
type consoleHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	group      string
}

func newConsoleHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *consoleHandler {
	return &consoleHandler{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(colorGray)
			buf.WriteString(ts)
			buf.WriteString(colorReset)
			buf.WriteByte(' ')
		}
	}

	switch level := Level(r.Level); {
	case level >= LevelError:
		buf.WriteString(colorRed + "error:" + colorReset + " ")
	case level >= LevelWarn:
		buf.WriteString(colorYellow + "warning:" + colorReset + " ")
	case level >= LevelInfo:
	default:
		buf.WriteString(colorBlue + level.String() + ":" + colorReset + " ")
	}

	buf.WriteString(r.Message)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.writeAttr(buf, "", slog.String(
				slog.SourceKey,
				fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line),
			))
		}
	}

	for _, a := range h.attrs {
		h.writeAttr(buf, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	c.attrs = append(c.attrs, h.attrs...)

	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}

		c.attrs = append(c.attrs, a)
	}

	return &c
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	if c.group != "" {
		c.group += "."
	}

	c.group += name

	return &c
}

func (h *consoleHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	// Expand groups (including slog.LogValuer errors) into dotted keys.
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(buf, key, ga)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(colorGray)
	buf.WriteString(key)
	buf.WriteString(colorReset)
	buf.WriteByte('=')

	h.writeValue(buf, a.Value)
}

func (h *consoleHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuote(s) {
			s = strconv.Quote(s)
		}

		buf.WriteString(colorCyan + s + colorReset)

	case slog.KindInt64:
		buf.WriteString(colorYellow + strconv.FormatInt(v.Int64(), 10) + colorReset)

	case slog.KindUint64:
		buf.WriteString(colorYellow + strconv.FormatUint(v.Uint64(), 10) + colorReset)

	case slog.KindFloat64:
		buf.WriteString(colorYellow + strconv.FormatFloat(v.Float64(), 'g', -1, 64) + colorReset)

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(colorGreen + "true" + colorReset)
		} else {
			buf.WriteString(colorRed + "false" + colorReset)
		}

	case slog.KindDuration:
		buf.WriteString(colorMagenta + v.Duration().String() + colorReset)

	case slog.KindTime:
		t := v.Time().String()
		if h.formatTime != nil {
			if ts := h.formatTime(v.Time()); ts != "" {
				t = ts
			}
		}

		buf.WriteString(colorBlue + t + colorReset)

	default:
		buf.WriteString(colorCyan + v.String() + colorReset)
	}
}

// needsQuote reports whether s would be ambiguous when written unquoted
// after "key=".
func needsQuote(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		if r == ' ' || r == '"' || r == '=' || r < 0x20 {
			return true
		}
	}

	return false
}
