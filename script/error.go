package script

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors derived from a sentinel with [Error.Wrap], [Error.With], or
// [Error.WithPosition] still match it with [errors.Is].
var (
	ErrNotFound = NewError("script not found")
	ErrScript   = NewError("script error")
	ErrIO       = NewError("i/o error")
	ErrParse    = NewError("parse error")
)

// Error represents an error with optional source position and structured
// logging attributes. It implements both error and slog.LogValuer.
type Error struct {
	msg     string
	err     error       // Wrapped error (for errors.Unwrap)
	attrs   []slog.Attr // Attributes for structured logging
	pos     Position
	snippet string
	kind    *Error // Sentinel this error derives from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Errorf returns an [ErrScript] located at n whose cause is formatted
// according to format.
func Errorf(n *Node, format string, args ...any) *Error {
	e := ErrScript.Wrap(fmt.Errorf(format, args...))
	if n != nil {
		e = e.WithPosition(n.Pos)
	}

	return e
}

// Error implements the error interface.
//
// The message has the form "<msg>: <err> (<file>:<line>:<column>)", where
// each part is omitted when unset. Parse errors are followed by the source
// line and a caret marking the column.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	s := strings.Join(part, ": ")

	if e.pos.Line > 0 {
		s += " (" + e.pos.String() + ")"
	}

	if e.snippet != "" {
		s += "\n" + e.snippet
	}

	return s
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether e derives from the sentinel target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || e.kind == t
}

// Position returns the source position of the error, if any.
func (e *Error) Position() Position { return e.pos }

// Snippet returns the offending source line with a caret under the error
// column, or "" when no source was available.
func (e *Error) Snippet() string { return e.snippet }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.Line > 0 {
		attrs = append(attrs, slog.String("at", e.pos.String()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// withSource returns a copy of e carrying a snippet of src around the
// error position.
func (e *Error) withSource(src []byte) *Error {
	c := e.clone()
	c.snippet = snippet(src, e.pos)

	return c
}

func (e *Error) clone() *Error {
	c := *e
	if c.kind == nil {
		c.kind = e
	}

	return &c
}

// snippet renders line pos.Line of src with a caret under pos.Column:
//
//	3 | patch: 3x,
//	           ^
func snippet(src []byte, pos Position) string {
	lines := strings.Split(string(src), "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return ""
	}

	var sb strings.Builder

	num := strconv.Itoa(pos.Line)
	line := strings.TrimRight(lines[pos.Line-1], "\r")

	sb.WriteString("  " + num + " | " + line + "\n")

	// 2 leading spaces + " | "
	pad := len(num) + 5
	if pos.Column > 1 {
		pad += pos.Column - 1
	}

	sb.WriteString(strings.Repeat(" ", pad) + "^")

	return sb.String()
}
