package stamp

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/expr-lang/expr/parser"

	"github.com/ardnew/stampver/script"
)

var namePattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Interpolate resolves the string node n against the run context.
//
//   - A value wrapped in braces, "{...}", is a statement list evaluated with
//     [Eval]; the value of its last statement is returned as is.
//   - Otherwise each "${expr}" in the value is replaced by the formatted
//     value of expr, and the resulting string is returned. "\${" stands for
//     a literal "${". A "${...}" holding an undefined name or text that is
//     not an expression, such as "${HOME}" or "${PATH:-/bin}" in a shell
//     script, is kept as written.
//   - Any other string is returned unchanged.
//
// Non-string nodes yield their value. Evaluation errors are [script.ErrScript]
// errors located at n.
func (r *Run) Interpolate(n *script.Node) (any, error) {
	return r.InterpolateWith(n, nil)
}

// InterpolateWith is like [Run.Interpolate] with bindings layered over the
// run context. Bindings are visible only to this evaluation.
func (r *Run) InterpolateWith(n *script.Node, bindings map[string]any) (any, error) {
	s, ok := n.Str()
	if !ok {
		return n.Value, nil
	}

	v, err := r.interpolate(s, bindings)
	if err != nil {
		return nil, script.Errorf(n, "%w", err).With(slog.String("value", s))
	}

	return v, nil
}

func (r *Run) interpolate(s string, bindings map[string]any) (any, error) {
	if len(s) >= 2 && strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return eval(s[1:len(s)-1], r.builtins, r.scope, bindings)
	}

	if !strings.Contains(s, "${") {
		return s, nil
	}

	var sb strings.Builder

	for {
		i := strings.Index(s, "${")
		if i < 0 {
			sb.WriteString(s)

			return sb.String(), nil
		}

		if i > 0 && s[i-1] == '\\' {
			sb.WriteString(s[:i-1] + "${")
			s = s[i+2:]

			continue
		}

		sb.WriteString(s[:i])

		end, err := closingBrace(s, i+2)
		if err != nil {
			r.logger.Debug("template left unchanged",
				slog.String("text", s[i:]), slog.String("reason", err.Error()))
			sb.WriteString(s[i:])

			return sb.String(), nil
		}

		if r.verbatim(s[i+2:end], bindings) {
			r.logger.Debug("template left unchanged", slog.String("text", s[i:end+1]))
			sb.WriteString(s[i : end+1])
			s = s[end+1:]

			continue
		}

		v, err := eval(s[i+2:end], r.builtins, r.scope, bindings)
		if err != nil {
			return nil, err
		}

		sb.WriteString(formatValue(v))

		s = s[end+1:]
	}
}

// verbatim reports whether the template body is target text rather than an
// expression: a lone name that is not defined, or a statement list that
// does not parse.
func (r *Run) verbatim(body string, bindings map[string]any) bool {
	if name := strings.TrimSpace(body); namePattern.MatchString(name) {
		return !r.defined(name, bindings)
	}

	stmts, err := splitStatements(body)
	if err != nil {
		return true
	}

	parsed := false

	for _, stmt := range stmts {
		if strings.TrimSpace(stmt) == "" {
			continue
		}

		if incDecPattern.MatchString(stmt) {
			parsed = true

			continue
		}

		if m := assignPattern.FindStringSubmatch(stmt); m != nil {
			stmt = m[3]
		}

		if _, err := parser.Parse(stmt); err != nil {
			return true
		}

		parsed = true
	}

	return !parsed
}

func (r *Run) defined(name string, bindings map[string]any) bool {
	if _, ok := bindings[name]; ok {
		return true
	}

	if _, ok := r.scope[name]; ok {
		return true
	}

	_, ok := r.builtins[name]

	return ok
}

// closingBrace returns the index of the "}" closing the template
// expression that starts at start, skipping nested braces and string
// literals.
func closingBrace(s string, start int) (int, error) {
	var (
		depth int
		quote byte
	)

	for i := start; i < len(s); i++ {
		ch := s[i]

		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}

			continue
		}

		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, nil
			}

			depth--
		}
	}

	return 0, errors.New("unterminated \"${\" in template")
}
