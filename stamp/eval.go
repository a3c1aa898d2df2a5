package stamp

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// Read-only names of every run context.
const (
	EnvKey = "env"
	NowKey = "now"
)

var (
	assignPattern = regexp.MustCompile(
		`(?s)^\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*([-+*/%]?)=([^=].*)?$`)
	incDecPattern = regexp.MustCompile(
		`^\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*(\+\+|--)\s*$`)
)

// Eval evaluates the statement list src against scope with the default
// built-ins and returns the value of the last statement.
//
// Statements are separated by ";". Each is an assignment, "name = expr" or
// "name op= expr" for op one of + - * / %, an increment or decrement
// ("name++", "name--"), or a bare expression. Expressions use the
// expr-lang syntax (https://expr-lang.org) and see the built-ins, then
// scope, then bindings, with later layers shadowing earlier ones.
//
// Assignments to a name in bindings update bindings; all others update
// scope. The names env and now cannot be assigned, and a compound
// assignment requires the variable to exist.
func Eval(src string, scope Context, bindings map[string]any) (any, error) {
	return eval(src, builtins(OSFS{}, ""), scope, bindings)
}

func eval(
	src string,
	builtins map[string]any,
	scope Context,
	bindings map[string]any,
) (any, error) {
	env := make(map[string]any, len(builtins)+len(scope)+len(bindings))
	maps.Copy(env, builtins)
	maps.Copy(env, scope)
	maps.Copy(env, bindings)

	stmts, err := splitStatements(src)
	if err != nil {
		return nil, err
	}

	var result any

	for _, stmt := range stmts {
		if strings.TrimSpace(stmt) == "" {
			continue
		}

		result, err = execute(stmt, env, scope, bindings)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func execute(
	stmt string,
	env map[string]any,
	scope Context,
	bindings map[string]any,
) (any, error) {
	if m := incDecPattern.FindStringSubmatch(stmt); m != nil {
		stmt = m[1] + " " + m[2][:1] + "= 1"
	}

	m := assignPattern.FindStringSubmatch(stmt)
	if m == nil {
		return run(stmt, env)
	}

	name, op, rhs := m[1], m[2], m[3]

	if name == EnvKey || name == NowKey {
		return nil, fmt.Errorf("cannot assign to read-only variable %q", name)
	}

	if strings.TrimSpace(rhs) == "" {
		return nil, fmt.Errorf("missing expression after %q", name+" "+op+"=")
	}

	_, bound := bindings[name]

	if op != "" {
		if _, ok := scope[name]; !ok && !bound {
			return nil, fmt.Errorf("cannot apply %s= to undefined variable %q", op, name)
		}

		rhs = name + " " + op + " (" + rhs + ")"
	}

	v, err := run(rhs, env)
	if err != nil {
		return nil, err
	}

	if bound {
		bindings[name] = v
	} else {
		scope[name] = v
	}

	env[name] = v

	return v, nil
}

func run(src string, env map[string]any) (any, error) {
	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, err
	}

	return expr.Run(program, env)
}

// splitStatements splits src at each ";" outside of string literals and
// brackets.
func splitStatements(src string) ([]string, error) {
	var (
		stmts []string
		depth int
		quote rune
		start int
	)

	for i := 0; i < len(src); i++ {
		ch := rune(src[i])

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
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ';':
			if depth == 0 {
				stmts = append(stmts, src[start:i])
				start = i + 1
			}
		}
	}

	if quote != 0 {
		return nil, errors.New("unterminated string literal")
	}

	return append(stmts, src[start:]), nil
}

// formatValue returns the text spliced into a string for v.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
