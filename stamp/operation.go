package stamp

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stampver/script"
)

// maxSuggestions limits the operation names offered for a misspelling.
const maxSuggestions = 3

// Operate evaluates the operation named name for its effect on the run
// context. The operation's braces are optional: "{patch += 1}" and
// "patch += 1" are equivalent.
//
// An unknown name is a [script.ErrScript] located at the operations entry,
// suggesting similarly spelled operations when there are any.
func (r *Run) Operate(ctx context.Context, name string) error {
	ops := r.root.Get("operations")

	m := ops.Member(name)
	if m == nil {
		return r.unknownOperation(ops, name)
	}

	src, _ := m.Value.Str()
	if strings.HasPrefix(src, "{") && strings.HasSuffix(src, "}") {
		src = src[1 : len(src)-1]
	}

	r.logger.DebugContext(ctx, "operation",
		slog.String("name", name),
		slog.String("statements", src))

	if _, err := eval(src, r.builtins, r.scope, nil); err != nil {
		return script.Errorf(m.Value, "operation %q: %w", name, err).
			With(slog.String("operation", name))
	}

	return nil
}

func (r *Run) unknownOperation(ops *script.Node, name string) error {
	names := make([]string, 0, len(ops.Members))
	for _, m := range ops.Members {
		names = append(names, m.Key)
	}

	matches := fuzzy.Find(name, names)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	if len(matches) == 0 {
		return script.Errorf(ops, "unknown operation %q", name)
	}

	quoted := make([]string, 0, len(matches))
	for _, match := range matches {
		quoted = append(quoted, strconv.Quote(match.Str))
	}

	suggest := strings.Join(quoted, " or ")

	return script.Errorf(ops, "unknown operation %q; did you mean %s?", name, suggest)
}
