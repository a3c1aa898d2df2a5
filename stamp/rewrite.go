package stamp

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stampver/script"
)

// Rewrite returns the plain document of root, as produced by
// [script.Simplify], with each declared var set to its value in scope.
// Vars keep their declaration order; names in scope that are not declared
// vars are not added. Every other part of the document is unchanged.
//
// A var whose value in scope is neither a string nor a number is a
// [script.ErrScript] located at the var.
func Rewrite(root *script.Node, scope Context) (yaml.MapSlice, error) {
	doc, ok := script.Simplify(root).(yaml.MapSlice)
	if !ok {
		return nil, script.Errorf(root, "script must be an object")
	}

	vars := root.Member("vars")
	if vars == nil {
		return nil, script.Errorf(root, "missing 'vars' entry")
	}

	rewritten := make(yaml.MapSlice, 0, len(vars.Value.Members))

	for _, m := range vars.Value.Members {
		v, err := persistable(scope[m.Key])
		if err != nil {
			return nil, script.Errorf(m.Value, "var %q: %w", m.Key, err)
		}

		rewritten = append(rewritten, yaml.MapItem{Key: m.Key, Value: v})
	}

	for i := range doc {
		if doc[i].Key == vars.Key {
			doc[i].Value = rewritten
		}
	}

	return doc, nil
}

// Rewrite returns the run's script with its vars updated from the run
// context. See [Rewrite].
func (r *Run) Rewrite() (yaml.MapSlice, error) {
	return Rewrite(r.root, r.scope)
}

func persistable(v any) (any, error) {
	switch v := v.(type) {
	case string, int, float64:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("value %v of type %T is not a string or number", v, v)
	}
}
