package script

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	yamlparser "github.com/goccy/go-yaml/parser"
)

// ParseYAML parses src as a single YAML document. Every node of the result
// is positioned in file.
//
// Anchors and aliases are resolved, and merge keys ("<<") copy the members
// of the merged mapping that the enclosing mapping does not declare.
func ParseYAML(file string, src []byte) (*Node, error) {
	f, err := yamlparser.ParseBytes(src, 0)
	if err != nil {
		e := ErrParse.Wrap(errors.New(yaml.FormatError(err, false, false)))
		e.snippet = yaml.FormatError(err, false, true)

		return nil, e
	}

	var docs []*ast.DocumentNode

	for _, doc := range f.Docs {
		if doc.Body != nil {
			docs = append(docs, doc)
		}
	}

	switch len(docs) {
	case 0:
		return nil, ErrParse.WithPosition(Position{File: file, Line: 1, Column: 1}).
			Wrap(errors.New("empty document")).withSource(src)
	case 1:
	default:
		return nil, ErrParse.WithPosition(yamlPosition(file, docs[1].Body)).
			Wrap(errors.New("multiple documents")).withSource(src)
	}

	c := yamlConverter{file: file, anchors: make(map[string]*Node)}

	n, err := c.convert(docs[0].Body)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return nil, pe.withSource(src)
		}

		return nil, err
	}

	return n, nil
}

type yamlConverter struct {
	file    string
	anchors map[string]*Node
}

func (c *yamlConverter) convert(an ast.Node) (*Node, error) {
	pos := yamlPosition(c.file, an)

	switch v := an.(type) {
	case *ast.NullNode:
		return &Node{Type: TypeNull, Pos: pos}, nil

	case *ast.BoolNode:
		return &Node{Type: TypeBoolean, Value: v.Value, Pos: pos}, nil

	case *ast.IntegerNode:
		n := &Node{Type: TypeNumeric, Pos: pos}

		switch i := v.Value.(type) {
		case int64:
			n.Value = int(i)
		case uint64:
			if i <= math.MaxInt {
				n.Value = int(i)
			} else {
				n.Value = float64(i)
			}
		default:
			return nil, c.errorf(an, "unsupported integer %v", v.Value)
		}

		return n, nil

	case *ast.FloatNode:
		return &Node{Type: TypeNumeric, Value: v.Value, Pos: pos}, nil

	case *ast.InfinityNode:
		return &Node{Type: TypeNumeric, Value: v.Value, Pos: pos}, nil

	case *ast.NanNode:
		return &Node{Type: TypeNumeric, Value: math.NaN(), Pos: pos}, nil

	case *ast.StringNode:
		return &Node{Type: TypeString, Value: v.Value, Pos: pos}, nil

	case *ast.LiteralNode:
		return &Node{Type: TypeString, Value: v.Value.Value, Pos: pos}, nil

	case *ast.TagNode:
		return c.convert(v.Value)

	case *ast.AnchorNode:
		n, err := c.convert(v.Value)
		if err != nil {
			return nil, err
		}

		c.anchors[v.Name.GetToken().Value] = n

		return n, nil

	case *ast.AliasNode:
		name := v.Value.GetToken().Value

		n, ok := c.anchors[name]
		if !ok {
			return nil, c.errorf(an, "unknown alias %q", name)
		}

		return n, nil

	case *ast.SequenceNode:
		n := &Node{Type: TypeArray, Elements: []*Node{}, Pos: pos}

		for _, ev := range v.Values {
			e, err := c.convert(ev)
			if err != nil {
				return nil, err
			}

			n.Elements = append(n.Elements, e)
		}

		return n, nil

	case *ast.MappingNode:
		n := &Node{Type: TypeObject, Members: []*Member{}, Pos: pos}

		return n, c.mapping(n, v.Values)

	case *ast.MappingValueNode:
		n := &Node{Type: TypeObject, Members: []*Member{}, Pos: pos}

		return n, c.mapping(n, []*ast.MappingValueNode{v})

	default:
		return nil, c.errorf(an, "unsupported YAML node %s", an.Type())
	}
}

func (c *yamlConverter) mapping(n *Node, values []*ast.MappingValueNode) error {
	var merged []*Member

	for _, mv := range values {
		value, err := c.convert(mv.Value)
		if err != nil {
			return err
		}

		if mv.Key.IsMergeKey() {
			if value.Type != TypeObject {
				return c.errorf(mv.Value, "merge value must be a mapping")
			}

			merged = append(merged, value.Members...)

			continue
		}

		key := yamlKey(mv.Key)
		if n.Member(key) != nil {
			return c.errorf(mv.Key, "duplicate key %q", key)
		}

		n.Members = append(n.Members, &Member{
			Key:    key,
			KeyPos: yamlPosition(c.file, mv.Key),
			Value:  value,
		})
	}

	for _, m := range merged {
		if n.Member(m.Key) == nil {
			n.Members = append(n.Members, m)
		}
	}

	return nil
}

func (c *yamlConverter) errorf(an ast.Node, format string, args ...any) *Error {
	return ErrParse.WithPosition(yamlPosition(c.file, an)).
		Wrap(fmt.Errorf(format, args...))
}

func yamlKey(k ast.MapKeyNode) string {
	if s, ok := k.(*ast.StringNode); ok {
		return s.Value
	}

	return k.GetToken().Value
}

func yamlPosition(file string, an ast.Node) Position {
	pos := Position{File: file}

	if tk := an.GetToken(); tk != nil && tk.Position != nil {
		pos.Line = tk.Position.Line
		pos.Column = tk.Position.Column
	}

	return pos
}
