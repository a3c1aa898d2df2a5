package script

import (
	"iter"
	"strconv"
)

// Type identifies the kind of value held by a [Node].
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeNumeric
	TypeString
	TypeObject
	TypeArray
)

// String returns the lowercase name of the type.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumeric:
		return "numeric"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Position is a 1-based location in a script file.
type Position struct {
	File   string
	Line   int
	Column int
}

// String returns "file:line:column", or "line:column" when File is empty.
func (p Position) String() string {
	s := strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
	if p.File != "" {
		s = p.File + ":" + s
	}

	return s
}

// Node is one value of a parsed script.
//
// Value holds nil, bool, int, float64, or string for scalar types. Objects
// keep their members in document order in Members, and arrays their
// elements in Elements.
type Node struct {
	Type     Type
	Value    any
	Members  []*Member
	Elements []*Node
	Pos      Position
}

// Member is one key of an object [Node].
type Member struct {
	Key    string
	KeyPos Position
	Value  *Node
}

// Get returns the value of member key, or nil if n is not an object or has
// no such member.
func (n *Node) Get(key string) *Node {
	if m := n.Member(key); m != nil {
		return m.Value
	}

	return nil
}

// Member returns member key of object n, or nil.
func (n *Node) Member(key string) *Member {
	if n == nil || n.Type != TypeObject {
		return nil
	}

	for _, m := range n.Members {
		if m.Key == key {
			return m
		}
	}

	return nil
}

// All iterates the members of object n in document order.
func (n *Node) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		if n == nil {
			return
		}

		for _, m := range n.Members {
			if !yield(m.Key, m.Value) {
				return
			}
		}
	}
}

// Str returns the string value of n and whether n is a string.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Type != TypeString {
		return "", false
	}

	s, ok := n.Value.(string)

	return s, ok
}

// IsScalar reports whether n is a string or numeric node.
func (n *Node) IsScalar() bool {
	return n != nil && (n.Type == TypeString || n.Type == TypeNumeric)
}

// SetFile records file as the source of n and all of its descendants.
func (n *Node) SetFile(file string) {
	if n == nil {
		return
	}

	n.Pos.File = file

	for _, m := range n.Members {
		m.KeyPos.File = file
		m.Value.SetFile(file)
	}

	for _, e := range n.Elements {
		e.SetFile(file)
	}
}

// Walk calls fn for n and each of its descendants in document order.
// Walk stops descending below a node when fn returns false for it.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, m := range n.Members {
		m.Value.Walk(fn)
	}

	for _, e := range n.Elements {
		e.Walk(fn)
	}
}
