package script

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteTree writes an indented outline of n to w, one node per line with its
// type, scalar value, and line:column position:
//
//	object @1:1
//	  vars: object @2:9
//	    major: numeric 1 @3:12
func WriteTree(w io.Writer, n *Node, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	t := treeWriter{w: w, indent: strings.Repeat(" ", indent)}
	t.node("", n, 0)

	return t.err
}

type treeWriter struct {
	w      io.Writer
	indent string
	err    error
}

func (t *treeWriter) node(label string, n *Node, depth int) {
	if t.err != nil || n == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(t.indent, depth))

	if label != "" {
		sb.WriteString(label + ": ")
	}

	sb.WriteString(n.Type.String())

	switch n.Type {
	case TypeString:
		sb.WriteString(" " + strconv.Quote(n.Value.(string)))
	case TypeBoolean, TypeNumeric:
		sb.WriteString(" " + fmt.Sprint(n.Value))
	}

	sb.WriteString(" @" + strconv.Itoa(n.Pos.Line) + ":" + strconv.Itoa(n.Pos.Column))

	if _, err := fmt.Fprintln(t.w, sb.String()); err != nil {
		t.err = ErrIO.Wrap(err)

		return
	}

	for _, m := range n.Members {
		t.node(m.Key, m.Value, depth+1)
	}

	for i, e := range n.Elements {
		t.node("["+strconv.Itoa(i)+"]", e, depth+1)
	}
}
