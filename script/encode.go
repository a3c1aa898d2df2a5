package script

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// DefaultIndent is the indentation width of encoded scripts.
const DefaultIndent = 2

// Simplify converts n into plain Go values: objects become [yaml.MapSlice]
// (keeping member order), arrays []any, and scalars their Value.
func Simplify(n *Node) any {
	if n == nil {
		return nil
	}

	switch n.Type {
	case TypeObject:
		m := make(yaml.MapSlice, 0, len(n.Members))
		for _, mem := range n.Members {
			m = append(m, yaml.MapItem{Key: mem.Key, Value: Simplify(mem.Value)})
		}

		return m

	case TypeArray:
		a := make([]any, 0, len(n.Elements))
		for _, e := range n.Elements {
			a = append(a, Simplify(e))
		}

		return a

	default:
		return n.Value
	}
}

// Encode writes the plain document doc, as produced by [Simplify], to w in
// the given format with indent spaces per level. HCL is always written in
// its canonical layout.
func Encode(w io.Writer, doc any, format Format, indent int) error {
	if indent <= 0 {
		indent = DefaultIndent
	}

	if format == FormatHCL {
		return encodeHCL(w, doc)
	}

	if format == FormatYAML {
		doc, err := quoteControl(doc)
		if err != nil {
			return err
		}

		b, err := yaml.MarshalWithOptions(doc, yaml.Indent(indent))
		if err != nil {
			return ErrIO.Wrap(err)
		}

		_, err = w.Write(b)
		if err != nil {
			return ErrIO.Wrap(err)
		}

		return nil
	}

	e := encoder{indent: strings.Repeat(" ", indent), json: format == FormatJSON}

	if err := e.value(doc, 0); err != nil {
		return err
	}

	e.sb.WriteByte('\n')

	if _, err := io.WriteString(w, e.sb.String()); err != nil {
		return ErrIO.Wrap(err)
	}

	return nil
}

// quotedString is a string written as a double-quoted YAML scalar.
type quotedString string

// MarshalYAML implements [yaml.BytesMarshaler].
func (s quotedString) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(s))), nil
}

// quoteControl returns a copy of doc in which every string holding a control
// character other than a newline is a [quotedString]. A plain scalar
// written by go-yaml loses such characters when read back.
func quoteControl(doc any) (any, error) {
	switch v := doc.(type) {
	case string:
		if !utf8.ValidString(v) {
			return nil, ErrScript.Wrap(fmt.Errorf("string %q is not valid UTF-8", v))
		}

		if strings.IndexFunc(v, isControl) >= 0 {
			return quotedString(v), nil
		}

		return v, nil

	case yaml.MapSlice:
		m := make(yaml.MapSlice, 0, len(v))

		for _, item := range v {
			value, err := quoteControl(item.Value)
			if err != nil {
				return nil, err
			}

			m = append(m, yaml.MapItem{Key: item.Key, Value: value})
		}

		return m, nil

	case []any:
		a := make([]any, 0, len(v))

		for _, elem := range v {
			value, err := quoteControl(elem)
			if err != nil {
				return nil, err
			}

			a = append(a, value)
		}

		return a, nil

	default:
		return doc, nil
	}
}

func isControl(r rune) bool {
	return r != '\n' && (r < 0x20 || r == 0x7f)
}

// encoder writes JSON5, or strict JSON when json is set.
type encoder struct {
	sb     strings.Builder
	indent string
	json   bool
}

var identifierKey = regexp.MustCompile(`^[\p{L}\p{Nl}$_][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}$_]*$`)

func (e *encoder) value(v any, depth int) error {
	switch v := v.(type) {
	case nil:
		e.sb.WriteString("null")

	case bool:
		e.sb.WriteString(strconv.FormatBool(v))

	case int:
		e.sb.WriteString(strconv.Itoa(v))

	case int64:
		e.sb.WriteString(strconv.FormatInt(v, 10))

	case uint64:
		e.sb.WriteString(strconv.FormatUint(v, 10))

	case float64:
		e.float(v)

	case string:
		if !utf8.ValidString(v) {
			return ErrScript.Wrap(fmt.Errorf("string %q is not valid UTF-8", v))
		}

		e.sb.WriteString(quote(v))

	case yaml.MapSlice:
		if len(v) == 0 {
			e.sb.WriteString("{}")

			return nil
		}

		e.sb.WriteString("{\n")

		for i, item := range v {
			key, ok := item.Key.(string)
			if !ok {
				key = fmt.Sprint(item.Key)
			}

			e.pad(depth + 1)

			if e.json || !identifierKey.MatchString(key) {
				key = quote(key)
			}

			e.sb.WriteString(key + ": ")

			if err := e.value(item.Value, depth+1); err != nil {
				return err
			}

			e.separator(i == len(v)-1)
		}

		e.pad(depth)
		e.sb.WriteByte('}')

	case []any:
		if len(v) == 0 {
			e.sb.WriteString("[]")

			return nil
		}

		e.sb.WriteString("[\n")

		for i, elem := range v {
			e.pad(depth + 1)

			if err := e.value(elem, depth+1); err != nil {
				return err
			}

			e.separator(i == len(v)-1)
		}

		e.pad(depth)
		e.sb.WriteByte(']')

	default:
		return ErrScript.Wrap(fmt.Errorf("cannot encode value of type %T", v))
	}

	return nil
}

func (e *encoder) float(f float64) {
	switch {
	case math.IsNaN(f):
		e.sb.WriteString(e.nonFinite("NaN"))
	case math.IsInf(f, 1):
		e.sb.WriteString(e.nonFinite("Infinity"))
	case math.IsInf(f, -1):
		e.sb.WriteString(e.nonFinite("-Infinity"))
	default:
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}

		e.sb.WriteString(s)
	}
}

// nonFinite returns s, or null in strict JSON, which cannot represent it.
func (e *encoder) nonFinite(s string) string {
	if e.json {
		return "null"
	}

	return s
}

// separator ends a member or element line. JSON5 output keeps a trailing
// comma after the last one.
func (e *encoder) separator(last bool) {
	if !last || !e.json {
		e.sb.WriteByte(',')
	}

	e.sb.WriteByte('\n')
}

func (e *encoder) pad(depth int) {
	e.sb.WriteString(strings.Repeat(e.indent, depth))
}

// quote returns s as a double-quoted string valid in both JSON and JSON5.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
