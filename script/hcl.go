package script

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ParseHCL parses src as an HCL configuration. Every node of the result is
// positioned in file.
//
// A body becomes an object whose members are its attributes and unlabeled
// blocks in source order, so these are equivalent:
//
//	vars { major = 1 }
//	vars = { major = 1 }
//
// String templates are kept as text for later interpolation: "v${major}"
// yields the string "v${major}". Any other expression must be a constant.
func ParseHCL(file string, src []byte) (*Node, error) {
	f, diags := hclsyntax.ParseConfig(src, file, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, hclError(file, diags).withSource(src)
	}

	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return nil, ErrParse.Wrap(fmt.Errorf("unexpected HCL body %T", f.Body))
	}

	c := hclConverter{file: file, src: src}

	n, err := c.body(body, Position{File: file, Line: 1, Column: 1})
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return nil, pe.withSource(src)
		}

		return nil, err
	}

	return n, nil
}

type hclConverter struct {
	file string
	src  []byte
}

func (c *hclConverter) body(b *hclsyntax.Body, pos Position) (*Node, error) {
	type entry struct {
		name  string
		rng   hcl.Range
		attr  *hclsyntax.Attribute
		block *hclsyntax.Block
	}

	entries := make([]entry, 0, len(b.Attributes)+len(b.Blocks))

	for _, a := range b.Attributes {
		entries = append(entries, entry{name: a.Name, rng: a.NameRange, attr: a})
	}

	for _, blk := range b.Blocks {
		entries = append(entries, entry{name: blk.Type, rng: blk.TypeRange, block: blk})
	}

	// Attributes are held in a map.
	slices.SortFunc(entries, func(a, b entry) int {
		return a.rng.Start.Byte - b.rng.Start.Byte
	})

	n := &Node{Type: TypeObject, Members: []*Member{}, Pos: pos}

	for _, e := range entries {
		if n.Member(e.name) != nil {
			return nil, c.errorf(e.rng, "duplicate key %q", e.name)
		}

		var (
			value *Node
			err   error
		)

		if e.attr != nil {
			value, err = c.expr(e.attr.Expr)
		} else {
			if len(e.block.Labels) > 0 {
				return nil, c.errorf(e.block.LabelRanges[0], "block %q: labels are not supported", e.name)
			}

			value, err = c.body(e.block.Body, c.position(e.block.OpenBraceRange))
		}

		if err != nil {
			return nil, err
		}

		n.Members = append(n.Members, &Member{
			Key:    e.name,
			KeyPos: c.position(e.rng),
			Value:  value,
		})
	}

	return n, nil
}

func (c *hclConverter) expr(e hclsyntax.Expression) (*Node, error) {
	pos := c.position(e.Range())

	switch v := e.(type) {
	case *hclsyntax.TemplateExpr:
		s, err := c.template(v.Parts)
		if err != nil {
			return nil, err
		}

		return &Node{Type: TypeString, Value: s, Pos: pos}, nil

	case *hclsyntax.TemplateWrapExpr:
		s, err := c.template([]hclsyntax.Expression{v.Wrapped})
		if err != nil {
			return nil, err
		}

		return &Node{Type: TypeString, Value: s, Pos: pos}, nil

	case *hclsyntax.TupleConsExpr:
		n := &Node{Type: TypeArray, Elements: []*Node{}, Pos: pos}

		for _, ev := range v.Exprs {
			elem, err := c.expr(ev)
			if err != nil {
				return nil, err
			}

			n.Elements = append(n.Elements, elem)
		}

		return n, nil

	case *hclsyntax.ObjectConsExpr:
		n := &Node{Type: TypeObject, Members: []*Member{}, Pos: pos}

		for _, item := range v.Items {
			key, err := c.key(item.KeyExpr)
			if err != nil {
				return nil, err
			}

			if n.Member(key) != nil {
				return nil, c.errorf(item.KeyExpr.Range(), "duplicate key %q", key)
			}

			value, err := c.expr(item.ValueExpr)
			if err != nil {
				return nil, err
			}

			n.Members = append(n.Members, &Member{
				Key:    key,
				KeyPos: c.position(item.KeyExpr.Range()),
				Value:  value,
			})
		}

		return n, nil
	}

	// Constants such as -1 or (2) evaluate without a context.
	val, diags := e.Value(nil)
	if diags.HasErrors() {
		return nil, c.errorf(e.Range(),
			"unsupported expression %q; only constants and string templates are allowed",
			c.text(e.Range()))
	}

	return c.value(val, pos)
}

// template returns the text of a string template, writing each
// interpolation back as "${...}".
func (c *hclConverter) template(parts []hclsyntax.Expression) (string, error) {
	var sb strings.Builder

	for _, part := range parts {
		if lit, ok := part.(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.String {
			sb.WriteString(lit.Val.AsString())

			continue
		}

		rng := part.Range()

		if !c.interpolated(rng) {
			return "", c.errorf(rng, "template directives are not supported")
		}

		sb.WriteString("${" + c.text(rng) + "}")
	}

	return sb.String(), nil
}

// interpolated reports whether rng is preceded by "${", ignoring spaces and
// the strip marker.
func (c *hclConverter) interpolated(rng hcl.Range) bool {
	prefix := strings.TrimRight(string(c.src[:rng.Start.Byte]), " \t\r\n~")

	return strings.HasSuffix(prefix, "${")
}

func (c *hclConverter) key(e hclsyntax.Expression) (string, error) {
	if kw := hcl.ExprAsKeyword(e); kw != "" {
		return kw, nil
	}

	val, diags := e.Value(nil)
	if diags.HasErrors() || val.IsNull() || val.Type() != cty.String {
		return "", c.errorf(e.Range(), "object key must be a name or a string")
	}

	return val.AsString(), nil
}

func (c *hclConverter) value(v cty.Value, pos Position) (*Node, error) {
	if !v.IsKnown() {
		return nil, ErrParse.WithPosition(pos).Wrap(errors.New("unknown value"))
	}

	if v.IsNull() {
		return &Node{Type: TypeNull, Pos: pos}, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return &Node{Type: TypeString, Value: v.AsString(), Pos: pos}, nil

	case ty == cty.Bool:
		return &Node{Type: TypeBoolean, Value: v.True(), Pos: pos}, nil

	case ty == cty.Number:
		return &Node{Type: TypeNumeric, Value: number(v.AsBigFloat()), Pos: pos}, nil

	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		n := &Node{Type: TypeArray, Elements: []*Node{}, Pos: pos}

		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			elem, err := c.value(ev, pos)
			if err != nil {
				return nil, err
			}

			n.Elements = append(n.Elements, elem)
		}

		return n, nil

	case ty.IsObjectType() || ty.IsMapType():
		n := &Node{Type: TypeObject, Members: []*Member{}, Pos: pos}

		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()

			value, err := c.value(ev, pos)
			if err != nil {
				return nil, err
			}

			n.Members = append(n.Members, &Member{Key: k.AsString(), KeyPos: pos, Value: value})
		}

		return n, nil

	default:
		return nil, ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("unsupported value of type %s", ty.FriendlyName()))
	}
}

// number returns f as an int when it is integral and fits, otherwise as a
// float64.
func number(f *big.Float) any {
	if f.IsInt() {
		if i, acc := f.Int64(); acc == big.Exact && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
	}

	v, _ := f.Float64()

	return v
}

func (c *hclConverter) text(rng hcl.Range) string {
	return string(c.src[rng.Start.Byte:rng.End.Byte])
}

func (c *hclConverter) position(rng hcl.Range) Position {
	return Position{File: c.file, Line: rng.Start.Line, Column: rng.Start.Column}
}

func (c *hclConverter) errorf(rng hcl.Range, format string, args ...any) *Error {
	e := ErrParse.Wrap(fmt.Errorf(format, args...))
	if rng.Start.Line > 0 {
		e = e.WithPosition(c.position(rng))
	}

	return e
}

// hclError converts the first error of diags.
func hclError(file string, diags hcl.Diagnostics) *Error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}

		msg := d.Summary
		if d.Detail != "" {
			msg += "; " + d.Detail
		}

		e := ErrParse.Wrap(errors.New(msg))
		if d.Subject != nil {
			e = e.WithPosition(Position{
				File:   file,
				Line:   d.Subject.Start.Line,
				Column: d.Subject.Start.Column,
			})
		}

		return e
	}

	return ErrParse.Wrap(diags)
}

// encodeHCL writes doc as an HCL body. Objects of scalars become blocks;
// every other member becomes an attribute.
func encodeHCL(w io.Writer, doc any) error {
	items, ok := doc.(yaml.MapSlice)
	if !ok {
		return ErrScript.Wrap(fmt.Errorf("cannot encode %T as an HCL body", doc))
	}

	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, item := range items {
		name := fmt.Sprint(item.Key)
		if !hclsyntax.ValidIdentifier(name) {
			return ErrScript.Wrap(fmt.Errorf("key %q is not a valid HCL identifier", name))
		}

		if i > 0 {
			body.AppendNewline()
		}

		if m, ok := item.Value.(yaml.MapSlice); ok && blockable(m) {
			if err := setAttributes(body.AppendNewBlock(name, nil).Body(), m, nil); err != nil {
				return err
			}

			continue
		}

		tokens, err := hclTokens(item.Value)
		if err != nil {
			return err
		}

		body.SetAttributeRaw(name, tokens)
	}

	if _, err := w.Write(hclwrite.Format(f.Bytes())); err != nil {
		return ErrIO.Wrap(err)
	}

	return nil
}

// rewriteHCL returns src with every top-level member that differs between
// orig and doc replaced by its value in doc. Comments and layout of the
// unchanged parts are kept.
func rewriteHCL(file string, src []byte, orig, doc any) ([]byte, error) {
	f, diags := hclwrite.ParseConfig(src, file, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, hclError(file, diags).withSource(src)
	}

	items, ok := doc.(yaml.MapSlice)
	if !ok {
		return nil, ErrScript.Wrap(fmt.Errorf("cannot encode %T as an HCL body", doc))
	}

	prev, _ := orig.(yaml.MapSlice)
	body := f.Body()

	for _, item := range items {
		name := fmt.Sprint(item.Key)
		old := lookup(prev, name)

		if reflect.DeepEqual(old, item.Value) {
			continue
		}

		m, isMap := item.Value.(yaml.MapSlice)
		if block := body.FirstMatchingBlock(name, nil); block != nil && isMap && blockable(m) {
			oldMap, _ := old.(yaml.MapSlice)

			if err := setAttributes(block.Body(), m, oldMap); err != nil {
				return nil, err
			}

			continue
		}

		if body.FirstMatchingBlock(name, nil) != nil {
			body.RemoveBlock(body.FirstMatchingBlock(name, nil))
		}

		tokens, err := hclTokens(item.Value)
		if err != nil {
			return nil, err
		}

		body.SetAttributeRaw(name, tokens)
	}

	return hclwrite.Format(f.Bytes()), nil
}

// setAttributes sets each member of m that differs from its value in old as
// an attribute of body.
func setAttributes(body *hclwrite.Body, m, old yaml.MapSlice) error {
	for _, item := range m {
		name := fmt.Sprint(item.Key)

		if old != nil && reflect.DeepEqual(lookup(old, name), item.Value) {
			continue
		}

		tokens, err := hclTokens(item.Value)
		if err != nil {
			return err
		}

		body.SetAttributeRaw(name, tokens)
	}

	return nil
}

// blockable reports whether m can be written as a block: its keys are
// identifiers and its values scalars.
func blockable(m yaml.MapSlice) bool {
	for _, item := range m {
		if k, ok := item.Key.(string); !ok || !hclsyntax.ValidIdentifier(k) {
			return false
		}

		switch item.Value.(type) {
		case yaml.MapSlice, []any:
			return false
		}
	}

	return true
}

func lookup(m yaml.MapSlice, key string) any {
	for _, item := range m {
		if fmt.Sprint(item.Key) == key {
			return item.Value
		}
	}

	return nil
}

// hclTokens returns the HCL expression of a plain value. Object member
// order is kept.
func hclTokens(v any) (hclwrite.Tokens, error) {
	switch v := v.(type) {
	case nil:
		return hclwrite.TokensForValue(cty.NullVal(cty.DynamicPseudoType)), nil
	case bool:
		return hclwrite.TokensForValue(cty.BoolVal(v)), nil
	case int:
		return hclwrite.TokensForValue(cty.NumberIntVal(int64(v))), nil
	case int64:
		return hclwrite.TokensForValue(cty.NumberIntVal(v)), nil
	case uint64:
		return hclwrite.TokensForValue(cty.NumberUIntVal(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrScript.Wrap(fmt.Errorf("cannot encode %v in HCL", v))
		}

		return hclwrite.TokensForValue(cty.NumberFloatVal(v)), nil
	case string:
		return hclwrite.TokensForValue(cty.StringVal(v)), nil

	case yaml.MapSlice:
		attrs := make([]hclwrite.ObjectAttrTokens, 0, len(v))

		for _, item := range v {
			key := fmt.Sprint(item.Key)

			name := hclwrite.TokensForIdentifier(key)
			if !hclsyntax.ValidIdentifier(key) {
				name = hclwrite.TokensForValue(cty.StringVal(key))
			}

			value, err := hclTokens(item.Value)
			if err != nil {
				return nil, err
			}

			attrs = append(attrs, hclwrite.ObjectAttrTokens{Name: name, Value: value})
		}

		return hclwrite.TokensForObject(attrs), nil

	case []any:
		elems := make([]hclwrite.Tokens, 0, len(v))

		for _, e := range v {
			tokens, err := hclTokens(e)
			if err != nil {
				return nil, err
			}

			elems = append(elems, tokens)
		}

		return hclwrite.TokensForTuple(elems), nil

	default:
		return nil, ErrScript.Wrap(fmt.Errorf("cannot encode value of type %T", v))
	}
}
