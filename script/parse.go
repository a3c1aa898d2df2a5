package script

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseJSON5 parses src as a JSON5 document. Every node of the result is
// positioned in file.
//
// Syntax errors are [ErrParse] errors carrying the position of the
// offending character and a snippet of the surrounding source.
func ParseJSON5(file string, src []byte) (*Node, error) {
	p := &parser{
		input: src,
		line:  1,
		col:   1,
		file:  file,
	}

	n, err := p.parseDocument()
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return nil, pe.withSource(src)
		}

		return nil, err
	}

	return n, nil
}

// parser holds the parser state.
type parser struct {
	input []byte
	pos   int
	line  int
	col   int
	file  string
}

func (p *parser) parseDocument() (*Node, error) {
	// Byte order mark
	if p.peek() == '\uFEFF' {
		p.advance()
	}

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	if p.eof() {
		return nil, p.errorf("empty document")
	}

	n, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if err := p.skipWhitespaceAndComments(); err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.errorf("unexpected %q after end of document", p.peek())
	}

	return n, nil
}

// parseValue parses any value starting at the current character.
func (p *parser) parseValue() (*Node, error) {
	switch ch := p.peek(); {
	case ch == '{':
		return p.parseObject()

	case ch == '[':
		return p.parseArray()

	case ch == '"' || ch == '\'':
		pos := p.position()

		s, err := p.parseString()
		if err != nil {
			return nil, err
		}

		return &Node{Type: TypeString, Value: s, Pos: pos}, nil

	case ch == '-' || ch == '+' || ch == '.' || ch == 'I' || ch == 'N' ||
		(ch >= '0' && ch <= '9'):
		return p.parseNumber()

	case isIdentifierStart(ch):
		return p.parseLiteral()

	case p.eof():
		return nil, p.errorf("unexpected end of input")

	default:
		return nil, p.errorf("unexpected character %q", ch)
	}
}

// parseObject parses: '{' (Key ':' Value (',' Key ':' Value)* ','?)? '}'.
func (p *parser) parseObject() (*Node, error) {
	n := &Node{Type: TypeObject, Members: []*Member{}, Pos: p.position()}

	p.advance() // skip '{'

	seen := make(map[string]bool)

	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		if p.peek() == '}' {
			p.advance()

			return n, nil
		}

		keyPos := p.position()

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		if seen[key] {
			return nil, ErrParse.WithPosition(keyPos).
				Wrap(fmt.Errorf("duplicate key %q", key))
		}

		seen[key] = true

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		if !p.expect(':') {
			return nil, p.errorf("expected ':' after key %q", key).
				With(slog.String("expected", ":"))
		}

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		n.Members = append(n.Members, &Member{
			Key:    key,
			KeyPos: keyPos,
			Value:  value,
		})

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		switch {
		case p.expect(','):
		case p.peek() == '}':
		case p.eof():
			return nil, p.errorf("unterminated object").
				With(slog.String("expected", "}"))
		default:
			return nil, p.errorf("expected ',' or '}', found %q", p.peek())
		}
	}
}

// parseArray parses: '[' (Value (',' Value)* ','?)? ']'.
func (p *parser) parseArray() (*Node, error) {
	n := &Node{Type: TypeArray, Elements: []*Node{}, Pos: p.position()}

	p.advance() // skip '['

	for {
		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		if p.peek() == ']' {
			p.advance()

			return n, nil
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		n.Elements = append(n.Elements, value)

		if err := p.skipWhitespaceAndComments(); err != nil {
			return nil, err
		}

		switch {
		case p.expect(','):
		case p.peek() == ']':
		case p.eof():
			return nil, p.errorf("unterminated array").
				With(slog.String("expected", "]"))
		default:
			return nil, p.errorf("expected ',' or ']', found %q", p.peek())
		}
	}
}

// parseKey parses a quoted string or an identifier.
func (p *parser) parseKey() (string, error) {
	switch ch := p.peek(); {
	case ch == '"' || ch == '\'':
		return p.parseString()

	case isIdentifierStart(ch):
		return p.parseIdentifier(), nil

	case p.eof():
		return "", p.errorf("unterminated object").
			With(slog.String("expected", "}"))

	default:
		return "", p.errorf("invalid key character %q", ch)
	}
}

// parseLiteral parses the keywords true, false, and null.
func (p *parser) parseLiteral() (*Node, error) {
	pos := p.position()

	switch word := p.parseIdentifier(); word {
	case "true":
		return &Node{Type: TypeBoolean, Value: true, Pos: pos}, nil
	case "false":
		return &Node{Type: TypeBoolean, Value: false, Pos: pos}, nil
	case "null":
		return &Node{Type: TypeNull, Pos: pos}, nil
	default:
		return nil, ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("unexpected identifier %q", word))
	}
}

// parseIdentifier consumes an identifier. The caller has checked that the
// current character can start one.
func (p *parser) parseIdentifier() string {
	start := p.pos

	p.advance()

	for !p.eof() && isIdentifierContinue(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

// parseString parses a single- or double-quoted string with JSON5 escapes.
func (p *parser) parseString() (string, error) {
	quote := p.peek()
	p.advance()

	var sb strings.Builder

	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}

		ch := p.peek()

		switch ch {
		case quote:
			p.advance()

			return sb.String(), nil

		case '\n', '\r':
			return "", p.errorf("unterminated string")

		case '\\':
			p.advance()

			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}

		default:
			if ch == utf8.RuneError && p.invalidUTF8() {
				return "", p.errorf("invalid UTF-8 in string")
			}

			sb.WriteRune(ch)
			p.advance()
		}
	}
}

func (p *parser) parseEscape(sb *strings.Builder) error {
	if p.eof() {
		return p.errorf("unterminated string")
	}

	ch := p.peek()
	pos := p.position()

	p.advance()

	switch ch {
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'v':
		sb.WriteByte('\v')

	case '0':
		if isDigit(p.peek()) {
			return ErrParse.WithPosition(pos).
				Wrap(errors.New("octal escapes are not allowed"))
		}

		sb.WriteByte(0)

	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("invalid escape \\%c", ch))

	case 'x':
		r, err := p.parseHex(2)
		if err != nil {
			return err
		}

		sb.WriteRune(r)

	case 'u':
		r, err := p.parseHex(4)
		if err != nil {
			return err
		}

		if utf16IsHighSurrogate(r) && p.peekN(2) == `\u` {
			save := *p

			p.advance()
			p.advance()

			lo, err := p.parseHex(4)
			if err == nil && utf16IsLowSurrogate(lo) {
				r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
			} else {
				*p = save
			}
		}

		sb.WriteRune(r)

	case '\r':
		// Line continuation; \r\n counts as one terminator.
		p.expect('\n')

	case '\n', '\u2028', '\u2029':
		// Line continuation.

	default:
		sb.WriteRune(ch)
	}

	return nil
}

func (p *parser) parseHex(digits int) (rune, error) {
	pos := p.position()

	if p.pos+digits > len(p.input) {
		return 0, ErrParse.WithPosition(pos).
			Wrap(errors.New("truncated hexadecimal escape"))
	}

	v, err := strconv.ParseUint(string(p.input[p.pos:p.pos+digits]), 16, 32)
	if err != nil {
		return 0, ErrParse.WithPosition(pos).
			Wrap(errors.New("invalid hexadecimal escape"))
	}

	for range digits {
		p.advance()
	}

	return rune(v), nil
}

// parseNumber parses decimal, hexadecimal, Infinity, and NaN numbers with an
// optional sign. Integral values that fit in an int are stored as int.
func (p *parser) parseNumber() (*Node, error) {
	pos := p.position()
	start := p.pos

	sign := 1.0

	switch p.peek() {
	case '-':
		sign = -1

		p.advance()
	case '+':
		p.advance()
	}

	num := func(v any) (*Node, error) {
		if isIdentifierContinue(p.peek()) || p.peek() == '.' {
			return nil, ErrParse.WithPosition(pos).
				Wrap(fmt.Errorf("invalid number %q", p.span(start)+string(p.peek())))
		}

		return &Node{Type: TypeNumeric, Value: v, Pos: pos}, nil
	}

	switch {
	case p.peekN(8) == "Infinity":
		p.pos += 8
		p.col += 8

		return num(math.Inf(int(sign)))

	case p.peekN(3) == "NaN":
		p.pos += 3
		p.col += 3

		return num(math.NaN())

	case p.peekN(2) == "0x" || p.peekN(2) == "0X":
		p.advance()
		p.advance()

		digits := p.pos
		for isHexDigit(p.peek()) {
			p.advance()
		}

		u, err := strconv.ParseUint(string(p.input[digits:p.pos]), 16, 64)
		if err != nil {
			return nil, ErrParse.WithPosition(pos).
				Wrap(fmt.Errorf("invalid number %q", p.span(start)))
		}

		if u <= math.MaxInt {
			return num(int(sign) * int(u))
		}

		return num(sign * float64(u))
	}

	intStart := p.pos
	for isDigit(p.peek()) {
		p.advance()
	}

	intDigits := p.pos - intStart
	integral := true

	if intDigits > 1 && p.input[intStart] == '0' {
		return nil, ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("invalid number %q: leading zero", p.span(start)))
	}

	fracDigits := 0

	if p.peek() == '.' {
		integral = false

		p.advance()

		for isDigit(p.peek()) {
			p.advance()
			fracDigits++
		}
	}

	if intDigits == 0 && fracDigits == 0 {
		return nil, ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("invalid number %q", p.span(start)))
	}

	if p.peek() == 'e' || p.peek() == 'E' {
		integral = false

		p.advance()

		if p.peek() == '+' || p.peek() == '-' {
			p.advance()
		}

		expStart := p.pos
		for isDigit(p.peek()) {
			p.advance()
		}

		if p.pos == expStart {
			return nil, ErrParse.WithPosition(pos).
				Wrap(fmt.Errorf("invalid number %q: missing exponent", p.span(start)))
		}
	}

	text := p.span(start)

	if integral {
		if i, err := strconv.Atoi(strings.TrimPrefix(text, "+")); err == nil {
			return num(i)
		}
	}

	f, err := strconv.ParseFloat(strings.TrimPrefix(text, "+"), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, ErrParse.WithPosition(pos).
			Wrap(fmt.Errorf("invalid number %q", text))
	}

	return num(f)
}

// Helper methods

func (p *parser) errorf(format string, args ...any) *Error {
	return ErrParse.WithPosition(p.position()).Wrap(fmt.Errorf(format, args...))
}

func (p *parser) span(start int) string {
	return string(p.input[start:p.pos])
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

// invalidUTF8 reports whether the input at the current position is not a
// valid UTF-8 encoding.
func (p *parser) invalidUTF8() bool {
	r, size := utf8.DecodeRune(p.input[p.pos:])

	return r == utf8.RuneError && size <= 1
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		File:   p.file,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespaceAndComments() error {
	for !p.eof() {
		switch ch := p.peek(); {
		case unicode.IsSpace(ch) || ch == '\uFEFF':
			p.advance()

		case p.peekN(2) == "//":
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}

		case p.peekN(2) == "/*":
			start := p.position()

			p.advance()
			p.advance()

			for p.peekN(2) != "*/" {
				if p.eof() {
					return ErrParse.WithPosition(start).
						Wrap(errors.New("unterminated block comment"))
				}

				p.advance()
			}

			p.advance()
			p.advance()

		default:
			return nil
		}
	}

	return nil
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || unicode.Is(unicode.Nl, r) ||
		r == '_' || r == '$'
}

func isIdentifierContinue(r rune) bool {
	return isIdentifierStart(r) || unicode.In(r,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
	) || r == '\u200C' || r == '\u200D'
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func utf16IsHighSurrogate(r rune) bool { return r >= 0xD800 && r < 0xDC00 }

func utf16IsLowSurrogate(r rune) bool { return r >= 0xDC00 && r < 0xE000 }
