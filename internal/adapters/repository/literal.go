package repository

import (
	"fmt"
	"strings"
)

// decodeListLiteral parses a bracketed list literal whose elements are
// quoted strings (single or double quotes, backslash escapes), integers or
// nested lists, and flattens it in order.
func decodeListLiteral(cell string) ([]string, error) {
	p := &literalParser{src: cell}
	out := make([]string, 0, 2)
	if err := p.list(&out); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing data at offset %d", p.pos)
	}
	return out, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *literalParser) list(out *[]string) error {
	if c, ok := p.peek(); !ok || c != '[' {
		return fmt.Errorf("expected '[' at offset %d", p.pos)
	}
	p.pos++
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return nil
	}

	for {
		p.skipSpace()
		if err := p.element(out); err != nil {
			return err
		}
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return fmt.Errorf("unterminated list")
		}
		p.pos++
		switch c {
		case ',':
		case ']':
			return nil
		default:
			return fmt.Errorf("unexpected %q at offset %d", c, p.pos-1)
		}
	}
}

func (p *literalParser) element(out *[]string) error {
	c, ok := p.peek()
	if !ok {
		return fmt.Errorf("unterminated list")
	}
	switch {
	case c == '[':
		return p.list(out)
	case c == '\'' || c == '"':
		s, err := p.quoted(c)
		if err != nil {
			return err
		}
		*out = append(*out, s)
		return nil
	case c == '-' || (c >= '0' && c <= '9'):
		*out = append(*out, p.integer())
		if (*out)[len(*out)-1] == "-" {
			return fmt.Errorf("bad number at offset %d", p.pos)
		}
		return nil
	default:
		return fmt.Errorf("unsupported element at offset %d", p.pos)
	}
}

func (p *literalParser) quoted(q byte) (string, error) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		p.pos++
		switch {
		case c == q:
			return b.String(), nil
		case c == '\\' && p.pos < len(p.src):
			e := p.src[p.pos]
			p.pos++
			switch e {
			case '\\', '\'', '"':
				b.WriteByte(e)
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *literalParser) integer() string {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	return p.src[start:p.pos]
}
