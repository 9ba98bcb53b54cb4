package lispy

import (
	"errors"
	"strconv"
	"strings"
)

const msgMissingParen = "missing )"

type parser struct {
	tokens []Token
	pos    int
}

// Parse builds a single tree from tokens. Several top-level forms are wrapped
// in (do ...); empty input yields nil.
func Parse(tokens []Token) (Value, error) {
	p := &parser{tokens: tokens}
	var forms []Value
	for p.pos < len(p.tokens) {
		form, err := p.parseExpr()
		if err != nil {
			return Value{}, err
		}
		forms = append(forms, form)
	}
	switch len(forms) {
	case 0:
		return NilVal(), nil
	case 1:
		return forms[0], nil
	default:
		return ListVal(append([]Value{SymbolVal("do")}, forms...)), nil
	}
}

// ParseString lexes and parses src.
func ParseString(src string) (Value, error) {
	tokens, err := Lex(src)
	if err != nil {
		return Value{}, err
	}
	return Parse(tokens)
}

func (p *parser) parseExpr() (Value, error) {
	tok := p.tokens[p.pos]
	switch tok.Text {
	case "(":
		return p.parseList()
	case ")":
		return Value{}, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: "unexpected )"}
	default:
		p.pos++
		return atomize(tok)
	}
}

func (p *parser) parseList() (Value, error) {
	open := p.tokens[p.pos]
	p.pos++ // skip '('
	elems := []Value{}
	for {
		if p.pos >= len(p.tokens) {
			return Value{}, &SyntaxError{Line: open.Line, Col: open.Col, Msg: msgMissingParen}
		}
		if p.tokens[p.pos].Text == ")" {
			p.pos++
			return ListVal(elems), nil
		}
		elem, err := p.parseExpr()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
	}
}

// atomize converts a non-paren token into a leaf value.
func atomize(tok Token) (Value, error) {
	text := tok.Text
	if tok.IsString() {
		return StringVal(unescape(text[1 : len(text)-1])), nil
	}
	if text == "true" {
		return BoolVal(true), nil
	}
	if text == "false" {
		return BoolVal(false), nil
	}
	if strings.ContainsRune(text, '.') {
		if looksDecimal(text) {
			if f, err := strconv.ParseFloat(text, 64); err == nil {
				return FloatVal(f), nil
			}
		}
		return SymbolVal(text), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return IntVal(n), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return Value{}, &SyntaxError{Line: tok.Line, Col: tok.Col, Msg: "integer literal out of range: " + text}
	}
	return SymbolVal(text), nil
}

// looksDecimal rejects forms ParseFloat accepts but the language does not,
// such as hex floats and spelled-out infinities.
func looksDecimal(text string) bool {
	for _, ch := range text {
		switch {
		case ch >= '0' && ch <= '9':
		case ch == '.', ch == '+', ch == '-', ch == 'e', ch == 'E':
		default:
			return false
		}
	}
	return true
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var buf strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '\\' || i+1 >= len(runes) {
			buf.WriteRune(ch)
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			buf.WriteRune('\n')
		case 't':
			buf.WriteRune('\t')
		default:
			buf.WriteRune(runes[i])
		}
	}
	return buf.String()
}
