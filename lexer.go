package lispy

import (
	"strings"
	"unicode"
)

// Token is one lexeme: "(", ")", a string literal with its quotes, or a bare word.
type Token struct {
	Text string
	Line int
	Col  int
}

func (t Token) IsString() bool {
	return len(t.Text) >= 2 && t.Text[0] == '"'
}

type lexer struct {
	input []rune
	pos   int
	line  int
	col   int
}

// Lex splits src into tokens. Parens are split out of adjacent words, string
// literals keep their contents verbatim, and ';' starts a line comment. The
// only failure is an unterminated string.
func Lex(src string) ([]Token, error) {
	l := &lexer{input: []rune(src), line: 1, col: 1}
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return tokens, nil
		}
		ch := l.input[l.pos]
		line, col := l.line, l.col
		switch ch {
		case '(', ')':
			l.advance()
			tokens = append(tokens, Token{Text: string(ch), Line: line, Col: col})
		case '"':
			text, err := l.readString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Text: text, Line: line, Col: col})
		default:
			tokens = append(tokens, Token{Text: l.readWord(), Line: line, Col: col})
		}
	}
}

func (l *lexer) advance() rune {
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ';' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
			continue
		}
		if !unicode.IsSpace(ch) {
			return
		}
		l.advance()
	}
}

// readString consumes a quoted literal, escapes included, and returns it
// with both quotes. Escapes are decoded later, during atomization.
func (l *lexer) readString() (string, error) {
	line, col := l.line, l.col
	var buf strings.Builder
	buf.WriteRune(l.advance()) // opening '"'
	for l.pos < len(l.input) {
		ch := l.advance()
		buf.WriteRune(ch)
		switch ch {
		case '\\':
			if l.pos >= len(l.input) {
				return "", &LexError{Line: line, Col: col, Msg: "unterminated string literal"}
			}
			buf.WriteRune(l.advance())
		case '"':
			return buf.String(), nil
		}
	}
	return "", &LexError{Line: line, Col: col, Msg: "unterminated string literal"}
}

func (l *lexer) readWord() string {
	start := l.pos
	for l.pos < len(l.input) && !isDelimiter(l.input[l.pos]) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

func isDelimiter(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';'
}
