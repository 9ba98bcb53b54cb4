package lispy

import (
	"errors"
	"fmt"
	"strings"
)

// LexError is returned by Lex for an unterminated string literal.
// Line and Col are 1-based.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// SyntaxError is returned by Parse for unbalanced parentheses and
// unrepresentable literals.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("syntax error: %s", e.Msg)
	}
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// SemanticError covers every meaning-level failure raised while evaluating:
// undefined names, redefinition, arity, operand types, ranges and malformed
// special forms.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string {
	return e.Msg
}

func semanticf(format string, args ...any) error {
	return &SemanticError{Msg: fmt.Sprintf(format, args...)}
}

// IsSemantic reports whether err is (or wraps) a SemanticError.
func IsSemantic(err error) bool {
	var se *SemanticError
	return errors.As(err, &se)
}

// IsIncomplete reports whether err means the source ended inside a list or a
// string, so that more input could complete it.
func IsIncomplete(err error) bool {
	var le *LexError
	if errors.As(err, &le) {
		return true
	}
	var se *SyntaxError
	return errors.As(err, &se) && se.Msg == msgMissingParen
}

// WrapErrorWithSource renders lex and syntax errors as a snippet of src with a
// caret under the offending column. Other errors are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	var le *LexError
	if errors.As(err, &le) {
		return errors.New(snippet(src, "LEXICAL ERROR", le.Line, le.Col, le.Msg))
	}
	var se *SyntaxError
	if errors.As(err, &se) && se.Line > 0 {
		return errors.New(snippet(src, "SYNTAX ERROR", se.Line, se.Col, se.Msg))
	}
	return err
}

// snippet shows at most one line of context on each side of line.
func snippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
