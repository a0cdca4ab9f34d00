package cmakedoc

import (
	"fmt"
	"strings"

	"github.com/compozy/testproject/engine/core"
)

// NodeKind distinguishes top-level CMake nodes
type NodeKind int

const (
	NodeCommand NodeKind = iota
	NodeComment
)

// Arg is a single command argument. Quoted arguments keep their quotes in
// Value; bracket arguments hold only their content.
type Arg struct {
	Value   string
	Quoted  bool
	Bracket bool
	Line    int
}

// Node is a command invocation or a comment
type Node struct {
	Kind       NodeKind
	Identifier string // commands only
	Args       []Arg  // commands only
	Text       string // comments only: "# ..." for line comments, content for bracket comments
	Bracketed  bool   // comments only
	OwnLine    bool   // comments only: nothing but whitespace precedes it on its line
	Line       int
	EndLine    int
}

// Values returns the raw argument values
func (n *Node) Values() []string {
	out := make([]string, len(n.Args))
	for i, a := range n.Args {
		out[i] = a.Value
	}
	return out
}

type lexer struct {
	src      string
	pos      int
	line     int
	lastLine int // line on which the last command ended
	nodes    []Node
}

const utf8BOM = "\xef\xbb\xbf"

// Lex tokenises CMake source into commands and comments
func Lex(src string) ([]Node, error) {
	src = strings.TrimPrefix(src, utf8BOM)
	lx := &lexer{src: src, line: 1}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.nodes, nil
}

func (lx *lexer) errorf(line int, format string, args ...any) error {
	return core.NewError(fmt.Errorf(format, args...), core.ErrorCodeParseFailure, map[string]any{"line": line})
}

func (lx *lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) peek() byte { return lx.src[lx.pos] }

func (lx *lexer) advance() byte {
	c := lx.src[lx.pos]
	lx.pos++
	if c == '\n' {
		lx.line++
	}
	return c
}

func (lx *lexer) skipSpace() {
	for !lx.eof() {
		switch lx.peek() {
		case ' ', '\t', '\r', '\n':
			lx.advance()
		default:
			return
		}
	}
}

func (lx *lexer) run() error {
	for {
		lx.skipSpace()
		if lx.eof() {
			return nil
		}
		c := lx.peek()
		switch {
		case c == '#':
			if err := lx.comment(); err != nil {
				return err
			}
		case isIdentStart(c):
			if err := lx.command(); err != nil {
				return err
			}
		default:
			return lx.errorf(lx.line, "unexpected character %q at line %d", c, lx.line)
		}
	}
}

func (lx *lexer) comment() error {
	start := lx.line
	ownLine := start != lx.lastLine
	lx.advance() // '#'
	if level, ok := lx.bracketOpen(); ok {
		content, err := lx.bracketBody(level, start, "comment")
		if err != nil {
			return err
		}
		lx.nodes = append(lx.nodes, Node{
			Kind: NodeComment, Text: content, Bracketed: true, OwnLine: ownLine, Line: start, EndLine: lx.line,
		})
		return nil
	}
	begin := lx.pos - 1
	for !lx.eof() && lx.peek() != '\n' {
		lx.pos++
	}
	lx.nodes = append(lx.nodes, Node{
		Kind: NodeComment, Text: strings.TrimRight(lx.src[begin:lx.pos], "\r"), OwnLine: ownLine, Line: start, EndLine: start,
	})
	return nil
}

// bracketOpen consumes "[", "="*, "[" and reports the number of '='
func (lx *lexer) bracketOpen() (int, bool) {
	if lx.eof() || lx.peek() != '[' {
		return 0, false
	}
	i := lx.pos + 1
	for i < len(lx.src) && lx.src[i] == '=' {
		i++
	}
	if i >= len(lx.src) || lx.src[i] != '[' {
		return 0, false
	}
	level := i - lx.pos - 1
	for lx.pos <= i {
		lx.advance()
	}
	return level, true
}

func (lx *lexer) bracketBody(level, start int, what string) (string, error) {
	closer := "]" + strings.Repeat("=", level) + "]"
	idx := strings.Index(lx.src[lx.pos:], closer)
	if idx < 0 {
		return "", lx.errorf(start, "unterminated bracket %s starting at line %d", what, start)
	}
	content := lx.src[lx.pos : lx.pos+idx]
	end := lx.pos + idx + len(closer)
	for lx.pos < end {
		lx.advance()
	}
	// A newline directly after the opening bracket is not part of the content.
	content = strings.TrimPrefix(content, "\r\n")
	content = strings.TrimPrefix(content, "\n")
	return content, nil
}

func (lx *lexer) command() error {
	start := lx.line
	begin := lx.pos
	for !lx.eof() && isIdentPart(lx.peek()) {
		lx.pos++
	}
	ident := lx.src[begin:lx.pos]

	lx.skipSpace()
	if lx.eof() || lx.peek() != '(' {
		return lx.errorf(start, "expected '(' after %s at line %d", ident, start)
	}
	lx.advance()

	args, err := lx.arguments(ident, start)
	if err != nil {
		return err
	}
	lx.nodes = append(lx.nodes, Node{
		Kind: NodeCommand, Identifier: ident, Args: args, Line: start, EndLine: lx.line,
	})
	lx.lastLine = lx.line
	return nil
}

func (lx *lexer) arguments(ident string, start int) ([]Arg, error) {
	var args []Arg
	depth := 1
	for {
		lx.skipSpace()
		if lx.eof() {
			return nil, lx.errorf(start, "unterminated argument list for %s starting at line %d", ident, start)
		}
		line := lx.line
		switch c := lx.peek(); {
		case c == '#':
			lx.advance()
			if level, ok := lx.bracketOpen(); ok {
				if _, err := lx.bracketBody(level, line, "comment"); err != nil {
					return nil, err
				}
				continue
			}
			for !lx.eof() && lx.peek() != '\n' {
				lx.pos++
			}
		case c == '(':
			lx.advance()
			depth++
			args = append(args, Arg{Value: "(", Line: line})
		case c == ')':
			lx.advance()
			depth--
			if depth == 0 {
				return args, nil
			}
			args = append(args, Arg{Value: ")", Line: line})
		case c == '"':
			v, err := lx.quoted(line)
			if err != nil {
				return nil, err
			}
			args = append(args, Arg{Value: v, Quoted: true, Line: line})
		case c == '[':
			if level, ok := lx.bracketOpen(); ok {
				v, err := lx.bracketBody(level, line, "argument")
				if err != nil {
					return nil, err
				}
				args = append(args, Arg{Value: v, Bracket: true, Line: line})
				continue
			}
			args = append(args, Arg{Value: lx.unquoted(), Line: line})
		default:
			args = append(args, Arg{Value: lx.unquoted(), Line: line})
		}
	}
}

func (lx *lexer) quoted(line int) (string, error) {
	begin := lx.pos
	lx.advance() // opening quote
	for !lx.eof() {
		switch lx.advance() {
		case '\\':
			if !lx.eof() {
				lx.advance()
			}
		case '"':
			return lx.src[begin:lx.pos], nil
		}
	}
	return "", lx.errorf(line, "unterminated quoted argument starting at line %d", line)
}

func (lx *lexer) unquoted() string {
	begin := lx.pos
	for !lx.eof() {
		c := lx.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '(' || c == ')' {
			break
		}
		if c == '\\' && lx.pos+1 < len(lx.src) {
			lx.advance()
		}
		lx.advance()
	}
	return lx.src[begin:lx.pos]
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}
