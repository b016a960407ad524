// Package parser implements the HLSL scanner and the context-sensitive
// recursive-descent parser producing the AST.
package parser

import (
	"fmt"

	"xshade/internal/errors"
	"xshade/internal/source"
	"xshade/token"
)

// Scanner converts source characters into tokens. It runs in two modes: the
// parser mode elides whitespace, newlines, and comments (comments are
// retained for doc propagation), while the preprocessor mode yields them as
// tokens so directives and macro bodies can be reassembled verbatim.
type Scanner struct {
	src     *source.Code
	text    string
	handler *errors.Handler

	pos    int
	line   int
	column int

	startPos    int
	startLine   int
	startColumn int

	comment string // most recent comment, consumed by the parser
	fatal   bool
}

// NewScanner creates a scanner over the given source buffer.
func NewScanner(src *source.Code, handler *errors.Handler) *Scanner {
	return &Scanner{
		src:     src,
		text:    src.Text(),
		handler: handler,
		line:    1,
		column:  1,
	}
}

// Source returns the underlying source buffer.
func (s *Scanner) Source() *source.Code { return s.src }

// TakeComment returns and clears the most recently scanned comment.
func (s *Scanner) TakeComment() string {
	c := s.comment
	s.comment = ""
	return c
}

// Next returns the next token with whitespace and comments elided.
func (s *Scanner) Next() token.Token {
	for {
		tkn := s.scanToken(false)
		switch tkn.Kind {
		case token.WhiteSpace, token.NewLine:
			continue
		case token.Comment:
			s.comment = tkn.Spell
			continue
		}
		return tkn
	}
}

// NextPP returns the next token in preprocessor mode, including whitespace,
// newline, comment, and line-break tokens.
func (s *Scanner) NextPP() token.Token {
	return s.scanToken(true)
}

// Pos returns the current scan position.
func (s *Scanner) Pos() source.Position {
	return source.Position{
		Filename: s.src.Filename(),
		Offset:   s.pos,
		Line:     s.line,
		Column:   s.column,
	}
}

/* ----- Character helpers ----- */

func (s *Scanner) isAtEnd() bool { return s.pos >= len(s.text) }

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.text[s.pos]
}

func (s *Scanner) peekNext() byte {
	if s.pos+1 >= len(s.text) {
		return 0
	}
	return s.text[s.pos+1]
}

func (s *Scanner) advance() byte {
	c := s.text[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.text[s.pos] != expected {
		return false
	}
	s.advance()
	return true
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

/* ----- Token construction ----- */

func (s *Scanner) startToken() {
	s.startPos = s.pos
	s.startLine = s.line
	s.startColumn = s.column
}

func (s *Scanner) makeToken(kind token.Kind) token.Token {
	return token.Token{
		Kind:  kind,
		Spell: s.text[s.startPos:s.pos],
		Pos: source.Position{
			Filename: s.src.Filename(),
			Offset:   s.startPos,
			Line:     s.startLine,
			Column:   s.startColumn,
		},
	}
}

func (s *Scanner) errorToken(msg string, fatal bool) token.Token {
	tkn := s.makeToken(token.Misc)
	severity := errors.Error
	if fatal {
		severity = errors.Fatal
		s.fatal = true
	}
	s.handler.SubmitReport(severity, msg, tkn.Area(), s.src.Line(tkn.Pos.Line), errors.CodeSyntax)
	return tkn
}

/* ----- Scanning ----- */

func (s *Scanner) scanToken(preprocessing bool) token.Token {
	s.startToken()

	if s.fatal || s.isAtEnd() {
		return s.makeToken(token.EndOfStream)
	}

	c := s.advance()
	switch {
	case isDigit(c):
		return s.scanNumber()
	case isAlpha(c):
		return s.scanIdentifier()
	}

	switch c {
	case ' ', '\t', '\r':
		for s.peek() == ' ' || s.peek() == '\t' || s.peek() == '\r' {
			s.advance()
		}
		return s.makeToken(token.WhiteSpace)
	case '\n':
		return s.makeToken(token.NewLine)
	case '\\':
		if preprocessing {
			return s.makeToken(token.LineBreak)
		}
		return s.errorToken("unexpected character '\\'", false)

	case '"':
		return s.scanString()

	case '(':
		return s.makeToken(token.LParen)
	case ')':
		return s.makeToken(token.RParen)
	case '[':
		return s.makeToken(token.LBracket)
	case ']':
		return s.makeToken(token.RBracket)
	case '{':
		return s.makeToken(token.LBrace)
	case '}':
		return s.makeToken(token.RBrace)

	case ';':
		return s.makeToken(token.Semicolon)
	case ':':
		return s.makeToken(token.Colon)
	case ',':
		return s.makeToken(token.Comma)
	case '?':
		return s.makeToken(token.TernaryOp)
	case '~':
		return s.makeToken(token.UnaryOp)

	case '.':
		if s.peek() == '.' && s.peekNext() == '.' {
			s.advance()
			s.advance()
			return s.makeToken(token.VarArg)
		}
		return s.makeToken(token.Dot)

	case '#':
		if s.match('#') {
			return s.makeToken(token.DirectiveConcat)
		}
		return s.scanDirective()

	case '=':
		if s.match('=') {
			return s.makeToken(token.BinaryOp)
		}
		return s.makeToken(token.AssignOp)
	case '!':
		if s.match('=') {
			return s.makeToken(token.BinaryOp)
		}
		return s.makeToken(token.UnaryOp)

	case '+':
		if s.match('+') {
			return s.makeToken(token.UnaryOp)
		}
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)
	case '-':
		if s.match('-') {
			return s.makeToken(token.UnaryOp)
		}
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)

	case '*', '%', '^':
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)

	case '/':
		if s.match('/') {
			return s.scanLineComment()
		}
		if s.match('*') {
			return s.scanBlockComment()
		}
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)

	case '<':
		if s.match('<') {
			if s.match('=') {
				return s.makeToken(token.AssignOp)
			}
			return s.makeToken(token.BinaryOp)
		}
		s.match('=')
		return s.makeToken(token.BinaryOp)
	case '>':
		if s.match('>') {
			if s.match('=') {
				return s.makeToken(token.AssignOp)
			}
			return s.makeToken(token.BinaryOp)
		}
		s.match('=')
		return s.makeToken(token.BinaryOp)

	case '&':
		if s.match('&') {
			return s.makeToken(token.BinaryOp)
		}
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)
	case '|':
		if s.match('|') {
			return s.makeToken(token.BinaryOp)
		}
		if s.match('=') {
			return s.makeToken(token.AssignOp)
		}
		return s.makeToken(token.BinaryOp)
	}

	return s.errorToken(fmt.Sprintf("unexpected character %q", string(rune(c))), false)
}

func (s *Scanner) scanIdentifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	spell := s.text[s.startPos:s.pos]
	tkn := s.makeToken(token.LookupIdent(spell))
	return tkn
}

func (s *Scanner) scanNumber() token.Token {
	// Hex literals
	if s.text[s.startPos] == '0' && (s.peek() == 'x' || s.peek() == 'X') {
		s.advance()
		if !isHexDigit(s.peek()) {
			tkn := s.errorToken("malformed hexadecimal literal", false)
			s.skipToWhitespace()
			return tkn
		}
		for isHexDigit(s.peek()) {
			s.advance()
		}
		return s.makeToken(token.IntLiteral)
	}

	for isDigit(s.peek()) {
		s.advance()
	}

	isFloat := false
	if s.peek() == '.' && isDigit(s.peekNext()) {
		isFloat = true
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	// Exponent part
	if s.peek() == 'e' || s.peek() == 'E' {
		next := s.peekNext()
		if isDigit(next) || ((next == '+' || next == '-') && s.pos+2 < len(s.text) && isDigit(s.text[s.pos+2])) {
			isFloat = true
			s.advance()
			if s.peek() == '+' || s.peek() == '-' {
				s.advance()
			}
			for isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	// Suffix
	switch s.peek() {
	case 'f', 'F', 'h', 'H':
		isFloat = true
		s.advance()
	case 'u', 'U', 'l', 'L':
		s.advance()
	}

	if isAlpha(s.peek()) {
		tkn := s.errorToken("malformed numeric literal", false)
		s.skipToWhitespace()
		return tkn
	}

	if isFloat {
		return s.makeToken(token.FloatLiteral)
	}
	return s.makeToken(token.IntLiteral)
}

// skipToWhitespace resynchronizes after a malformed literal.
func (s *Scanner) skipToWhitespace() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n', ';':
			return
		}
		s.advance()
	}
}

func (s *Scanner) scanString() token.Token {
	for !s.isAtEnd() && s.peek() != '"' && s.peek() != '\n' {
		if s.peek() == '\\' && s.pos+1 < len(s.text) {
			s.advance()
		}
		s.advance()
	}
	if s.isAtEnd() || s.peek() == '\n' {
		return s.errorToken("unterminated string literal", true)
	}
	s.advance()
	return s.makeToken(token.StringLiteral)
}

func (s *Scanner) scanLineComment() token.Token {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.advance()
	}
	return s.makeToken(token.Comment)
}

func (s *Scanner) scanBlockComment() token.Token {
	for {
		if s.isAtEnd() {
			return s.errorToken("unterminated block comment", true)
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			return s.makeToken(token.Comment)
		}
		s.advance()
	}
}

// scanDirective scans '#' IDENT, skipping whitespace between the hash and
// the directive name. The token spelling is the bare directive name.
func (s *Scanner) scanDirective() token.Token {
	for s.peek() == ' ' || s.peek() == '\t' {
		s.advance()
	}
	identStart := s.pos
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	tkn := s.makeToken(token.Directive)
	tkn.Spell = s.text[identStart:s.pos]
	return tkn
}
