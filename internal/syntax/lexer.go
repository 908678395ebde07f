package syntax

import (
	"unicode"
	"unicode/utf8"
)

// Lexer splits one line of source into tokens.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.readPosition++
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token; past the end it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	if l.ch == '#' {
		for l.ch != 0 && l.ch != '\n' {
			l.readChar()
		}
		l.skipWhitespace()
	}
	pos := Pos{Line: l.line, Col: l.column}
	simple := func(t TokenType, lit string) Token {
		for range lit {
			l.readChar()
		}
		return Token{Type: t, Literal: lit, Pos: pos}
	}

	switch l.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}
	case '[':
		return simple(LBRACKET, "[")
	case ']':
		return simple(RBRACKET, "]")
	case '(':
		return simple(LPAREN, "(")
	case ')':
		return simple(RPAREN, ")")
	case ',':
		return simple(COMMA, ",")
	case ':':
		return simple(COLON, ":")
	case '=':
		return simple(ASSIGN, "=")
	case '|':
		return simple(PIPE, "|")
	case '+':
		return simple(PLUS, "+")
	case '/':
		return simple(SLASH, "/")
	case '-':
		if l.peekChar() == '>' {
			return simple(ARROW, "->")
		}
	case '*':
		if l.peekChar() == '*' {
			return simple(DOUBLESTAR, "**")
		}
		return simple(STAR, "*")
	case '.':
		if l.peekChar() == '.' {
			if l.readPosition+1 < len(l.input) && l.input[l.readPosition+1] == '.' {
				return simple(ELLIPSIS, "...")
			}
		}
		return simple(DOT, ".")
	case '"', '\'':
		return l.readString(pos)
	}

	switch {
	case isLetter(l.ch):
		start := l.position
		for isLetter(l.ch) || unicode.IsDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: NAME, Literal: l.input[start:l.position], Pos: pos}
	case unicode.IsDigit(l.ch):
		start := l.position
		for unicode.IsDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return Token{Type: INT, Literal: l.input[start:l.position], Pos: pos}
	}
	lit := string(l.ch)
	l.readChar()
	return Token{Type: ILLEGAL, Literal: lit, Pos: pos}
}

// readString reads a quoted string; the literal keeps its quotes.
func (l *Lexer) readString(pos Pos) Token {
	quote := l.ch
	start := l.position
	l.readChar()
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: ILLEGAL, Literal: l.input[start:l.position], Pos: pos}
		}
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar()
	return Token{Type: STRING, Literal: l.input[start:l.position], Pos: pos}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}
