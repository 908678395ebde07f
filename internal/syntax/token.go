package syntax

import "fmt"

// TokenType identifies a lexical token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	NAME
	INT
	STRING
	ELLIPSIS
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	COMMA
	COLON
	DOT
	STAR
	DOUBLESTAR
	ASSIGN
	ARROW
	PIPE
	PLUS
	SLASH
)

var tokenNames = map[TokenType]string{
	EOF:        "end of input",
	ILLEGAL:    "illegal character",
	NAME:       "name",
	INT:        "integer",
	STRING:     "string",
	ELLIPSIS:   "`...`",
	LBRACKET:   "`[`",
	RBRACKET:   "`]`",
	LPAREN:     "`(`",
	RPAREN:     "`)`",
	COMMA:      "`,`",
	COLON:      "`:`",
	DOT:        "`.`",
	STAR:       "`*`",
	DOUBLESTAR: "`**`",
	ASSIGN:     "`=`",
	ARROW:      "`->`",
	PIPE:       "`|`",
	PLUS:       "`+`",
	SLASH:      "`/`",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is one lexeme with its 1-based position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Pos
}
