package token

import "fmt"

type TokenType string

// Token kinds produced by the YAML program decoder. Each expression node keeps
// the token of the mapping key that introduced it, so diagnostics can point at
// the source line and column.
const (
	ILLEGAL TokenType = "ILLEGAL"

	LITERAL TokenType = "LITERAL"
	KEYWORD TokenType = "KEYWORD"
	IDENT   TokenType = "IDENT"

	IF    TokenType = "IF"
	LET   TokenType = "LET"
	LOOP  TokenType = "LOOP"
	RECUR TokenType = "RECUR"
	THROW TokenType = "THROW"
	DO    TokenType = "DO"
	CALL  TokenType = "CALL"
	ANN   TokenType = "ANN"
	TYPE  TokenType = "TYPE"
)

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

// Pos formats the position as line:column, or "?" when unknown.
func (t Token) Pos() string {
	if t.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
