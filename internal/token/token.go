package token

import "fmt"

type TokenType string

// Token is a lexical token with its source position.
// Literal holds the decoded value for literals (int64, float64, string, rune).
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"
	CHAR   = "CHAR"

	UNDERSCORE = "_"
	ASSIGN     = "="
	PIPE       = "|"
	FAT_ARROW  = "=>"
	ARROW      = "->"
	COLON      = ":"
	COLONCOLON = "::"
	COMMA      = ","
	DOT        = "."
	LPAREN     = "("
	RPAREN     = ")"
	LBRACE     = "{"
	RBRACE     = "}"
	LT         = "<"
	GT         = ">"

	TYPE    = "TYPE"
	STRUCT  = "STRUCT"
	DERIVES = "DERIVES"
	DERIVE  = "DERIVE"
	FOR     = "FOR"
	IN      = "IN"
	LET     = "LET"
	MATCH   = "MATCH"
	PRINT   = "PRINT"
	FN      = "FN"
	TRUE    = "TRUE"
	FALSE   = "FALSE"
)

var keywords = map[string]TokenType{
	"type":    TYPE,
	"struct":  STRUCT,
	"derives": DERIVES,
	"derive":  DERIVE,
	"for":     FOR,
	"in":      IN,
	"let":     LET,
	"match":   MATCH,
	"print":   PRINT,
	"fn":      FN,
	"true":    TRUE,
	"false":   FALSE,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
