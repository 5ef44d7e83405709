package lexer

import (
	"fmt"
	"github.com/funvibe/anonsum/internal/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '\n':
		tok = newToken(token.NEWLINE, l.ch, l.line, l.column)
	case '=':
		if l.peekChar() == '>' {
			tok = l.twoCharToken(token.FAT_ARROW)
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '>' {
			tok = l.twoCharToken(token.ARROW)
		} else if isDigit(l.peekChar()) {
			line, col := l.line, l.column
			l.readChar()
			tok = l.readNumber()
			tok.Lexeme = "-" + tok.Lexeme
			switch v := tok.Literal.(type) {
			case int64:
				tok.Literal = -v
			case float64:
				tok.Literal = -v
			}
			tok.Line, tok.Column = line, col
			return tok
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	case ':':
		if l.peekChar() == ':' {
			tok = l.twoCharToken(token.COLONCOLON)
		} else {
			tok = newToken(token.COLON, l.ch, l.line, l.column)
		}
	case '|':
		tok = newToken(token.PIPE, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case '.':
		tok = newToken(token.DOT, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '<':
		tok = newToken(token.LT, l.ch, l.line, l.column)
	case '>':
		tok = newToken(token.GT, l.ch, l.line, l.column)
	case '"':
		startLine, startCol := l.line, l.column
		content, err := l.readString()
		if err != nil {
			tok = token.Token{Type: token.ILLEGAL, Lexeme: "\"" + content, Literal: err.Error(), Line: startLine, Column: startCol}
		} else {
			tok = token.Token{Type: token.STRING, Lexeme: strconv.Quote(content), Literal: content, Line: startLine, Column: startCol}
		}
	case '\'':
		startLine, startCol := l.line, l.column
		val, err := l.readCharLiteral()
		if err != nil {
			tok.Type = token.ILLEGAL
			tok.Literal = err.Error()
			tok.Lexeme = "'"
		} else {
			tok.Type = token.CHAR
			tok.Literal = val
			tok.Lexeme = strconv.QuoteRune(val)
		}
		tok.Line = startLine
		tok.Column = startCol
	case 0:
		tok.Lexeme = ""
		tok.Type = token.EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			lexeme := l.readIdentifier()
			tok.Lexeme = lexeme
			tok.Type = determineIdentifierType(lexeme)
			tok.Literal = lexeme
			tok.Line = startLine
			tok.Column = startCol
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) twoCharToken(t token.TokenType) token.Token {
	line, col := l.line, l.column
	ch := l.ch
	l.readChar()
	literal := string(ch) + string(l.ch)
	return token.Token{Type: t, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

// readString reads a double-quoted string with escapes resolved.
// It leaves l.ch on the closing quote.
func (l *Lexer) readString() (string, error) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case '"':
			return sb.String(), nil
		case 0, '\n':
			return sb.String(), fmt.Errorf("unterminated string literal")
		case '\\':
			l.readChar()
			r, err := l.escape('"')
			if err != nil {
				return sb.String(), err
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) escape(quote rune) (rune, error) {
	switch l.ch {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\':
		return '\\', nil
	case quote:
		return quote, nil
	case 'u':
		val, ok := l.readHexEscape(4)
		if !ok {
			return 0, fmt.Errorf("invalid unicode escape sequence \\uXXXX")
		}
		return val, nil
	default:
		return 0, fmt.Errorf("unknown escape sequence \\%c", l.ch)
	}
}

// readHexEscape consumes n hex digits following the escape letter and
// leaves l.ch on the last digit.
func (l *Lexer) readHexEscape(n int) (rune, bool) {
	var val rune
	for i := 0; i < n; i++ {
		if !isHexDigit(l.peekChar()) {
			return 0, false
		}
		l.readChar()
		d, _ := strconv.ParseInt(string(l.ch), 16, 32)
		val = val*16 + rune(d)
	}
	return val, true
}

func (l *Lexer) readCharLiteral() (rune, error) {
	l.readChar() // skip opening '
	if l.ch == '\'' {
		return 0, fmt.Errorf("empty character literal")
	}

	var char rune
	if l.ch == '\\' {
		l.readChar() // consume backslash
		r, err := l.escape('\'')
		if err != nil {
			return 0, err
		}
		char = r
	} else {
		char = l.ch
	}
	l.readChar()
	if l.ch != '\'' {
		return 0, fmt.Errorf("unterminated character literal, expected '")
	}
	// readChar called by NextToken will consume closing '.
	return char, nil
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func determineIdentifierType(ident string) token.TokenType {
	if ident == "_" {
		return token.UNDERSCORE
	}
	return token.LookupIdent(ident)
}

// numberSuffixes are the accepted literal type suffixes.
var numberSuffixes = []string{"i32", "i64", "u8", "f32", "f64"}

func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	isFloat := false

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // .
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	digits := strings.ReplaceAll(l.input[position:l.position], "_", "")

	suffix := ""
	if isLetter(l.ch) {
		start := l.position
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		suffix = l.input[start:l.position]
	}
	lexeme := l.input[position:l.position]

	if suffix != "" {
		known := false
		for _, s := range numberSuffixes {
			if s == suffix {
				known = true
			}
		}
		if !known {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: fmt.Sprintf("invalid number suffix %q", suffix), Line: startLine, Column: startCol}
		}
		if suffix[0] == 'f' {
			isFloat = true
		} else if isFloat {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: fmt.Sprintf("integer suffix %q on a float literal", suffix), Line: startLine, Column: startCol}
		}
	}

	if isFloat {
		val, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: startLine, Column: startCol}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
	}
	val, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "integer literal out of range", Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

// Suffix returns the type suffix of a numeric lexeme ("i64" for "42i64"),
// or "" when it has none.
func Suffix(lexeme string) string {
	for _, s := range numberSuffixes {
		if strings.HasSuffix(lexeme, s) {
			return s
		}
	}
	return ""
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		// Handle comments
		if l.ch == '/' {
			if l.peekChar() == '/' {
				l.readChar() // consume first /
				l.readChar() // consume second /
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar() // consume /
				l.readChar() // consume *
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // consume *
						l.readChar() // consume /
						break
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}
