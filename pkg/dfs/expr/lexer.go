package expr

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenInt
	TokenFloat
	TokenString
	TokenIdent
	TokenTrue
	TokenFalse
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenBang
	TokenEq
	TokenNotEq
	TokenLT
	TokenLTE
	TokenGT
	TokenGTE
	TokenAnd
	TokenOr
	TokenRange
	TokenDot
	TokenComma
	TokenLParen
	TokenRParen
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "end of input",
	TokenInt:     "integer",
	TokenFloat:   "float",
	TokenString:  "string",
	TokenIdent:   "identifier",
	TokenTrue:    "true",
	TokenFalse:   "false",
	TokenPlus:    "+",
	TokenMinus:   "-",
	TokenStar:    "*",
	TokenSlash:   "/",
	TokenPercent: "%",
	TokenBang:    "!",
	TokenEq:      "==",
	TokenNotEq:   "!=",
	TokenLT:      "<",
	TokenLTE:     "<=",
	TokenGT:      ">",
	TokenGTE:     ">=",
	TokenAnd:     "&&",
	TokenOr:      "||",
	TokenRange:   "..",
	TokenDot:     ".",
	TokenComma:   ",",
	TokenLParen:  "(",
	TokenRParen:  ")",
}

// String returns a human readable token name.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with its byte offset in the source.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %q", t.Literal)
	default:
		return fmt.Sprintf("%q", t.Literal)
	}
}

var keywords = map[string]TokenType{
	"true":  TokenTrue,
	"false": TokenFalse,
}

// two-character operators, checked before single characters
var doubleOps = map[string]TokenType{
	"==": TokenEq,
	"!=": TokenNotEq,
	"<=": TokenLTE,
	">=": TokenGTE,
	"&&": TokenAnd,
	"||": TokenOr,
	"..": TokenRange,
}

var singleOps = map[byte]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'!': TokenBang,
	'<': TokenLT,
	'>': TokenGT,
	'.': TokenDot,
	',': TokenComma,
	'(': TokenLParen,
	')': TokenRParen,
}

// Lexer splits an expression into tokens.
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a Lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize returns every token of src, ending with TokenEOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isDigit(c):
		return l.readNumber(), nil
	case c == '"' || c == '\'':
		return l.readString()
	}

	if l.pos+1 < len(l.src) {
		if typ, ok := doubleOps[l.src[l.pos:l.pos+2]]; ok {
			l.pos += 2
			return Token{Type: typ, Literal: l.src[start:l.pos], Pos: start}, nil
		}
	}
	if typ, ok := singleOps[c]; ok {
		l.pos++
		return Token{Type: typ, Literal: string(c), Pos: start}, nil
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentStart(r) {
		return l.readIdent(), nil
	}
	if r == utf8.RuneError && size <= 1 {
		return Token{}, dfserrors.Parse(start, l.src, "invalid UTF-8 input")
	}
	return Token{}, dfserrors.Parse(start, l.src, "unexpected character %q", r)
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

// readNumber reads digits with an optional fraction. A '.' only belongs
// to the number when a digit follows it, so 0..5 lexes as a range.
func (l *Lexer) readNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenFloat, Literal: l.src[start:l.pos], Pos: start}
	}
	return Token{Type: TokenInt, Literal: l.src[start:l.pos], Pos: start}
}

// readString reads a quoted string. Both quote styles behave the same and
// there are no escape sequences.
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++
	for l.pos < len(l.src) {
		if l.src[l.pos] == quote {
			lit := l.src[start+1 : l.pos]
			l.pos++
			return Token{Type: TokenString, Literal: lit, Pos: start}, nil
		}
		l.pos++
	}
	return Token{}, dfserrors.Parse(start, l.src, "unterminated string")
}

func (l *Lexer) readIdent() Token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	lit := l.src[start:l.pos]
	if typ, ok := keywords[lit]; ok {
		return Token{Type: typ, Literal: lit, Pos: start}
	}
	return Token{Type: TokenIdent, Literal: lit, Pos: start}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
