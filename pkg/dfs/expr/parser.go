package expr

import (
	"math"
	"strconv"

	dfserrors "github.com/randalmurphal/dfs/pkg/dfs/errors"
)

// Binding power, lowest to highest.
const (
	_ int = iota
	precLowest
	precOr      // ||
	precAnd     // &&
	precEquals  // == !=
	precCompare // < <= > >=
	precRange   // ..
	precSum     // + -
	precProduct // * / %
	precPrefix  // -x !x
	precMember  // a.b
)

var precedences = map[TokenType]int{
	TokenOr:      precOr,
	TokenAnd:     precAnd,
	TokenEq:      precEquals,
	TokenNotEq:   precEquals,
	TokenLT:      precCompare,
	TokenLTE:     precCompare,
	TokenGT:      precCompare,
	TokenGTE:     precCompare,
	TokenRange:   precRange,
	TokenPlus:    precSum,
	TokenMinus:   precSum,
	TokenStar:    precProduct,
	TokenSlash:   precProduct,
	TokenPercent: precProduct,
	TokenDot:     precMember,
}

// arrayConstructor is the call name that builds an ArrayLiteral.
const arrayConstructor = "array"

// Parser is a Pratt parser over a token slice.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses src into an expression tree.
// On failure it returns a *errors.Error of kind parse and no tree.
func Parse(src string) (Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, tokens: tokens}

	if p.cur().Type == TokenEOF {
		return nil, p.errorf(p.cur(), "empty expression")
	}
	n, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if tok := p.cur(); tok.Type != TokenEOF {
		if tok.Type == TokenRParen {
			return nil, p.errorf(tok, "unbalanced parentheses: unexpected %s", tok.describe())
		}
		return nil, p.errorf(tok, "unexpected %s after expression", tok.describe())
	}
	return n, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level expression tables.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *Parser) cur() Token { return p.tokens[p.pos] }

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.cur()
	if tok.Type != typ {
		if typ == TokenRParen && tok.Type == TokenEOF {
			return tok, p.errorf(tok, "unbalanced parentheses: expected %s, got end of input", typ)
		}
		return tok, p.errorf(tok, "expected %s, got %s", typ, tok.describe())
	}
	return p.advance(), nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return dfserrors.Parse(tok.Pos, p.src, format, args...)
}

func (p *Parser) parseExpression(prec int) (Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		next, ok := precedences[p.cur().Type]
		if !ok || prec >= next {
			return left, nil
		}
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parsePrefix() (Node, error) {
	tok := p.cur()
	switch tok.Type {
	case TokenInt:
		p.advance()
		i, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.Literal)
		}
		return &Literal{Value: Int(i), At: tok.Pos}, nil
	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid float literal %s", tok.Literal)
		}
		return &Literal{Value: Float(f), At: tok.Pos}, nil
	case TokenString:
		p.advance()
		return &Literal{Value: String(tok.Literal), At: tok.Pos}, nil
	case TokenTrue, TokenFalse:
		p.advance()
		return &Literal{Value: Bool(tok.Type == TokenTrue), At: tok.Pos}, nil
	case TokenIdent:
		if p.peek().Type == TokenLParen {
			return p.parseCall()
		}
		p.advance()
		return &Identifier{Name: tok.Literal, At: tok.Pos}, nil
	case TokenLParen:
		p.advance()
		inner, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenMinus:
		p.advance()
		// The magnitude of MIN_INT does not fit a positive literal.
		if next := p.cur(); next.Type == TokenInt && next.Literal == "9223372036854775808" {
			p.advance()
			return p.continueFrom(&Literal{Value: Int(math.MinInt64), At: tok.Pos})
		}
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "-", Operand: operand, At: tok.Pos}, nil
	case TokenBang:
		p.advance()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "!", Operand: operand, At: tok.Pos}, nil
	case TokenEOF:
		return nil, p.errorf(tok, "unexpected end of input")
	case TokenRParen:
		return nil, p.errorf(tok, "unbalanced parentheses: unexpected %s", tok.describe())
	default:
		return nil, p.errorf(tok, "unexpected %s", tok.describe())
	}
}

// continueFrom applies member accesses binding tighter than a prefix
// operator to an already parsed operand.
func (p *Parser) continueFrom(left Node) (Node, error) {
	var err error
	for p.cur().Type == TokenDot {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseInfix(left Node) (Node, error) {
	tok := p.advance()
	if tok.Type == TokenDot {
		field, err := p.expect(TokenIdent)
		if err != nil {
			return nil, err
		}
		return &MemberAccess{Base: left, Field: field.Literal, At: field.Pos}, nil
	}

	right, err := p.parseExpression(precedences[tok.Type])
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenRange {
		return &Range{Start: left, End: right, At: tok.Pos}, nil
	}
	return &BinaryOp{Op: tok.Literal, Left: left, Right: right, At: tok.Pos}, nil
}

func (p *Parser) parseCall() (Node, error) {
	name := p.advance()
	p.advance() // (

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	if name.Literal == arrayConstructor {
		return &ArrayLiteral{Elements: args, At: name.Pos}, nil
	}
	return &Call{Name: name.Literal, Args: args, At: name.Pos}, nil
}

func (p *Parser) parseArgs() ([]Node, error) {
	args := []Node{}
	if p.cur().Type == TokenRParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch p.cur().Type {
		case TokenComma:
			p.advance()
		case TokenRParen:
			p.advance()
			return args, nil
		case TokenEOF:
			return nil, p.errorf(p.cur(), "unbalanced parentheses: expected ) to close argument list")
		default:
			return nil, p.errorf(p.cur(), "expected , or ) in argument list, got %s", p.cur().describe())
		}
	}
}
