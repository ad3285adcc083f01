package query

import (
	"strings"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
)

// Parser implements the §4.6 EBNF grammar via recursive descent over a
// single token of lookahead.
type Parser struct {
	lex  *Lexer
	tok  Token
	peek *Token
}

// Parse compiles a query string into an Expr. Parse errors carry a byte
// offset per §4.6/§7.
func Parse(src string) (Expr, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != TokEOF {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("unexpected trailing input"))
	}
	return expr, nil
}

func (p *Parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = LogicExpr{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == TokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = LogicExpr{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.tok.Kind == TokNot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NotExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	if p.tok.Kind == TokLParen {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.Kind != TokRParen {
			return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected ')'"))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return p.parsePredicate()
}

func (p *Parser) parsePredicate() (Expr, error) {
	offset := p.tok.Offset
	qualifier, attr, err := p.parseQualRef()
	if err != nil {
		return nil, err
	}

	var accessor *Accessor
	if p.tok.Kind == TokLBracket {
		accessor, err = p.parseIndexAccessor()
		if err != nil {
			return nil, err
		}
	} else if p.tok.Kind == TokDot {
		accessor, err = p.parseMethodAccessor()
		if err != nil {
			return nil, err
		}
	}

	if p.tok.Kind != TokOp && p.tok.Kind != TokIn {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected comparison operator"))
	}
	op := Operator(p.tok.Text)
	if p.tok.Kind == TokIn {
		op = OpIn
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	return Predicate{
		Qualifier: qualifier,
		Attribute: attr,
		Accessor:  accessor,
		Operator:  op,
		Literal:   lit,
		Offset:    offset,
	}, nil
}

// parseQualRef parses `("$" qualifier ".")? identifier`.
func (p *Parser) parseQualRef() (Qualifier, string, error) {
	qualifier := QualSelf
	if p.tok.Kind == TokDollar {
		if err := p.advance(); err != nil {
			return "", "", err
		}
		if p.tok.Kind != TokIdent {
			return "", "", ferrors.QueryError("Parse", p.tok.Offset, strErr("expected qualifier after '$'"))
		}
		name := strings.ToLower(p.tok.Text)
		if err := p.advance(); err != nil {
			return "", "", err
		}
		if name == "any" || name == "both" {
			if p.tok.Kind == TokDot {
				// could be "any.neighbor"/"both.neighbor" or "any.<attr>" which is invalid here;
				// lookahead: qualifier dot is only valid immediately followed by "neighbor"
				savedLex := *p.lex
				savedTok := p.tok
				if err := p.advance(); err != nil {
					return "", "", err
				}
				if p.tok.Kind == TokIdent && strings.ToLower(p.tok.Text) == "neighbor" {
					name = name + ".neighbor"
					if err := p.advance(); err != nil {
						return "", "", err
					}
				} else {
					*p.lex = savedLex
					p.tok = savedTok
				}
			}
		}
		qualifier = Qualifier(name)
		if p.tok.Kind != TokDot {
			return "", "", ferrors.QueryError("Parse", p.tok.Offset, strErr("expected '.' after qualifier"))
		}
		if err := p.advance(); err != nil {
			return "", "", err
		}
	}
	if p.tok.Kind != TokIdent {
		return "", "", ferrors.QueryError("Parse", p.tok.Offset, strErr("expected attribute name"))
	}
	attr := p.tok.Text
	if err := p.advance(); err != nil {
		return "", "", err
	}
	return qualifier, attr, nil
}

func (p *Parser) parseIndexAccessor() (*Accessor, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	if p.tok.Kind != TokNumber {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected integer index"))
	}
	idx := int(p.tok.Num)
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != TokRBracket {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected ']'"))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return &Accessor{Kind: AccessorIndex, Index: idx}, nil
}

func (p *Parser) parseMethodAccessor() (*Accessor, error) {
	if err := p.advance(); err != nil { // consume '.'
		return nil, err
	}
	if p.tok.Kind != TokIdent {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected accessor name"))
	}
	name := strings.ToLower(p.tok.Text)
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch AccessorKind(name) {
	case AccessorAny, AccessorAll, AccessorMin, AccessorMax, AccessorAvg, AccessorMedian, AccessorStd, AccessorAbs:
		return &Accessor{Kind: AccessorKind(name)}, nil
	case AccessorDot:
		if p.tok.Kind != TokLParen {
			return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected '(' after dot"))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		acc := &Accessor{Kind: AccessorDot}
		if p.tok.Kind == TokIdent {
			acc.DotAttr = p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
		} else if p.tok.Kind == TokLBracket {
			nums, err := p.parseNumList()
			if err != nil {
				return nil, err
			}
			acc.DotLiteral = nums
		} else {
			return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected identifier or number list in dot()"))
		}
		if p.tok.Kind != TokRParen {
			return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected ')'"))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return acc, nil
	default:
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("unknown accessor: "+name))
	}
}

func (p *Parser) parseNumList() ([]float64, error) {
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	var nums []float64
	for {
		if p.tok.Kind != TokNumber {
			return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected number"))
		}
		nums = append(nums, p.tok.Num)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.Kind != TokRBracket {
		return nil, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected ']'"))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return nums, nil
}

// parseLiteral parses `number | string | "(" (number|string) ("," ...)* ")"`.
func (p *Parser) parseLiteral() (Literal, error) {
	switch p.tok.Kind {
	case TokNumber:
		v := p.tok.Num
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitNumber, Number: v}, nil
	case TokString:
		v := p.tok.Text
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		return Literal{Kind: LitString, Str: v}, nil
	case TokLParen:
		return p.parseLiteralList()
	default:
		return Literal{}, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected literal"))
	}
}

func (p *Parser) parseLiteralList() (Literal, error) {
	if err := p.advance(); err != nil { // consume '('
		return Literal{}, err
	}
	var nums []float64
	var strs []string
	isString := p.tok.Kind == TokString
	for {
		switch p.tok.Kind {
		case TokNumber:
			if isString {
				return Literal{}, ferrors.QueryError("Parse", p.tok.Offset, strErr("IN list must be homogeneous"))
			}
			nums = append(nums, p.tok.Num)
		case TokString:
			if !isString {
				return Literal{}, ferrors.QueryError("Parse", p.tok.Offset, strErr("IN list must be homogeneous"))
			}
			strs = append(strs, p.tok.Text)
		default:
			return Literal{}, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected literal in list"))
		}
		if err := p.advance(); err != nil {
			return Literal{}, err
		}
		if p.tok.Kind == TokComma {
			if err := p.advance(); err != nil {
				return Literal{}, err
			}
			continue
		}
		break
	}
	if p.tok.Kind != TokRParen {
		return Literal{}, ferrors.QueryError("Parse", p.tok.Offset, strErr("expected ')'"))
	}
	if err := p.advance(); err != nil {
		return Literal{}, err
	}
	if isString {
		return Literal{Kind: LitStringList, Strs: strs}, nil
	}
	return Literal{Kind: LitNumberList, Numbers: nums}, nil
}
