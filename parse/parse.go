// Package parse builds S-expression trees from a token stream by
// recursive descent.
package parse

import (
	u "github.com/araddon/gou"
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/lex"
)

var _ = u.EMPTY

// Parser consumes tokens from a Lexer and produces a tree per
// top-level S-expression. Comments are skipped silently; lexer error
// and unknown tokens are reported as syntax errors carrying their
// source range.
type Parser struct {
	lexer *lex.Lexer
	cur   lex.Token
}

func NewParser(lexer *lex.Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// Parse reads the whole token stream and returns one node per
// top-level expression. Errors from nested expressions are chained
// with the range of the enclosing expression.
func (m *Parser) Parse() ([]ast.Node, error) {
	m.next()
	var nodes []ast.Node
	for {
		switch m.cur.Type {
		case lex.TokenLParen, lex.TokenIdentifier, lex.TokenString, lex.TokenNumber:
			start := m.cur.Range.Start
			node, err := m.expr()
			if err != nil {
				end := m.lexer.Range().End
				rng := lex.NewRange(start, end)
				if start == end {
					return nil, errors.Wrapf(err, "expression at %s", rng)
				}
				return nil, errors.Wrapf(err, "expression spanning %s", rng)
			}
			nodes = append(nodes, node)
		case lex.TokenComment:
			m.next()
		case lex.TokenEOF:
			return nodes, nil
		case lex.TokenError:
			return nil, errors.Errorf("%s: lexer error: %s", m.cur.Range, m.cur.Text)
		default:
			return nil, errors.Errorf("%s: %s", m.cur.Range,
				m.unexpected("left paren, identifier, number, string literal, or comment"))
		}
	}
}

func (m *Parser) expr() (ast.Node, error) {
	if !m.isExprStart() {
		return nil, errors.Errorf("%s: %s", m.cur.Range,
			m.unexpected("left paren, identifier, number, or string literal"))
	}

	start := m.cur.Range.Start
	var node ast.Node
	switch m.cur.Type {
	case lex.TokenIdentifier:
		node = &ast.IdentNode{Rng: m.cur.Range, Text: m.cur.Text}
	case lex.TokenString:
		node = &ast.StringNode{Rng: m.cur.Range, Text: m.cur.Text}
	case lex.TokenNumber:
		node = &ast.NumberNode{Rng: m.cur.Range, Num: m.cur.Num}
	case lex.TokenLParen:
		m.next()
		var children []ast.Node
		for {
			if m.cur.Type == lex.TokenComment {
				m.next()
				continue
			}
			if !m.isExprStart() {
				break
			}
			child, err := m.expr()
			if err != nil {
				return nil, errors.Wrap(err, "invalid expression")
			}
			children = append(children, child)
		}
		switch m.cur.Type {
		case lex.TokenError:
			return nil, errors.Errorf("%s: lexer error: %s", m.cur.Range, m.cur.Text)
		case lex.TokenUnknown:
			return nil, errors.Errorf("%s: syntax error: unexpected character %c", m.cur.Range, m.cur.Char)
		case lex.TokenRParen:
			// done
		default:
			return nil, errors.New(
				m.unexpected("left paren, identifier, string literal, number, or right paren"))
		}
		end := m.lexer.Range().End
		node = &ast.ExprNode{Rng: lex.NewRange(start, end), Children: children}
	}
	m.next()
	return node, nil
}

func (m *Parser) isExprStart() bool {
	switch m.cur.Type {
	case lex.TokenLParen, lex.TokenIdentifier, lex.TokenString, lex.TokenNumber:
		return true
	}
	return false
}

func (m *Parser) unexpected(expected string) string {
	return "unexpected " + m.cur.String() + " at " + m.cur.Range.String() + ": expected " + expected
}

func (m *Parser) next() {
	m.cur = m.lexer.Next()
}
