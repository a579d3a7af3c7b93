package ast

import (
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/value"
)

// Node is one node of the parsed S-expression tree. Nodes are
// deep-cloneable and carry the source range they were parsed from;
// child ordering within an expression is significant and preserved
// end-to-end.
type Node interface {
	// Range reports the source range the node spans.
	Range() lex.Range
	// Clone deep-copies the node.
	Clone() Node
	// Value converts the node to its literal runtime value. Expressions
	// become lists, identifiers become deferred-lookup markers.
	Value() value.Value
	// String renders the node as re-parseable source text.
	String() string
}

type (
	// ExprNode is a parenthesised, ordered sequence of child nodes.
	ExprNode struct {
		Rng      lex.Range
		Children []Node
	}
	// StringNode is a string literal.
	StringNode struct {
		Rng  lex.Range
		Text string
	}
	// IdentNode is an identifier.
	IdentNode struct {
		Rng  lex.Range
		Text string
	}
	// NumberNode is a numeric literal.
	NumberNode struct {
		Rng lex.Range
		Num float64
	}
)

func (m *ExprNode) Range() lex.Range { return m.Rng }

func (m *ExprNode) Clone() Node {
	children := make([]Node, len(m.Children))
	for i, c := range m.Children {
		children[i] = c.Clone()
	}
	return &ExprNode{Rng: m.Rng, Children: children}
}

func (m *ExprNode) Value() value.Value {
	vals := make([]value.Value, len(m.Children))
	for i, c := range m.Children {
		vals[i] = c.Value()
	}
	return value.NewListValue(vals)
}

func (m *StringNode) Range() lex.Range   { return m.Rng }
func (m *StringNode) Clone() Node        { return &StringNode{Rng: m.Rng, Text: m.Text} }
func (m *StringNode) Value() value.Value { return value.NewStringValue(m.Text) }

func (m *IdentNode) Range() lex.Range   { return m.Rng }
func (m *IdentNode) Clone() Node        { return &IdentNode{Rng: m.Rng, Text: m.Text} }
func (m *IdentNode) Value() value.Value { return value.NewIdentValue(m.Text) }

func (m *NumberNode) Range() lex.Range   { return m.Rng }
func (m *NumberNode) Clone() Node        { return &NumberNode{Rng: m.Rng, Num: m.Num} }
func (m *NumberNode) Value() value.Value { return value.NewNumberValue(m.Num) }

// HeadIdent returns the identifier text of an expression's first child,
// if the node is an expression headed by an identifier.
func HeadIdent(n Node) (string, bool) {
	expr, ok := n.(*ExprNode)
	if !ok || len(expr.Children) == 0 {
		return "", false
	}
	id, ok := expr.Children[0].(*IdentNode)
	if !ok {
		return "", false
	}
	return id.Text, true
}
