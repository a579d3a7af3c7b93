package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/parse"
)

func parseSource(t *testing.T, src string) []ast.Node {
	t.Helper()
	nodes, err := parse.NewParser(lex.NewLexer(src)).Parse()
	require.NoError(t, err)
	return nodes
}

// structEqual compares two trees ignoring ranges.
func structEqual(a, b ast.Node) bool {
	switch a := a.(type) {
	case *ast.ExprNode:
		be, ok := b.(*ast.ExprNode)
		if !ok || len(a.Children) != len(be.Children) {
			return false
		}
		for i := range a.Children {
			if !structEqual(a.Children[i], be.Children[i]) {
				return false
			}
		}
		return true
	case *ast.StringNode:
		bs, ok := b.(*ast.StringNode)
		return ok && a.Text == bs.Text
	case *ast.IdentNode:
		bi, ok := b.(*ast.IdentNode)
		return ok && a.Text == bi.Text
	case *ast.NumberNode:
		bn, ok := b.(*ast.NumberNode)
		return ok && a.Num == bn.Num
	}
	return false
}

func TestParseAtoms(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, `foo "bar" 42`)
	require.Len(t, nodes, 3)
	assert.Equal(t, "foo", nodes[0].(*ast.IdentNode).Text)
	assert.Equal(t, "bar", nodes[1].(*ast.StringNode).Text)
	assert.Equal(t, 42.0, nodes[2].(*ast.NumberNode).Num)
}

func TestParseNested(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, `(a (b c) "d" 1)`)
	require.Len(t, nodes, 1)
	expr := nodes[0].(*ast.ExprNode)
	require.Len(t, expr.Children, 4)
	inner := expr.Children[1].(*ast.ExprNode)
	require.Len(t, inner.Children, 2)
	assert.Equal(t, "b", inner.Children[0].(*ast.IdentNode).Text)
	assert.Equal(t, "c", inner.Children[1].(*ast.IdentNode).Text)
}

func TestParseEmptyExpr(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, `()`)
	require.Len(t, nodes, 1)
	expr := nodes[0].(*ast.ExprNode)
	assert.Len(t, expr.Children, 0)
}

func TestParseCommentsSkipped(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, "; leading\n(a ; inner\n b)\n; trailing")
	require.Len(t, nodes, 1)
	expr := nodes[0].(*ast.ExprNode)
	require.Len(t, expr.Children, 2)
}

func TestParseMissingRParen(t *testing.T) {
	t.Parallel()

	_, err := parse.NewParser(lex.NewLexer("(a (b)")).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression spanning")
	assert.Contains(t, err.Error(), "expected left paren, identifier, string literal, number, or right paren")
}

func TestParseUnknownCharacter(t *testing.T) {
	t.Parallel()

	_, err := parse.NewParser(lex.NewLexer("(a é)")).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character")
}

func TestParseLexError(t *testing.T) {
	t.Parallel()

	_, err := parse.NewParser(lex.NewLexer(`"unterminated`)).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lexer error")
}

func TestParseExprRange(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, "(a b)")
	expr := nodes[0].(*ast.ExprNode)
	// the range spans from the opening paren to the closing paren
	assert.Equal(t, 0, expr.Rng.Start.Line)
	assert.Equal(t, 4, expr.Rng.End.Src)
}

func TestParsePrintRoundTrip(t *testing.T) {
	t.Parallel()

	src := `(&define inc (n) "bump" (+ n 1)) (let ((x 10) (s "a\nb")) (if (= x 10) "yes" (list 1 2.5 x)))`
	nodes := parseSource(t, src)
	printed := ast.Format(nodes)
	reparsed, err := parse.NewParser(lex.NewLexer(printed)).Parse()
	require.NoError(t, err, "printed source: %s", printed)
	require.Len(t, reparsed, len(nodes))
	for i := range nodes {
		assert.True(t, structEqual(nodes[i], reparsed[i]),
			"tree %d did not round-trip:\n%s", i, printed)
	}
}

func TestParseCloneIsDeep(t *testing.T) {
	t.Parallel()

	nodes := parseSource(t, "(a (b c))")
	clone := nodes[0].Clone().(*ast.ExprNode)
	orig := nodes[0].(*ast.ExprNode)
	require.True(t, structEqual(orig, clone))
	clone.Children[1].(*ast.ExprNode).Children[0] = &ast.IdentNode{Text: "mutated"}
	assert.Equal(t, "b", orig.Children[1].(*ast.ExprNode).Children[0].(*ast.IdentNode).Text)
}
