// Package gather recognises preprocessor directives in a parsed tree
// and extracts them into the function and type tables.
package gather

import (
	"github.com/rasp-lang/rasp/ast"
)

// The directive keywords recognised at the top level of a program.
const (
	DefineKeyword  = "&define"
	ExternKeyword  = "&extern"
	TypeKeyword    = "&type"
	IncludeKeyword = "&include"
)

// IsDirective reports whether keyword names a preprocessor directive.
func IsDirective(keyword string) bool {
	return keyword == DefineKeyword ||
		keyword == ExternKeyword ||
		keyword == TypeKeyword ||
		keyword == IncludeKeyword
}

// matchDirective returns the children of a top-level expression whose
// head identifier is the given keyword.
func matchDirective(n ast.Node, keyword string) (*ast.ExprNode, bool) {
	expr, ok := n.(*ast.ExprNode)
	if !ok || len(expr.Children) == 0 {
		return nil, false
	}
	head, ok := ast.HeadIdent(expr)
	if !ok || head != keyword {
		return nil, false
	}
	return expr, true
}
