package gather

import (
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/table"
)

// FunGatherer collects (&define NAME (PARAMS...) [DOCSTRING] BODY*)
// directives into function descriptors. It consults the type table to
// tell a parameter's declared type apart from the next parameter name,
// so the type table must be linked before functions are gathered.
type FunGatherer struct {
	Types      *table.TypeTable
	SourceFile string
}

// Gather scans the top-level nodes for &define directives.
func (m *FunGatherer) Gather(nodes []ast.Node) ([]*table.Function, error) {
	var funs []*table.Function
	for _, n := range nodes {
		expr, ok := matchDirective(n, DefineKeyword)
		if !ok {
			continue
		}
		fun, err := m.visit(expr.Children)
		if err != nil {
			err = errors.Wrap(err, DefineKeyword)
			return nil, errors.Wrapf(err, "builtin expression at %s", expr.Rng)
		}
		funs = append(funs, fun)
	}
	return funs, nil
}

func (m *FunGatherer) visit(exprs []ast.Node) (*table.Function, error) {
	if len(exprs) < 3 {
		return nil, errors.Errorf(
			"%s must be at least 3 items long: I found %d items (%s NAME (PARAMS) ... )",
			DefineKeyword, len(exprs), DefineKeyword)
	}
	name, ok := exprs[1].(*ast.IdentNode)
	if !ok {
		return nil, errors.Errorf("expected identifier for function name, but instead got a %s item", exprs[1])
	}
	params, err := parseParams(exprs[2], m.Types)
	if err != nil {
		return nil, err
	}
	if len(exprs) == 3 {
		return table.Define(name.Text, params, "", nil, m.SourceFile), nil
	}

	// an immediately-following string literal is the docstring
	start := 3
	docstring := ""
	if s, ok := exprs[start].(*ast.StringNode); ok {
		docstring = s.Text
		start++
	}
	var body []ast.Node
	for _, e := range exprs[start:] {
		body = append(body, e.Clone())
	}
	return table.Define(name.Text, params, docstring, body, m.SourceFile), nil
}

// parseParams reads a parameter list. A specifier is an identifier
// optionally followed by an identifier naming a declared type; the
// literal `?` flips all subsequent parameters to optional and may
// appear at most once.
func parseParams(n ast.Node, types *table.TypeTable) ([]table.Param, error) {
	expr, ok := n.(*ast.ExprNode)
	if !ok {
		return nil, errors.Errorf("expected params list, but instead got a %s item", n)
	}
	var (
		params    []table.Param
		optional  bool
		lastTyped = true // no previous param to type yet
	)
	for _, e := range expr.Children {
		id, ok := e.(*ast.IdentNode)
		if !ok {
			return nil, errors.Errorf("expected identifier in params list, but instead got a %s item", e)
		}
		if id.Text == "?" {
			if optional {
				return nil, errors.New("optional parameter marker `?' specified twice in params list")
			}
			optional = true
			continue
		}
		if t, found := types.Get(id.Text); found && !lastTyped {
			params[len(params)-1].Type = t
			lastTyped = true
			continue
		}
		params = append(params, table.AnyParam(id.Text, optional))
		lastTyped = false
	}
	return params, nil
}
