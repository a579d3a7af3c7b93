package gather

import (
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/table"
)

// ExternGatherer collects (&extern NAME (PARAMS...) [DOCSTRING])
// directives into external function descriptors with empty bodies.
type ExternGatherer struct {
	Types      *table.TypeTable
	SourceFile string
}

// Gather scans the top-level nodes for &extern directives.
func (m *ExternGatherer) Gather(nodes []ast.Node) ([]*table.Function, error) {
	var funs []*table.Function
	for _, n := range nodes {
		expr, ok := matchDirective(n, ExternKeyword)
		if !ok {
			continue
		}
		fun, err := m.visit(expr.Children)
		if err != nil {
			err = errors.Wrap(err, ExternKeyword)
			return nil, errors.Wrapf(err, "builtin expression at %s", expr.Rng)
		}
		funs = append(funs, fun)
	}
	return funs, nil
}

func (m *ExternGatherer) visit(exprs []ast.Node) (*table.Function, error) {
	if len(exprs) < 3 || len(exprs) > 4 {
		return nil, errors.Errorf(
			"%s must be at least 3 and at most 4 items long: I found %d items (%s NAME (PARAMS) [DOCSTRING])",
			ExternKeyword, len(exprs), ExternKeyword)
	}
	name, ok := exprs[1].(*ast.IdentNode)
	if !ok {
		return nil, errors.Errorf("expected identifier for function name, but instead got a %s item", exprs[1])
	}
	params, err := parseParams(exprs[2], m.Types)
	if err != nil {
		return nil, err
	}
	docstring := ""
	if len(exprs) == 4 {
		s, ok := exprs[3].(*ast.StringNode)
		if !ok {
			return nil, errors.Errorf("expected string literal for %s DOCSTRING, but instead got %s",
				ExternKeyword, exprs[3])
		}
		docstring = s.Text
	}
	return table.Extern(name.Text, params, docstring, m.SourceFile), nil
}
