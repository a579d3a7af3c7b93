package gather

import (
	"os"

	u "github.com/araddon/gou"
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/parse"
	"github.com/rasp-lang/rasp/source"
	"github.com/rasp-lang/rasp/table"
)

// IncludeGatherer collects (&include PATH...) directives. Each path is
// loaded, lexed, parsed, and recursively preprocessed with fresh
// tables; the fresh tables are merged into the caller's tables and the
// included tree is returned for appending.
type IncludeGatherer struct {
	Funs  *table.FunTable
	Types *table.TypeTable
}

// Gather scans the top-level nodes for &include directives and returns
// the concatenation of all included, preprocessed trees.
func (m *IncludeGatherer) Gather(nodes []ast.Node) ([]ast.Node, error) {
	var included []ast.Node
	for _, n := range nodes {
		expr, ok := matchDirective(n, IncludeKeyword)
		if !ok {
			continue
		}
		tree, err := m.visit(expr.Children)
		if err != nil {
			err = errors.Wrap(err, IncludeKeyword)
			return nil, errors.Wrapf(err, "builtin expression at %s", expr.Rng)
		}
		included = append(included, tree...)
	}
	return included, nil
}

func (m *IncludeGatherer) visit(exprs []ast.Node) ([]ast.Node, error) {
	if len(exprs) == 1 {
		return nil, nil
	}

	// all paths must be string literals naming existing files
	var paths []string
	for index, pathExpr := range exprs[1:] {
		s, ok := pathExpr.(*ast.StringNode)
		if !ok {
			return nil, errors.Errorf("item at index %d must be a string literal (got %s instead)",
				index+1, pathExpr)
		}
		if _, err := os.Stat(s.Text); err != nil {
			return nil, errors.Errorf("included file %s does not exist", s.Text)
		}
		paths = append(paths, s.Text)
	}

	var included []ast.Node
	for _, path := range paths {
		tree, err := m.load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "included file %s", path)
		}
		included = append(included, tree...)
	}
	return included, nil
}

// load reads, parses, and preprocesses one included file with fresh
// tables, then merges the fresh tables into the caller's.
func (m *IncludeGatherer) load(path string) ([]ast.Node, error) {
	u.Debugf("including %s", path)
	text, err := source.Read(path)
	if err != nil {
		return nil, err
	}
	parser := parse.NewParser(lex.NewLexer(text))
	nodes, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	funs := table.NewFunTable()
	types := table.NewTypeTable()
	pre := &Preprocessor{SourceFile: path, Funs: funs, Types: types}
	nodes, err = pre.Preprocess(nodes)
	if err != nil {
		return nil, err
	}
	if err := m.Types.Merge(types); err != nil {
		return nil, err
	}
	m.Funs.Merge(funs)
	return nodes, nil
}
