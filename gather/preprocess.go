package gather

import (
	u "github.com/araddon/gou"
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/table"
)

// Preprocessor orchestrates the gatherers over one file's tree:
// includes are loaded and appended, types are linked and merged,
// functions and externs are registered, and finally every directive
// node is pruned. The returned tree is the executable top-level
// program. Running it again over an already-preprocessed tree is a
// no-op.
type Preprocessor struct {
	SourceFile string
	Funs       *table.FunTable
	Types      *table.TypeTable
}

// Preprocess runs all gatherers and returns the pruned tree.
func (m *Preprocessor) Preprocess(nodes []ast.Node) ([]ast.Node, error) {
	// includes
	u.Debugf("gathering includes")
	inc := &IncludeGatherer{Funs: m.Funs, Types: m.Types}
	included, err := inc.Gather(nodes)
	if err != nil {
		return nil, errors.Wrap(err, m.SourceFile)
	}
	nodes = append(nodes, included...)

	// types
	u.Debugf("gathering types")
	tg := &TypeGatherer{}
	types, err := tg.GatherAndLink(nodes)
	if err != nil {
		return nil, errors.Wrap(err, m.SourceFile)
	}
	if err := m.Types.Merge(types); err != nil {
		return nil, errors.Wrap(err, m.SourceFile)
	}
	m.Types.DumpDebug()

	// functions
	u.Debugf("gathering functions")
	fg := &FunGatherer{Types: m.Types, SourceFile: m.SourceFile}
	funs, err := fg.Gather(nodes)
	if err != nil {
		return nil, errors.Wrap(err, m.SourceFile)
	}
	m.Funs.Append(funs...)

	// externs
	u.Debugf("gathering extern functions")
	eg := &ExternGatherer{Types: m.Types, SourceFile: m.SourceFile}
	externs, err := eg.Gather(nodes)
	if err != nil {
		return nil, errors.Wrap(err, m.SourceFile)
	}
	m.Funs.Append(externs...)
	m.Funs.DumpDebug()

	// prune directive nodes; everything left is executable
	var out []ast.Node
	for _, n := range nodes {
		if head, ok := ast.HeadIdent(n); ok && IsDirective(head) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
