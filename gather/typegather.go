package gather

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/table"
)

// TypeGatherer collects (&type OLD NEW) directives and links them into
// a type table by fixed-point resolution, so alias chains may be
// declared in any order.
type TypeGatherer struct{}

type typeDef struct {
	old string
	new string
	rng lex.Range
}

// gather scans the top-level nodes for &type directives.
func (m *TypeGatherer) gather(nodes []ast.Node) ([]typeDef, error) {
	var defs []typeDef
	for _, n := range nodes {
		expr, ok := matchDirective(n, TypeKeyword)
		if !ok {
			continue
		}
		def, err := m.visit(expr.Children)
		if err != nil {
			err = errors.Wrap(err, TypeKeyword)
			return nil, errors.Wrapf(err, "builtin expression at %s", expr.Rng)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (m *TypeGatherer) visit(exprs []ast.Node) (typeDef, error) {
	if len(exprs) != 3 {
		return typeDef{}, errors.Errorf(
			"%s must be exactly 3 items long: I found %d items (%s TYPE NEWTYPE)",
			TypeKeyword, len(exprs), TypeKeyword)
	}
	old, ok := exprs[1].(*ast.IdentNode)
	if !ok {
		return typeDef{}, errors.Errorf("param 1: expected identifier, but instead got %s", exprs[1])
	}
	new, ok := exprs[2].(*ast.IdentNode)
	if !ok {
		return typeDef{}, errors.Errorf("param 2: expected identifier, but instead got %s", exprs[2])
	}
	if old.Text == new.Text {
		return typeDef{}, errors.Errorf(
			"illegal type definition: cannot define a type to itself (%s to %s)", old.Text, new.Text)
	}
	rng := lex.NewRange(exprs[0].Range().Start, exprs[2].Range().End)
	return typeDef{old: old.Text, new: new.Text, rng: rng}, nil
}

// GatherAndLink gathers all type directives and resolves them against a
// fresh table seeded with the primitives. Resolution repeats until no
// aliases are pending; an iteration that makes no progress means a
// cycle or a dangling reference, reported with every unresolved alias.
func (m *TypeGatherer) GatherAndLink(nodes []ast.Node) (*table.TypeTable, error) {
	types := table.NewTypeTable()
	defs, err := m.gather(nodes)
	if err != nil {
		return nil, err
	}

	var pending []typeDef
	for _, def := range defs {
		switch {
		case types.Has(def.new):
			existing, _ := types.Get(def.new)
			if existing.Name() != def.old {
				return nil, errors.Errorf(
					"invalid type mapping from %s to %s: was already set to %s at %s",
					def.new, def.old, existing.Name(), def.rng)
			}
		case types.Has(def.old):
			if err := types.AddTypeDef(def.new, def.old); err != nil {
				return nil, err
			}
		default:
			pending = append(pending, def)
		}
	}

	lastSize := 0
	for len(pending) > 0 {
		if lastSize == len(pending) {
			var sb strings.Builder
			sb.WriteString("went one cycle without deducing a type; " +
				"assuming there is a cycle or an invalid type specified. " +
				"Here are the types I could not deduce:\n")
			for _, def := range pending {
				sb.WriteString("    " + def.old + " -> " + def.new + " (defined at " + def.rng.String() + ")\n")
			}
			return nil, errors.New(sb.String())
		}

		for _, def := range pending {
			switch {
			case types.Has(def.new):
				existing, _ := types.Get(def.new)
				if existing.Name() != def.old {
					return nil, errors.Errorf(
						"invalid type mapping from %s to %s at %s: was already set to %s",
						def.new, def.old, def.rng, existing.Name())
				}
			case types.Has(def.old):
				if err := types.AddTypeDef(def.new, def.old); err != nil {
					return nil, err
				}
			}
		}

		remaining := pending[:0]
		for _, def := range pending {
			if !types.Has(def.new) {
				remaining = append(remaining, def)
			}
		}
		lastSize = len(pending)
		pending = remaining
	}
	return types, nil
}
