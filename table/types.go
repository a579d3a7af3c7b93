// Package table holds the process-lifetime registries built during
// preprocessing: the type table and the function table.
package table

import (
	u "github.com/araddon/gou"
	"github.com/pkg/errors"
)

// Canonical names of the primitive types.
const (
	IntType    = ":int"
	StringType = ":string"
	ListyType  = ":listy"
	AnyType    = ":any"
)

// Type is a registered type: a primitive, the :any catchall, or an
// alias pointing at another type. After the resolution pass every alias
// points directly at a primitive's canonical name.
type Type struct {
	name  string
	alias string // canonical target name; empty for non-aliases
}

// Primitive type values.
var (
	Number = Type{name: IntType}
	Str    = Type{name: StringType}
	Listy  = Type{name: ListyType}
	Any    = Type{name: AnyType}
)

// NewTypeDef creates an alias from name to target.
func NewTypeDef(name, target string) Type {
	return Type{name: name, alias: target}
}

func (t Type) Name() string { return t.name }

func (t Type) IsTypeDef() bool { return t.alias != "" }

// Alias returns the canonical name the alias points at. Calling it on a
// non-alias is a programming error.
func (t Type) Alias() string {
	if !t.IsTypeDef() {
		panic("attempted to get the aliased type of a non-typedef")
	}
	return t.alias
}

// TypeTable is a linear registry of types. Lookup resolves aliases
// transitively.
type TypeTable struct {
	types []Type
}

// NewTypeTable creates a table pre-seeded with the primitives.
func NewTypeTable() *TypeTable {
	return &TypeTable{types: []Type{Number, Str, Listy}}
}

// Get looks up a type by name, following alias chains down to the
// underlying type.
func (m *TypeTable) Get(name string) (Type, bool) {
	for _, t := range m.types {
		if t.name == name {
			if t.IsTypeDef() {
				return m.Get(t.alias)
			}
			return t, true
		}
	}
	return Type{}, false
}

func (m *TypeTable) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// AddTypeDef registers an alias for an existing type. The stored target
// is the canonical name of the resolved type, keeping alias chains one
// hop deep.
func (m *TypeTable) AddTypeDef(name, target string) error {
	if m.Has(name) {
		return errors.Errorf("type %s already exists in the type table", name)
	}
	t, ok := m.Get(target)
	if !ok {
		return errors.Errorf("target type %s does not exist in the type table", target)
	}
	m.types = append(m.types, NewTypeDef(name, t.Name()))
	return nil
}

// Merge folds another table into this one. A name registered in both
// tables as aliases of different targets is a conflict.
func (m *TypeTable) Merge(other *TypeTable) error {
	for _, t := range other.types {
		if !t.IsTypeDef() {
			continue
		}
		existing, ok := m.Get(t.name)
		if ok && existing.Name() != t.alias {
			return errors.Errorf("type %s was originally set to alias %s, and is later set to alias %s",
				t.name, existing.Name(), t.alias)
		}
	}
	for _, t := range other.types {
		if !m.Has(t.name) {
			m.types = append(m.types, t)
		}
	}
	return nil
}

// DumpDebug logs the whole table at debug level.
func (m *TypeTable) DumpDebug() {
	for _, t := range m.types {
		u.Debugf("- TYPE -------------------------------------------------")
		u.Debugf("name: %s", t.name)
		if t.IsTypeDef() {
			resolved, _ := m.Get(t.name)
			u.Debugf("type: typedef")
			u.Debugf("underlying type: %s", resolved.Name())
		} else {
			u.Debugf("type: %s", t.name)
		}
	}
	u.Debugf("---------------------------------------------------------")
}
