package table

import (
	u "github.com/araddon/gou"

	"github.com/rasp-lang/rasp/ast"
)

// Param is a single function parameter. All optional parameters follow
// all required ones; Varargs is reserved.
type Param struct {
	Name     string
	Type     Type
	Optional bool
	Varargs  bool
}

// NewParam creates a parameter of the given declared type.
func NewParam(name string, typ Type, optional bool) Param {
	return Param{Name: name, Type: typ, Optional: optional}
}

// AnyParam creates a parameter of the :any catchall type.
func AnyParam(name string, optional bool) Param {
	return NewParam(name, Any, optional)
}

// Function describes a user-defined or external function. External
// functions have empty bodies.
type Function struct {
	Name       string
	Params     []Param
	Docstring  string
	Body       []ast.Node
	SourceFile string
	External   bool
}

// Define creates a user-defined function descriptor.
func Define(name string, params []Param, docstring string, body []ast.Node, sourceFile string) *Function {
	return &Function{
		Name:       name,
		Params:     params,
		Docstring:  docstring,
		Body:       body,
		SourceFile: sourceFile,
	}
}

// Extern creates an external function descriptor with an empty body.
func Extern(name string, params []Param, docstring string, sourceFile string) *Function {
	return &Function{
		Name:       name,
		Params:     params,
		Docstring:  docstring,
		SourceFile: sourceFile,
		External:   true,
	}
}

// MinArgs is the number of required parameters.
func (m *Function) MinArgs() int {
	count := 0
	for _, p := range m.Params {
		if p.Optional {
			break
		}
		count++
	}
	return count
}

// MaxArgs is the total number of parameters.
func (m *Function) MaxArgs() int {
	return len(m.Params)
}

// FunTable is a linear registry of function descriptors with name
// lookup. Duplicate registration is not policed; the latest entry wins
// lookup.
type FunTable struct {
	funs []*Function
}

func NewFunTable() *FunTable {
	return &FunTable{}
}

// Append adds functions to the table.
func (m *FunTable) Append(funs ...*Function) {
	m.funs = append(m.funs, funs...)
}

// Merge folds another table into this one.
func (m *FunTable) Merge(other *FunTable) {
	m.funs = append(m.funs, other.funs...)
}

// Has does a linear search for a function by name.
func (m *FunTable) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

func (m *FunTable) Get(name string) (*Function, bool) {
	for i := len(m.funs) - 1; i >= 0; i-- {
		if m.funs[i].Name == name {
			return m.funs[i], true
		}
	}
	return nil, false
}

// DumpDebug logs every registered function at debug level.
func (m *FunTable) DumpDebug() {
	for _, fun := range m.funs {
		u.Debugf("- FUNCTION ----------------------------------------------")
		u.Debugf("name: %s", fun.Name)
		u.Debugf("params: %v", fun.Params)
		u.Debugf("docstring: %s", fun.Docstring)
		u.Debugf("external: %v", fun.External)
	}
	u.Debugf("---------------------------------------------------------")
}
