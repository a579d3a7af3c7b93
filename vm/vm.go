// Package vm compiles preprocessed trees to bytecode and executes the
// result on a stack machine with a scope stack and a lazy per-function
// compilation cache.
package vm

import (
	u "github.com/araddon/gou"
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/bytecode"
	"github.com/rasp-lang/rasp/table"
	"github.com/rasp-lang/rasp/value"
)

type varTable map[string]value.Value

// VM executes bytecode against a value stack and a stack of variable
// scopes. A function-name stack is kept for diagnostics. Compiled
// user-function bytecode is cached on first call and never
// invalidated.
type VM struct {
	varStack   []varTable
	valueStack []value.Value
	funs       *table.FunTable
	types      *table.TypeTable
	cache      map[string][]bytecode.Instruction
	funStack   []string
}

// New creates a VM over the given tables.
func New(funs *table.FunTable, types *table.TypeTable) *VM {
	return &VM{
		funs:  funs,
		types: types,
		cache: make(map[string][]bytecode.Instruction),
	}
}

// Run executes an instruction sequence. A scope frame is pushed on
// entry and popped on exit, so the scope stack is never empty while
// instructions execute. Skips are implemented with a skip counter
// rather than a mutable instruction pointer.
func (m *VM) Run(code []bytecode.Instruction) error {
	skip := 0
	m.varStack = append(m.varStack, varTable{})
	for _, in := range code {
		if skip > 0 {
			skip--
			u.Debugf("skipping %s", in)
			continue
		}
		u.Debugf("executing %s", in)
		switch in.Op {
		case bytecode.OpCall:
			if err := m.call(in.Name); err != nil {
				return err
			}
		case bytecode.OpPush:
			if id, ok := in.Val.(value.IdentValue); ok {
				v, ok := m.getVar(id.Val())
				if !ok {
					return errors.Errorf("unknown identifier %s", id.Val())
				}
				m.Push(v)
			} else {
				m.Push(in.Val)
			}
		case bytecode.OpPop:
			v, err := m.PopValue()
			if err != nil {
				return err
			}
			m.setVar(in.Name, v)
		case bytecode.OpLoad:
			v, ok := m.getVar(in.Name)
			if !ok {
				return errors.Errorf("unknown variable or function name: %s", in.Name)
			}
			m.Push(v)
		case bytecode.OpStore:
			m.setVar(in.Name, in.Val)
		case bytecode.OpNewVarStack:
			m.varStack = append(m.varStack, varTable{})
		case bytecode.OpPopVarStack:
			if len(m.varStack) == 0 {
				return errors.New("tried to pop variable table stack but there was nothing on the stack")
			}
			m.varStack = m.varStack[:len(m.varStack)-1]
		case bytecode.OpSkip:
			// N counts from the skip itself, so N-1 instructions follow
			skip = in.N - 1
		case bytecode.OpSkipFalse:
			v, err := m.PopValue()
			if err != nil {
				return err
			}
			falsy, err := isFalsy(v)
			if err != nil {
				return err
			}
			if falsy {
				skip = in.N
			}
		}
	}
	m.varStack = m.varStack[:len(m.varStack)-1]
	return nil
}

// isFalsy reports whether a value fails a condition: zero, the empty
// string, the empty list, and false are falsy; any other string, list,
// number, or boolean is truthy. Other kinds are not boolean-compatible.
func isFalsy(v value.Value) (bool, error) {
	switch v := v.(type) {
	case value.NumberValue:
		return v.Val() == 0.0, nil
	case value.StringValue:
		return len(v.Val()) == 0, nil
	case value.ListValue:
		return v.Len() == 0, nil
	case value.BoolValue:
		return !v.Val(), nil
	default:
		return false, errors.Errorf("invalid boolean value reached (got %s)", v.TypeString())
	}
}

// call dispatches a name to a user function or an intrinsic. User
// functions are lazily compiled into the cache on first call, then run
// recursively.
func (m *VM) call(name string) error {
	if fun, ok := m.funs.Get(name); ok {
		if _, compiled := m.cache[name]; !compiled {
			code, err := m.compileFunction(fun)
			if err != nil {
				return errors.Wrap(err, "failure to compile function")
			}
			m.cache[name] = code
		}
		code := m.cache[name]
		m.funStack = append(m.funStack, name)
		if err := m.Run(code); err != nil {
			return err
		}
		m.funStack = m.funStack[:len(m.funStack)-1]
		return nil
	}
	if builtin, ok := builtins[name]; ok {
		m.funStack = append(m.funStack, name)
		if err := builtin(m); err != nil {
			return err
		}
		m.funStack = m.funStack[:len(m.funStack)-1]
		return nil
	}
	return errors.Errorf("unknown function %s", name)
}

// compileFunction produces a function's bytecode: one pop per
// parameter in declaration order, then the compiled body. Arguments
// were pushed left to right, so the first pop binds the last argument.
func (m *VM) compileFunction(fun *table.Function) ([]bytecode.Instruction, error) {
	var code []bytecode.Instruction
	for _, param := range fun.Params {
		code = append(code, bytecode.Pop(param.Name))
	}
	body, err := NewCompiler(m.funs, m.types).Compile(fun.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failure to compile function `%s'", fun.Name)
	}
	code = append(code, body...)
	u.Debugf("compiled code for %s", fun.Name)
	for _, in := range code {
		u.Debugf("    %s", in)
	}
	return code, nil
}

// FunStack reports the function-name stack, innermost call last.
func (m *VM) FunStack() []string { return m.funStack }

// FunTable reports the VM's function table.
func (m *VM) FunTable() *table.FunTable { return m.funs }

func (m *VM) Push(v value.Value) {
	m.valueStack = append(m.valueStack, v)
}

func (m *VM) PopValue() (value.Value, error) {
	if len(m.valueStack) == 0 {
		// a crash is coming; leave a trail
		m.dumpDebug()
		return nil, errors.New("attempted to pop a value off of an empty value stack")
	}
	v := m.valueStack[len(m.valueStack)-1]
	m.valueStack = m.valueStack[:len(m.valueStack)-1]
	return v, nil
}

// PeekValue returns the top of the value stack without popping it.
func (m *VM) PeekValue() (value.Value, bool) {
	if len(m.valueStack) == 0 {
		return nil, false
	}
	return m.valueStack[len(m.valueStack)-1], true
}

func (m *VM) getVar(name string) (value.Value, bool) {
	for i := len(m.varStack) - 1; i >= 0; i-- {
		if v, ok := m.varStack[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (m *VM) setVar(name string, v value.Value) {
	m.varStack[len(m.varStack)-1][name] = v
}

// dumpDebug logs the value stack and every scope frame.
func (m *VM) dumpDebug() {
	u.Debugf("---------------------------------------------------------")
	u.Debugf("value stack")
	for i := len(m.valueStack) - 1; i >= 0; i-- {
		u.Debugf("    %02d. %s(%s)", i+1, m.valueStack[i].TypeString(), m.valueStack[i].ToString())
	}
	u.Debugf("---------------------------------------------------------")
	for i := len(m.varStack) - 1; i >= 0; i-- {
		u.Debugf("%02d. var table", i+1)
		for name, v := range m.varStack[i] {
			u.Debugf("    %s -> %s(%s)", name, v.TypeString(), v.ToString())
		}
		u.Debugf("---------------------------------------------------------")
	}
}
