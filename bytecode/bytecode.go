// Package bytecode defines the instruction set executed by the rasp
// virtual machine.
package bytecode

import (
	"fmt"

	"github.com/rasp-lang/rasp/value"
)

// Op is an instruction opcode.
type Op int

const (
	// OpCall invokes a user or intrinsic function by name. N carries
	// the argument count for diagnostics only.
	OpCall Op = iota
	// OpPush pushes a literal or sentinel value. Pushing an identifier
	// value dereferences it through the scope stack.
	OpPush
	// OpPop pops the top value into a variable in the innermost scope.
	OpPop
	// OpLoad looks a name up through the scope stack and pushes it.
	OpLoad
	// OpStore stores a literal value into the innermost scope.
	OpStore
	// OpNewVarStack pushes a scope frame.
	OpNewVarStack
	// OpPopVarStack pops a scope frame.
	OpPopVarStack
	// OpSkip unconditionally moves execution N instructions forward,
	// counting from the skip itself: the N-1 instructions after it are
	// passed over.
	OpSkip
	// OpSkipFalse pops a value and, if it is falsy, passes over the N
	// instructions after it.
	OpSkipFalse
)

// Instruction is one VM instruction. Name is used by call, pop, load,
// and store; Val by push and store; N by call (argc diagnostic), skip,
// and skip-false.
type Instruction struct {
	Op   Op
	Name string
	Val  value.Value
	N    int
}

func Call(name string, argc int) Instruction {
	return Instruction{Op: OpCall, Name: name, N: argc}
}

func Push(v value.Value) Instruction {
	return Instruction{Op: OpPush, Val: v}
}

func Pop(name string) Instruction {
	return Instruction{Op: OpPop, Name: name}
}

func Load(name string) Instruction {
	return Instruction{Op: OpLoad, Name: name}
}

func Store(name string, v value.Value) Instruction {
	return Instruction{Op: OpStore, Name: name, Val: v}
}

func NewVarStack() Instruction { return Instruction{Op: OpNewVarStack} }

func PopVarStack() Instruction { return Instruction{Op: OpPopVarStack} }

func Skip(n int) Instruction { return Instruction{Op: OpSkip, N: n} }

func SkipFalse(n int) Instruction { return Instruction{Op: OpSkipFalse, N: n} }

func (m Instruction) String() string {
	switch m.Op {
	case OpCall:
		return fmt.Sprintf("call %s/%d", m.Name, m.N)
	case OpPush:
		return fmt.Sprintf("push %s(%s)", m.Val.TypeString(), m.Val.ToString())
	case OpPop:
		return fmt.Sprintf("pop %s", m.Name)
	case OpLoad:
		return fmt.Sprintf("load %s", m.Name)
	case OpStore:
		return fmt.Sprintf("store %s %s(%s)", m.Name, m.Val.TypeString(), m.Val.ToString())
	case OpNewVarStack:
		return "newvarstack"
	case OpPopVarStack:
		return "popvarstack"
	case OpSkip:
		return fmt.Sprintf("skip %d", m.N)
	case OpSkipFalse:
		return fmt.Sprintf("skipfalse %d", m.N)
	default:
		panic("unknown opcode")
	}
}
