package vm

import (
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/bytecode"
	"github.com/rasp-lang/rasp/table"
	"github.com/rasp-lang/rasp/value"
)

// Compiler lowers a preprocessed tree into bytecode. The built-in
// forms let, list, and if get special lowering; everything else
// becomes argument pushes followed by a call.
type Compiler struct {
	funs  *table.FunTable
	types *table.TypeTable
}

func NewCompiler(funs *table.FunTable, types *table.TypeTable) *Compiler {
	return &Compiler{funs: funs, types: types}
}

// Compile lowers a sequence of top-level nodes. String and number
// atoms are pushed, identifiers are loaded, expressions are lowered as
// calls.
func (m *Compiler) Compile(nodes []ast.Node) ([]bytecode.Instruction, error) {
	var code []bytecode.Instruction
	for _, n := range nodes {
		switch n := n.(type) {
		case *ast.ExprNode:
			inner, err := m.compileExpr(n)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", n.Rng)
			}
			code = append(code, inner...)
		case *ast.StringNode:
			code = append(code, bytecode.Push(value.NewStringValue(n.Text)))
		case *ast.IdentNode:
			code = append(code, bytecode.Load(n.Text))
		case *ast.NumberNode:
			code = append(code, bytecode.Push(value.NewNumberValue(n.Num)))
		}
	}
	return code, nil
}

func (m *Compiler) compileExpr(expr *ast.ExprNode) ([]bytecode.Instruction, error) {
	if len(expr.Children) == 0 {
		// the empty call () pushes an empty list
		return []bytecode.Instruction{bytecode.Push(value.NewListValue(nil))}, nil
	}

	var head string
	switch first := expr.Children[0].(type) {
	case *ast.ExprNode:
		return nil, errors.New("attempt to call expression as a function (not yet supported)")
	case *ast.NumberNode:
		return nil, errors.New("attempt to call number literal as a function")
	case *ast.StringNode:
		// string literals act as identifiers in call position
		head = first.Text
	case *ast.IdentNode:
		head = first.Text
	}

	rng := expr.Children[0].Range()
	switch head {
	case "let":
		code, err := m.compileLet(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", rng)
		}
		return code, nil
	case "list":
		code, err := m.compileList(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", rng)
		}
		return code, nil
	case "if":
		code, err := m.compileIf(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", rng)
		}
		return code, nil
	}

	return m.compileCall(expr, head)
}

// compileCall lowers an ordinary function call: arguments left to
// right, then the call itself. User-function calls are arity-checked
// against the descriptor.
func (m *Compiler) compileCall(expr *ast.ExprNode, head string) ([]bytecode.Instruction, error) {
	args := expr.Children[1:]
	argc := len(args)
	builtin := HasBuiltin(head)
	fun, known := m.funs.Get(head)
	if !known && !builtin {
		return nil, errors.Errorf("attempt to call non-existent function `%s'", head)
	}

	var code []bytecode.Instruction
	if !builtin {
		min, max := fun.MinArgs(), fun.MaxArgs()
		if argc < min || argc > max {
			if min == max {
				return nil, errors.Errorf(
					"no variant of function %s takes %d arguments (takes exactly %d arguments)",
					fun.Name, argc, min)
			}
			return nil, errors.Errorf(
				"no variant of function %s takes %d arguments (takes %d to %d arguments)",
				fun.Name, argc, min, max)
		}
		// unsupplied optional parameters receive an empty-list filler;
		// pushed below the real arguments they bind to the trailing
		// parameters under the reversed pop prelude
		for i := argc; i < max; i++ {
			code = append(code, bytecode.Push(value.NewListValue(nil)))
		}
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case *ast.ExprNode:
			inner, err := m.compileExpr(arg)
			if err != nil {
				return nil, errors.Wrapf(err, "%s", expr.Rng)
			}
			code = append(code, inner...)
		case *ast.IdentNode:
			code = append(code, bytecode.Load(arg.Text))
		default:
			code = append(code, bytecode.Push(arg.Value()))
		}
	}
	return append(code, bytecode.Call(head, argc)), nil
}

// compileLet lowers (let ((name value)...) body...): a fresh scope
// frame, one pop or store per binding, the body, then the frame pop.
func (m *Compiler) compileLet(expr *ast.ExprNode) ([]bytecode.Instruction, error) {
	exprs := expr.Children
	if _, ok := exprs[0].(*ast.IdentNode); !ok {
		return nil, errors.New("let function must be called as an identifier")
	}
	if len(exprs) < 2 {
		return nil, errors.New("second argument of let function must be a list")
	}
	bindings, ok := exprs[1].(*ast.ExprNode)
	if !ok {
		return nil, errors.New("second argument of let function must be a list")
	}

	code := []bytecode.Instruction{bytecode.NewVarStack()}
	for _, binding := range bindings.Children {
		pair, ok := binding.(*ast.ExprNode)
		if !ok || len(pair.Children) != 2 {
			return nil, errors.New("assignments must be a list of two items")
		}
		name, ok := pair.Children[0].(*ast.IdentNode)
		if !ok {
			return nil, errors.Errorf("assignment name must be an identifier, instead got %s", pair.Children[0])
		}
		if valExpr, ok := pair.Children[1].(*ast.ExprNode); ok {
			inner, err := m.compileExpr(valExpr)
			if err != nil {
				return nil, errors.Wrap(err, "invalid function call")
			}
			code = append(code, inner...)
			code = append(code, bytecode.Pop(name.Text))
		} else {
			code = append(code, bytecode.Store(name.Text, pair.Children[1].Value()))
		}
	}

	body, err := m.Compile(exprs[2:])
	if err != nil {
		return nil, err
	}
	code = append(code, body...)
	return append(code, bytecode.PopVarStack()), nil
}

// compileList lowers (list x1 ... xn) as a varargs run: the end
// sentinel, the elements in reverse, the start sentinel carrying the
// instruction count, and the call to the list intrinsic.
func (m *Compiler) compileList(expr *ast.ExprNode) ([]bytecode.Instruction, error) {
	exprs := expr.Children
	if _, ok := exprs[0].(*ast.IdentNode); !ok {
		return nil, errors.New("list function must be called as an identifier")
	}
	reversed := make([]ast.Node, 0, len(exprs)-1)
	for i := len(exprs) - 1; i >= 1; i-- {
		reversed = append(reversed, exprs[i])
	}

	code := []bytecode.Instruction{bytecode.Push(value.NewEndArgsValue())}
	inner, err := m.Compile(reversed)
	if err != nil {
		return nil, errors.Wrap(err, "list function call")
	}
	code = append(code, inner...)
	size := int64(len(code) - 1)
	code = append(code, bytecode.Push(value.NewStartArgsValue(size)))
	return append(code, bytecode.Call("list", 0)), nil
}

// compileIf lowers (if cond then else) with forward skips: the
// condition, a conditional skip over the then block, the then block, an
// unconditional skip over the else block, the else block.
func (m *Compiler) compileIf(expr *ast.ExprNode) ([]bytecode.Instruction, error) {
	exprs := expr.Children
	if _, ok := exprs[0].(*ast.IdentNode); !ok {
		return nil, errors.New("if function must be called as an identifier")
	}
	if len(exprs) != 4 {
		return nil, errors.Errorf("if function requires exactly 3 arguments, got %d instead", len(exprs)-1)
	}

	cond, err := m.Compile(exprs[1:2])
	if err != nil {
		return nil, errors.Wrap(err, "condition of if function call")
	}
	then, err := m.Compile(exprs[2:3])
	if err != nil {
		return nil, errors.Wrap(err, "first expression of if function call")
	}
	els, err := m.Compile(exprs[3:4])
	if err != nil {
		return nil, errors.Wrap(err, "second expression of if function call")
	}

	code := cond
	code = append(code, bytecode.SkipFalse(len(then)+1))
	code = append(code, then...)
	code = append(code, bytecode.Skip(len(els)+1))
	return append(code, els...), nil
}
