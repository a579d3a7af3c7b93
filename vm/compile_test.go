package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasp-lang/rasp/ast"
	"github.com/rasp-lang/rasp/bytecode"
	"github.com/rasp-lang/rasp/gather"
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/parse"
	"github.com/rasp-lang/rasp/table"
	"github.com/rasp-lang/rasp/value"
	"github.com/rasp-lang/rasp/vm"
)

// prepare parses and preprocesses a program, returning the executable
// tree and the populated tables.
func prepare(t *testing.T, src string) ([]ast.Node, *table.FunTable, *table.TypeTable) {
	t.Helper()
	nodes, err := parse.NewParser(lex.NewLexer(src)).Parse()
	require.NoError(t, err)
	funs := table.NewFunTable()
	types := table.NewTypeTable()
	pre := &gather.Preprocessor{SourceFile: "test.rasp", Funs: funs, Types: types}
	nodes, err = pre.Preprocess(nodes)
	require.NoError(t, err)
	return nodes, funs, types
}

func compile(t *testing.T, src string) ([]bytecode.Instruction, error) {
	t.Helper()
	nodes, funs, types := prepare(t, src)
	return vm.NewCompiler(funs, types).Compile(nodes)
}

func mustCompile(t *testing.T, src string) []bytecode.Instruction {
	t.Helper()
	code, err := compile(t, src)
	require.NoError(t, err)
	return code
}

func ops(code []bytecode.Instruction) []bytecode.Op {
	out := make([]bytecode.Op, len(code))
	for i, in := range code {
		out[i] = in.Op
	}
	return out
}

func TestCompileCall(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, "(+ 1 2)")
	require.Len(t, code, 3)
	assert.Equal(t, []bytecode.Op{bytecode.OpPush, bytecode.OpPush, bytecode.OpCall}, ops(code))
	assert.Equal(t, "+", code[2].Name)
	assert.Equal(t, 2, code[2].N)
}

func TestCompileEmptyCall(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, "()")
	require.Len(t, code, 1)
	assert.Equal(t, bytecode.OpPush, code[0].Op)
	assert.True(t, code[0].Val.Equal(value.NewListValue(nil)))
}

func TestCompileLet(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, `(let ((x 10) (y (+ 1 2))) (- x y))`)
	assert.Equal(t, []bytecode.Op{
		bytecode.OpNewVarStack,
		bytecode.OpStore, // x <- 10
		bytecode.OpPush,  // 1
		bytecode.OpPush,  // 2
		bytecode.OpCall,  // +
		bytecode.OpPop,   // y
		bytecode.OpLoad,  // x
		bytecode.OpLoad,  // y
		bytecode.OpCall,  // -
		bytecode.OpPopVarStack,
	}, ops(code))
	assert.Equal(t, "x", code[1].Name)
	assert.Equal(t, "y", code[5].Name)
}

func TestCompileLetErrors(t *testing.T) {
	t.Parallel()

	_, err := compile(t, `(let (x 10) x)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignments must be a list of two items")

	_, err = compile(t, `(let ((1 2)) 3)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an identifier")
}

func TestCompileList(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, "(list 1 2)")
	require.Len(t, code, 5)
	// end sentinel, elements reversed, start sentinel, call
	assert.True(t, code[0].Val.Equal(value.NewEndArgsValue()))
	assert.True(t, code[1].Val.Equal(value.NewNumberValue(2)))
	assert.True(t, code[2].Val.Equal(value.NewNumberValue(1)))
	assert.True(t, code[3].Val.Equal(value.NewStartArgsValue(2)))
	assert.Equal(t, bytecode.OpCall, code[4].Op)
	assert.Equal(t, "list", code[4].Name)
}

func TestCompileIf(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, `(if 1 2 3)`)
	assert.Equal(t, []bytecode.Op{
		bytecode.OpPush,
		bytecode.OpSkipFalse,
		bytecode.OpPush,
		bytecode.OpSkip,
		bytecode.OpPush,
	}, ops(code))
	assert.Equal(t, 2, code[1].N)
	assert.Equal(t, 2, code[3].N)
}

func TestCompileIfArity(t *testing.T) {
	t.Parallel()

	_, err := compile(t, `(if 1 2)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires exactly 3 arguments")
}

func TestCompileCallOfNonCallable(t *testing.T) {
	t.Parallel()

	_, err := compile(t, "(1 2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "number literal as a function")

	_, err = compile(t, "((car (list 1)) 2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression as a function")
}

func TestCompileUnknownFunction(t *testing.T) {
	t.Parallel()

	_, err := compile(t, "(definitely-not-defined 1)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-existent function")
}

func TestCompileArityChecking(t *testing.T) {
	t.Parallel()

	def := `(&define f (a ? b) a) `
	for _, tc := range []struct {
		src string
		ok  bool
	}{
		{def + "(f)", false},
		{def + "(f 1)", true},
		{def + "(f 1 2)", true},
		{def + "(f 1 2 3)", false},
	} {
		_, err := compile(t, tc.src)
		if tc.ok {
			assert.NoError(t, err, tc.src)
		} else {
			require.Error(t, err, tc.src)
			assert.Contains(t, err.Error(), "no variant of function f", tc.src)
		}
	}
}

func TestCompileExactArityMessage(t *testing.T) {
	t.Parallel()

	_, err := compile(t, `(&define inc (n) (+ n 1)) (inc 1 2)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes exactly 1 arguments")
}

func TestCompileOptionalFiller(t *testing.T) {
	t.Parallel()

	// one optional parameter left unsupplied: an empty-list filler is
	// pushed below the supplied argument
	code := mustCompile(t, `(&define f (a ? b) a) (f 7)`)
	require.Len(t, code, 3)
	assert.True(t, code[0].Val.Equal(value.NewListValue(nil)))
	assert.True(t, code[1].Val.Equal(value.NewNumberValue(7)))
	assert.Equal(t, bytecode.OpCall, code[2].Op)
}

func TestCompileTopLevelAtoms(t *testing.T) {
	t.Parallel()

	code := mustCompile(t, `42 "hi" foo`)
	assert.Equal(t, []bytecode.Op{bytecode.OpPush, bytecode.OpPush, bytecode.OpLoad}, ops(code))
	assert.Equal(t, "foo", code[2].Name)
}
