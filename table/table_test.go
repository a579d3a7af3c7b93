package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasp-lang/rasp/table"
)

func TestTypeTablePrimitives(t *testing.T) {
	t.Parallel()

	types := table.NewTypeTable()
	for _, name := range []string{table.IntType, table.StringType, table.ListyType} {
		typ, ok := types.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, typ.Name())
	}
	_, ok := types.Get("Meters")
	assert.False(t, ok)
}

func TestTypeTableAliasResolution(t *testing.T) {
	t.Parallel()

	types := table.NewTypeTable()
	require.NoError(t, types.AddTypeDef("Meters", table.IntType))
	require.NoError(t, types.AddTypeDef("Distance", "Meters"))

	typ, ok := types.Get("Distance")
	require.True(t, ok)
	assert.Equal(t, table.IntType, typ.Name())
}

func TestTypeTableAddErrors(t *testing.T) {
	t.Parallel()

	types := table.NewTypeTable()
	require.NoError(t, types.AddTypeDef("Meters", table.IntType))
	assert.Error(t, types.AddTypeDef("Meters", table.IntType))
	assert.Error(t, types.AddTypeDef("Feet", "NoSuchType"))
}

func TestTypeTableMerge(t *testing.T) {
	t.Parallel()

	a := table.NewTypeTable()
	require.NoError(t, a.AddTypeDef("Meters", table.IntType))

	b := table.NewTypeTable()
	require.NoError(t, b.AddTypeDef("Meters", table.IntType))
	require.NoError(t, b.AddTypeDef("Name", table.StringType))

	require.NoError(t, a.Merge(b))
	typ, ok := a.Get("Name")
	require.True(t, ok)
	assert.Equal(t, table.StringType, typ.Name())
}

func TestTypeTableMergeConflict(t *testing.T) {
	t.Parallel()

	a := table.NewTypeTable()
	require.NoError(t, a.AddTypeDef("Meters", table.IntType))

	b := table.NewTypeTable()
	require.NoError(t, b.AddTypeDef("Meters", table.StringType))

	err := a.Merge(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Meters")
}

func TestFunctionArity(t *testing.T) {
	t.Parallel()

	fun := table.Define("f", []table.Param{
		table.AnyParam("a", false),
		table.AnyParam("b", false),
		table.AnyParam("c", true),
	}, "", nil, "test.rasp")
	assert.Equal(t, 2, fun.MinArgs())
	assert.Equal(t, 3, fun.MaxArgs())

	extern := table.Extern("g", nil, "doc", "test.rasp")
	assert.True(t, extern.External)
	assert.Equal(t, 0, extern.MinArgs())
	assert.Equal(t, 0, extern.MaxArgs())
}

func TestFunTableLookup(t *testing.T) {
	t.Parallel()

	funs := table.NewFunTable()
	assert.False(t, funs.Has("f"))

	first := table.Define("f", nil, "first", nil, "a.rasp")
	second := table.Define("f", nil, "second", nil, "b.rasp")
	funs.Append(first)
	funs.Append(second)

	got, ok := funs.Get("f")
	require.True(t, ok)
	assert.Equal(t, "second", got.Docstring)
}

func TestFunTableMerge(t *testing.T) {
	t.Parallel()

	a := table.NewFunTable()
	a.Append(table.Define("f", nil, "", nil, "a.rasp"))
	b := table.NewFunTable()
	b.Append(table.Define("g", nil, "", nil, "b.rasp"))

	a.Merge(b)
	assert.True(t, a.Has("f"))
	assert.True(t, a.Has("g"))
}
