package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rasp-lang/rasp/value"
)

func TestEqualityReflexiveAndSymmetric(t *testing.T) {
	t.Parallel()

	vals := []value.Value{
		value.NewStringValue("x"),
		value.NewNumberValue(3.5),
		value.NewBoolValue(true),
		value.NewIdentValue("name"),
		value.NewListValue([]value.Value{
			value.NewNumberValue(1),
			value.NewListValue([]value.Value{value.NewStringValue("a")}),
		}),
	}
	for i, a := range vals {
		assert.True(t, a.Equal(a), "value %d is not equal to itself", i)
		for j, b := range vals {
			assert.Equal(t, a.Equal(b), b.Equal(a), "equality of %d and %d is not symmetric", i, j)
			if i != j {
				assert.False(t, a.Equal(b))
			}
		}
	}
}

func TestEqualityIsStructural(t *testing.T) {
	t.Parallel()

	a := value.NewListValue([]value.Value{value.NewNumberValue(1), value.NewStringValue("x")})
	b := value.NewListValue([]value.Value{value.NewNumberValue(1), value.NewStringValue("x")})
	assert.True(t, a.Equal(b))

	c := value.NewListValue([]value.Value{value.NewNumberValue(1)})
	assert.False(t, a.Equal(c))

	// a string is never equal to an identifier of the same text
	assert.False(t, value.NewStringValue("x").Equal(value.NewIdentValue("x")))
}

func TestListy(t *testing.T) {
	t.Parallel()

	assert.True(t, value.NewStringValue("").Listy())
	assert.True(t, value.NewListValue(nil).Listy())
	assert.False(t, value.NewNumberValue(0).Listy())
	assert.False(t, value.NewBoolValue(false).Listy())
	assert.False(t, value.NewIdentValue("x").Listy())
	assert.False(t, value.NewStartArgsValue(0).Listy())
	assert.False(t, value.NewEndArgsValue().Listy())
}

func TestToString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3", value.NewNumberValue(3).ToString())
	assert.Equal(t, "2.5", value.NewNumberValue(2.5).ToString())
	assert.Equal(t, "true", value.NewBoolValue(true).ToString())
	assert.Equal(t, "hi", value.NewStringValue("hi").ToString())
	list := value.NewListValue([]value.Value{
		value.NewNumberValue(1),
		value.NewListValue([]value.Value{value.NewStringValue("a"), value.NewNumberValue(2)}),
	})
	assert.Equal(t, "1a2", list.ToString())
}

func TestTypeStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", value.NewStringValue("").TypeString())
	assert.Equal(t, "number", value.NewNumberValue(0).TypeString())
	assert.Equal(t, "boolean", value.NewBoolValue(false).TypeString())
	assert.Equal(t, "identifier", value.NewIdentValue("x").TypeString())
	assert.Equal(t, "list", value.NewListValue(nil).TypeString())
	assert.Equal(t, "startargs", value.NewStartArgsValue(1).TypeString())
	assert.Equal(t, "endargs", value.NewEndArgsValue().TypeString())
}
