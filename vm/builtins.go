package vm

import (
	"github.com/pkg/errors"

	"github.com/rasp-lang/rasp/value"
)

// builtinFunc is a host-implemented stack transformer: it pops its
// inputs off the VM's value stack, validates them, and pushes its
// result.
type builtinFunc func(*VM) error

// builtins is the fixed intrinsic table. It is initialised once and
// never mutated.
var builtins = map[string]builtinFunc{
	"+":        builtinAdd,
	"-":        builtinSub,
	"*":        builtinMul,
	"/":        builtinDiv,
	"=":        builtinEquals,
	"car":      builtinCar,
	"cdr":      builtinCdr,
	"nil?":     builtinNil,
	"list":     builtinList,
	"append":   builtinAppend,
	"string":   builtinString,
	"stdopen":  builtinOpen,
	"stdclose": builtinClose,
	"stdread":  builtinRead,
	"stdwrite": builtinWrite,
}

// HasBuiltin reports whether name is an intrinsic.
func HasBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the names of every intrinsic.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

// popBinaryNumbers pops the two operands of a binary numeric
// intrinsic. The top of the stack is the right-hand operand.
func popBinaryNumbers(m *VM, name string) (left, right float64, err error) {
	rv, err := m.PopValue()
	if err != nil {
		return 0, 0, err
	}
	lv, err := m.PopValue()
	if err != nil {
		return 0, 0, err
	}
	rn, ok := rv.(value.NumberValue)
	if !ok {
		return 0, 0, errors.Errorf("%s arguments must be numbers (got %s)", name, rv.TypeString())
	}
	ln, ok := lv.(value.NumberValue)
	if !ok {
		return 0, 0, errors.Errorf("%s arguments must be numbers (got %s)", name, lv.TypeString())
	}
	return ln.Val(), rn.Val(), nil
}

func builtinAdd(m *VM) error {
	a, b, err := popBinaryNumbers(m, "+")
	if err != nil {
		return err
	}
	m.Push(value.NewNumberValue(a + b))
	return nil
}

func builtinSub(m *VM) error {
	a, b, err := popBinaryNumbers(m, "-")
	if err != nil {
		return err
	}
	m.Push(value.NewNumberValue(a - b))
	return nil
}

func builtinMul(m *VM) error {
	a, b, err := popBinaryNumbers(m, "*")
	if err != nil {
		return err
	}
	m.Push(value.NewNumberValue(a * b))
	return nil
}

func builtinDiv(m *VM) error {
	a, b, err := popBinaryNumbers(m, "/")
	if err != nil {
		return err
	}
	m.Push(value.NewNumberValue(a / b))
	return nil
}

func builtinEquals(m *VM) error {
	b, err := m.PopValue()
	if err != nil {
		return err
	}
	a, err := m.PopValue()
	if err != nil {
		return err
	}
	m.Push(value.NewBoolValue(a.Equal(b)))
	return nil
}

func builtinCar(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case value.StringValue:
		if len(v.Val()) == 0 {
			m.Push(v)
			return nil
		}
		m.Push(value.NewStringValue(string([]rune(v.Val())[0])))
		return nil
	case value.ListValue:
		if v.Len() == 0 {
			m.Push(v)
			return nil
		}
		m.Push(v.Vals()[0])
		return nil
	default:
		return errors.Errorf("car argument must be listy (got %s)", v.TypeString())
	}
}

func builtinCdr(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case value.StringValue:
		if len(v.Val()) == 0 {
			m.Push(v)
			return nil
		}
		m.Push(value.NewStringValue(string([]rune(v.Val())[1:])))
		return nil
	case value.ListValue:
		if v.Len() == 0 {
			m.Push(v)
			return nil
		}
		rest := make([]value.Value, v.Len()-1)
		copy(rest, v.Vals()[1:])
		m.Push(value.NewListValue(rest))
		return nil
	default:
		return errors.Errorf("cdr argument must be listy (got %s)", v.TypeString())
	}
}

func builtinNil(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case value.StringValue:
		m.Push(value.NewBoolValue(len(v.Val()) == 0))
		return nil
	case value.ListValue:
		m.Push(value.NewBoolValue(v.Len() == 0))
		return nil
	default:
		return errors.Errorf("nil? argument must be listy (got %s)", v.TypeString())
	}
}

// builtinList consumes a varargs run: the start sentinel, then values
// down to the end sentinel. The compiler emitted the elements in
// reverse, so popping yields them in source order.
func builtinList(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	if _, ok := v.(value.StartArgsValue); !ok {
		return errors.Errorf("list called without a varargs marker (got %s)", v.TypeString())
	}
	var vals []value.Value
	for {
		v, err := m.PopValue()
		if err != nil {
			return errors.Wrap(err, "list")
		}
		if _, ok := v.(value.EndArgsValue); ok {
			break
		}
		vals = append(vals, v)
	}
	m.Push(value.NewListValue(vals))
	return nil
}

func builtinAppend(m *VM) error {
	b, err := m.PopValue()
	if err != nil {
		return err
	}
	a, err := m.PopValue()
	if err != nil {
		return err
	}
	if !a.Listy() {
		return errors.Errorf("append argument must be listy (got %s)", a.TypeString())
	}
	if !b.Listy() {
		return errors.Errorf("append argument must be listy (got %s)", b.TypeString())
	}
	switch a := a.(type) {
	case value.StringValue:
		bs, ok := b.(value.StringValue)
		if !ok {
			return errors.New("append arguments must both be strings or both be lists")
		}
		m.Push(value.NewStringValue(a.Val() + bs.Val()))
	case value.ListValue:
		bl, ok := b.(value.ListValue)
		if !ok {
			return errors.New("append arguments must both be strings or both be lists")
		}
		vals := make([]value.Value, 0, a.Len()+bl.Len())
		vals = append(vals, a.Vals()...)
		vals = append(vals, bl.Vals()...)
		m.Push(value.NewListValue(vals))
	}
	return nil
}

func builtinString(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	m.Push(value.NewStringValue(v.ToString()))
	return nil
}
