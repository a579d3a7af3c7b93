package vm

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/rasp-lang/rasp/value"
)

// createMode is the permission set used when a file intrinsic creates
// a file.
const createMode = 0o644

// openFlags maps a mode string to its open(2) flags. Each mode accepts
// an optional b, which changes nothing on POSIX hosts.
var openFlags = map[string]int{
	"r":   unix.O_RDONLY,
	"rb":  unix.O_RDONLY,
	"w":   unix.O_CREAT | unix.O_TRUNC | unix.O_WRONLY,
	"wb":  unix.O_CREAT | unix.O_TRUNC | unix.O_WRONLY,
	"a":   unix.O_CREAT | unix.O_APPEND | unix.O_WRONLY,
	"ab":  unix.O_CREAT | unix.O_APPEND | unix.O_WRONLY,
	"r+":  unix.O_RDWR,
	"rb+": unix.O_RDWR,
	"r+b": unix.O_RDWR,
	"w+":  unix.O_CREAT | unix.O_TRUNC | unix.O_RDWR,
	"wb+": unix.O_CREAT | unix.O_TRUNC | unix.O_RDWR,
	"w+b": unix.O_CREAT | unix.O_TRUNC | unix.O_RDWR,
	"a+":  unix.O_CREAT | unix.O_APPEND | unix.O_RDWR,
	"ab+": unix.O_CREAT | unix.O_APPEND | unix.O_RDWR,
	"a+b": unix.O_CREAT | unix.O_APPEND | unix.O_RDWR,
}

// popFd pops a value and validates it as a file descriptor: an
// integral, non-negative number.
func popFd(m *VM) (int, error) {
	v, err := m.PopValue()
	if err != nil {
		return 0, err
	}
	n, ok := v.(value.NumberValue)
	if !ok {
		return 0, errors.Errorf("file descriptor must be a number (got %s)", v.TypeString())
	}
	if math.Floor(n.Val()) != n.Val() {
		return 0, errors.New("file descriptor must be an integer")
	}
	if n.Val() < 0 {
		return 0, errors.New("file descriptor must be positive")
	}
	return int(n.Val()), nil
}

// builtinOpen opens a file given a path string and a mode string,
// leaving the new file descriptor on the stack. On failure the
// descriptor is -1, as open(2) reports it.
func builtinOpen(m *VM) error {
	modeVal, err := m.PopValue()
	if err != nil {
		return err
	}
	pathVal, err := m.PopValue()
	if err != nil {
		return err
	}
	mode, ok := modeVal.(value.StringValue)
	if !ok {
		return errors.New("file mode must be a string")
	}
	path, ok := pathVal.(value.StringValue)
	if !ok {
		return errors.New("file path must be a string")
	}
	flags, ok := openFlags[mode.Val()]
	if !ok {
		return errors.Errorf("invalid file mode `%s'", mode.Val())
	}
	fd, err := unix.Open(path.Val(), flags, createMode)
	if err != nil {
		fd = -1
	}
	m.Push(value.NewNumberValue(float64(fd)))
	return nil
}

// builtinClose closes a file descriptor, leaving the close result on
// the stack.
func builtinClose(m *VM) error {
	v, err := m.PopValue()
	if err != nil {
		return err
	}
	n, ok := v.(value.NumberValue)
	if !ok {
		return errors.New("file descriptor must be a number")
	}
	if math.Floor(n.Val()) != n.Val() {
		return errors.New("file descriptor must be an integer")
	}
	result := 0
	if err := unix.Close(int(n.Val())); err != nil {
		result = -1
	}
	m.Push(value.NewNumberValue(float64(result)))
	return nil
}

// builtinWrite writes a string buffer to a file descriptor, leaving
// the number of bytes written on the stack.
func builtinWrite(m *VM) error {
	bufVal, err := m.PopValue()
	if err != nil {
		return err
	}
	buf, ok := bufVal.(value.StringValue)
	if !ok {
		return errors.New("buffer must be a string")
	}
	fd, err := popFd(m)
	if err != nil {
		return err
	}
	n, err := unix.Write(fd, []byte(buf.Val()))
	if err != nil {
		n = -1
	}
	m.Push(value.NewNumberValue(float64(n)))
	return nil
}

// builtinRead reads up to count bytes from a file descriptor, leaving
// a list of the read result and the contents on the stack.
func builtinRead(m *VM) error {
	countVal, err := m.PopValue()
	if err != nil {
		return err
	}
	count, ok := countVal.(value.NumberValue)
	if !ok {
		return errors.New("count must be a number")
	}
	if math.Floor(count.Val()) != count.Val() {
		return errors.New("count must be an integer")
	}
	if count.Val() < 0 {
		return errors.New("count must be positive")
	}
	fd, err := popFd(m)
	if err != nil {
		return err
	}
	buf := make([]byte, int(count.Val()))
	n, err := unix.Read(fd, buf)
	if err != nil {
		n = -1
	}
	contents := ""
	if n > 0 {
		contents = string(buf[:n])
	}
	m.Push(value.NewListValue([]value.Value{
		value.NewNumberValue(float64(n)),
		value.NewStringValue(contents),
	}))
	return nil
}
