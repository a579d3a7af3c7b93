// Package source loads rasp source files.
package source

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Norm is the form to which source text is normalised before lexing.
var Norm = norm.NFC

// Read loads a source file and normalises it to NFC.
func Read(path string) (string, error) {
	by, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "could not read %s", path)
	}
	return string(Norm.Bytes(by)), nil
}
