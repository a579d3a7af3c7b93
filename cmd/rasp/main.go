// Command rasp runs a rasp source file: lex, parse, preprocess,
// compile to bytecode, and execute on the VM.
package main

import (
	"os"

	u "github.com/araddon/gou"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v1"

	"github.com/rasp-lang/rasp/gather"
	"github.com/rasp-lang/rasp/lex"
	"github.com/rasp-lang/rasp/parse"
	"github.com/rasp-lang/rasp/source"
	"github.com/rasp-lang/rasp/table"
	"github.com/rasp-lang/rasp/vm"
)

var (
	file        = kingpin.Arg("file", "file to run").Required().String()
	compileOnly = kingpin.Flag("compile-only", "only compile; don't run").Short('c').Bool()
	runOnly     = kingpin.Flag("run-only", "run; no compiled artifact exists, so the file is still compiled first").Short('r').Bool()
)

func main() {
	kingpin.Parse()

	lvl := os.Getenv("RASP_LOG")
	if lvl == "" {
		lvl = "warn"
	}
	u.SetupLogging(lvl)
	u.SetColorOutput()

	if *compileOnly && *runOnly {
		exitError(errors.New("--compile-only and --run-only are mutually exclusive"))
	}

	text, err := source.Read(*file)
	if err != nil {
		exitError(err)
	}

	parser := parse.NewParser(lex.NewLexer(text))
	nodes, err := parser.Parse()
	if err != nil {
		exitError(err)
	}

	funs := table.NewFunTable()
	types := table.NewTypeTable()
	pre := &gather.Preprocessor{SourceFile: *file, Funs: funs, Types: types}
	nodes, err = pre.Preprocess(nodes)
	if err != nil {
		exitError(err)
	}

	if *runOnly {
		// there is no stored bytecode to run; compilation happens anyway
		u.Warnf("--run-only: no compiled artifact exists, compiling before running")
	}
	code, err := vm.NewCompiler(funs, types).Compile(nodes)
	if err != nil {
		exitError(err)
	}
	if *compileOnly {
		u.Infof("OK")
		return
	}

	machine := vm.New(funs, types)
	if err := machine.Run(code); err != nil {
		exitError(err)
	}
	u.Infof("OK")
}

// exitError prints the full cause chain and exits non-zero.
func exitError(err error) {
	u.Errorf("Error: %v", err)
	os.Exit(1)
}
