// Command pyrun reads a program written in the interpreter's language
// subset and executes it, per SPEC_FULL.md §10.3. It wires the lexer,
// parser and evaluator packages together; argument parsing follows the
// flags-struct-plus-shared-logger pattern of the teacher's src/please.go.
package main

import (
	"fmt"
	"io"
	"os"

	flags "github.com/thought-machine/go-flags"

	"github.com/please-build/pyrun/internal/eval"
	"github.com/please-build/pyrun/internal/lexer"
	"github.com/please-build/pyrun/internal/parser"
	"github.com/please-build/pyrun/internal/pylog"
)

var log = pylog.Log

var opts struct {
	Usage     string `usage:"pyrun interprets programs written in the reduced scripting language subset.\n\nIt reads the full program from the given file, or from standard input if none is given, and executes it."`
	Verbosity int    `short:"v" long:"verbosity" description:"Verbosity of diagnostic output: 0 (warning) - 4 (debug)" default:"0"`
	Trace     bool   `long:"trace" description:"Log the number of parsed top-level statements to stderr at info level (shown at verbosity 2 or higher); no per-statement trace is produced"`
	Args      struct {
		File flags.Filename `positional-arg-name:"file" description:"Source file to run; reads stdin if omitted"`
	} `positional-args:"yes"`
}

// verbosityLevels maps the --verbosity count to a pylog.Level, mirroring
// the teacher's cli.Verbosity scale (warning is the default, quiet start).
var verbosityLevels = []pylog.Level{
	pylog.WARNING,
	pylog.NOTICE,
	pylog.INFO,
	pylog.DEBUG,
}

func main() {
	argParser := flags.NewParser(&opts, flags.Default)
	if _, err := argParser.Parse(); err != nil {
		os.Exit(1)
	}
	level := verbosityLevels[len(verbosityLevels)-1]
	if opts.Verbosity < len(verbosityLevels) {
		level = verbosityLevels[opts.Verbosity]
	}
	pylog.InitLogging(level)

	src, err := readSource(string(opts.Args.File))
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
	os.Exit(run(src, os.Stdout))
}

func readSource(file string) (io.Reader, error) {
	if file == "" {
		return os.Stdin, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	return f, nil
}

// run parses and evaluates src, returning the process exit status. A
// lexer or parser error is an implementation-level failure (malformed
// input the parser rejects, per §6) and exits non-zero without evaluating
// anything; runtime anomalies inside the evaluator never reach here; they
// are handled internally per §7.
func run(src io.Reader, out io.Writer) (status int) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("internal error: %v", r)
			status = 1
		}
	}()
	stmts, err := parser.Parse(lexer.New(src))
	if err != nil {
		log.Errorf("%s", err)
		return 1
	}
	if opts.Trace {
		log.Infof("parsed %d top-level statements", len(stmts))
	}
	ev := eval.New(out)
	ev.Run(stmts)
	return 0
}
