// Package pylog provides the interpreter's shared diagnostic logger, a thin
// wrapper around gopkg.in/op/go-logging.v1 in the style of the teacher
// codebase's src/cli/logging package: a single package-level logger plus an
// InitLogging call that wires it to a levelled stderr backend.
package pylog

import (
	"os"

	"gopkg.in/op/go-logging.v1"
)

// Log is the interpreter's shared logger. Evaluator code logs incompatible
// operations and malformed calls through it rather than through stdout,
// which is reserved for the print builtin.
var Log = logging.MustGetLogger("pyrun")

// Level re-exports the go-logging level type so callers outside this
// package don't need to import go-logging directly.
type Level = logging.Level

// Level constants, highest to lowest severity.
const (
	CRITICAL = logging.CRITICAL
	ERROR    = logging.ERROR
	WARNING  = logging.WARNING
	NOTICE   = logging.NOTICE
	INFO     = logging.INFO
	DEBUG    = logging.DEBUG
)

var format = logging.MustStringFormatter(
	"%{time:15:04:05.000} %{level:7s}: %{message}",
)

// InitLogging points the shared logger at stderr, levelled at level.
func InitLogging(level Level) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}
