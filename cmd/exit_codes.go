package cmd

import (
	"errors"
	"os"

	"github.com/gaurav-prasanna/bookpipe/core"
	"github.com/gaurav-prasanna/bookpipe/core/config"
)

// Exit codes: 0 success, 1 general, 2 usage, 3 I/O.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitIO      = 3
)

var (
	// ErrUsage marks invalid arguments or flags.
	ErrUsage = errors.New("invalid usage")
	// ErrNoInput is returned when the arguments name no convertible file.
	ErrNoInput = errors.New("no supported e-book files found")
)

// exitCodeFor maps err to a process exit code. Callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, core.ErrInputNotFound) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, core.ErrUnsupportedInputFormat) ||
		errors.Is(err, core.ErrUnsupportedOutputFormat) ||
		errors.Is(err, core.ErrInvalidOptions) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) {
		return ExitUsage
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return ExitIO
	}

	return ExitGeneral
}
