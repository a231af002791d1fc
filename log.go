package amex

import (
	"log/slog"
	"os"
)

// defaultLogger is used by any VM that hasn't been given one of its
// own via SetLogger. The corpus has no logging library in its
// dependency surface to ground this on (see DESIGN.md), so it's the
// one ambient concern built directly on the standard library's
// structured logger.
var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func (vm *VM) logger() *slog.Logger {
	if vm.log != nil {
		return vm.log
	}
	return defaultLogger
}

// SetLogger overrides the VM's diagnostic logger, letting an embedder
// route GC and runtime-error diagnostics into its own structured logs.
func (vm *VM) SetLogger(l *slog.Logger) {
	vm.log = l
}
