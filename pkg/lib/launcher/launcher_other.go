//go:build !windows

package launcher

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

type osHandle = uintptr

type syscalls struct{}

var defaultSyscalls syscalls

func (l *Launcher) launch(*lib.LaunchRequest, zerolog.Logger) (*Process, error) {
	return nil, lib.ErrUnsupported
}

// ComposeArguments joins args with spaces.
func ComposeArguments(args []string) string {
	return strings.Join(args, " ")
}

func resumeThread(osHandle) (uint32, error) {
	return invalidSuspendCount, lib.ErrUnsupported
}

func suspendThread(osHandle) (uint32, error) {
	return invalidSuspendCount, lib.ErrUnsupported
}

func closeHandle(osHandle) error {
	return lib.ErrUnsupported
}

func waitProcess(osHandle) (int, error) {
	return 0, lib.ErrUnsupported
}

func exitCode(osHandle) (int, bool, error) {
	return 0, false, lib.ErrUnsupported
}

func terminateProcess(osHandle, uint32) error {
	return lib.ErrUnsupported
}
