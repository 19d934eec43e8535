// Package launcher starts child processes with their primary thread
// suspended, so a caller can act on the process (inject, attach, inspect)
// before any of its code runs, and then resume it.
package launcher

import (
	"sync"
	"syscall"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// Launcher creates suspended processes. All launches made through one
// Launcher, and by default through os/exec as well, serialize on the same lock
// so that inheritable pipe ends of one launch never leak into another child.
type Launcher struct {
	lock sync.Locker
	sys  *syscalls
}

type Option func(*Launcher)

// WithLock replaces the launch lock. The default is syscall.ForkLock, the
// lock os/exec takes while creating processes.
func WithLock(lock sync.Locker) Option {
	return func(l *Launcher) {
		l.lock = lock
	}
}

func New(opts ...Option) *Launcher {
	l := &Launcher{
		lock: &syscall.ForkLock,
		sys:  &defaultSyscalls,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLauncher = New()

// LaunchSuspended starts req with the default Launcher.
func LaunchSuspended(req *lib.LaunchRequest) (*Process, error) {
	return defaultLauncher.LaunchSuspended(req)
}

// LaunchSuspended creates the process described by req with its primary
// thread suspended. The caller owns the returned Process and must Close it.
func (l *Launcher) LaunchSuspended(req *lib.LaunchRequest) (*Process, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	log := lib.Logger("launcher").With().
		Str("launch_id", lib.NewID()).
		Str("executable", req.Executable).
		Logger()
	log.Debug().
		Bool("stdin", req.Redirect.Stdin).
		Bool("stdout", req.Redirect.Stdout).
		Bool("stderr", req.Redirect.Stderr).
		Bool("alternate_user", req.Credential != nil).
		Msg("launching suspended process")

	p, err := l.launch(req, log)
	if err != nil {
		log.Debug().Err(err).Msg("launch failed")
		return nil, err
	}
	log.Debug().Int("pid", p.Pid).Msg("process created suspended")
	return p, nil
}
