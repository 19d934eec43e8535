// Package runner keeps a registry of suspended processes started through a
// Launcher, captures their output and tracks their state.
package runner

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/launcher"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/output_storage"
)

func logger() *zerolog.Logger {
	return lib.Logger("runner")
}

// Process is the part of a launched child the runner drives.
type Process interface {
	PID() int
	Resume() (int, error)
	Suspend() (int, error)
	Wait() (int, error)
	Terminate(code uint32) error
	Close() error
	// Streams returns the redirected pipe ends; nil for directions that were not redirected.
	Streams() (stdin io.WriteCloser, stdout, stderr io.Reader)
}

// Launcher creates suspended processes.
type Launcher interface {
	LaunchSuspended(req *lib.LaunchRequest) (Process, error)
}

// Runner manages processes started by this library.
type Runner struct {
	mu        sync.RWMutex
	processes map[string]*processEntry
	launcher  Launcher
}

type processEntry struct {
	id      string
	request lib.LaunchRequest
	proc    Process
	stdin   io.WriteCloser

	// status fields
	mu       sync.RWMutex
	state    lib.ProcessState
	exitCode *int
	start    time.Time
	end      *time.Time
	pid      int

	// output buffers (full replay)
	stdout *output_storage.OutputStorage
	stderr *output_storage.OutputStorage
}

// NewRunner creates a Runner that launches through l.
func NewRunner(l Launcher) *Runner {
	return &Runner{processes: make(map[string]*processEntry), launcher: l}
}

// NewDefaultRunner creates a Runner backed by launcher.New.
func NewDefaultRunner(opts ...launcher.Option) *Runner {
	return NewRunner(suspendedLauncher{launcher.New(opts...)})
}

type suspendedLauncher struct {
	l *launcher.Launcher
}

func (s suspendedLauncher) LaunchSuspended(req *lib.LaunchRequest) (Process, error) {
	p, err := s.l.LaunchSuspended(req)
	if err != nil {
		return nil, err
	}
	return suspendedProcess{p}, nil
}

type suspendedProcess struct {
	*launcher.Process
}

func (p suspendedProcess) PID() int {
	return p.Pid
}

func (p suspendedProcess) Streams() (io.WriteCloser, io.Reader, io.Reader) {
	var (
		stdin          io.WriteCloser
		stdout, stderr io.Reader
	)
	if p.Stdin != nil {
		stdin = p.Stdin
	}
	if p.Stdout != nil {
		stdout = p.Stdout
	}
	if p.Stderr != nil {
		stderr = p.Stderr
	}
	return stdin, stdout, stderr
}
