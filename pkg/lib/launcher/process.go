package launcher

import (
	"errors"
	"sync"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/textstream"
)

// invalidSuspendCount is what the OS returns from a failed suspend or resume.
const invalidSuspendCount = 0xFFFFFFFF

// Thread is the primary thread of a launched process.
type Thread struct {
	mu     sync.Mutex
	handle osHandle
	ID     uint32
}

// Resume decrements the suspend count and returns its previous value.
// The thread runs once the count reaches zero.
func (t *Thread) Resume() (int, error) {
	return t.control("ResumeThread", resumeThread)
}

// Suspend increments the suspend count and returns its previous value.
func (t *Thread) Suspend() (int, error) {
	return t.control("SuspendThread", suspendThread)
}

func (t *Thread) control(op string, fn func(osHandle) (uint32, error)) (int, error) {
	if t == nil {
		return 0, lib.Errorf(lib.KindSuspendResume, op, "no thread handle")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == 0 {
		return 0, lib.Errorf(lib.KindSuspendResume, op, "thread handle released")
	}
	n, err := fn(t.handle)
	if n == invalidSuspendCount {
		return 0, lib.NewError(lib.KindSuspendResume, op, err)
	}
	return int(n), nil
}

// Close releases the thread handle. The thread itself keeps running.
func (t *Thread) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle == 0 {
		return nil
	}
	err := closeHandle(t.handle)
	t.handle = 0
	return err
}

// Process is a child created by LaunchSuspended. The streams are set only for
// the directions that were redirected.
type Process struct {
	Pid    int
	Stdin  *textstream.Writer
	Stdout *textstream.Reader
	Stderr *textstream.Reader

	mu     sync.Mutex
	handle osHandle
	thread *Thread
	closed bool
}

// Thread returns the primary thread, or nil after CloseThread.
func (p *Process) Thread() *Thread {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thread
}

func (p *Process) Resume() (int, error) {
	return p.Thread().Resume()
}

func (p *Process) Suspend() (int, error) {
	return p.Thread().Suspend()
}

// CloseThread releases the primary thread handle. Later Resume and Suspend
// calls fail.
func (p *Process) CloseThread() error {
	p.mu.Lock()
	t := p.thread
	p.thread = nil
	p.mu.Unlock()
	return t.Close()
}

func (p *Process) processHandle(op string) (osHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return 0, lib.Errorf(lib.KindUnknown, op, "process handle released")
	}
	return p.handle, nil
}

// Wait blocks until the process exits and returns its exit code.
// It must not race with Close.
func (p *Process) Wait() (int, error) {
	h, err := p.processHandle("Wait")
	if err != nil {
		return 0, err
	}
	return waitProcess(h)
}

// ExitCode reports the exit code if the process has exited.
func (p *Process) ExitCode() (code int, exited bool, err error) {
	h, err := p.processHandle("ExitCode")
	if err != nil {
		return 0, false, err
	}
	return exitCode(h)
}

// Terminate ends the process with the given exit code.
func (p *Process) Terminate(code uint32) error {
	h, err := p.processHandle("Terminate")
	if err != nil {
		return err
	}
	return terminateProcess(h, code)
}

// Close releases the streams, the thread handle and the process handle.
// The process keeps running. Calling Close again is a no-op.
func (p *Process) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	if p.Stdin != nil {
		errs = append(errs, p.Stdin.Close())
	}
	for _, r := range []*textstream.Reader{p.Stdout, p.Stderr} {
		if r != nil {
			errs = append(errs, r.Close())
		}
	}
	errs = append(errs, p.CloseThread())

	p.mu.Lock()
	if p.handle != 0 {
		errs = append(errs, closeHandle(p.handle))
		p.handle = 0
	}
	p.mu.Unlock()
	return errors.Join(errs...)
}
