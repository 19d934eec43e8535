package runner

import (
	"errors"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// ErrStopped is returned when resuming or suspending a process that has exited.
var ErrStopped = errors.New("process has stopped")

// Resume resumes the primary thread and returns the previous suspend count.
// The process is Running once the count drops to zero.
func (runner *Runner) Resume(id string) (int, error) {
	return runner.control(id, "resume", Process.Resume, func(prev int) lib.ProcessState {
		if prev <= 1 {
			return lib.ProcessStateRunning
		}
		return lib.ProcessStateSuspended
	})
}

// Suspend suspends the primary thread and returns the previous suspend count.
func (runner *Runner) Suspend(id string) (int, error) {
	return runner.control(id, "suspend", Process.Suspend, func(int) lib.ProcessState {
		return lib.ProcessStateSuspended
	})
}

func (runner *Runner) control(id, op string, fn func(Process) (int, error), next func(int) lib.ProcessState) (int, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return 0, err
	}

	pe.mu.Lock()
	defer pe.mu.Unlock()
	if pe.state == lib.ProcessStateStopped {
		return 0, ErrStopped
	}
	prev, err := fn(pe.proc)
	if err != nil {
		logger().Debug().Err(err).Str("process_id", id).Str("op", op).Msg("thread control failed")
		return 0, err
	}
	pe.state = next(prev)
	logger().Debug().Str("process_id", id).Str("op", op).Int("previous_count", prev).Stringer("state", pe.state).Msg("thread control")
	return prev, nil
}
