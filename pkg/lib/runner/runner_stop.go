package runner

import (
	"time"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// StopResult returns process info and its final status after Stop.
type StopResult struct {
	Request *lib.LaunchRequest
	Status  *lib.ProcessStatus
}

// terminatedExitCode is the exit code given to processes ended by Stop.
const terminatedExitCode = 1

// Stop terminates the process and returns its final status, or the current
// one if it has already stopped. A suspended process is terminated without
// ever running.
func (runner *Runner) Stop(id string) (*StopResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	res := StopResult{Request: &pe.request}

	pe.mu.RLock()
	alreadyStopped := pe.state == lib.ProcessStateStopped
	pe.mu.RUnlock()
	if alreadyStopped {
		st := pe.lockAndGetStatus()
		res.Status = &st
		return &res, nil
	}

	if err := pe.proc.Terminate(terminatedExitCode); err != nil {
		// The process may have exited and been released since the check above.
		if st := pe.lockAndGetStatus(); st.State == lib.ProcessStateStopped {
			res.Status = &st
			return &res, nil
		}
		return nil, err
	}

	// Wait briefly for the waiter to record the exit.
	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		st := pe.lockAndGetStatus()
		res.Status = &st
		if st.State == lib.ProcessStateStopped {
			return &res, nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	st := pe.lockAndGetStatus()
	res.Status = &st
	return &res, nil
}
