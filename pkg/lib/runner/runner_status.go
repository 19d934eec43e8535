package runner

import (
	"os"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

type StatusResult struct {
	Request *lib.LaunchRequest
	Status  *lib.ProcessStatus
}

// Status returns the launch request and current status by identifier.
func (runner *Runner) Status(id string) (*StatusResult, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}

	status := pe.lockAndGetStatus()
	return &StatusResult{Request: &pe.request, Status: &status}, nil
}

// List returns the identifiers of every registered process.
func (runner *Runner) List() []string {
	runner.mu.RLock()
	defer runner.mu.RUnlock()
	ids := make([]string, 0, len(runner.processes))
	for id := range runner.processes {
		ids = append(ids, id)
	}
	return ids
}

func (runner *Runner) getProcess(id string) (*processEntry, error) {
	runner.mu.RLock()
	pe := runner.processes[id]
	runner.mu.RUnlock()
	if pe == nil {
		return nil, os.ErrNotExist
	}
	return pe, nil
}

func (pe *processEntry) lockAndGetStatus() lib.ProcessStatus {
	pe.mu.RLock()
	defer pe.mu.RUnlock()

	st := lib.ProcessStatus{State: pe.state, Pid: pe.pid, StartTime: pe.start}
	if pe.exitCode != nil {
		code := *pe.exitCode
		st.ExitCode = &code
	}
	if pe.end != nil {
		t := *pe.end
		st.EndTime = &t
	}
	return st
}
