package runner

import (
	"io"
	"maps"
	"sync"
	"time"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/output_storage"
)

type StartResult struct {
	ID     string
	Status *lib.ProcessStatus
}

// Start launches req suspended, registers it under a new identifier and
// starts capturing its redirected output. The process does not run until Resume.
func (runner *Runner) Start(req *lib.LaunchRequest) (*StartResult, error) {
	if req == nil {
		return nil, lib.Errorf(lib.KindConfig, "Start", "nil launch request")
	}
	processId := lib.NewID()
	log := logger().With().Str("process_id", processId).Logger()

	request := *req
	request.Env = maps.Clone(req.Env)
	if req.Credential != nil {
		c := *req.Credential
		c.Password = ""
		request.Credential = &c
	}

	log.Debug().Str("executable", req.Executable).Msg("starting process")
	proc, err := runner.launcher.LaunchSuspended(req)
	if err != nil {
		log.Debug().Err(err).Msg("failed to start process")
		return nil, err
	}

	stdin, stdoutPipe, stderrPipe := proc.Streams()
	stdout := output_storage.RunNewOutputStorage()
	stderr := output_storage.RunNewOutputStorage()

	entry := &processEntry{
		id:      processId,
		request: request,
		proc:    proc,
		stdin:   stdin,
		state:   lib.ProcessStateSuspended,
		start:   time.Now(),
		pid:     proc.PID(),
		stdout:  stdout,
		stderr:  stderr,
	}

	var readers sync.WaitGroup
	for _, c := range []struct {
		name    string
		pipe    io.Reader
		storage *output_storage.OutputStorage
	}{
		{"stdout", stdoutPipe, stdout},
		{"stderr", stderrPipe, stderr},
	} {
		if c.pipe == nil {
			continue
		}
		c := c
		readers.Add(1)
		go func() {
			defer readers.Done()
			if _, err := c.storage.ReadFrom(c.pipe); err != nil {
				log.Debug().Err(err).Str("stream", c.name).Msg("output read failed")
			}
		}()
	}

	// Waiter
	go func() {
		code, err := proc.Wait()
		readers.Wait()
		stdout.Stop()
		stderr.Stop()

		entry.mu.Lock()
		if err != nil {
			log.Debug().Err(err).Msg("wait failed")
		} else {
			entry.exitCode = &code
		}
		now := time.Now()
		entry.end = &now
		entry.state = lib.ProcessStateStopped
		entry.mu.Unlock()

		log.Debug().Int("exit_code", code).Msg("process finished")
		if err := proc.Close(); err != nil {
			log.Debug().Err(err).Msg("release failed")
		}
	}()

	runner.mu.Lock()
	runner.processes[processId] = entry
	runner.mu.Unlock()

	status := entry.lockAndGetStatus()
	return &StartResult{ID: processId, Status: &status}, nil
}
