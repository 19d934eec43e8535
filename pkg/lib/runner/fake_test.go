package runner

import (
	"errors"
	"io"
	"sync"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// script is the body of a fake child; it runs once the process is resumed.
type script func(stdin io.Reader, stdout, stderr io.Writer) int

type fakeLauncher struct {
	mu       sync.Mutex
	script   script
	err      error
	requests []*lib.LaunchRequest
	procs    []*fakeProcess
}

func (f *fakeLauncher) LaunchSuspended(req *lib.LaunchRequest) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	p := newFakeProcess(1000+len(f.procs), req.Redirect, f.script)
	f.procs = append(f.procs, p)
	return p, nil
}

type fakeProcess struct {
	pid    int
	script script

	mu       sync.Mutex
	count    int
	ran      bool
	code     int
	exitOnce sync.Once
	exited   chan struct{}
	closed   bool

	stdinR           *io.PipeReader
	stdinW           *io.PipeWriter
	stdoutR, stderrR *io.PipeReader
	stdoutW, stderrW *io.PipeWriter
}

func newFakeProcess(pid int, r lib.Redirect, s script) *fakeProcess {
	p := &fakeProcess{pid: pid, script: s, count: 1, exited: make(chan struct{})}
	if r.Stdin {
		p.stdinR, p.stdinW = io.Pipe()
	}
	if r.Stdout {
		p.stdoutR, p.stdoutW = io.Pipe()
	}
	if r.Stderr {
		p.stderrR, p.stderrW = io.Pipe()
	}
	return p
}

func (p *fakeProcess) PID() int {
	return p.pid
}

func (p *fakeProcess) Resume() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		return 0, nil
	}
	prev := p.count
	p.count--
	if p.count == 0 && !p.ran {
		p.ran = true
		go p.run()
	}
	return prev, nil
}

func (p *fakeProcess) Suspend() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.count
	p.count++
	return prev, nil
}

func (p *fakeProcess) run() {
	var (
		stdin          io.Reader = eofReader{}
		stdout, stderr io.Writer = io.Discard, io.Discard
	)
	if p.stdinR != nil {
		stdin = p.stdinR
	}
	if p.stdoutW != nil {
		stdout = p.stdoutW
	}
	if p.stderrW != nil {
		stderr = p.stderrW
	}
	code := 0
	if p.script != nil {
		code = p.script(stdin, stdout, stderr)
	}
	p.exit(code)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (p *fakeProcess) exit(code int) {
	p.exitOnce.Do(func() {
		p.mu.Lock()
		p.code = code
		p.mu.Unlock()
		for _, w := range []*io.PipeWriter{p.stdoutW, p.stderrW} {
			if w != nil {
				w.Close()
			}
		}
		if p.stdinR != nil {
			p.stdinR.Close()
		}
		close(p.exited)
	})
}

func (p *fakeProcess) Wait() (int, error) {
	<-p.exited
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code, nil
}

func (p *fakeProcess) Terminate(code uint32) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return errors.New("process handle released")
	}
	p.exit(int(code))
	return nil
}

func (p *fakeProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.stdinW != nil {
		p.stdinW.Close()
	}
	return nil
}

func (p *fakeProcess) Streams() (io.WriteCloser, io.Reader, io.Reader) {
	var (
		stdin          io.WriteCloser
		stdout, stderr io.Reader
	)
	if p.stdinW != nil {
		stdin = p.stdinW
	}
	if p.stdoutR != nil {
		stdout = p.stdoutR
	}
	if p.stderrR != nil {
		stderr = p.stderrR
	}
	return stdin, stdout, stderr
}

func (p *fakeProcess) hasRun() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ran
}
