package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

func readAll(t *testing.T, ch <-chan []byte) string {
	t.Helper()
	var out []byte
	for b := range ch {
		out = append(out, b...)
	}
	return string(out)
}

func waitStopped(t *testing.T, r *Runner, id string) *lib.ProcessStatus {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		st, err := r.Status(id)
		if err != nil {
			t.Fatalf("Status error: %v", err)
		}
		if st.Status.State == lib.ProcessStateStopped {
			return st.Status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("process %s did not stop in time", id)
	return nil
}

func redirectAll() lib.Redirect {
	return lib.Redirect{Stdin: true, Stdout: true, Stderr: true}
}

func TestStartSuspendedAndOutput(t *testing.T) {
	l := &fakeLauncher{script: func(_ io.Reader, stdout, stderr io.Writer) int {
		fmt.Fprint(stdout, "out\n")
		fmt.Fprint(stderr, "err\n")
		return 3
	}}
	r := NewRunner(l)

	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: redirectAll()})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	st := res.Status
	if st.State != lib.ProcessStateSuspended || st.ExitCode != nil || st.EndTime != nil {
		t.Fatalf("unexpected initial status %+v", st)
	}
	if st.Pid != 1000 {
		t.Fatalf("expected pid 1000, got %d", st.Pid)
	}

	time.Sleep(20 * time.Millisecond)
	if l.procs[0].hasRun() {
		t.Fatalf("process ran before Resume")
	}

	stdout, stderr, err := r.Output(res.ID)
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	prev, err := r.Resume(res.ID)
	if err != nil || prev != 1 {
		t.Fatalf("Resume = %d, %v", prev, err)
	}

	final := waitStopped(t, r, res.ID)
	if final.ExitCode == nil || *final.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %v", final.ExitCode)
	}
	if final.EndTime == nil {
		t.Fatalf("expected end time after completion")
	}
	if got := readAll(t, stdout); got != "out\n" {
		t.Fatalf("stdout: got %q", got)
	}
	if got := readAll(t, stderr); got != "err\n" {
		t.Fatalf("stderr: got %q", got)
	}
}

func TestSuspendResumeState(t *testing.T) {
	block := make(chan struct{})
	l := &fakeLauncher{script: func(io.Reader, io.Writer, io.Writer) int {
		<-block
		return 0
	}}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	steps := []struct {
		op    func(string) (int, error)
		prev  int
		state lib.ProcessState
	}{
		{r.Suspend, 1, lib.ProcessStateSuspended},
		{r.Resume, 2, lib.ProcessStateSuspended},
		{r.Resume, 1, lib.ProcessStateRunning},
		{r.Suspend, 0, lib.ProcessStateSuspended},
		{r.Resume, 1, lib.ProcessStateRunning},
	}
	for i, s := range steps {
		prev, err := s.op(res.ID)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if prev != s.prev {
			t.Fatalf("step %d: expected previous count %d, got %d", i, s.prev, prev)
		}
		st, _ := r.Status(res.ID)
		if st.Status.State != s.state {
			t.Fatalf("step %d: expected %v, got %v", i, s.state, st.Status.State)
		}
	}

	close(block)
	waitStopped(t, r, res.ID)
	if _, err := r.Resume(res.ID); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestStopSuspendedProcess(t *testing.T) {
	l := &fakeLauncher{script: func(io.Reader, io.Writer, io.Writer) int { return 0 }}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: lib.Redirect{Stdout: true}})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stop, err := r.Stop(res.ID)
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if stop.Status.State != lib.ProcessStateStopped {
		t.Fatalf("expected Stopped, got %v", stop.Status.State)
	}
	if stop.Status.ExitCode == nil || *stop.Status.ExitCode != terminatedExitCode {
		t.Fatalf("expected exit code %d, got %v", terminatedExitCode, stop.Status.ExitCode)
	}
	if l.procs[0].hasRun() {
		t.Fatalf("stopped process should never have run")
	}

	again, err := r.Stop(res.ID)
	if err != nil || again.Status.State != lib.ProcessStateStopped {
		t.Fatalf("second Stop = %+v, %v", again, err)
	}
}

func TestInput(t *testing.T) {
	l := &fakeLauncher{script: func(stdin io.Reader, stdout, _ io.Writer) int {
		io.Copy(stdout, stdin)
		return 0
	}}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: redirectAll()})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	stdout, _, _ := r.Output(res.ID)
	r.Resume(res.ID)

	in, err := r.Input(res.ID)
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	io.WriteString(in, "ping\n")
	in.Close()

	if got := readAll(t, stdout); got != "ping\n" {
		t.Fatalf("expected echoed input, got %q", got)
	}
}

func TestOutputContextCancelWhileRunning(t *testing.T) {
	l := &fakeLauncher{script: func(stdin io.Reader, stdout, _ io.Writer) int {
		io.WriteString(stdout, "ready\n")
		io.Copy(stdout, stdin)
		return 0
	}}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: redirectAll()})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	stdout, stderr, err := r.OutputContext(ctx, res.ID)
	if err != nil {
		t.Fatalf("OutputContext failed: %v", err)
	}
	r.Resume(res.ID)

	select {
	case b := <-stdout:
		if string(b) != "ready\n" {
			t.Fatalf("unexpected first chunk %q", b)
		}
	case <-time.After(time.Second):
		t.Fatalf("no output before cancel")
	}

	cancel()
	for _, ch := range []<-chan []byte{stdout, stderr} {
		done := make(chan struct{})
		go func() {
			for range ch {
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("channel not closed after cancel while the process runs")
		}
	}
	if st, _ := r.Status(res.ID); st.Status.State != lib.ProcessStateRunning {
		t.Fatalf("cancelling a subscription must not affect the process, state %v", st.Status.State)
	}

	in, _ := r.Input(res.ID)
	io.WriteString(in, "bye\n")
	in.Close()
	waitStopped(t, r, res.ID)

	// A fresh subscription still replays everything.
	all, _, _ := r.Output(res.ID)
	if got := readAll(t, all); got != "ready\nbye\n" {
		t.Fatalf("expected full replay, got %q", got)
	}
}

func TestInputNotRedirected(t *testing.T) {
	r := NewRunner(&fakeLauncher{})
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe"})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := r.Input(res.ID); !errors.Is(err, ErrNoStdin) {
		t.Fatalf("expected ErrNoStdin, got %v", err)
	}
	r.Stop(res.ID)
}

func TestUnknownProcess(t *testing.T) {
	r := NewRunner(&fakeLauncher{})
	if _, err := r.Status("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Status: expected ErrNotExist, got %v", err)
	}
	if _, err := r.Resume("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Resume: expected ErrNotExist, got %v", err)
	}
	if _, _, err := r.Output("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Output: expected ErrNotExist, got %v", err)
	}
	if _, err := r.Stop("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Stop: expected ErrNotExist, got %v", err)
	}
}

func TestStartLaunchFailure(t *testing.T) {
	l := &fakeLauncher{err: lib.Errorf(lib.KindOsCreation, "CreateProcess", "boom")}
	r := NewRunner(l)

	if _, err := r.Start(&lib.LaunchRequest{Executable: "child.exe"}); !errors.Is(err, lib.ErrOsCreation) {
		t.Fatalf("expected creation failure, got %v", err)
	}
	if _, err := r.Start(nil); !errors.Is(err, lib.ErrConfig) {
		t.Fatalf("expected config error for nil request, got %v", err)
	}
	if ids := r.List(); len(ids) != 0 {
		t.Fatalf("failed launches must not be registered: %v", ids)
	}
}

func TestStoredRequestDropsPassword(t *testing.T) {
	l := &fakeLauncher{}
	r := NewRunner(l)
	req := &lib.LaunchRequest{
		Executable: "child.exe",
		Env:        map[string]string{"A": "1"},
		Credential: &lib.Credential{User: "alice", Password: "secret"},
	}
	res, err := r.Start(req)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(res.ID)

	if l.requests[0].Credential.Password != "secret" {
		t.Fatalf("launcher must receive the password")
	}
	st, _ := r.Status(res.ID)
	if st.Request.Credential.Password != "" || st.Request.Credential.User != "alice" {
		t.Fatalf("unexpected stored credential %+v", st.Request.Credential)
	}
	req.Env["A"] = "2"
	if st.Request.Env["A"] != "1" {
		t.Fatalf("stored request must not alias the caller's map")
	}
}

func TestStdout_LateSubscriberReceivesBacklog(t *testing.T) {
	l := &fakeLauncher{script: func(_ io.Reader, stdout, _ io.Writer) int {
		for i := 1; i <= 4; i++ {
			fmt.Fprintf(stdout, "%d\n", i)
			time.Sleep(30 * time.Millisecond)
		}
		return 0
	}}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: lib.Redirect{Stdout: true}})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ch1, _, _ := r.Output(res.ID)
	r.Resume(res.ID)
	time.Sleep(70 * time.Millisecond)
	ch2, _, _ := r.Output(res.ID)

	var wg sync.WaitGroup
	var s1, s2 string
	wg.Add(2)
	go func() { defer wg.Done(); s1 = readAll(t, ch1) }()
	go func() { defer wg.Done(); s2 = readAll(t, ch2) }()
	waitStopped(t, r, res.ID)
	wg.Wait()

	const want = "1\n2\n3\n4\n"
	if s1 != want || s2 != want {
		t.Fatalf("subscribers mismatch:\nch1=%q\nch2=%q\nwant=%q", s1, s2, want)
	}
}

func TestStdout_ConcurrentSubscribers(t *testing.T) {
	l := &fakeLauncher{script: func(_ io.Reader, stdout, _ io.Writer) int {
		for i := 1; i <= 100; i++ {
			fmt.Fprintf(stdout, "%d\n", i)
		}
		return 0
	}}
	r := NewRunner(l)
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: lib.Redirect{Stdout: true}})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	const subs = 5
	outs := make([]string, subs)
	var wg sync.WaitGroup
	wg.Add(subs)
	for i := 0; i < subs; i++ {
		ch, _, err := r.Output(res.ID)
		if err != nil {
			t.Fatalf("Output(%d) failed: %v", i, err)
		}
		i := i
		go func() { defer wg.Done(); outs[i] = readAll(t, ch) }()
	}
	r.Resume(res.ID)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timeout waiting for subscribers to finish")
	}

	for i := 1; i < subs; i++ {
		if outs[i] != outs[0] {
			t.Fatalf("subscriber outputs differ: %q vs %q", outs[i], outs[0])
		}
	}
	if len(outs[0]) < 4 || outs[0][len(outs[0])-4:] != "100\n" {
		t.Fatalf("unexpected output ending: %q", outs[0])
	}
}

func TestNoOutputChannelsClose(t *testing.T) {
	r := NewRunner(&fakeLauncher{})
	res, err := r.Start(&lib.LaunchRequest{Executable: "child.exe", Redirect: redirectAll()})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	outCh, errCh, _ := r.Output(res.ID)
	r.Resume(res.ID)

	done := make(chan struct{})
	var outS, errS string
	go func() {
		outS = readAll(t, outCh)
		errS = readAll(t, errCh)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("channels did not close for no-output process")
	}
	if outS != "" || errS != "" {
		t.Fatalf("expected no data, got stdout=%q stderr=%q", outS, errS)
	}
}
