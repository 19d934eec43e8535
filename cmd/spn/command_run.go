package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/launcher"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/runner"
)

type runOptions struct {
	redirect lib.Redirect
	noWindow bool
	dir      string
	env      []string
	user     string
	domain   string
	hold     time.Duration
	pause    bool
}

func newRunCmd(cfg *Config) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] -- <executable> [args...]",
		Short: "Launch a process suspended, then resume it",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("executable is required; use -- to separate CLI flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(args, cfg.Password)
			if err != nil {
				return err
			}
			code, err := runSuspended(cmd.Context(), runner.NewDefaultRunner(), req, &opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.redirect.Stdin, "stdin", false, "pipe this terminal's input to the child")
	f.BoolVar(&opts.redirect.Stdout, "stdout", false, "capture the child's stdout")
	f.BoolVar(&opts.redirect.Stderr, "stderr", false, "capture the child's stderr")
	f.BoolVar(&opts.noWindow, "no-window", false, "do not create a console window")
	f.StringVar(&opts.dir, "dir", "", "working directory (defaults to the current one)")
	f.StringArrayVar(&opts.env, "env", nil, "replace the environment with KEY=VALUE pairs (repeatable)")
	f.StringVar(&opts.user, "user", "", "run as this user; the password is read from SPN_PASSWORD")
	f.StringVar(&opts.domain, "domain", "", "domain of --user")
	f.DurationVar(&opts.hold, "hold", 0, "keep the process suspended for this long")
	f.BoolVar(&opts.pause, "pause", false, "keep the process suspended until Enter is pressed")

	return cmd
}

func (o *runOptions) request(args []string, password string) (*lib.LaunchRequest, error) {
	env, err := parseEnv(o.env)
	if err != nil {
		return nil, err
	}
	req := &lib.LaunchRequest{
		Executable:       args[0],
		Arguments:        launcher.ComposeArguments(args[1:]),
		WorkingDirectory: o.dir,
		Env:              env,
		Redirect:         o.redirect,
		NoWindow:         o.noWindow,
	}
	if o.user != "" {
		req.Credential = &lib.Credential{User: o.user, Domain: o.domain, Password: password}
	} else if o.domain != "" {
		return nil, errors.New("--domain requires --user")
	}
	return req, nil
}

// parseEnv turns KEY=VALUE pairs into an environment map. No pairs means
// the child inherits this process's environment.
func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, p := range pairs {
		// a leading '=' belongs to the key, as in the per-drive variables
		i := strings.IndexByte(p[min(1, len(p)):], '=')
		if i < 0 {
			return nil, fmt.Errorf("invalid --env %q: expected KEY=VALUE", p)
		}
		i += min(1, len(p))
		env[p[:i]] = p[i+1:]
	}
	return env, nil
}

// runSuspended drives one child from launch to exit. Cancelling ctx stops
// the child and drops the output subscriptions.
func runSuspended(ctx context.Context, r *runner.Runner, req *lib.LaunchRequest, opts *runOptions, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	res, err := r.Start(req)
	if err != nil {
		return 0, err
	}
	printLaunch(stderr, res.ID, res.Status)

	in := bufio.NewReader(stdin)
	if opts.hold > 0 {
		select {
		case <-time.After(opts.hold):
		case <-ctx.Done():
			_, _ = r.Stop(res.ID)
			return 0, ctx.Err()
		}
	}
	if opts.pause {
		fmt.Fprint(stderr, "suspended; press Enter to resume ")
		if _, err := in.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
	}

	outCh, errCh, err := r.OutputContext(ctx, res.ID)
	if err != nil {
		return 0, err
	}

	if opts.redirect.Stdin {
		w, err := r.Input(res.ID)
		if err != nil {
			return 0, err
		}
		go func() {
			_, _ = io.Copy(w, in)
			_ = w.Close()
		}()
	}

	if _, err := r.Resume(res.ID); err != nil {
		_, _ = r.Stop(res.ID)
		return 0, err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go drain(&wg, outCh, stdout)
	go drain(&wg, errCh, stderr)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		_, _ = r.Stop(res.ID)
		return 0, err
	}

	for {
		st, err := r.Status(res.ID)
		if err != nil {
			return 0, err
		}
		if st.Status.State == lib.ProcessStateStopped {
			if st.Status.ExitCode == nil {
				return 0, errors.New("exit code unavailable")
			}
			return *st.Status.ExitCode, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func drain(wg *sync.WaitGroup, ch <-chan []byte, w io.Writer) {
	defer wg.Done()
	for b := range ch {
		_, _ = w.Write(b)
	}
}
