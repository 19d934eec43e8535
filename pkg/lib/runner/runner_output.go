package runner

import (
	"context"
	"errors"
	"io"
)

// ErrNoStdin is returned by Input for a process launched without a stdin pipe.
var ErrNoStdin = errors.New("stdin is not redirected")

// Output subscribes to stdout and stderr. Both channels replay everything
// captured so far and close once the process has exited and its output is drained.
func (runner *Runner) Output(id string) (<-chan []byte, <-chan []byte, error) {
	return runner.OutputContext(context.Background(), id)
}

// OutputContext is Output with a cancellable lifetime: cancelling ctx closes
// both channels early and releases the subscriptions.
func (runner *Runner) OutputContext(ctx context.Context, id string) (<-chan []byte, <-chan []byte, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, nil, err
	}
	log := logger()
	log.Debug().Str("process_id", id).Msg("output subscription")
	return pe.stdout.SubscribeContext(ctx, 5), pe.stderr.SubscribeContext(ctx, 5), nil
}

// Input returns the writer connected to the child's stdin.
func (runner *Runner) Input(id string) (io.WriteCloser, error) {
	pe, err := runner.getProcess(id)
	if err != nil {
		return nil, err
	}
	if pe.stdin == nil {
		return nil, ErrNoStdin
	}
	return pe.stdin, nil
}
