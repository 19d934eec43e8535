package lib

import "time"

// ProcessState mirrors the lifecycle of a process started suspended.
type ProcessState int

const (
	ProcessStateUnspecified ProcessState = iota
	ProcessStateSuspended
	ProcessStateRunning
	ProcessStateStopped
)

func (s ProcessState) String() string {
	switch s {
	case ProcessStateSuspended:
		return "Suspended"
	case ProcessStateRunning:
		return "Running"
	case ProcessStateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Redirect selects which standard streams of the child are wired to pipes.
type Redirect struct {
	Stdin  bool
	Stdout bool
	Stderr bool
}

// Any reports whether at least one stream is redirected.
func (r Redirect) Any() bool {
	return r.Stdin || r.Stdout || r.Stderr
}

// Credential identifies an alternate user to launch the child as.
type Credential struct {
	User     string `validate:"required"`
	Domain   string
	Password string
}

// LaunchRequest captures everything needed to create a suspended child process.
// It must not be modified once passed to a launcher.
type LaunchRequest struct {
	// Executable is the path of the program image.
	Executable string `validate:"required"`
	// Arguments is the already formatted argument string.
	Arguments string
	// WorkingDirectory defaults to the caller's current directory when empty.
	WorkingDirectory string
	// Env replaces the child environment when non-nil. Keys are case-insensitive.
	Env map[string]string
	// Redirect selects the streams wired to pipes.
	Redirect Redirect
	// Credential, when set, launches the child as another user.
	Credential *Credential
	// NoWindow suppresses creation of a console window for the child.
	NoWindow bool
}

// ProcessStatus captures runtime state and timestamps.
type ProcessStatus struct {
	State     ProcessState
	Pid       int
	ExitCode  *int
	StartTime time.Time
	EndTime   *time.Time
}
