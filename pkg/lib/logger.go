package lib

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// loggerSet is a base logger plus the component loggers derived from it.
// SetLogger swaps the whole set so stale children are never returned.
type loggerSet struct {
	base       zerolog.Logger
	components sync.Map // string -> *zerolog.Logger
}

var loggers atomic.Pointer[loggerSet]

func init() {
	loggers.Store(&loggerSet{base: zerolog.Nop()})
}

// SetLogger installs the logger used by every package of this module.
// Logging is disabled until a logger is installed.
func SetLogger(l zerolog.Logger) {
	loggers.Store(&loggerSet{base: l})
}

// Logger returns the module logger tagged with the given component name.
// The result is shared; derive a child with With before adding fields.
func Logger(component string) *zerolog.Logger {
	set := loggers.Load()
	if l, ok := set.components.Load(component); ok {
		return l.(*zerolog.Logger)
	}
	l := set.base.With().Str("component", component).Logger()
	actual, _ := set.components.LoadOrStore(component, &l)
	return actual.(*zerolog.Logger)
}
