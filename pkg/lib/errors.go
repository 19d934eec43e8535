package lib

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrorKind classifies failures reported by the launcher and the codec.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindOsCreation: the process creation call itself failed.
	KindOsCreation
	// KindPipe: pipe creation or duplication failed.
	KindPipe
	// KindSuspendResume: a thread-control call returned the invalid-count sentinel.
	KindSuspendResume
	// KindCodec: a conversion received invalid arguments or the OS conversion failed.
	KindCodec
	// KindConfig: the launch request is malformed.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindOsCreation:
		return "os creation failure"
	case KindPipe:
		return "pipe failure"
	case KindSuspendResume:
		return "suspend/resume failure"
	case KindCodec:
		return "codec failure"
	case KindConfig:
		return "config error"
	default:
		return "unknown failure"
	}
}

// Error is the single error type surfaced by this module.
// Code holds the platform error code when one was captured.
type Error struct {
	Kind ErrorKind
	Op   string
	Code uint32
	Err  error
}

var (
	ErrOsCreation    = &Error{Kind: KindOsCreation}
	ErrPipe          = &Error{Kind: KindPipe}
	ErrSuspendResume = &Error{Kind: KindSuspendResume}
	ErrCodec         = &Error{Kind: KindCodec}
	ErrConfig        = &Error{Kind: KindConfig}

	// ErrUnsupported is returned by launch operations on platforms other than Windows.
	ErrUnsupported = fmt.Errorf("suspended launch requires windows: %w", errors.ErrUnsupported)
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds an Error of the given kind. The platform code is taken from
// a syscall.Errno anywhere in err's chain.
func NewError(kind ErrorKind, op string, err error) *Error {
	e := &Error{Kind: kind, Op: op, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = uint32(errno)
	}
	return e
}

// Errorf builds an Error of the given kind from a formatted message.
func Errorf(kind ErrorKind, op string, format string, args ...any) *Error {
	return NewError(kind, op, fmt.Errorf(format, args...))
}
