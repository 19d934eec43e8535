//go:build windows

package launcher

import (
	"os"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/textstream"
)

func commandLine(req *lib.LaunchRequest) string {
	cmd := windows.EscapeArg(req.Executable)
	if req.Arguments != "" {
		cmd += " " + req.Arguments
	}
	return cmd
}

// ComposeArguments quotes args for a command line the way the C runtime
// parses it back.
func ComposeArguments(args []string) string {
	return windows.ComposeCommandLine(args)
}

func (l *Launcher) launch(req *lib.LaunchRequest, log zerolog.Logger) (*Process, error) {
	cmdline, err := windows.UTF16PtrFromString(commandLine(req))
	if err != nil {
		return nil, lib.NewError(lib.KindConfig, "command line", err)
	}

	dir := req.WorkingDirectory
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, lib.NewError(lib.KindConfig, "working directory", err)
		}
	}
	dirp, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return nil, lib.NewError(lib.KindConfig, "working directory", err)
	}

	var envp *uint16
	if req.Env != nil {
		block := environmentBlock(req.Env)
		envp = &block[0]
	}

	var inEnc, outEnc *textstream.ConsoleEncoding
	if req.Redirect.Stdin {
		if inEnc, err = textstream.Resolve(textstream.InputCodePage()); err != nil {
			return nil, err
		}
	}
	if req.Redirect.Stdout || req.Redirect.Stderr {
		if outEnc, err = textstream.Resolve(textstream.OutputCodePage()); err != nil {
			return nil, err
		}
	}

	var token windows.Token
	if req.Credential != nil {
		if token, err = l.logon(req.Credential); err != nil {
			return nil, err
		}
		defer token.Close()
		log.Debug().Str("user", req.Credential.User).Str("domain", req.Credential.Domain).Msg("logged on")
	}

	stdio, pi, err := l.create(req, cmdline, dirp, envp, token)
	if err != nil {
		return nil, err
	}
	log.Debug().Uint32("pid", pi.ProcessId).Uint32("tid", pi.ThreadId).Msg("created")

	if pi.Process == 0 || pi.Process == windows.InvalidHandle {
		if pi.Thread != 0 && pi.Thread != windows.InvalidHandle {
			l.sys.closeHandle(pi.Thread)
		}
		stdio.closeParent()
		return nil, lib.Errorf(lib.KindOsCreation, "CreateProcess", "invalid process handle")
	}
	if pi.Thread == 0 || pi.Thread == windows.InvalidHandle {
		// A suspended child without its thread handle can never run.
		l.sys.terminateProcess(pi.Process, 1)
		l.sys.closeHandle(pi.Process)
		stdio.closeParent()
		return nil, lib.Errorf(lib.KindOsCreation, "CreateProcess", "invalid thread handle")
	}

	p := &Process{
		Pid:    int(pi.ProcessId),
		handle: pi.Process,
		thread: &Thread{handle: pi.Thread, ID: pi.ThreadId},
	}
	if h := stdio.parent(0); h != 0 {
		p.Stdin = textstream.NewWriter(os.NewFile(uintptr(h), "|0"), inEnc)
	}
	if h := stdio.parent(1); h != 0 {
		p.Stdout = textstream.NewReader(os.NewFile(uintptr(h), "|1"), outEnc)
	}
	if h := stdio.parent(2); h != 0 {
		p.Stderr = textstream.NewReader(os.NewFile(uintptr(h), "|2"), outEnc)
	}
	return p, nil
}

// create runs pipe and process creation under the launch lock. The child
// ends of the pipes are closed before the lock is released.
func (l *Launcher) create(req *lib.LaunchRequest, cmdline, dir, env *uint16, token windows.Token) (*stdioSet, *windows.ProcessInformation, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	stdio, err := openStdio(l.sys, req.Redirect)
	if err != nil {
		return nil, nil, err
	}
	defer stdio.closeChild()

	si := new(windows.StartupInfo)
	si.Cb = uint32(unsafe.Sizeof(*si))
	if req.Redirect.Any() {
		si.Flags = windows.STARTF_USESTDHANDLES
		si.StdInput = stdio.child(0)
		si.StdOutput = stdio.child(1)
		si.StdErr = stdio.child(2)
	}

	pi := new(windows.ProcessInformation)
	flags := creationFlags(req)
	op := "CreateProcess"
	if token != 0 {
		op = "CreateProcessAsUser"
		err = l.sys.createProcessAsUser(token, nil, cmdline, nil, nil, true, flags, env, dir, si, pi)
	} else {
		err = l.sys.createProcess(nil, cmdline, nil, nil, true, flags, env, dir, si, pi)
	}
	if err != nil {
		stdio.closeParent()
		return nil, nil, lib.NewError(lib.KindOsCreation, op, err)
	}
	return stdio, pi, nil
}

func (l *Launcher) logon(c *lib.Credential) (windows.Token, error) {
	user, err := windows.UTF16PtrFromString(c.User)
	if err != nil {
		return 0, lib.NewError(lib.KindConfig, "LogonUser", err)
	}
	var domain *uint16
	if c.Domain != "" {
		if domain, err = windows.UTF16PtrFromString(c.Domain); err != nil {
			return 0, lib.NewError(lib.KindConfig, "LogonUser", err)
		}
	}
	password, err := windows.UTF16FromString(c.Password)
	if err != nil {
		return 0, lib.NewError(lib.KindConfig, "LogonUser", err)
	}
	defer clear(password)

	var token windows.Token
	if err := l.sys.logonUser(user, domain, &password[0], logon32LogonInteractive, logon32ProviderDefault, &token); err != nil {
		return 0, lib.NewError(lib.KindOsCreation, "LogonUser", err)
	}
	return token, nil
}
