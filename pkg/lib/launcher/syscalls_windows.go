//go:build windows

package launcher

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")
	modadvapi32 = windows.NewLazySystemDLL("advapi32.dll")

	procSuspendThread = modkernel32.NewProc("SuspendThread")
	procLogonUserW    = modadvapi32.NewProc("LogonUserW")
)

const (
	logon32LogonInteractive = 2
	logon32ProviderDefault  = 0
)

// syscalls holds the OS entry points used while creating a process, so tests
// can make any of them fail.
type syscalls struct {
	createPipe          func(r, w *windows.Handle, sa *windows.SecurityAttributes, size uint32) error
	duplicateHandle     func(srcProc, src, dstProc windows.Handle, dst *windows.Handle, access uint32, inherit bool, options uint32) error
	closeHandle         func(h windows.Handle) error
	getStdHandle        func(std uint32) (windows.Handle, error)
	createProcess       func(app, cmdline *uint16, procSA, threadSA *windows.SecurityAttributes, inherit bool, flags uint32, env, dir *uint16, si *windows.StartupInfo, pi *windows.ProcessInformation) error
	createProcessAsUser func(token windows.Token, app, cmdline *uint16, procSA, threadSA *windows.SecurityAttributes, inherit bool, flags uint32, env, dir *uint16, si *windows.StartupInfo, pi *windows.ProcessInformation) error
	terminateProcess    func(h windows.Handle, code uint32) error
	logonUser           func(user, domain, password *uint16, logonType, provider uint32, token *windows.Token) error
}

var defaultSyscalls = syscalls{
	createPipe:          windows.CreatePipe,
	duplicateHandle:     windows.DuplicateHandle,
	closeHandle:         windows.CloseHandle,
	getStdHandle:        windows.GetStdHandle,
	createProcess:       windows.CreateProcess,
	createProcessAsUser: windows.CreateProcessAsUser,
	terminateProcess:    windows.TerminateProcess,
	logonUser:           logonUser,
}

func logonUser(user, domain, password *uint16, logonType, provider uint32, token *windows.Token) error {
	r1, _, e1 := procLogonUserW.Call(
		uintptr(unsafe.Pointer(user)),
		uintptr(unsafe.Pointer(domain)),
		uintptr(unsafe.Pointer(password)),
		uintptr(logonType),
		uintptr(provider),
		uintptr(unsafe.Pointer(token)),
	)
	if r1 == 0 {
		return e1
	}
	return nil
}
