//go:build windows

package launcher

import (
	"os"

	"golang.org/x/sys/windows"
)

type osHandle = windows.Handle

const waitTimeout = 0x00000102

func resumeThread(h osHandle) (uint32, error) {
	return windows.ResumeThread(h)
}

func suspendThread(h osHandle) (uint32, error) {
	r1, _, e1 := procSuspendThread.Call(uintptr(h))
	return uint32(r1), e1
}

func closeHandle(h osHandle) error {
	return windows.CloseHandle(h)
}

func waitProcess(h osHandle) (int, error) {
	if _, err := windows.WaitForSingleObject(h, windows.INFINITE); err != nil {
		return 0, os.NewSyscallError("WaitForSingleObject", err)
	}
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return 0, os.NewSyscallError("GetExitCodeProcess", err)
	}
	return int(code), nil
}

func exitCode(h osHandle) (int, bool, error) {
	ev, err := windows.WaitForSingleObject(h, 0)
	if err != nil {
		return 0, false, os.NewSyscallError("WaitForSingleObject", err)
	}
	if ev == waitTimeout {
		return 0, false, nil
	}
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return 0, false, os.NewSyscallError("GetExitCodeProcess", err)
	}
	return int(code), true, nil
}

func terminateProcess(h osHandle, code uint32) error {
	if err := windows.TerminateProcess(h, code); err != nil {
		return os.NewSyscallError("TerminateProcess", err)
	}
	return nil
}
