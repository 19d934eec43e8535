//go:build windows

package textstream

import "golang.org/x/sys/windows"

// InputCodePage is the console input code page, or the ANSI code page when
// the process has no console.
func InputCodePage() uint32 {
	if cp, err := windows.GetConsoleCP(); err == nil && cp != 0 {
		return cp
	}
	return windows.GetACP()
}

// OutputCodePage is the console output code page, or the ANSI code page when
// the process has no console.
func OutputCodePage() uint32 {
	if cp, err := windows.GetConsoleOutputCP(); err == nil && cp != 0 {
		return cp
	}
	return windows.GetACP()
}
