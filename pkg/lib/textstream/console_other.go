//go:build !windows

package textstream

import "github.com/SanjoDeundiak/suspendable-process/pkg/lib/codepage"

func InputCodePage() uint32 {
	return codepage.UTF8
}

func OutputCodePage() uint32 {
	return codepage.UTF8
}
