//go:build windows

package codepage

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procWideCharToMultiByte = modkernel32.NewProc("WideCharToMultiByte")
	procGetCPInfoExW        = modkernel32.NewProc("GetCPInfoExW")
)

const (
	maxLeadBytes = 12
	maxPath      = 260
)

// cpInfoEx mirrors CPINFOEXW.
type cpInfoEx struct {
	MaxCharSize        uint32
	DefaultChar        [2]byte
	LeadByte           [maxLeadBytes]byte
	UnicodeDefaultChar uint16
	CodePage           uint32
	CodePageName       [maxPath]uint16
}

type nativeTable struct{}

func (nativeTable) info(id uint32) (Info, error) {
	var cp cpInfoEx
	r1, _, e1 := procGetCPInfoExW.Call(uintptr(id), 0, uintptr(unsafe.Pointer(&cp)))
	if r1 == 0 {
		return Info{}, e1
	}
	info := Info{
		ID:          id,
		Name:        windows.UTF16ToString(cp.CodePageName[:]),
		MaxCharSize: int(cp.MaxCharSize),
	}
	// Pairs of (low, high) terminated by two zero bytes.
	for i := 0; i+1 < len(cp.LeadByte); i += 2 {
		if cp.LeadByte[i] == 0 && cp.LeadByte[i+1] == 0 {
			break
		}
		info.LeadByteRanges = append(info.LeadByteRanges, ByteRange{Low: cp.LeadByte[i], High: cp.LeadByte[i+1]})
	}
	return info, nil
}

func (nativeTable) encode(id uint32, src []uint16, dst []byte) (int, error) {
	var out *byte
	if len(dst) > 0 {
		out = &dst[0]
	}
	r1, _, e1 := procWideCharToMultiByte.Call(
		uintptr(id),
		0,
		uintptr(unsafe.Pointer(&src[0])),
		uintptr(len(src)),
		uintptr(unsafe.Pointer(out)),
		uintptr(len(dst)),
		0,
		0,
	)
	if n := int32(r1); n > 0 {
		return int(n), nil
	}
	return 0, e1
}

func (nativeTable) decode(id uint32, src []byte, dst []uint16) (int, error) {
	var out *uint16
	if len(dst) > 0 {
		out = &dst[0]
	}
	n, err := windows.MultiByteToWideChar(id, 0, &src[0], int32(len(src)), out, int32(len(dst)))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
