// Package codepage converts between UTF-16 text and the byte encoding of a
// single operating-system code page, including the stateful encoder and
// decoder needed when multi-byte sequences are split across calls.
package codepage

import (
	"fmt"
	"sync"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

const (
	// UTF8 is the universal code page.
	UTF8 uint32 = 65001
	// UTF16LE and UTF16BE are the wide-character code pages.
	UTF16LE uint32 = 1200
	UTF16BE uint32 = 1201

	// MaxBytesPerChar and MaxCharsPerByte bound every code page the OS knows about.
	MaxBytesPerChar = 14
	MaxCharsPerByte = 4
)

// ByteRange is an inclusive range of lead-byte values.
type ByteRange struct {
	Low, High byte
}

// Info describes one code page.
type Info struct {
	ID             uint32
	Name           string
	MaxCharSize    int
	LeadByteRanges []ByteRange
}

// DefaultName is used when the OS supplies no name for a code page.
func DefaultName(id uint32) string {
	return fmt.Sprintf("Codepage - %d", id)
}

// IsLeadByte reports whether b starts a two-byte sequence.
func (i Info) IsLeadByte(b byte) bool {
	for _, r := range i.LeadByteRanges {
		if b >= r.Low && b <= r.High {
			return true
		}
	}
	return false
}

// IsDBCS reports whether the code page is one of the double-byte character
// sets whose decoder must carry a split lead byte between calls.
func (i Info) IsDBCS() bool {
	return IsDBCS(i.ID) && len(i.LeadByteRanges) > 0
}

// IsDBCS reports whether id names a known double-byte character set.
func IsDBCS(id uint32) bool {
	switch id {
	case 932, // Japanese (Shift-JIS)
		936,   // Chinese Simplified (GB2312)
		949,   // Korean
		950,   // Chinese Traditional (Big5)
		1361,  // Korean (Johab)
		10001, // Japanese (Mac)
		10002, // Chinese Traditional (Mac)
		10003, // Korean (Mac)
		10008, // Chinese Simplified (Mac)
		20000, // Chinese Traditional (CNS)
		20001, // TCA Taiwan
		20002, // Chinese Traditional (Eten)
		20003, // IBM5550 Taiwan
		20004, // TeleText Taiwan
		20005, // Wang Taiwan
		20261, // T.61
		20932, // Japanese (JIS 0208-1990 and 0212-1990)
		20936, // Chinese Simplified (GB2312-80)
		51949: // Korean (EUC)
		return true
	}
	return false
}

var infoCache sync.Map // uint32 -> Info

// Lookup returns the metadata of a code page, querying the platform table once
// per code page.
func Lookup(id uint32) (Info, error) {
	if v, ok := infoCache.Load(id); ok {
		return v.(Info), nil
	}
	info, err := platform.info(id)
	if err != nil {
		return Info{}, lib.NewError(lib.KindCodec, fmt.Sprintf("code page %d", id), err)
	}
	if info.Name == "" {
		info.Name = DefaultName(id)
	}
	infoCache.Store(id, info)
	return info, nil
}
