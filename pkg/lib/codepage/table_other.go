//go:build !windows

package codepage

import (
	"syscall"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// leadBytes lists the lead-byte ranges the OS reports for the double-byte
// sets the registry can convert.
var leadBytes = map[uint32][]ByteRange{
	932:   {{0x81, 0x9F}, {0xE0, 0xFC}},
	936:   {{0x81, 0xFE}},
	949:   {{0x81, 0xFE}},
	950:   {{0x81, 0xFE}},
	20932: {{0x8E, 0x8E}, {0xA1, 0xFE}},
}

// nativeTable converts through golang.org/x/text when the OS has no code-page API.
// Only pages listed in named are known.
type nativeTable struct{}

func tableEncoding(id uint32) (encoding.Encoding, bool) {
	if id == UTF8 {
		return unicode.UTF8, true
	}
	n, ok := named[id]
	return n.enc, ok
}

func (nativeTable) info(id uint32) (Info, error) {
	if id == UTF8 {
		return Info{ID: id, Name: "Unicode (UTF-8)", MaxCharSize: 4}, nil
	}
	n, ok := named[id]
	if !ok {
		return Info{}, syscall.EINVAL
	}
	return Info{
		ID:             id,
		Name:           encodingName(n.enc, id),
		MaxCharSize:    n.maxCharSize,
		LeadByteRanges: leadBytes[id],
	}, nil
}

func (nativeTable) encode(id uint32, src []uint16, dst []byte) (int, error) {
	enc, ok := tableEncoding(id)
	if !ok {
		return 0, syscall.EINVAL
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(string(utf16.Decode(src))))
	if err != nil {
		return 0, err
	}
	if dst == nil {
		return len(out), nil
	}
	if len(out) > len(dst) {
		return 0, errInsufficientBuffer
	}
	return copy(dst, out), nil
}

func (nativeTable) decode(id uint32, src []byte, dst []uint16) (int, error) {
	enc, ok := tableEncoding(id)
	if !ok {
		return 0, syscall.EINVAL
	}
	out, err := enc.NewDecoder().Bytes(src)
	if err != nil {
		return 0, err
	}
	units := utf16.Encode([]rune(string(out)))
	if dst == nil {
		return len(units), nil
	}
	if len(units) > len(dst) {
		return 0, errInsufficientBuffer
	}
	return copy(dst, units), nil
}
