// Package textstream wraps raw pipe ends in text readers and writers that
// use a console code page and never emit a byte-order mark.
package textstream

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/codepage"
)

// ConsoleEncoding is an encoding chosen for a console code page.
type ConsoleEncoding struct {
	encoding.Encoding
	CodePage uint32
	Name     string
	// Codec is the code-page table behind Encoding; nil for the Unicode pages.
	Codec *codepage.Codec
}

// Preamble is always empty: writers never emit a byte-order mark.
func (e *ConsoleEncoding) Preamble() []byte {
	return nil
}

func (e *ConsoleEncoding) String() string {
	return e.Name
}

// Resolve picks the encoding for a code page. The Unicode code pages map to
// BOM-less UTF-8 and UTF-16; every legacy page goes through the code-page
// table so multi-byte sequences split across reads are carried over.
func Resolve(codePage uint32) (*ConsoleEncoding, error) {
	switch codePage {
	case codepage.UTF8:
		return &ConsoleEncoding{Encoding: unicode.UTF8, CodePage: codePage, Name: "Unicode (UTF-8)"}, nil
	case codepage.UTF16LE:
		return &ConsoleEncoding{
			Encoding: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
			CodePage: codePage,
			Name:     "Unicode",
		}, nil
	case codepage.UTF16BE:
		return &ConsoleEncoding{
			Encoding: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
			CodePage: codePage,
			Name:     "Unicode (Big-Endian)",
		}, nil
	}
	c, err := codepage.New(codePage)
	if err != nil {
		return nil, err
	}
	return &ConsoleEncoding{Encoding: c.Encoding(), CodePage: codePage, Name: c.Name(), Codec: c}, nil
}
