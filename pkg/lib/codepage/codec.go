package codepage

import (
	"math"
	"unicode/utf16"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// Codec converts whole buffers for one code page. It keeps no state between
// calls; use NewEncoder and NewDecoder for streamed input.
type Codec struct {
	info Info
}

// New returns a Codec for the given code page identifier.
func New(id uint32) (*Codec, error) {
	info, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return &Codec{info: info}, nil
}

func (c *Codec) ID() uint32 {
	return c.info.ID
}

// Name is the OS-supplied display name, or "Codepage - <id>" when there is none.
func (c *Codec) Name() string {
	return c.info.Name
}

func (c *Codec) Info() Info {
	return c.info
}

// ByteCount returns the number of bytes chars encodes to.
func (c *Codec) ByteCount(chars []uint16) (int, error) {
	return countBytes(c.info.ID, chars)
}

// Bytes encodes chars into dst and returns the number of bytes written.
func (c *Codec) Bytes(chars []uint16, dst []byte) (int, error) {
	return convertBytes(c.info.ID, chars, dst)
}

// CharCount returns the number of UTF-16 units bytes decodes to.
func (c *Codec) CharCount(bytes []byte) (int, error) {
	return countChars(c.info.ID, bytes)
}

// Chars decodes bytes into dst and returns the number of units written.
func (c *Codec) Chars(bytes []byte, dst []uint16) (int, error) {
	return convertChars(c.info.ID, bytes, dst)
}

// EncodeString encodes a Go string.
func (c *Codec) EncodeString(s string) ([]byte, error) {
	chars := utf16.Encode([]rune(s))
	n, err := c.ByteCount(chars)
	if err != nil || n == 0 {
		return nil, err
	}
	buf := make([]byte, n)
	n, err = c.Bytes(chars, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// DecodeBytes decodes b into a Go string.
func (c *Codec) DecodeBytes(b []byte) (string, error) {
	n, err := c.CharCount(b)
	if err != nil || n == 0 {
		return "", err
	}
	buf := make([]uint16, n)
	n, err = c.Chars(b, buf)
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(buf[:n])), nil
}

// MaxByteCount bounds the encoded size of chars UTF-16 units for any code page.
func (c *Codec) MaxByteCount(chars int) (int, error) {
	return maxCount("MaxByteCount", chars, MaxBytesPerChar)
}

// MaxCharCount bounds the decoded size of bytes input bytes for any code page.
func (c *Codec) MaxCharCount(bytes int) (int, error) {
	return maxCount("MaxCharCount", bytes, MaxCharsPerByte)
}

func maxCount(op string, n, per int) (int, error) {
	if n < 0 {
		return 0, lib.Errorf(lib.KindCodec, op, "negative count %d", n)
	}
	if int64(n) > math.MaxInt32/int64(per) {
		return 0, lib.Errorf(lib.KindCodec, op, "count %d overflows", n)
	}
	return n * per, nil
}

// NewEncoder returns an Encoder with empty state.
func (c *Codec) NewEncoder() *Encoder {
	return &Encoder{codec: c}
}

// NewDecoder returns a Decoder with empty state.
func (c *Codec) NewDecoder() *Decoder {
	return &Decoder{codec: c, dbcs: c.info.IsDBCS()}
}
