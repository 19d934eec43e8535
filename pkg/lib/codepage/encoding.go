package codepage

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Encoding exposes the codec as a golang.org/x/text encoding. The UTF-8 side
// goes through UTF-16 so streamed text gets the Encoder and Decoder state
// handling.
func (c *Codec) Encoding() encoding.Encoding {
	return codecEncoding{c: c}
}

type codecEncoding struct {
	c *Codec
}

func (e codecEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encodeTransformer{enc: e.c.NewEncoder()}}
}

func (e codecEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decodeTransformer{dec: e.c.NewDecoder()}}
}

func (e codecEncoding) String() string {
	return e.c.Name()
}

type encodeTransformer struct {
	enc   *Encoder
	units []uint16
	ends  []int // src offset just past the rune each unit came from
}

func (t *encodeTransformer) Reset() {
	t.enc.Reset()
}

func (t *encodeTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	t.units, t.ends = t.units[:0], t.ends[:0]
	i := 0
	for i < len(src) && len(t.units) < len(dst) {
		r, size := rune(src[i]), 1
		if r >= utf8.RuneSelf {
			if !atEOF && !utf8.FullRune(src[i:]) {
				break
			}
			r, size = utf8.DecodeRune(src[i:])
		}
		i += size
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			t.units = append(t.units, uint16(hi), uint16(lo))
			t.ends = append(t.ends, i, i)
			continue
		}
		t.units = append(t.units, uint16(r))
		t.ends = append(t.ends, i)
	}

	if len(t.units) == 0 {
		switch {
		case len(src) == 0:
			return 0, 0, nil
		case len(dst) == 0:
			return 0, 0, transform.ErrShortDst
		default:
			return 0, 0, transform.ErrShortSrc
		}
	}

	charsUsed, bytesUsed, _, err := t.enc.Convert(t.units, dst, atEOF && i == len(src))
	if err != nil {
		return 0, 0, err
	}
	if charsUsed == 0 {
		return 0, 0, transform.ErrShortDst
	}
	nDst, nSrc = bytesUsed, t.ends[charsUsed-1]
	switch {
	case charsUsed < len(t.units):
		err = transform.ErrShortDst
	case nSrc < len(src) && len(t.units) >= len(dst):
		err = transform.ErrShortDst
	case nSrc < len(src):
		err = transform.ErrShortSrc
	}
	return nDst, nSrc, err
}

type decodeTransformer struct {
	dec   *Decoder
	units []uint16
}

func (t *decodeTransformer) Reset() {
	t.dec.Reset()
}

func (t *decodeTransformer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if len(src) == 0 && (!atEOF || t.dec.State().Empty()) {
		return 0, 0, nil
	}
	// One UTF-16 unit never needs more than three UTF-8 bytes.
	room := len(dst) / 3
	if room == 0 {
		return 0, 0, transform.ErrShortDst
	}
	if cap(t.units) < room {
		t.units = make([]uint16, room)
	}
	bytesUsed, charsUsed, _, err := t.dec.Convert(src, t.units[:room], atEOF)
	if err != nil {
		return 0, 0, err
	}
	units := t.units[:charsUsed]
	for j := 0; j < len(units); j++ {
		r := rune(units[j])
		if utf16.IsSurrogate(r) {
			if j+1 < len(units) {
				if dr := utf16.DecodeRune(r, rune(units[j+1])); dr != utf8.RuneError {
					r = dr
					j++
				} else {
					r = utf8.RuneError
				}
			} else {
				r = utf8.RuneError
			}
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
	}
	if bytesUsed < len(src) {
		return nDst, bytesUsed, transform.ErrShortDst
	}
	return nDst, bytesUsed, nil
}
