package textstream

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader decodes a child's output pipe into UTF-8.
// A byte-order mark at the start of the stream overrides the code page.
type Reader struct {
	rc  io.ReadCloser
	r   io.Reader
	enc *ConsoleEncoding
}

func NewReader(rc io.ReadCloser, enc *ConsoleEncoding) *Reader {
	return &Reader{
		rc:  rc,
		r:   transform.NewReader(rc, unicode.BOMOverride(enc.NewDecoder())),
		enc: enc,
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.r.Read(p)
}

func (r *Reader) Encoding() *ConsoleEncoding {
	return r.enc
}

// Close closes the underlying pipe end.
func (r *Reader) Close() error {
	return r.rc.Close()
}
