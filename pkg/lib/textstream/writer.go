package textstream

import (
	"bufio"
	"io"
	"sync"

	"golang.org/x/text/transform"
)

type writerOptions struct {
	autoFlush  bool
	bufferSize int
}

type Option func(*writerOptions)

// WithAutoFlush controls whether every Write is pushed to the pipe before
// returning. It defaults to true.
func WithAutoFlush(autoFlush bool) Option {
	return func(o *writerOptions) {
		o.autoFlush = autoFlush
	}
}

// WithBufferSize buffers encoded output in memory up to n bytes.
func WithBufferSize(n int) Option {
	return func(o *writerOptions) {
		o.bufferSize = n
	}
}

// Writer encodes UTF-8 text into a child's input pipe. It is safe for
// concurrent use.
type Writer struct {
	mu        sync.Mutex
	wc        io.WriteCloser
	buf       *bufio.Writer
	tw        *transform.Writer
	enc       *ConsoleEncoding
	autoFlush bool
	closed    bool
}

func NewWriter(wc io.WriteCloser, enc *ConsoleEncoding, opts ...Option) *Writer {
	o := writerOptions{autoFlush: true}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Writer{wc: wc, enc: enc, autoFlush: o.autoFlush}
	var sink io.Writer = wc
	if o.bufferSize > 0 {
		w.buf = bufio.NewWriterSize(wc, o.bufferSize)
		sink = w.buf
	}
	w.tw = transform.NewWriter(sink, enc.NewEncoder())
	return w
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	n, err := w.tw.Write(p)
	if err != nil {
		return n, err
	}
	if w.autoFlush {
		err = w.flushLocked()
	}
	return n, err
}

func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush pushes buffered output to the pipe. Encoder state for a partial
// character is kept until more input or Close.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return io.ErrClosedPipe
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

func (w *Writer) AutoFlush() bool {
	return w.autoFlush
}

func (w *Writer) Encoding() *ConsoleEncoding {
	return w.enc
}

// Close flushes any pending encoder state and closes the pipe end.
// Closing an already closed Writer is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.tw.Close()
	if ferr := w.flushLocked(); err == nil {
		err = ferr
	}
	if cerr := w.wc.Close(); err == nil {
		err = cerr
	}
	return err
}
