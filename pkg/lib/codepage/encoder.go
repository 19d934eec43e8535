package codepage

// EncoderState is what an Encoder carries between calls: nothing, or one
// high surrogate still waiting for its low half.
type EncoderState struct {
	pending uint16
}

// Empty reports whether no unit is pending.
func (s EncoderState) Empty() bool {
	return s.pending == 0
}

// Pending returns the held high surrogate, if any.
func (s EncoderState) Pending() (uint16, bool) {
	return s.pending, s.pending != 0
}

func isHighSurrogate(c uint16) bool {
	return c >= 0xD800 && c < 0xDC00
}

func isLowSurrogate(c uint16) bool {
	return c >= 0xDC00 && c < 0xE000
}

// Encoder encodes UTF-16 input delivered in pieces. A surrogate pair split
// across two calls produces the same bytes as the pair in a single call.
// An Encoder is not safe for concurrent use.
type Encoder struct {
	codec *Codec
	state EncoderState
}

func (e *Encoder) State() EncoderState {
	return e.state
}

// Reset drops any pending unit.
func (e *Encoder) Reset() {
	e.state = EncoderState{}
}

// ByteCount returns the number of bytes Bytes would produce for the same
// arguments. The encoder state is not changed.
func (e *Encoder) ByteCount(chars []uint16, flush bool) (int, error) {
	count, held := e.split(chars, flush)
	if e.state.Empty() {
		return countBytes(e.codec.info.ID, chars[:count])
	}
	if count == 0 && held == 0 && !flush {
		return 0, nil
	}
	return e.withPending(chars[:count], nil)
}

// Bytes encodes chars into dst. Unless flush is set, a trailing high
// surrogate is held back for the next call. With flush set, a held
// surrogate is emitted even when chars is empty.
func (e *Encoder) Bytes(chars []uint16, dst []byte, flush bool) (int, error) {
	if len(chars) == 0 && (e.state.Empty() || !flush) {
		return 0, nil
	}
	count, held := e.split(chars, flush)
	var (
		n   int
		err error
	)
	switch {
	case e.state.Empty():
		n, err = convertBytes(e.codec.info.ID, chars[:count], dst)
	case count == 0 && held == 0 && !flush:
	default:
		n, err = e.withPending(chars[:count], dst)
	}
	if err != nil {
		return 0, err
	}
	e.state.pending = held
	return n, nil
}

// Convert encodes as much of chars as fits in dst. It shrinks the input by
// halves until the output fits, never separating a surrogate pair.
// completed is true when all of chars was consumed and nothing is pending.
func (e *Encoder) Convert(chars []uint16, dst []byte, flush bool) (charsUsed, bytesUsed int, completed bool, err error) {
	if len(chars) == 0 && (e.state.Empty() || !flush) {
		return 0, 0, e.state.Empty(), nil
	}
	if len(dst) == 0 {
		return 0, 0, false, nil
	}
	count := len(chars)
	for count > 0 {
		n, err := e.ByteCount(chars[:count], flush && count == len(chars))
		if err != nil {
			return 0, 0, false, err
		}
		if n <= len(dst) {
			break
		}
		count = halveUnits(chars, count)
	}
	if count == 0 && len(chars) > 0 {
		return 0, 0, false, nil
	}
	if count == 0 {
		// Only a held surrogate remains to be flushed.
		n, err := e.ByteCount(nil, true)
		if err != nil {
			return 0, 0, false, err
		}
		if n > len(dst) {
			return 0, 0, false, nil
		}
	}
	bytesUsed, err = e.Bytes(chars[:count], dst, flush && count == len(chars))
	if err != nil {
		return 0, 0, false, err
	}
	return count, bytesUsed, e.state.Empty() && count == len(chars), nil
}

// split returns how many units to convert now and the high surrogate to hold.
func (e *Encoder) split(chars []uint16, flush bool) (int, uint16) {
	n := len(chars)
	if n > 0 && !flush && isHighSurrogate(chars[n-1]) {
		return n - 1, chars[n-1]
	}
	return n, 0
}

// withPending converts the held surrogate, joined with chars[0] when that is
// its low half, followed by the rest of chars. A nil dst only counts.
func (e *Encoder) withPending(chars []uint16, dst []byte) (int, error) {
	id := e.codec.info.ID
	head := []uint16{e.state.pending}
	rest := chars
	if len(chars) > 0 && isLowSurrogate(chars[0]) {
		head = append(head, chars[0])
		rest = chars[1:]
	}
	if dst == nil {
		n, err := countBytes(id, head)
		if err != nil {
			return 0, err
		}
		m, err := countBytes(id, rest)
		if err != nil {
			return 0, err
		}
		return n + m, nil
	}
	n, err := convertBytes(id, head, dst)
	if err != nil {
		return 0, err
	}
	m, err := convertBytes(id, rest, dst[n:])
	if err != nil {
		return 0, err
	}
	return n + m, nil
}

// halveUnits picks a shorter prefix of chars[:count] that does not end
// between the halves of a surrogate pair.
func halveUnits(chars []uint16, count int) int {
	c := count / 2
	if c > 0 && isHighSurrogate(chars[c-1]) && isLowSurrogate(chars[c]) {
		if c > 1 {
			c--
		} else if c+1 < count {
			c++
		} else {
			c = 0
		}
	}
	return c
}
