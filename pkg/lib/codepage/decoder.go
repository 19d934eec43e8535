package codepage

// DecoderState is what a Decoder carries between calls: nothing, or the lead
// byte of a double-byte sequence whose trail byte has not arrived.
type DecoderState struct {
	lead    byte
	pending bool
}

func (s DecoderState) Empty() bool {
	return !s.pending
}

// Pending returns the held lead byte, if any.
func (s DecoderState) Pending() (byte, bool) {
	return s.lead, s.pending
}

// Decoder decodes byte input delivered in pieces. For double-byte code pages
// a lead byte at the end of one call is joined with the trail byte that
// starts the next. Other code pages decode each call independently.
// A Decoder is not safe for concurrent use.
type Decoder struct {
	codec *Codec
	dbcs  bool
	state DecoderState
}

func (d *Decoder) State() DecoderState {
	return d.state
}

// Reset drops any held lead byte.
func (d *Decoder) Reset() {
	d.state = DecoderState{}
}

// CharCount returns the number of units Chars would produce for the same
// arguments. The decoder state is not changed.
func (d *Decoder) CharCount(bytes []byte, flush bool) (int, error) {
	input, _ := d.split(bytes, flush)
	return countChars(d.codec.info.ID, input)
}

// Chars decodes bytes into dst. Unless flush is set, a trailing lead byte of
// a double-byte code page is held for the next call.
func (d *Decoder) Chars(bytes []byte, dst []uint16, flush bool) (int, error) {
	if len(bytes) == 0 && (d.state.Empty() || !flush) {
		return 0, nil
	}
	input, next := d.split(bytes, flush)
	n, err := convertChars(d.codec.info.ID, input, dst)
	if err != nil {
		return 0, err
	}
	d.state = next
	return n, nil
}

// Convert decodes as much of bytes as fits in dst, halving the input until
// the output fits. completed is true when all of bytes was consumed and no
// lead byte is held.
func (d *Decoder) Convert(bytes []byte, dst []uint16, flush bool) (bytesUsed, charsUsed int, completed bool, err error) {
	if len(bytes) == 0 && (d.state.Empty() || !flush) {
		return 0, 0, d.state.Empty(), nil
	}
	if len(dst) == 0 {
		return 0, 0, false, nil
	}
	count := len(bytes)
	for count > 0 {
		n, err := d.CharCount(bytes[:count], flush && count == len(bytes))
		if err != nil {
			return 0, 0, false, err
		}
		if n <= len(dst) {
			break
		}
		count /= 2
	}
	if count == 0 && len(bytes) > 0 {
		return 0, 0, false, nil
	}
	if count == 0 {
		n, err := d.CharCount(nil, true)
		if err != nil {
			return 0, 0, false, err
		}
		if n > len(dst) {
			return 0, 0, false, nil
		}
	}
	charsUsed, err = d.Chars(bytes[:count], dst, flush && count == len(bytes))
	if err != nil {
		return 0, 0, false, err
	}
	return count, charsUsed, d.state.Empty() && count == len(bytes), nil
}

// split prefixes the held lead byte and, when not flushing, cuts off a lead
// byte left without its trail byte. It returns the bytes to convert now and
// the state to keep afterwards.
func (d *Decoder) split(bytes []byte, flush bool) ([]byte, DecoderState) {
	input := bytes
	if d.state.pending {
		input = make([]byte, 0, len(bytes)+1)
		input = append(input, d.state.lead)
		input = append(input, bytes...)
	}
	if !d.dbcs || flush || len(input) == 0 {
		return input, DecoderState{}
	}
	if d.endsWithLead(input) {
		last := len(input) - 1
		return input[:last], DecoderState{lead: input[last], pending: true}
	}
	return input, DecoderState{}
}

// endsWithLead walks lead/trail pairs from the start of b, which always begins
// on a character boundary, and reports whether the final byte is an unpaired lead.
func (d *Decoder) endsWithLead(b []byte) bool {
	for i := 0; i < len(b); i++ {
		if d.codec.info.IsLeadByte(b[i]) {
			if i == len(b)-1 {
				return true
			}
			i++
		}
	}
	return false
}
