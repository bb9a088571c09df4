package codec7

// Encoder incrementally encodes octets into septets, carrying the same
// accumulator/bit-count state as Encode across calls to Write. It exists so
// a capture far too large to hold in memory can be encoded (or, more
// relevantly to this tool, decoded — see Decoder) a chunk at a time.
type Encoder struct {
	acc  uint16
	bits uint
}

// Write encodes octets and appends the resulting septets to dst, returning
// the extended slice.
func (e *Encoder) Write(dst []byte, octets []byte) []byte {
	for _, v := range octets {
		e.acc |= uint16(v) << e.bits

		dst = append(dst, byte(e.acc&septetMask))
		e.acc >>= 7
		e.bits++

		if e.bits == 7 {
			dst = append(dst, byte(e.acc&septetMask))
			e.acc = 0
			e.bits = 0
		}
	}

	return dst
}

// Flush appends the final partial septet, if any leftover bits remain, and
// resets the encoder's state.
func (e *Encoder) Flush(dst []byte) []byte {
	if e.bits > 0 {
		dst = append(dst, byte(e.acc&septetMask))
	}

	e.acc = 0
	e.bits = 0

	return dst
}

// Decoder incrementally decodes septets into octets, carrying the same
// accumulator/bit-count state as Decode across calls to Write.
type Decoder struct {
	acc  uint16
	bits uint
}

// Write decodes septets and appends the resulting octets to dst, returning
// the extended slice. Any trailing incomplete bits remain buffered until
// either the next call supplies enough bits to complete an octet, or the
// Decoder is discarded (there is nothing to flush: trailing bits are always
// encoder padding).
func (d *Decoder) Write(dst []byte, septets []byte) []byte {
	for _, s := range septets {
		var v = uint16(s) & septetMask

		if d.bits == 0 {
			d.acc = v
			d.bits = 7
			continue
		}

		d.acc |= v << d.bits
		dst = append(dst, byte(d.acc&0xFF))
		d.acc >>= 8
		d.bits--
	}

	return dst
}
