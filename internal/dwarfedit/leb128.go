package dwarfedit

import "math"

// read16 reads an unsigned 16-bit integer at buf[off:] in the given
// endianness. The caller is responsible for bounds checking.
func read16(buf []byte, off uint64, e Endian) uint16 {
	b0, b1 := buf[off], buf[off+1]
	if e == BigEndian {
		return uint16(b1) | uint16(b0)<<8
	}

	return uint16(b0) | uint16(b1)<<8
}

// read32 reads an unsigned 32-bit integer at buf[off:] in the given
// endianness.
func read32(buf []byte, off uint64, e Endian) uint32 {
	b0, b1, b2, b3 := buf[off], buf[off+1], buf[off+2], buf[off+3]
	if e == BigEndian {
		return uint32(b3) | uint32(b2)<<8 | uint32(b1)<<16 | uint32(b0)<<24
	}

	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

// write32 writes val at buf[off:] in the given endianness.
func write32(buf []byte, off uint64, val uint32, e Endian) {
	if e == BigEndian {
		buf[off] = byte(val >> 24)
		buf[off+1] = byte(val >> 16)
		buf[off+2] = byte(val >> 8)
		buf[off+3] = byte(val)

		return
	}

	buf[off] = byte(val)
	buf[off+1] = byte(val >> 8)
	buf[off+2] = byte(val >> 16)
	buf[off+3] = byte(val >> 24)
}

// uleb128OverflowSentinel is returned by readULEB128 when decoding reaches
// 35 shift bits, i.e. for any encoding of five or more bytes (values that
// need more than 28 bits). §4.1/§9: the original
// silently saturates to UINT_MAX rather than failing; callers that care
// about malformed input compare against this sentinel themselves.
const uleb128OverflowSentinel = math.MaxUint32

// readULEB128 decodes an unsigned LEB128 value starting at buf[off] and
// returns the decoded value together with the offset just past it.
func readULEB128(buf []byte, off uint64) (uint64, uint64) {
	var (
		result uint64
		shift  uint
	)

	for {
		c := buf[off]
		off++

		if shift < 35 {
			result |= uint64(c&0x7f) << shift
		}

		shift += 7

		if c&0x80 == 0 {
			break
		}
	}

	if shift >= 35 {
		return uleb128OverflowSentinel, off
	}

	return result, off
}

// skipULEB128 advances past one LEB128-encoded value without decoding it,
// for call sites that only need to step over mtime/length fields.
func skipULEB128(buf []byte, off uint64) uint64 {
	for buf[off]&0x80 != 0 {
		off++
	}

	return off + 1
}

// appendULEB128 appends the ULEB128 encoding of v to buf.
func appendULEB128(buf []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7

		if v != 0 {
			c |= 0x80
		}

		buf = append(buf, c)

		if v == 0 {
			return buf
		}
	}
}

// appendSLEB128 appends the SLEB128 encoding of v to buf.
func appendSLEB128(buf []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		sign := c&0x40 != 0
		v >>= 7
		done := (v == 0 && !sign) || (v == -1 && sign)

		if !done {
			c |= 0x80
		}

		buf = append(buf, c)

		if done {
			return buf
		}
	}
}
