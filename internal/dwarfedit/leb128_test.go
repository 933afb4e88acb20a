package dwarfedit

import "testing"

func TestReadULEB128(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want uint64
		next uint64
	}{
		{"zero", []byte{0x00}, 0, 1},
		{"one-byte", []byte{0x7f}, 0x7f, 1},
		{"three-byte", []byte{0xe5, 0x8e, 0x26}, 624485, 3},
		{"trailing-garbage-ignored", []byte{0x01, 0xff}, 1, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, next := readULEB128(c.buf, 0)
			if got != c.want || next != c.next {
				t.Fatalf("readULEB128(%v) = (%d, %d), want (%d, %d)", c.buf, got, next, c.want, c.next)
			}
		})
	}
}

func TestReadULEB128Overflow(t *testing.T) {
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	got, _ := readULEB128(buf, 0)
	if got != uleb128OverflowSentinel {
		t.Fatalf("readULEB128 overflow = %d, want sentinel %d", got, uint64(uleb128OverflowSentinel))
	}
}

func TestAppendULEB128RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 624485, 1<<28 - 1} {
		buf := appendULEB128(nil, v)
		got, next := readULEB128(buf, 0)
		if got != v || next != uint64(len(buf)) {
			t.Fatalf("round trip %d: got (%d, %d) from %v", v, got, next, buf)
		}
	}
}

func TestAppendSLEB128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 63, -64, 64, -65, 123456, -123456} {
		buf := appendSLEB128(nil, v)
		got := decodeSLEB128(buf)
		if got != v {
			t.Fatalf("sleb128 round trip %d: got %d from %v", v, got, buf)
		}
	}
}

// decodeSLEB128 is a small test-only decoder mirroring appendSLEB128's
// encoding, since the production walker never needs to read SLEB128 values.
func decodeSLEB128(buf []byte) int64 {
	var (
		result int64
		shift  uint
		b      byte
	)

	i := 0
	for {
		b = buf[i]
		i++
		result |= int64(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			break
		}
	}

	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}

	return result
}

func TestSkipULEB128(t *testing.T) {
	buf := []byte{0xe5, 0x8e, 0x26, 0x05}
	next := skipULEB128(buf, 0)
	if next != 3 {
		t.Fatalf("skipULEB128 = %d, want 3", next)
	}
}
