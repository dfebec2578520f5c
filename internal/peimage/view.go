package peimage

import (
	"bytes"
	"encoding/binary"
)

// view is a read-only byte buffer whose accessors never index out of range.
// Offsets are uint64 so that offset+length cannot wrap for any 32-bit input.
type view []byte

func (v view) has(off, n uint64) bool {
	size := uint64(len(v))
	return off <= size && n <= size-off
}

func (v view) span(off, n uint64) ([]byte, bool) {
	if !v.has(off, n) {
		return nil, false
	}
	return v[off : off+n], true
}

func (v view) u16(off uint64) (uint16, bool) {
	b, ok := v.span(off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (v view) u32(off uint64) (uint32, bool) {
	b, ok := v.span(off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (v view) u64(off uint64) (uint64, bool) {
	b, ok := v.span(off, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

// cstring reads a NUL-terminated string. A string running into the end of the
// buffer without a terminator is rejected.
func (v view) cstring(off uint64) (string, bool) {
	if off >= uint64(len(v)) {
		return "", false
	}
	rest := v[off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", false
	}
	return string(rest[:end]), true
}
