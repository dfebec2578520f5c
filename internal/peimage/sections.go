package peimage

import (
	"bytes"

	"github.com/pkg/errors"
)

// Section is one entry of the section table
type Section struct {
	Name             string `json:"name"`
	VirtualSize      uint32 `json:"virtual_size"`
	VirtualAddress   uint32 `json:"virtual_address"`
	SizeOfRawData    uint32 `json:"size_of_raw_data"`
	PointerToRawData uint32 `json:"pointer_to_raw_data"`
}

// Contains reports whether rva falls inside [VirtualAddress, VirtualAddress+VirtualSize)
func (s Section) Contains(rva uint32) bool {
	return uint64(rva) >= uint64(s.VirtualAddress) &&
		uint64(rva) < uint64(s.VirtualAddress)+uint64(s.VirtualSize)
}

// SectionTable keeps sections in on-disk order
type SectionTable []Section

// RVAToOffset translates rva to a file offset using the first section that
// contains it. An rva of zero maps to offset zero, the convention for absent
// optional directories.
func (t SectionTable) RVAToOffset(rva uint32) (uint64, bool) {
	if rva == 0 {
		return 0, true
	}
	for _, s := range t {
		if s.Contains(rva) {
			return uint64(rva-s.VirtualAddress) + uint64(s.PointerToRawData), true
		}
	}
	return 0, false
}

func readSections(v view, start uint64, count uint16) (SectionTable, error) {
	if !v.has(start, uint64(count)*sectionHeaderSize) {
		return nil, errors.Wrapf(ErrBadMagic, "section table of %d entries at 0x%x exceeds image", count, start)
	}

	table := make(SectionTable, 0, count)
	for i := uint64(0); i < uint64(count); i++ {
		off := start + i*sectionHeaderSize
		raw, _ := v.span(off, 8)
		name := raw
		if n := bytes.IndexByte(raw, 0); n >= 0 {
			name = raw[:n]
		}

		s := Section{Name: string(name)}
		s.VirtualSize, _ = v.u32(off + 8)
		s.VirtualAddress, _ = v.u32(off + 12)
		s.SizeOfRawData, _ = v.u32(off + 16)
		s.PointerToRawData, _ = v.u32(off + 20)
		table = append(table, s)
	}
	return table, nil
}
