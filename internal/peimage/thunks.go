package peimage

import (
	"github.com/pkg/errors"
)

const (
	thunkSize        = 8
	ordinalFlag64    = uint64(1) << 63
	hintNameRVAMask  = 0x7FFFFFFF
	ordinalValueMask = 0xFFFF
)

// Symbol is one entry of a module's import name table
type Symbol struct {
	Name      string `json:"name,omitempty"`
	Hint      uint16 `json:"hint"`
	Ordinal   uint16 `json:"ordinal,omitempty"`
	ByOrdinal bool   `json:"by_ordinal,omitempty"`
}

// ImportedSymbols walks the NUL-terminated thunk array of m. Ordinal-only
// entries are returned with ByOrdinal set and no name.
func (img *Image) ImportedSymbols(m Module) ([]Symbol, error) {
	if m.NameTableRVA == 0 {
		return nil, nil
	}

	malformed := ErrMalformedImportTable
	if m.DelayLoad {
		malformed = ErrMalformedDelayImportTable
	}

	start, ok := img.Sections.RVAToOffset(m.NameTableRVA)
	if !ok {
		return nil, errors.Wrapf(ErrRvaResolution, "name table of %s at rva 0x%x", m.Name, m.NameTableRVA)
	}

	var symbols []Symbol
	for off := start; ; off += thunkSize {
		thunk, ok := img.data.u64(off)
		if !ok {
			return nil, errors.Wrapf(malformed, "thunk table of %s runs past end of image", m.Name)
		}
		if thunk == 0 {
			break
		}

		if thunk&ordinalFlag64 != 0 {
			symbols = append(symbols, Symbol{
				Ordinal:   uint16(thunk & ordinalValueMask),
				ByOrdinal: true,
			})
			continue
		}

		rva := uint32(thunk & hintNameRVAMask)
		if rva == 0 {
			return nil, errors.Wrapf(malformed, "thunk of %s has no hint/name entry", m.Name)
		}
		hintOff, ok := img.Sections.RVAToOffset(rva)
		if !ok {
			return nil, errors.Wrapf(ErrRvaResolution, "hint/name entry of %s at rva 0x%x", m.Name, rva)
		}
		hint, ok := img.data.u16(hintOff)
		if !ok {
			return nil, errors.Wrapf(malformed, "hint/name entry of %s runs past end of image", m.Name)
		}
		name, ok := img.data.cstring(hintOff + 2)
		if !ok {
			return nil, errors.Wrapf(malformed, "unterminated symbol name in %s at offset 0x%x", m.Name, hintOff+2)
		}
		symbols = append(symbols, Symbol{Name: name, Hint: hint})
	}
	return symbols, nil
}
