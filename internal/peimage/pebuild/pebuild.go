// Package pebuild writes small, deterministic PE32+ images with import and
// delay-load import tables. It exists to give tests real bytes to parse.
package pebuild

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
)

const (
	lfanew          = 0x80
	fileAlignment   = 0x200
	sectionAlign    = 0x1000
	headersSize     = 0x200
	optHeaderSize   = 240
	textRVA         = 0x1000
	idataRVA        = 0x2000
	ordinalFlag     = uint64(1) << 63
	importDescSize  = 20
	delayDescSize   = 32
	thunkEntrySize  = 8
	dataDirOffset   = 112
	optHeaderOffset = lfanew + 4 + 20
)

// Import describes one module entry to emit
type Import struct {
	Name     string
	Symbols  []string
	Ordinals []uint16
	Delay    bool
}

// Builder collects imports and header settings. The zero value is not
// useful; call New.
type Builder struct {
	Machine            uint16
	Magic              uint16
	Characteristics    uint16
	DllCharacteristics uint16
	MajorLinkerVersion uint8
	MinorLinkerVersion uint8
	Subsystem          uint16

	imports []Import
}

// New returns a builder for an AMD64 console executable
func New() *Builder {
	return &Builder{
		Machine:            pe.IMAGE_FILE_MACHINE_AMD64,
		Magic:              0x20b,
		Characteristics:    pe.IMAGE_FILE_EXECUTABLE_IMAGE | pe.IMAGE_FILE_LARGE_ADDRESS_AWARE,
		DllCharacteristics: pe.IMAGE_DLLCHARACTERISTICS_DYNAMIC_BASE | pe.IMAGE_DLLCHARACTERISTICS_NX_COMPAT | pe.IMAGE_DLLCHARACTERISTICS_HIGH_ENTROPY_VA,
		MajorLinkerVersion: 14,
		MinorLinkerVersion: 38,
		Subsystem:          pe.IMAGE_SUBSYSTEM_WINDOWS_CUI,
	}
}

// DLL marks the image as a dynamic library
func (b *Builder) DLL() *Builder {
	b.Characteristics |= pe.IMAGE_FILE_DLL
	return b
}

// AddImport adds a hard-linked module importing symbols by name
func (b *Builder) AddImport(name string, symbols ...string) *Builder {
	b.imports = append(b.imports, Import{Name: name, Symbols: symbols})
	return b
}

// AddDelayImport adds a delay-loaded module importing symbols by name
func (b *Builder) AddDelayImport(name string, symbols ...string) *Builder {
	b.imports = append(b.imports, Import{Name: name, Symbols: symbols, Delay: true})
	return b
}

// Add appends an arbitrary import entry
func (b *Builder) Add(imp Import) *Builder {
	b.imports = append(b.imports, imp)
	return b
}

// Bytes lays out the image: headers, a .text section and an .idata section
// holding the import directory, the delay-load directory, name tables,
// hint/name entries and module names in that order.
func (b *Builder) Bytes() []byte {
	var normal, delay []Import
	for _, imp := range b.imports {
		if imp.Delay {
			delay = append(delay, imp)
		} else {
			normal = append(normal, imp)
		}
	}

	idata, importSize, delayRVA, delaySize := buildIData(normal, delay)
	idataRaw := align(uint32(len(idata)), fileAlignment)
	if idataRaw == 0 {
		idataRaw = fileAlignment
	}

	out := make([]byte, headersSize+fileAlignment+int(idataRaw))
	le := binary.LittleEndian

	// DOS header
	out[0], out[1] = 'M', 'Z'
	le.PutUint32(out[0x3C:], lfanew)

	// NT signature and file header
	copy(out[lfanew:], []byte{'P', 'E', 0, 0})
	fh := lfanew + 4
	le.PutUint16(out[fh:], b.Machine)
	le.PutUint16(out[fh+2:], 2)
	le.PutUint16(out[fh+16:], optHeaderSize)
	le.PutUint16(out[fh+18:], b.Characteristics)

	// Optional header
	opt := optHeaderOffset
	le.PutUint16(out[opt:], b.Magic)
	out[opt+2] = b.MajorLinkerVersion
	out[opt+3] = b.MinorLinkerVersion
	le.PutUint32(out[opt+16:], textRVA)
	le.PutUint32(out[opt+20:], textRVA)
	le.PutUint64(out[opt+24:], 0x140000000)
	le.PutUint32(out[opt+32:], sectionAlign)
	le.PutUint32(out[opt+36:], fileAlignment)
	le.PutUint16(out[opt+40:], 10)
	le.PutUint16(out[opt+48:], 10)
	le.PutUint32(out[opt+56:], idataRVA+align(uint32(len(idata)), sectionAlign))
	le.PutUint32(out[opt+60:], headersSize)
	le.PutUint16(out[opt+68:], b.Subsystem)
	le.PutUint16(out[opt+70:], b.DllCharacteristics)
	le.PutUint32(out[opt+108:], 16)
	if importSize > 0 {
		putDirectory(out, pe.IMAGE_DIRECTORY_ENTRY_IMPORT, idataRVA, importSize)
	}
	if delaySize > 0 {
		putDirectory(out, pe.IMAGE_DIRECTORY_ENTRY_DELAY_IMPORT, delayRVA, delaySize)
	}

	// Section table
	sec := opt + optHeaderSize
	putSection(out[sec:], ".text", fileAlignment, textRVA, fileAlignment, headersSize)
	putSection(out[sec+40:], ".idata", uint32(len(idata)), idataRVA, idataRaw, headersSize+fileAlignment)

	// .text is a run of int3
	for i := headersSize; i < headersSize+fileAlignment; i++ {
		out[i] = 0xCC
	}
	copy(out[headersSize+fileAlignment:], idata)
	return out
}

// SetDataDirectory overwrites data directory index of an image produced by Bytes
func SetDataDirectory(image []byte, index int, rva, size uint32) {
	off := optHeaderOffset + dataDirOffset + index*8
	binary.LittleEndian.PutUint32(image[off:], rva)
	binary.LittleEndian.PutUint32(image[off+4:], size)
}

// DataDirectory reads back data directory index of an image produced by Bytes
func DataDirectory(image []byte, index int) (rva, size uint32) {
	off := optHeaderOffset + dataDirOffset + index*8
	return binary.LittleEndian.Uint32(image[off:]), binary.LittleEndian.Uint32(image[off+4:])
}

// IDataOffset is the file offset of the .idata section in images produced by Bytes
func IDataOffset() int {
	return headersSize + fileAlignment
}

// IDataRVA is the virtual address of the .idata section
func IDataRVA() uint32 {
	return idataRVA
}

func putDirectory(out []byte, index int, rva, size uint32) {
	SetDataDirectory(out, index, rva, size)
}

func putSection(dst []byte, name string, vsize, rva, rawSize, rawPtr uint32) {
	copy(dst[:8], name)
	le := binary.LittleEndian
	le.PutUint32(dst[8:], vsize)
	le.PutUint32(dst[12:], rva)
	le.PutUint32(dst[16:], rawSize)
	le.PutUint32(dst[20:], rawPtr)
}

func align(v, a uint32) uint32 {
	return (v + a - 1) &^ (a - 1)
}

type layout struct {
	imp       Import
	nameTable uint32
	addrTable uint32
	hints     []uint32
	name      uint32
}

func buildIData(normal, delay []Import) (data []byte, importSize, delayRVA, delaySize uint32) {
	var idtSize, delayDirSize uint32
	if len(normal) > 0 {
		idtSize = uint32(len(normal)+1) * importDescSize
	}
	if len(delay) > 0 {
		delayDirSize = uint32(len(delay)+1) * delayDescSize
	}
	cursor := idtSize + delayDirSize

	all := append(append([]Import{}, normal...), delay...)
	layouts := make([]layout, len(all))

	for i, imp := range all {
		entries := uint32(len(imp.Symbols)+len(imp.Ordinals)+1) * thunkEntrySize
		layouts[i].imp = imp
		layouts[i].nameTable = cursor
		cursor += entries
		layouts[i].addrTable = cursor
		cursor += entries
	}
	for i := range layouts {
		for _, sym := range layouts[i].imp.Symbols {
			layouts[i].hints = append(layouts[i].hints, cursor)
			cursor += hintEntrySize(sym)
		}
	}
	for i := range layouts {
		layouts[i].name = cursor
		cursor += uint32(len(layouts[i].imp.Name) + 1)
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	write := func(v interface{}) { _ = binary.Write(&buf, le, v) }

	for _, l := range layouts[:len(normal)] {
		write(idataRVA + l.nameTable) // OriginalFirstThunk
		write(uint32(0))              // TimeDateStamp
		write(uint32(0))              // ForwarderChain
		write(idataRVA + l.name)      // Name
		write(idataRVA + l.addrTable) // FirstThunk
	}
	if len(normal) > 0 {
		write([importDescSize]byte{})
	}

	for _, l := range layouts[len(normal):] {
		write(uint32(1))              // Attributes: RVA based
		write(idataRVA + l.name)      // DllNameRVA
		write(uint32(0))              // ModuleHandleRVA
		write(idataRVA + l.addrTable) // ImportAddressTableRVA
		write(idataRVA + l.nameTable) // ImportNameTableRVA
		write(uint32(0))              // BoundImportAddressTableRVA
		write(uint32(0))              // UnloadInformationTableRVA
		write(uint32(0))              // TimeDateStamp
	}
	if len(delay) > 0 {
		write([delayDescSize]byte{})
	}

	for _, l := range layouts {
		// name table and address table carry identical thunks on disk
		for copyIndex := 0; copyIndex < 2; copyIndex++ {
			for _, h := range l.hints {
				write(uint64(idataRVA + h))
			}
			for _, ord := range l.imp.Ordinals {
				write(ordinalFlag | uint64(ord))
			}
			write(uint64(0))
		}
	}

	for _, l := range layouts {
		for _, sym := range l.imp.Symbols {
			write(uint16(0))
			buf.WriteString(sym)
			buf.WriteByte(0)
			if (2+len(sym)+1)%2 != 0 {
				buf.WriteByte(0)
			}
		}
	}

	for _, l := range layouts {
		buf.WriteString(l.imp.Name)
		buf.WriteByte(0)
	}

	if len(normal) > 0 {
		importSize = idtSize
	}
	if len(delay) > 0 {
		delayRVA = idataRVA + idtSize
		delaySize = delayDirSize
	}
	return buf.Bytes(), importSize, delayRVA, delaySize
}

func hintEntrySize(sym string) uint32 {
	n := uint32(2 + len(sym) + 1)
	if n%2 != 0 {
		n++
	}
	return n
}
