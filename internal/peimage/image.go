package peimage

import (
	"debug/pe"

	"github.com/pkg/errors"
)

const (
	// MinImageSize is the smallest file that can hold a structurally valid header.
	MinImageSize = 256

	dosSignature       = 0x5A4D     // "MZ"
	ntSignature        = 0x00004550 // "PE\0\0"
	optionalHeader64   = 0x20b
	lfanewOffset       = 0x3C
	fileHeaderSize     = 20
	optionalHeaderSize = 240
	ntHeadersSize      = 4 + fileHeaderSize + optionalHeaderSize
	sectionHeaderSize  = 40
	dataDirectoryStart = 112
	maxDataDirectories = 16
)

// ImageType is the linkage kind declared in the COFF characteristics
type ImageType string

const (
	TypeEXE     ImageType = "EXE"
	TypeDLL     ImageType = "DLL"
	TypeUnknown ImageType = "???"
)

// DataDirectory is one entry of the optional header data directory array
type DataDirectory struct {
	VirtualAddress uint32 `json:"virtual_address"`
	Size           uint32 `json:"size"`
}

// Image is a validated view over the raw bytes of a PE32+ image. It owns
// nothing beyond the byte slice it was parsed from.
type Image struct {
	data view

	NTHeaderOffset uint32
	FileHeader     pe.FileHeader

	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Subsystem                   uint16
	DllCharacteristics          uint16

	directories []DataDirectory
	Sections    SectionTable
}

// Parse validates the DOS, NT and optional headers of data and reads the
// section table. Only AMD64 images with a PE32+ optional header are accepted;
// anything else fails with ErrUnsupportedMachine.
func Parse(data []byte) (*Image, error) {
	v := view(data)
	if len(v) < MinImageSize {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes, need at least %d", len(v), MinImageSize)
	}

	if magic, _ := v.u16(0); magic != dosSignature {
		return nil, errors.Wrap(ErrBadMagic, "missing DOS signature")
	}

	lfanew, _ := v.u32(lfanewOffset)
	if !v.has(uint64(lfanew), ntHeadersSize) {
		return nil, errors.Wrapf(ErrBadMagic, "NT header offset 0x%x outside image", lfanew)
	}
	nt := uint64(lfanew)

	if sig, _ := v.u32(nt); sig != ntSignature {
		return nil, errors.Wrap(ErrBadMagic, "missing NT signature")
	}

	img := &Image{data: v, NTHeaderOffset: lfanew}
	fh := nt + 4
	img.FileHeader.Machine, _ = v.u16(fh)
	img.FileHeader.NumberOfSections, _ = v.u16(fh + 2)
	img.FileHeader.TimeDateStamp, _ = v.u32(fh + 4)
	img.FileHeader.PointerToSymbolTable, _ = v.u32(fh + 8)
	img.FileHeader.NumberOfSymbols, _ = v.u32(fh + 12)
	img.FileHeader.SizeOfOptionalHeader, _ = v.u16(fh + 16)
	img.FileHeader.Characteristics, _ = v.u16(fh + 18)

	opt := fh + fileHeaderSize
	magic, _ := v.u16(opt)
	if img.FileHeader.Machine != pe.IMAGE_FILE_MACHINE_AMD64 || magic != optionalHeader64 {
		return nil, errors.Wrapf(ErrUnsupportedMachine, "machine 0x%04x, optional header magic 0x%03x", img.FileHeader.Machine, magic)
	}

	linker, _ := v.span(opt+2, 2)
	img.MajorLinkerVersion, img.MinorLinkerVersion = linker[0], linker[1]
	img.MajorOperatingSystemVersion, _ = v.u16(opt + 40)
	img.MinorOperatingSystemVersion, _ = v.u16(opt + 42)
	img.MajorSubsystemVersion, _ = v.u16(opt + 48)
	img.MinorSubsystemVersion, _ = v.u16(opt + 50)
	img.Subsystem, _ = v.u16(opt + 68)
	img.DllCharacteristics, _ = v.u16(opt + 70)

	count, _ := v.u32(opt + 108)
	if count > maxDataDirectories {
		count = maxDataDirectories
	}
	declared := uint64(img.FileHeader.SizeOfOptionalHeader)
	for i := uint64(0); i < uint64(count); i++ {
		entry := dataDirectoryStart + i*8
		if entry+8 > declared {
			break
		}
		rva, _ := v.u32(opt + entry)
		size, _ := v.u32(opt + entry + 4)
		img.directories = append(img.directories, DataDirectory{VirtualAddress: rva, Size: size})
	}

	sections, err := readSections(v, opt+declared, img.FileHeader.NumberOfSections)
	if err != nil {
		return nil, err
	}
	img.Sections = sections

	return img, nil
}

// Len returns the size of the underlying buffer
func (img *Image) Len() int {
	return len(img.data)
}

// Type reports whether the image is a DLL, an EXE or neither
func (img *Image) Type() ImageType {
	switch {
	case img.FileHeader.Characteristics&pe.IMAGE_FILE_DLL != 0:
		return TypeDLL
	case img.FileHeader.Characteristics&pe.IMAGE_FILE_EXECUTABLE_IMAGE != 0:
		return TypeEXE
	default:
		return TypeUnknown
	}
}

// DataDirectory returns the directory entry at index. Entries past the
// declared count are reported as absent.
func (img *Image) DataDirectory(index int) (DataDirectory, bool) {
	if index < 0 || index >= len(img.directories) {
		return DataDirectory{}, false
	}
	return img.directories[index], true
}

// DynamicBase reports whether the image opted into ASLR
func (img *Image) DynamicBase() bool {
	return img.DllCharacteristics&pe.IMAGE_DLLCHARACTERISTICS_DYNAMIC_BASE != 0
}

// NXCompat reports whether the image opted into DEP
func (img *Image) NXCompat() bool {
	return img.DllCharacteristics&pe.IMAGE_DLLCHARACTERISTICS_NX_COMPAT != 0
}

// stringAt reads the NUL-terminated string at rva. kind is wrapped when the
// string is unterminated.
func (img *Image) stringAt(rva uint32, kind error) (string, error) {
	off, ok := img.Sections.RVAToOffset(rva)
	if !ok {
		return "", errors.Wrapf(ErrRvaResolution, "string at rva 0x%x", rva)
	}
	s, ok := img.data.cstring(off)
	if !ok {
		return "", errors.Wrapf(kind, "unterminated string at offset 0x%x", off)
	}
	return s, nil
}
