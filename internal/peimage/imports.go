package peimage

import (
	"debug/pe"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	importDescriptorSize      = 20
	delayImportDescriptorSize = 32
)

// ImportDescriptor mirrors IMAGE_IMPORT_DESCRIPTOR
type ImportDescriptor struct {
	OriginalFirstThunk uint32
	TimeDateStamp      uint32
	ForwarderChain     uint32
	Name               uint32
	FirstThunk         uint32
}

// DelayImportDescriptor mirrors IMAGE_DELAYLOAD_DESCRIPTOR
type DelayImportDescriptor struct {
	Attributes                 uint32
	DllNameRVA                 uint32
	ModuleHandleRVA            uint32
	ImportAddressTableRVA      uint32
	ImportNameTableRVA         uint32
	BoundImportAddressTableRVA uint32
	UnloadInformationTableRVA  uint32
	TimeDateStamp              uint32
}

// Module is one imported module, produced per descriptor. The same name may
// appear twice when it is listed in both the normal and the delay-load table.
type Module struct {
	Name      string `json:"name"`
	DelayLoad bool   `json:"delay_load"`
	// DescriptorOffset is the file offset of the descriptor this entry came from.
	DescriptorOffset uint64 `json:"descriptor_offset"`
	// NameTableRVA points at the thunk array naming the imported symbols.
	NameTableRVA uint32 `json:"name_table_rva"`
}

// ImportTable is the combined, sorted result of both import tables
type ImportTable struct {
	Modules []Module

	// Counts implied by the directory sizes; they may disagree with len(Modules).
	DeclaredImports      int
	DeclaredDelayImports int
	FoundImports         int
	FoundDelayImports    int
}

// DeclaredCount is the total descriptor count implied by the directory sizes
func (t *ImportTable) DeclaredCount() int {
	return t.DeclaredImports + t.DeclaredDelayImports
}

// CountMismatch reports whether the sentinel-terminated tables disagree with
// the declared directory sizes.
func (t *ImportTable) CountMismatch() bool {
	return t.DeclaredImports != t.FoundImports || t.DeclaredDelayImports != t.FoundDelayImports
}

// ReadImports walks the import and delay-load import directories. Normal
// imports come first, each table in on-disk order, and the combined list is
// then stably sorted by case-insensitive module name.
func ReadImports(img *Image) (*ImportTable, error) {
	table := &ImportTable{}

	if dir, ok := img.DataDirectory(pe.IMAGE_DIRECTORY_ENTRY_IMPORT); ok && present(dir) {
		table.DeclaredImports = declaredCount(dir.Size, importDescriptorSize)
		modules, err := img.readImportDescriptors(dir)
		if err != nil {
			return nil, err
		}
		table.FoundImports = len(modules)
		table.Modules = append(table.Modules, modules...)
	}

	if dir, ok := img.DataDirectory(pe.IMAGE_DIRECTORY_ENTRY_DELAY_IMPORT); ok && present(dir) {
		table.DeclaredDelayImports = declaredCount(dir.Size, delayImportDescriptorSize)
		modules, err := img.readDelayImportDescriptors(dir)
		if err != nil {
			return nil, err
		}
		table.FoundDelayImports = len(modules)
		table.Modules = append(table.Modules, modules...)
	}

	SortModules(table.Modules)
	return table, nil
}

// SortModules stably sorts modules by case-insensitive name
func SortModules(modules []Module) {
	sort.SliceStable(modules, func(i, j int) bool {
		return strings.ToLower(modules[i].Name) < strings.ToLower(modules[j].Name)
	})
}

func present(dir DataDirectory) bool {
	return dir.VirtualAddress != 0 && dir.Size > 0
}

// declaredCount excludes the terminating descriptor
func declaredCount(size, descriptorSize uint32) int {
	if size < descriptorSize {
		return 0
	}
	return int(size/descriptorSize) - 1
}

func (img *Image) readImportDescriptors(dir DataDirectory) ([]Module, error) {
	start, ok := img.Sections.RVAToOffset(dir.VirtualAddress)
	if !ok {
		return nil, errors.Wrapf(ErrRvaResolution, "import directory rva 0x%x", dir.VirtualAddress)
	}

	var modules []Module
	for off := start; ; off += importDescriptorSize {
		desc, ok := img.importDescriptorAt(off)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedImportTable, "descriptor %d at 0x%x runs past end of image", len(modules), off)
		}
		if desc.Name == 0 {
			break
		}

		name, err := img.stringAt(desc.Name, ErrMalformedImportTable)
		if err != nil {
			return nil, errors.Wrapf(err, "import descriptor %d", len(modules))
		}

		nameTable := desc.OriginalFirstThunk
		if nameTable == 0 {
			nameTable = desc.FirstThunk
		}
		modules = append(modules, Module{
			Name:             name,
			DescriptorOffset: off,
			NameTableRVA:     nameTable,
		})
	}
	return modules, nil
}

func (img *Image) readDelayImportDescriptors(dir DataDirectory) ([]Module, error) {
	start, ok := img.Sections.RVAToOffset(dir.VirtualAddress)
	if !ok {
		return nil, errors.Wrapf(ErrRvaResolution, "delay import directory rva 0x%x", dir.VirtualAddress)
	}

	var modules []Module
	for off := start; ; off += delayImportDescriptorSize {
		desc, ok := img.delayImportDescriptorAt(off)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedDelayImportTable, "descriptor %d at 0x%x runs past end of image", len(modules), off)
		}
		if desc.DllNameRVA == 0 {
			break
		}

		name, err := img.stringAt(desc.DllNameRVA, ErrMalformedDelayImportTable)
		if err != nil {
			return nil, errors.Wrapf(err, "delay import descriptor %d", len(modules))
		}

		modules = append(modules, Module{
			Name:             name,
			DelayLoad:        true,
			DescriptorOffset: off,
			NameTableRVA:     desc.ImportNameTableRVA,
		})
	}
	return modules, nil
}

func (img *Image) importDescriptorAt(off uint64) (ImportDescriptor, bool) {
	if !img.data.has(off, importDescriptorSize) {
		return ImportDescriptor{}, false
	}
	var d ImportDescriptor
	d.OriginalFirstThunk, _ = img.data.u32(off)
	d.TimeDateStamp, _ = img.data.u32(off + 4)
	d.ForwarderChain, _ = img.data.u32(off + 8)
	d.Name, _ = img.data.u32(off + 12)
	d.FirstThunk, _ = img.data.u32(off + 16)
	return d, true
}

func (img *Image) delayImportDescriptorAt(off uint64) (DelayImportDescriptor, bool) {
	if !img.data.has(off, delayImportDescriptorSize) {
		return DelayImportDescriptor{}, false
	}
	var d DelayImportDescriptor
	d.Attributes, _ = img.data.u32(off)
	d.DllNameRVA, _ = img.data.u32(off + 4)
	d.ModuleHandleRVA, _ = img.data.u32(off + 8)
	d.ImportAddressTableRVA, _ = img.data.u32(off + 12)
	d.ImportNameTableRVA, _ = img.data.u32(off + 16)
	d.BoundImportAddressTableRVA, _ = img.data.u32(off + 20)
	d.UnloadInformationTableRVA, _ = img.data.u32(off + 24)
	d.TimeDateStamp, _ = img.data.u32(off + 28)
	return d, true
}
