package checks

import (
	"os"
	"path/filepath"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// ModuleInfo is one imported module with the classification assigned to it
type ModuleInfo struct {
	Name      string          `json:"name" yaml:"name"`
	DelayLoad bool            `json:"delay_load" yaml:"delay_load"`
	Category  policy.Category `json:"category" yaml:"category"`
	Rule      string          `json:"rule,omitempty" yaml:"rule,omitempty"`
	Flags     policy.Flags    `json:"-" yaml:"-"`

	entry peimage.Module
}

// Linkage is "DLL" for a hard import and "DLoad" for a delay-loaded one
func (m ModuleInfo) Linkage() string {
	if m.DelayLoad {
		return "DLoad"
	}
	return "DLL"
}

// Analysis is the state shared by the checks while one image is analyzed
type Analysis struct {
	Path     string
	BaseName string

	Image   *peimage.Image
	Imports *peimage.ImportTable
	Modules []ModuleInfo

	Target         policy.Target
	TargetInferred bool
	Retail         bool
	MinVersion     ToolsetVersion

	Diagnostics []Diagnostic

	classifier *policy.Classifier
	symbols    map[int][]peimage.Symbol
}

func newAnalysis(path string, img *peimage.Image, imports *peimage.ImportTable, opts Options) *Analysis {
	a := &Analysis{
		Path:       path,
		BaseName:   filepath.Base(path),
		Image:      img,
		Imports:    imports,
		Target:     opts.Target,
		Retail:     opts.Retail,
		classifier: policy.NewClassifier(opts.probeFor(path)),
		symbols:    make(map[int][]peimage.Symbol),
	}
	for _, m := range imports.Modules {
		a.Modules = append(a.Modules, ModuleInfo{Name: m.Name, DelayLoad: m.DelayLoad, entry: m})
	}
	return a
}

// HasImports reports whether the image imports any module
func (a *Analysis) HasImports() bool {
	return len(a.Modules) > 0
}

// ModuleNames returns the imported module names in sorted order
func (a *Analysis) ModuleNames() []string {
	names := make([]string, len(a.Modules))
	for i, m := range a.Modules {
		names[i] = m.Name
	}
	return names
}

// Symbols walks the name table of module i once and caches the result
func (a *Analysis) Symbols(i int) ([]peimage.Symbol, error) {
	if syms, ok := a.symbols[i]; ok {
		return syms, nil
	}
	syms, err := a.Image.ImportedSymbols(a.Modules[i].entry)
	if err != nil {
		return nil, err
	}
	a.symbols[i] = syms
	return syms, nil
}

// classify assigns categories to every module for the current target
func (a *Analysis) classify() {
	for i := range a.Modules {
		c := a.classifier.Classify(a.Modules[i].Name, a.Target, a.Modules[i].DelayLoad)
		a.Modules[i].Category = c.Category
		a.Modules[i].Flags = c.Flags
		a.Modules[i].Rule = c.Rule
	}
}

// FileProbe returns a probe that looks for module files in dir
func FileProbe(dir string) policy.Probe {
	return func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.Mode().IsRegular()
	}
}
