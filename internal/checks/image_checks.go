package checks

import (
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage"
)

// ImageSecurityCheck warns about DLLs built without ASLR or DEP
type ImageSecurityCheck struct{}

func (c *ImageSecurityCheck) ID() string {
	return "image-security"
}

func (c *ImageSecurityCheck) Description() string {
	return "Verifies DLLs opt into /DYNAMICBASE and /NXCOMPAT"
}

func (c *ImageSecurityCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	img := a.Image
	result.Metadata["type"] = string(img.Type())
	result.Metadata["dynamic_base"] = img.DynamicBase()
	result.Metadata["nx_compat"] = img.NXCompat()

	if img.Type() != peimage.TypeDLL {
		result.Status = StatusSkip
		result.Message = "Not a DLL"
		return result.finish()
	}

	if !img.DynamicBase() {
		result.add(warnf("DLL is not built with /DYNAMICBASE"))
	}
	if !img.NXCompat() {
		result.add(warnf("DLL is not built with /NXCOMPAT"))
	}
	return result.finish()
}

// ImportSummaryCheck reports the import count and flags directories whose
// declared size disagrees with the descriptors actually found.
type ImportSummaryCheck struct{}

func (c *ImportSummaryCheck) ID() string {
	return "import-table"
}

func (c *ImportSummaryCheck) Description() string {
	return "Summarizes the import and delay-load import directories"
}

func (c *ImportSummaryCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	t := a.Imports
	result.Metadata["imports"] = t.FoundImports
	result.Metadata["delay_imports"] = t.FoundDelayImports

	if t.CountMismatch() {
		result.add(warnf("Unexpected number of imports found (expected %d, found %d)",
			t.DeclaredCount(), len(a.Modules)))
	}

	if !a.HasImports() {
		result.add(infof("No imports found"))
		return result.finish()
	}

	result.add(infof("Found %d import modules", len(a.Modules)))
	return result.finish()
}
