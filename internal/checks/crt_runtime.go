package checks

import (
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// CRTRuntimeCheck resolves the minimum toolset from the runtime side-car
// modules an image links against. Runtime images themselves are marked
// ToolsetIgnore so their own imports are not held against them.
type CRTRuntimeCheck struct{}

func (c *CRTRuntimeCheck) ID() string {
	return "crt-runtime"
}

func (c *CRTRuntimeCheck) Description() string {
	return "Resolves the minimum Visual C++ runtime required by imported CRT modules"
}

func (c *CRTRuntimeCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	if !a.HasImports() {
		result.Status = StatusSkip
		return result.finish()
	}

	version, diags := ResolveMinVersion(a.BaseName, a.Modules, a.Target)
	a.MinVersion = version
	for _, d := range diags {
		result.add(d)
	}

	result.Metadata["min_toolset"] = version.String()
	return result.finish()
}

// ResolveMinVersion returns the oldest toolset satisfying the side-car
// modules in modules. baseName is the file name of the image itself.
func ResolveMinVersion(baseName string, modules []ModuleInfo, target policy.Target) (ToolsetVersion, []Diagnostic) {
	var diags []Diagnostic

	debug := policy.IsCRTDebug(baseName)
	if debug || policy.IsCRTRelease(baseName) || policy.IsOSCRT(baseName) {
		if target.Console() && importsModule(modules, "kernel32.dll") {
			variant := "onecore/x64"
			if debug {
				variant = "onecore/debug_nonredist/x64"
			}
			diags = append(diags, infof("For Xbox One & Scarlett, use the 'VC/Redist/MSVC/<toolset>/%s' version of the CRT instead of this version.", variant))
		}
		return ToolsetIgnore, diags
	}

	version := ToolsetUnknown
	cppcx := false
	for _, m := range modules {
		if m.Category != policy.CategoryCRT {
			continue
		}
		version = version.Max(sideCarVersion(m.Name))
		if strings.EqualFold(m.Name, "vccorlib140.dll") {
			cppcx = true
		}
	}

	if cppcx {
		diags = append(diags, infof("Uses the Windows Runtime C++/CX extensions"))
	}
	return version, diags
}

func importsModule(modules []ModuleInfo, name string) bool {
	for _, m := range modules {
		if strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}

// ToolsetVersionCheck reports the resolved minimum toolset once every check
// that can raise it has run.
type ToolsetVersionCheck struct{}

func (c *ToolsetVersionCheck) ID() string {
	return "toolset-version"
}

func (c *ToolsetVersionCheck) Description() string {
	return "Reports the minimum Visual C++ toolset required by the image's dependencies"
}

func (c *ToolsetVersionCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	if !a.MinVersion.Known() {
		result.Status = StatusSkip
		return result.finish()
	}

	result.Metadata["min_toolset"] = a.MinVersion.String()
	result.add(infof("Dependencies require '%s' or later C/C++ Runtime", a.MinVersion))
	return result.finish()
}
