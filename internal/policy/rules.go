package policy

import (
	"regexp"
)

// Flags records the side effects a rule attaches to a module. Each flag feeds
// one of the validator's per-image lists.
type Flags uint32

const (
	// FlagDevOnly marks modules that must not ship in a retail build
	FlagDevOnly Flags = 1 << iota
	// FlagPCOnly marks a PC-only module referenced by a console build
	FlagPCOnly
	// FlagGameOSOnly marks a console-only module referenced by a PC build
	FlagGameOSOnly
	// FlagWin32Legacy marks a Win32 umbrella module referenced by a console build
	FlagWin32Legacy
	FlagLegacyDXSDK
	FlagLegacyERA
	FlagD3DLegacy
	FlagD3DStock
	FlagD3DXboxOne
	FlagD3DScarlett
)

// Has reports whether every bit in mask is set
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagDevOnly, "dev-only"},
	{FlagPCOnly, "pc-only"},
	{FlagGameOSOnly, "gameos-only"},
	{FlagWin32Legacy, "win32-legacy"},
	{FlagLegacyDXSDK, "legacy-dxsdk"},
	{FlagLegacyERA, "legacy-era"},
	{FlagD3DLegacy, "d3d-legacy"},
	{FlagD3DStock, "d3d-stock"},
	{FlagD3DXboxOne, "d3d-xboxone"},
	{FlagD3DScarlett, "d3d-scarlett"},
}

// Names lists the set flags in declaration order
func (f Flags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// Rule is one step of the classification chain. Flags always apply on a
// match; TargetFlags apply only when OnTarget accepts the active target.
type Rule struct {
	Name        string
	Match       func(name string) bool
	Category    Category
	Flags       Flags
	TargetFlags Flags
	OnTarget    func(Target) bool
}

func (r Rule) flagsFor(target Target) Flags {
	flags := r.Flags
	if r.TargetFlags != 0 && r.OnTarget != nil && r.OnTarget(target) {
		flags |= r.TargetFlags
	}
	return flags
}

func matchPattern(re *regexp.Regexp) func(string) bool {
	return re.MatchString
}

func onConsole(t Target) bool { return t.Console() }
func onPC(t Target) bool      { return t == TargetPC }

// rules are evaluated top to bottom and the first match wins. Architecture
// defining patterns come before the generic table lookups.
var rules = []Rule{
	{Name: "apiset", Match: matchPattern(apiSetPattern), Category: CategoryOS},
	{Name: "crt-debug", Match: matchPattern(crtDebugPattern), Category: CategoryCRT, Flags: FlagDevOnly},
	{Name: "crt-release", Match: matchPattern(crtReleasePattern), Category: CategoryCRT},
	{Name: "mfc-debug", Match: matchPattern(mfcDebugPattern), Category: CategoryCRT, Flags: FlagDevOnly, TargetFlags: FlagPCOnly, OnTarget: onConsole},
	{Name: "mfc-release", Match: matchPattern(mfcReleasePattern), Category: CategoryCRT, TargetFlags: FlagPCOnly, OnTarget: onConsole},
	{Name: "xtf", Match: matchPattern(xtfPattern), Category: CategoryGDK, Flags: FlagDevOnly},
	{Name: "windows-component", Match: matchPattern(winComponentPattern), Category: CategoryOS},
	{Name: "core-os", Match: coreOS.Contains, Category: CategoryOS},
	{Name: "win32", Match: win32Legacy.Contains, Category: CategoryOS, TargetFlags: FlagWin32Legacy, OnTarget: onConsole},
	{Name: "system-os", Match: systemOS.Contains, Category: CategoryOS, TargetFlags: FlagPCOnly, OnTarget: onConsole},
	{Name: "gameos-only", Match: gameOSOnly.Contains, Category: CategoryGameOS, TargetFlags: FlagGameOSOnly, OnTarget: onPC},
	{Name: "pc-only", Match: pcOnly.Contains, Category: CategoryOS, TargetFlags: FlagPCOnly, OnTarget: onConsole},
	{Name: "pc-vendor", Match: pcVendor.Contains, Category: CategoryVendor, TargetFlags: FlagPCOnly, OnTarget: onConsole},
	{Name: "legacy-dxsdk-debug", Match: legacyDXSDKDebug.Contains, Category: CategoryDXSDK, Flags: FlagLegacyDXSDK | FlagDevOnly},
	{Name: "legacy-dxsdk", Match: legacyDXSDK.Contains, Category: CategoryDXSDK, Flags: FlagLegacyDXSDK},
	{Name: "gdk", Match: gdk.Contains, Category: CategoryGDK},
	{Name: "gdk-dev-only", Match: devOnlyGDK.Contains, Category: CategoryGDK, Flags: FlagDevOnly},
	{Name: "d3d-legacy", Match: d3dLegacy.Contains, Category: CategoryD3D, Flags: FlagD3DLegacy},
	{Name: "d3d-stock", Match: d3dStock.Contains, Category: CategoryD3D, Flags: FlagD3DStock},
	{Name: "d3d-xboxone", Match: d3dXboxOne.Contains, Category: CategoryD3D, Flags: FlagD3DXboxOne},
	{Name: "d3d-scarlett", Match: d3dScarlett.Contains, Category: CategoryD3D, Flags: FlagD3DScarlett},
	{Name: "legacy-era", Match: legacyERA.Contains, Category: CategoryOS, Flags: FlagLegacyERA},
}

// Rules returns a copy of the ordered rule chain
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}
