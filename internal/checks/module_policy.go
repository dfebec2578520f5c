package checks

import (
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// ModulePolicyCheck infers the target when none was given, categorizes every
// imported module and applies the platform rules to the result.
type ModulePolicyCheck struct{}

func (c *ModulePolicyCheck) ID() string {
	return "module-policy"
}

func (c *ModulePolicyCheck) Description() string {
	return "Classifies imported modules and validates them against the target platform"
}

func (c *ModulePolicyCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	if !a.HasImports() {
		result.Status = StatusSkip
		return result.finish()
	}

	if a.Target == policy.TargetUnspecified {
		if target, reason := policy.InferTarget(a.ModuleNames()); target != policy.TargetUnspecified {
			a.Target = target
			a.TargetInferred = true
			result.add(infof("%s", reason))
		}
	}

	a.classify()
	result.Metadata["target"] = a.Target.String()

	for _, d := range Validate(a.Modules, a.Target, a.Retail) {
		result.add(d)
	}
	return result.finish()
}

// Validate applies the platform policy to categorized modules. Findings are
// grouped by rule in a fixed order; within a rule they follow module order.
func Validate(modules []ModuleInfo, target policy.Target, retail bool) []Diagnostic {
	var diags []Diagnostic

	each := func(flag policy.Flags, d Diagnostic) {
		for _, m := range modules {
			if m.Flags.Has(flag) {
				diags = append(diags, d.forModule(m.Name))
			}
		}
	}
	uses := func(flag policy.Flags, delay ...bool) bool {
		for _, m := range modules {
			if !m.Flags.Has(flag) {
				continue
			}
			if len(delay) == 0 || m.DelayLoad == delay[0] {
				return true
			}
		}
		return false
	}

	each(policy.FlagWin32Legacy, infof("Using Win32 legacy DLLs for Game OS; recommend using xgameplatform.lib only"))
	each(policy.FlagLegacyERA, errorf("Found use of legacy ERA DLL that is not supported by Microsoft GDKX"))
	if retail {
		each(policy.FlagDevOnly, errorf("Using development only DLLs not for use in retail"))
	}
	each(policy.FlagGameOSOnly, errorf("Game OS only DLL referenced for PC"))
	each(policy.FlagPCOnly, errorf("Windows only DLL referred to for XboxOne/Scarlett"))

	hardStock := uses(policy.FlagD3DStock, false)
	hardXboxOne := uses(policy.FlagD3DXboxOne, false)
	hardScarlett := uses(policy.FlagD3DScarlett, false)

	switch target {
	case policy.TargetPC:
		each(policy.FlagLegacyDXSDK, warnf("Legacy DirectX SDK components found. Remove or use the DirectX Framework appx to deploy."))
		if uses(policy.FlagD3DXboxOne) || uses(policy.FlagD3DScarlett) {
			diags = append(diags, errorf("Using Direct3D.X Runtimes on PC is not supported"))
		}

	case policy.TargetXboxOne:
		if uses(policy.FlagD3DLegacy) {
			diags = append(diags, errorf("Legacy Direct3D components (i.e. D3D8/D3D9/D3D10) are not supported for Xbox One"))
		}
		each(policy.FlagLegacyDXSDK, errorf("Legacy DirectX SDK components are not supported for Xbox One"))
		if uses(policy.FlagD3DStock) {
			diags = append(diags, errorf("Using Direct3D Stock Runtime on XboxOne is not supported"))
		}
		if hardScarlett {
			diags = append(diags, errorf("Using Direct3D.X for Scarlett on XboxOne is not supported"))
		}

	case policy.TargetScarlett:
		if uses(policy.FlagD3DLegacy) {
			diags = append(diags, errorf("Legacy Direct3D components (i.e. D3D8/D3D9/D3D10) are not supported for Scarlett"))
		}
		each(policy.FlagLegacyDXSDK, errorf("Legacy DirectX SDK components are not supported for Scarlett"))
		if uses(policy.FlagD3DStock) {
			diags = append(diags, errorf("Using Direct3D Stock Runtime on Scarlett is not supported"))
		}
		if hardXboxOne {
			diags = append(diags, errorf("Using Direct3D.X for XboxOne on Scarlett is not supported"))
		}

	default:
		each(policy.FlagLegacyDXSDK, warnf("Legacy DirectX SDK components found. Remove or use the DirectX Framework appx to deploy."))
	}

	if btoi(hardStock)+btoi(hardXboxOne)+btoi(hardScarlett) > 1 {
		diags = append(diags, errorf("Found mixed runtimes: more than one Direct3D runtime hard-linked in the same image"))
	}

	return diags
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
