package checks

import (
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// UnresolvedModulesCheck reports modules no rule recognized and no file next
// to the image provides. Hard-linked ones prevent the image from launching.
type UnresolvedModulesCheck struct{}

func (c *UnresolvedModulesCheck) ID() string {
	return "unresolved-modules"
}

func (c *UnresolvedModulesCheck) Description() string {
	return "Reports imported modules that could not be categorized or located"
}

func (c *UnresolvedModulesCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	if !a.HasImports() {
		result.Status = StatusSkip
		return result.finish()
	}

	hard, soft := 0, 0
	for _, m := range a.Modules {
		if m.Category != policy.CategoryUnknown {
			continue
		}
		if m.DelayLoad {
			soft++
			result.add(warnf("Unresolved delay load module").forModule(m.Name))
		} else {
			hard++
			result.add(errorf("Unresolved module required to launch").forModule(m.Name))
		}
	}

	result.Metadata["unresolved"] = hard
	result.Metadata["unresolved_delay_load"] = soft
	return result.finish()
}
