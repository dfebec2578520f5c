package checks

import (
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// ImportSymbolsCheck walks the symbols imported from OS and CRT modules. On
// console targets every OS symbol must be in the Game OS allowlist; CRT
// symbols can raise the minimum toolset.
type ImportSymbolsCheck struct{}

func (c *ImportSymbolsCheck) ID() string {
	return "import-symbols"
}

func (c *ImportSymbolsCheck) Description() string {
	return "Verifies OS APIs imported by console titles are in WINAPI_FAMILY_GAMES"
}

func (c *ImportSymbolsCheck) Execute(a *Analysis) CheckResult {
	result := newResult(c)

	if !a.HasImports() {
		result.Status = StatusSkip
		return result.finish()
	}

	if a.MinVersion == ToolsetIgnore {
		result.add(infof("Known CRT DLL"))
		result.Status = StatusSkip
		return result.finish()
	}

	checked, disallowed := 0, 0
	for i, m := range a.Modules {
		if m.Category != policy.CategoryOS && m.Category != policy.CategoryCRT {
			continue
		}
		if policy.IsOSCRT(m.Name) {
			continue
		}
		if m.Category == policy.CategoryOS && !a.Target.Console() {
			continue
		}

		symbols, err := a.Symbols(i)
		if err != nil {
			result.Status = StatusError
			result.Error = err
			result.Message = "Invalid import table"
			return result
		}

		for _, sym := range symbols {
			if sym.ByOrdinal {
				continue
			}
			checked++

			switch m.Category {
			case policy.CategoryOS:
				if !policy.AllowedOnGameOS(sym.Name) {
					disallowed++
					d := errorf("API is not in WINAPI_FAMILY_GAMES").forModule(m.Name)
					d.Symbol = sym.Name
					result.add(d)
				}
			case policy.CategoryCRT:
				if strings.EqualFold(sym.Name, frameHandler4) {
					a.MinVersion = a.MinVersion.Max(ToolsetVS2019)
				}
			}
		}
	}

	result.Metadata["symbols_checked"] = checked
	result.Metadata["disallowed"] = disallowed
	return result.finish()
}
