package policy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTables_Sorted(t *testing.T) {
	for _, table := range Tables() {
		t.Run(table.Name(), func(t *testing.T) {
			assert.NoError(t, table.Validate())
			assert.NotPanics(t, func() { mustBeSorted(table) })
		})
	}
}

func TestTables_ShuffledPanics(t *testing.T) {
	entries := gdk.Entries()
	r := rand.New(rand.NewSource(7))
	for {
		r.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
		if newTable("shuffled", entries...).Validate() != nil {
			break
		}
	}

	shuffled := newTable("shuffled", entries...)
	assert.PanicsWithError(t, shuffled.Validate().Error(), func() { mustBeSorted(coreOS, shuffled) })
}

func TestTable_Validate(t *testing.T) {
	assert.Error(t, newTable("empty").Validate())
	assert.Error(t, newTable("duplicate", "a.dll", "A.DLL").Validate())
	assert.NoError(t, newTable("mixed case", "Alpha.dll", "beta.dll", "GAMMA.dll").Validate())
}

func TestTable_Contains(t *testing.T) {
	assert.True(t, coreOS.Contains("ntdll.dll"))
	assert.True(t, coreOS.Contains("NTDLL.DLL"))
	assert.True(t, coreOS.Contains("iphlpapi.dll"))
	assert.False(t, coreOS.Contains("ntdll"))
	assert.False(t, coreOS.Contains(""))
	assert.True(t, gdk.Contains("microsoft.xbox.services.gdk.c.thunks.dll"))
	assert.True(t, gdk.Contains("PlayFabCore.GDK.dll"))
}

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		module   string
		target   Target
		category Category
		flags    Flags
		rule     string
	}{
		{"api set", "api-ms-win-core-synch-l1-2-0.dll", TargetXboxOne, CategoryOS, 0, "apiset"},
		{"extension set", "ext-ms-win-gdi-draw-l1-1-0.dll", TargetPC, CategoryOS, 0, "apiset"},
		{"os crt api set wins over crt", "api-ms-win-crt-runtime-l1-1-0.dll", TargetXboxOne, CategoryOS, 0, "apiset"},
		{"debug crt", "vcruntime140d.dll", TargetXboxOne, CategoryCRT, FlagDevOnly, "crt-debug"},
		{"debug ucrt", "ucrtbased.dll", TargetPC, CategoryCRT, FlagDevOnly, "crt-debug"},
		{"release crt", "VCRUNTIME140.dll", TargetXboxOne, CategoryCRT, 0, "crt-release"},
		{"release crt side-car", "msvcp140_atomic_wait.dll", TargetXboxOne, CategoryCRT, 0, "crt-release"},
		{"openmp", "libomp140.x86_64.dll", TargetPC, CategoryCRT, 0, "crt-release"},
		{"debug mfc on console", "mfc140ud.dll", TargetScarlett, CategoryCRT, FlagDevOnly | FlagPCOnly, "mfc-debug"},
		{"debug mfc on pc", "mfc140ud.dll", TargetPC, CategoryCRT, FlagDevOnly, "mfc-debug"},
		{"release mfc on console", "mfc140u.dll", TargetXboxOne, CategoryCRT, FlagPCOnly, "mfc-release"},
		{"mfc resources", "mfc140enu.dll", TargetUnspecified, CategoryCRT, 0, "mfc-release"},
		{"transport", "xtfconsolecontrol.dll", TargetXboxOne, CategoryGDK, FlagDevOnly, "xtf"},
		{"windows component", "Windows.Networking.dll", TargetXboxOne, CategoryOS, 0, "windows-component"},
		{"core os", "ntdll.dll", TargetXboxOne, CategoryOS, 0, "core-os"},
		{"win32 on console", "kernel32.dll", TargetXboxOne, CategoryOS, FlagWin32Legacy, "win32"},
		{"win32 on pc", "KERNEL32.dll", TargetPC, CategoryOS, 0, "win32"},
		{"system os on console", "gdi32.dll", TargetScarlett, CategoryOS, FlagPCOnly, "system-os"},
		{"system os on pc", "gdi32.dll", TargetPC, CategoryOS, 0, "system-os"},
		{"gameos on pc", "xmem.dll", TargetPC, CategoryGameOS, FlagGameOSOnly, "gameos-only"},
		{"gameos on console", "xmem.dll", TargetXboxOne, CategoryGameOS, 0, "gameos-only"},
		{"pc only on console", "USER32.dll", TargetXboxOne, CategoryOS, FlagWin32Legacy, "win32"},
		{"pc only table on console", "dinput8.dll", TargetXboxOne, CategoryOS, FlagPCOnly, "pc-only"},
		{"vendor", "nvcuda.dll", TargetScarlett, CategoryVendor, FlagPCOnly, "pc-vendor"},
		{"vendor on pc", "nvcuda.dll", TargetPC, CategoryVendor, 0, "pc-vendor"},
		{"legacy sdk debug", "d3dx9d_43.dll", TargetPC, CategoryDXSDK, FlagLegacyDXSDK | FlagDevOnly, "legacy-dxsdk-debug"},
		{"legacy sdk", "XINPUT1_3.dll", TargetPC, CategoryDXSDK, FlagLegacyDXSDK, "legacy-dxsdk"},
		{"gdk", "xgameruntime.thunks.dll", TargetXboxOne, CategoryGDK, 0, "gdk"},
		{"gdk dev only", "xg.dll", TargetXboxOne, CategoryGDK, FlagDevOnly, "gdk-dev-only"},
		{"d3d legacy", "d3d9.dll", TargetPC, CategoryD3D, FlagD3DLegacy, "d3d-legacy"},
		{"d3d stock", "d3d12.dll", TargetPC, CategoryD3D, FlagD3DStock, "d3d-stock"},
		{"d3d xboxone", "d3d12_x.dll", TargetXboxOne, CategoryD3D, FlagD3DXboxOne, "d3d-xboxone"},
		{"d3d scarlett", "d3d12_xs.dll", TargetScarlett, CategoryD3D, FlagD3DScarlett, "d3d-scarlett"},
		{"legacy era", "kernelx.dll", TargetUnspecified, CategoryOS, FlagLegacyERA, "legacy-era"},
		{"unknown", "mygame.dll", TargetPC, CategoryUnknown, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.module, tt.target, false)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.flags, got.Flags, "flags %v", got.Flags.Names())
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestClassify_UserProbe(t *testing.T) {
	probed := []string{}
	c := NewClassifier(func(name string) bool {
		probed = append(probed, name)
		return name == "engine.dll"
	})

	assert.Equal(t, CategoryUser, c.Classify("engine.dll", TargetPC, false).Category)
	assert.Equal(t, CategoryUnknown, c.Classify("missing.dll", TargetPC, true).Category)
	assert.Equal(t, CategoryOS, c.Classify("ntdll.dll", TargetPC, false).Category)

	// Only names that fall through every rule are probed.
	assert.Equal(t, []string{"engine.dll", "missing.dll"}, probed)
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier(func(name string) bool { return name == "engine.dll" })
	names := []string{"kernel32.dll", "engine.dll", "d3d12_xs.dll", "mfc140u.dll", "nobody.dll", "vcruntime140d.dll"}
	targets := []Target{TargetUnspecified, TargetXboxOne, TargetScarlett, TargetPC}

	for _, name := range names {
		for _, target := range targets {
			for _, delay := range []bool{false, true} {
				first := c.Classify(name, target, delay)
				for i := 0; i < 3; i++ {
					require.Equal(t, first, c.Classify(name, target, delay), "%s %s %v", name, target, delay)
				}
				assert.Equal(t, delay, first.DelayLoad)
			}
		}
	}
}

func TestInferTarget(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		target Target
	}{
		{"nothing graphical", []string{"kernel32.dll", "ntdll.dll"}, TargetUnspecified},
		{"legacy", []string{"d3d9.dll"}, TargetPC},
		{"stock", []string{"dxgi.dll"}, TargetPC},
		{"xboxone", []string{"d3d12_x.dll", "kernel32.dll"}, TargetXboxOne},
		{"scarlett", []string{"xg_xs.dll"}, TargetScarlett},
		{"first match wins", []string{"d3d12_x.dll", "d3d12_xs.dll"}, TargetXboxOne},
		{"order of input decides", []string{"D3D12.dll", "d3d12_x.dll"}, TargetPC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, reason := InferTarget(tt.names)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.target == TargetUnspecified, reason == "")
		})
	}
}

func TestAllowedOnGameOS(t *testing.T) {
	for _, sym := range []string{"CloseHandle", "closehandle", "RtlCaptureContext", "CreateFileW", "DStorageGetFactory", "WSAStartup"} {
		assert.True(t, AllowedOnGameOS(sym), sym)
	}
	for _, sym := range []string{"MessageBoxW", "CreateWindowExW", "WinExec", ""} {
		assert.False(t, AllowedOnGameOS(sym), sym)
	}
}

func TestPatterns(t *testing.T) {
	assert.True(t, IsCRTDebug("msvcp140d.dll"))
	assert.False(t, IsCRTDebug("msvcp140.dll"))
	assert.True(t, IsCRTRelease("msvcp140_codecvt_ids.dll"))
	assert.True(t, IsOSCRT("ucrtbase.dll"))
	assert.True(t, IsOSCRT("api-ms-win-crt-heap-l1-1-0.dll"))
	assert.False(t, IsOSCRT("vcruntime140.dll"))
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{"": TargetUnspecified, "auto": TargetUnspecified, "XboxOne": TargetXboxOne, "scarlett": TargetScarlett, " pc ": TargetPC} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTarget("xbox360")
	assert.Error(t, err)

	assert.True(t, TargetScarlett.Console())
	assert.False(t, TargetPC.Console())
	assert.Equal(t, "???", CategoryUnknown.String())
	assert.Equal(t, "IHV", CategoryVendor.String())
	assert.Equal(t, "pc", TargetPC.String())
}
