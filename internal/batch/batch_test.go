package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage/pebuild"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

func write(t *testing.T, dir, name string, b *pebuild.Builder) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func testLogger() *utils.Logger {
	return utils.NewLogger(utils.LoggerConfig{Level: utils.LogLevelError, Output: &bytes.Buffer{}})
}

func run(t *testing.T, opts Options, paths []string) *Result {
	t.Helper()
	result, err := NewDriver(opts, testLogger()).Run(context.Background(), paths)
	require.NoError(t, err)
	return result
}

func messagesOf(diags []checks.Diagnostic, sev checks.Severity) []string {
	var out []string
	for _, d := range diags {
		if d.Severity == sev {
			out = append(out, d.Message)
		}
	}
	return out
}

func TestDriver_PreservesInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.exe", "a.exe", "b.dll", "d.exe", "e.exe", "f.exe"} {
		b := pebuild.New().AddImport("kernel32.dll", "CloseHandle")
		if filepath.Ext(name) == ".dll" {
			b.DLL()
		}
		paths = append(paths, write(t, dir, name, b))
	}

	result := run(t, Options{Analysis: checks.Options{Target: policy.TargetPC}, Workers: 2}, paths)

	require.Len(t, result.Files, len(paths))
	for i, r := range result.Files {
		assert.Equal(t, paths[i], r.Path)
		assert.True(t, r.Passed)
	}
	assert.Equal(t, Summary{Files: 6, Passed: 6}, result.Summary)
	assert.Equal(t, 0, result.ExitCode())
	assert.Nil(t, result.Layout)
}

func TestDriver_FailuresDoNotStopBatch(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.exe")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	x86 := pebuild.New()
	x86.Machine, x86.Magic = 0x14c, 0x10b

	paths := []string{
		garbage,
		write(t, dir, "x86.exe", x86),
		write(t, dir, "legacy.exe", pebuild.New().AddImport("kernelx.dll")),
		write(t, dir, "ok.exe", pebuild.New().AddImport("ntdll.dll", "RtlCaptureContext")),
		filepath.Join(dir, "missing.exe"),
	}

	result := run(t, Options{Analysis: checks.Options{Target: policy.TargetXboxOne}, Workers: 4}, paths)

	assert.Equal(t, Summary{Files: 5, Passed: 1, Failed: 3, Skipped: 1, Errors: 2}, result.Summary)
	assert.Equal(t, "Truncated", result.Files[0].Failure.Kind)
	assert.True(t, result.Files[1].Skipped)
	assert.False(t, result.Files[2].Passed)
	assert.True(t, result.Files[3].Passed)
	assert.Equal(t, "IO", result.Files[4].Failure.Kind)
	assert.Equal(t, 1, result.ExitCode())
}

func TestDriver_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "game.exe", pebuild.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDriver(Options{Workers: 1}, testLogger()).Run(ctx, []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDriver_InfersBatchTarget(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "tool.exe", pebuild.New().AddImport("ntdll.dll")),
		write(t, dir, "game.exe", pebuild.New().AddImport("d3d12_xs.dll")),
	}

	result := run(t, Options{}, paths)
	assert.Equal(t, policy.TargetScarlett, result.Target)
	assert.Equal(t, policy.TargetUnspecified, result.Files[0].Target)
}

func TestLayout_UnresolvedModules(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "bin/game.exe", pebuild.New().
			AddImport("Engine.dll", "Run").
			AddImport("physics.dll", "Step").
			AddDelayImport("telemetry.dll", "Send")),
		write(t, dir, "lib/engine.dll", pebuild.New().DLL().AddImport("ntdll.dll")),
	}

	result := run(t, Options{Analysis: checks.Options{Target: policy.TargetPC}, Layout: true}, paths)
	require.NotNil(t, result.Layout)
	layout := result.Layout

	assert.Equal(t, []string{"physics.dll"}, layout.Missing)
	assert.Equal(t, []string{"telemetry.dll"}, layout.MissingDelayLoad)
	assert.Equal(t, []string{"engine.dll"}, layout.OtherFolder)

	assert.Equal(t, []string{
		"Could not locate these DLLs in the layout",
		"Could not locate these Delay Load DLLs in the layout",
	}, messagesOf(layout.Diagnostics, checks.SeverityError))
	assert.Contains(t, messagesOf(layout.Diagnostics, checks.SeverityWarning), "Some user DLLs were found in other folders. May not be found at runtime.")
	assert.Equal(t, 1, result.ExitCode())
}

func TestLayout_Clean(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "game.exe", pebuild.New().AddImport("engine.dll", "Run").AddImport("kernel32.dll", "CloseHandle")),
		write(t, dir, "engine.dll", pebuild.New().DLL().AddImport("ntdll.dll")),
	}

	result := run(t, Options{Analysis: checks.Options{Target: policy.TargetXboxOne}, Layout: true}, paths)
	require.NotNil(t, result.Layout)
	assert.Empty(t, messagesOf(result.Layout.Diagnostics, checks.SeverityError))
	assert.Empty(t, messagesOf(result.Layout.Diagnostics, checks.SeverityWarning))
	assert.Equal(t, []string{"No unidentified user DLLs encountered in layout"}, messagesOf(result.Layout.Diagnostics, checks.SeverityInfo))
	assert.Equal(t, 0, result.ExitCode())
}

func TestLayout_RuntimeRedist(t *testing.T) {
	build := func(t *testing.T, withRuntime bool) []string {
		dir := t.TempDir()
		paths := []string{
			write(t, dir, "game.exe", pebuild.New().
				AddImport("kernel32.dll", "CloseHandle").
				AddImport("msvcp140.dll", "_Xbad_alloc").
				AddImport("vcruntime140_1.dll", "__CxxFrameHandler4")),
			write(t, dir, "vcruntime140.dll", pebuild.New().DLL().AddImport("kernel32.dll", "CloseHandle")),
		}
		if withRuntime {
			for _, name := range []string{"msvcp140.dll", "msvcp140_1.dll", "msvcp140_2.dll", "vcruntime140_1.dll"} {
				paths = append(paths, write(t, dir, name, pebuild.New().DLL().AddImport("kernel32.dll", "CloseHandle")))
			}
		}
		return paths
	}

	t.Run("console requires the runtime", func(t *testing.T) {
		result := run(t, Options{Analysis: checks.Options{Target: policy.TargetScarlett}, Layout: true}, build(t, false))
		assert.Equal(t, checks.ToolsetVS2019, result.MinVersion)
		assert.Equal(t, []string{"msvcp140.dll", "msvcp140_1.dll", "msvcp140_2.dll", "vcruntime140_1.dll"}, result.Layout.MissingRuntime)
		assert.Contains(t, messagesOf(result.Layout.Diagnostics, checks.SeverityError), "Missing Visual C/C++ Runtime DLLs in layout")
		assert.Equal(t, 1, result.ExitCode())
	})

	t.Run("pc warns", func(t *testing.T) {
		result := run(t, Options{Analysis: checks.Options{Target: policy.TargetPC}, Layout: true}, build(t, false))
		assert.Empty(t, messagesOf(result.Layout.Diagnostics, checks.SeverityError))
		assert.Contains(t, messagesOf(result.Layout.Diagnostics, checks.SeverityWarning), "This project relies on finding the Visual C/C++ Runtime installed on the machine")
		assert.Equal(t, 0, result.ExitCode())
	})

	t.Run("complete layout", func(t *testing.T) {
		result := run(t, Options{Analysis: checks.Options{Target: policy.TargetScarlett}, Layout: true}, build(t, true))
		assert.Empty(t, result.Layout.MissingRuntime)
		assert.Empty(t, messagesOf(result.Layout.Diagnostics, checks.SeverityError))
	})
}

func TestLayout_UCRTBase(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		write(t, dir, "game.exe", pebuild.New().AddImport("ucrtbase.dll", "malloc")),
		write(t, dir, "ucrtbase.dll", pebuild.New().DLL().AddImport("ntdll.dll")),
	}

	result := run(t, Options{Analysis: checks.Options{Target: policy.TargetPC}, Layout: true}, paths)
	assert.Contains(t, messagesOf(result.Layout.Diagnostics, checks.SeverityWarning), "'ucrtbase.dll' is not required in the layout; already included in the OS")
}

func TestAccumulator_IgnoresFailedAndRuntimeImages(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(&checks.AnalysisResult{Path: "bad.dll", Failure: &checks.Failure{Kind: "Truncated"}})
	acc.Add(&checks.AnalysisResult{Path: "x86.dll", Skipped: true})
	acc.Add(&checks.AnalysisResult{Path: "dir/VCRUNTIME140.dll", Passed: true, MinVersion: checks.ToolsetIgnore})
	acc.Add(&checks.AnalysisResult{Path: "game.exe", Passed: true, MinVersion: checks.ToolsetVS2017Update7})
	acc.Add(nil)

	assert.False(t, acc.Found("bad.dll"))
	assert.False(t, acc.Found("x86.dll"))
	assert.True(t, acc.Found("vcruntime140.dll"))
	assert.Equal(t, checks.ToolsetVS2017Update7, acc.MinVersion())
	assert.Equal(t, policy.TargetUnspecified, acc.InferredTarget())
}
