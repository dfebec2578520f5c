package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/batch"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/sbom"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

func sampleResult() *batch.Result {
	unsupported := "Use of unsupported API"
	return &batch.Result{
		Target:     policy.TargetXboxOne,
		MinVersion: checks.ToolsetVS2019,
		Files: []*checks.AnalysisResult{
			{
				Path: "bin/game.exe",
				Image: &checks.ImageSummary{
					Type:             peimage.TypeEXE,
					Linker:           "14.30",
					OS:               "10.00",
					Subsystem:        2,
					SubsystemVersion: "10.00",
				},
				Modules: []checks.ModuleInfo{
					{Name: "KERNEL32.dll", Category: policy.CategoryOS},
					{Name: "physics.dll", Category: policy.CategoryUnknown},
					{Name: "telemetry.dll", DelayLoad: true, Category: policy.CategoryUnknown},
				},
				Diagnostics: []checks.Diagnostic{
					{Severity: checks.SeverityInfo, Message: "Found 3 import modules"},
					{Severity: checks.SeverityError, Message: unsupported, Module: "USER32.dll", Symbol: "MessageBoxW"},
					{Severity: checks.SeverityError, Message: unsupported, Module: "USER32.dll", Symbol: "GetDC"},
					{Severity: checks.SeverityError, Message: "Unknown module required to launch", Module: "physics.dll"},
				},
				Target: policy.TargetXboxOne,
			},
			{
				Path:    "bad.exe",
				Failure: &checks.Failure{Kind: "Truncated", Message: "file too small"},
			},
		},
		Summary: batch.Summary{Files: 2, Failed: 2, Errors: 1},
	}
}

func render(t *testing.T, result *batch.Result, info *sbom.SBOMInfo, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, result, info, opts))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestText_Default(t *testing.T) {
	out := render(t, sampleResult(), nil, Options{})

	assert.True(t, strings.HasPrefix(out, utils.Banner()+"\n\n"))
	assert.Contains(t, out, "reading 'game.exe' [EXE]\n")
	assert.NotContains(t, out, "Linker:")

	assert.Contains(t, out, "INFO: Found 3 import modules\n")
	assert.Contains(t, out, "ERROR: Use of unsupported API\n\tMessageBoxW\n\tGetDC\n")
	assert.Equal(t, 1, strings.Count(out, "Use of unsupported API"))
	assert.Contains(t, out, "ERROR: Unknown module required to launch\n\tphysics.dll\n")

	assert.NotContains(t, out, "KERNEL32.dll")
	assert.Contains(t, out, "  DLL 'physics.dll' (???)\n")
	assert.Contains(t, out, "DLoad 'telemetry.dll' (???)\n")

	assert.Contains(t, out, "\nreading 'bad.exe' FAILED (Truncated: file too small)\n")
	assert.NotContains(t, out, "Layout:")
	assert.NotContains(t, out, "SBOM Information:")
}

func TestText_Verbose(t *testing.T) {
	out := render(t, sampleResult(), nil, Options{Verbose: true, NoLogo: true})

	assert.True(t, strings.HasPrefix(out, "reading 'game.exe' [EXE]\n"))
	assert.Contains(t, out, "\tLinker: 14.30\n\tOS: 10.00\n\tSubsystem: 2 (10.00)\n")
	assert.Contains(t, out, "\tUSER32.dll!MessageBoxW\n\tUSER32.dll!GetDC\n")
	assert.Contains(t, out, "  DLL 'KERNEL32.dll' (OS)\n")
	assert.Contains(t, out, "  DLL 'physics.dll' (???)\n")
}

func TestText_LayoutAndSBOM(t *testing.T) {
	result := sampleResult()
	result.Layout = &batch.LayoutReport{
		Missing: []string{"physics.dll"},
		Diagnostics: []checks.Diagnostic{
			{Severity: checks.SeverityError, Message: "Could not locate these DLLs in the layout", Module: "physics.dll"},
			{Severity: checks.SeverityError, Message: "Could not locate these DLLs in the layout", Module: "audio.dll"},
			{Severity: checks.SeverityWarning, Message: "Some user DLLs were found in other folders. May not be found at runtime."},
		},
	}
	info := &sbom.SBOMInfo{
		Format:     sbom.SPDX,
		FilePath:   "out/xbdepends.spdx.json",
		Components: 4,
		Generated:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	out := render(t, result, info, Options{NoLogo: true})
	assert.Contains(t, out, "\n\nLayout:\nERROR: Could not locate these DLLs in the layout\n\tphysics.dll\n\taudio.dll\n"+
		"WARNING: Some user DLLs were found in other folders. May not be found at runtime.\n")
	assert.Contains(t, out, "SBOM Information:\n  Format: SPDX\n  File: out/xbdepends.spdx.json\n  Components: 4\n  Generated: 2024-01-02T03:04:05Z\n")
}

func TestText_SkippedFile(t *testing.T) {
	result := &batch.Result{Files: []*checks.AnalysisResult{{
		Path:    "x86.dll",
		Skipped: true,
		Diagnostics: []checks.Diagnostic{
			{Severity: checks.SeverityInfo, Message: "Skipping non-x64 image"},
		},
	}}}

	out := render(t, result, nil, Options{NoLogo: true})
	assert.Equal(t, "reading 'x86.dll'\nINFO: Skipping non-x64 image\n", out)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestText_WriteError(t *testing.T) {
	err := Render(failingWriter{}, sampleResult(), nil, Options{})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestJSON(t *testing.T) {
	out := render(t, sampleResult(), &sbom.SBOMInfo{Format: sbom.CycloneDX, Components: 3}, Options{Format: FormatJSON})

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, utils.ToolName, doc["tool"])
	assert.Equal(t, "xboxone", doc["target"])
	assert.Equal(t, "VS 2019 (16.0)", doc["min_toolset"])
	assert.Equal(t, false, doc["passed"])

	files := doc["files"].([]interface{})
	require.Len(t, files, 2)
	first := files[0].(map[string]interface{})
	assert.Equal(t, "bin/game.exe", first["path"])
	diags := first["diagnostics"].([]interface{})
	assert.Equal(t, "ERROR", diags[1].(map[string]interface{})["severity"])
	assert.Equal(t, "Truncated", files[1].(map[string]interface{})["failure"].(map[string]interface{})["kind"])

	assert.Equal(t, "CycloneDX", doc["sbom"].(map[string]interface{})["format"])
	assert.NotContains(t, doc, "layout")
}

func TestYAML(t *testing.T) {
	result := sampleResult()
	result.Layout = &batch.LayoutReport{MissingRuntime: []string{"msvcp140.dll"}}

	out := render(t, result, nil, Options{Format: FormatYAML})

	var doc struct {
		Tool    string        `yaml:"tool"`
		Target  string        `yaml:"target"`
		Passed  bool          `yaml:"passed"`
		Summary batch.Summary `yaml:"summary"`
		Files   []struct {
			Path    string `yaml:"path"`
			Modules []struct {
				Name     string `yaml:"name"`
				Category string `yaml:"category"`
			} `yaml:"modules"`
		} `yaml:"files"`
		Layout struct {
			MissingRuntime []string `yaml:"missing_runtime"`
		} `yaml:"layout"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	assert.Equal(t, utils.ToolName, doc.Tool)
	assert.Equal(t, "xboxone", doc.Target)
	assert.False(t, doc.Passed)
	assert.Equal(t, 2, doc.Summary.Files)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "OS", doc.Files[0].Modules[0].Category)
	assert.Equal(t, []string{"msvcp140.dll"}, doc.Layout.MissingRuntime)
	assert.NotContains(t, out, "sbom:")
}

func TestRender_UnsupportedFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, sampleResult(), nil, Options{Format: "xml"})
	assert.Error(t, err)
}
