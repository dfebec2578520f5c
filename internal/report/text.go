package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/batch"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/sbom"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// TextRenderer writes the human-readable report. Write errors are sticky and
// returned from Render.
type TextRenderer struct {
	w    io.Writer
	opts Options
	err  error
}

// NewTextRenderer creates a text renderer writing to w
func NewTextRenderer(w io.Writer, opts Options) *TextRenderer {
	return &TextRenderer{w: w, opts: opts}
}

func (t *TextRenderer) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// Render writes every file section, then the layout section and SBOM details
func (t *TextRenderer) Render(result *batch.Result, sbomInfo *sbom.SBOMInfo) error {
	if !t.opts.NoLogo {
		t.printf("%s\n\n", utils.Banner())
	}

	for i, r := range result.Files {
		if i > 0 {
			t.printf("\n")
		}
		t.file(r)
	}

	if result.Layout != nil {
		t.printf("\n\nLayout:\n")
		t.diagnostics(result.Layout.Diagnostics)
	}

	if sbomInfo != nil {
		t.printf("\nSBOM Information:\n")
		t.printf("  Format: %s\n", sbomInfo.Format)
		t.printf("  File: %s\n", sbomInfo.FilePath)
		t.printf("  Components: %d\n", sbomInfo.Components)
		t.printf("  Generated: %s\n", sbomInfo.Generated.Format(time.RFC3339))
	}

	return t.err
}

func (t *TextRenderer) file(r *checks.AnalysisResult) {
	t.printf("reading '%s'", filepath.Base(r.Path))

	if r.Failure != nil {
		t.printf(" FAILED (%s: %s)\n", r.Failure.Kind, r.Failure.Message)
		return
	}
	if r.Image == nil {
		t.printf("\n")
		t.diagnostics(r.Diagnostics)
		return
	}

	t.printf(" [%s]\n", r.Image.Type)
	if t.opts.Verbose {
		t.printf("\tLinker: %s\n", r.Image.Linker)
		t.printf("\tOS: %s\n", r.Image.OS)
		t.printf("\tSubsystem: %d (%s)\n", r.Image.Subsystem, r.Image.SubsystemVersion)
	}

	t.diagnostics(r.Diagnostics)

	for _, m := range r.Modules {
		if !t.opts.Verbose && m.Category != policy.CategoryUnknown {
			continue
		}
		t.printf("%5s '%s' (%s)\n", m.Linkage(), m.Name, m.Category)
	}
}

// diagnostics prints one header line per run of consecutive diagnostics that
// share severity and message, followed by a tab indented line per module or
// symbol the run names.
func (t *TextRenderer) diagnostics(diags []checks.Diagnostic) {
	for i := 0; i < len(diags); {
		d := diags[i]
		t.printf("%s: %s\n", d.Severity, d.Message)

		j := i
		for ; j < len(diags) && diags[j].Severity == d.Severity && diags[j].Message == d.Message; j++ {
			if detail := t.detail(diags[j]); detail != "" {
				t.printf("\t%s\n", detail)
			}
		}
		i = j
	}
}

func (t *TextRenderer) detail(d checks.Diagnostic) string {
	switch {
	case d.Symbol != "" && d.Module != "" && t.opts.Verbose:
		return d.Module + "!" + d.Symbol
	case d.Symbol != "":
		return d.Symbol
	default:
		return d.Module
	}
}
