// Package report renders batch results as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/batch"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/sbom"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// Format is an output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses an output format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Options controls rendering
type Options struct {
	Format Format
	// Verbose lists every module and image header details in text output.
	Verbose bool
	// NoLogo suppresses the banner in text output.
	NoLogo bool
}

// Document is the structured form written by the JSON and YAML renderers
type Document struct {
	Tool       string                   `json:"tool" yaml:"tool"`
	Version    string                   `json:"version" yaml:"version"`
	Target     policy.Target            `json:"target" yaml:"target"`
	MinVersion checks.ToolsetVersion    `json:"min_toolset" yaml:"min_toolset"`
	Passed     bool                     `json:"passed" yaml:"passed"`
	Summary    batch.Summary            `json:"summary" yaml:"summary"`
	Files      []*checks.AnalysisResult `json:"files" yaml:"files"`
	Layout     *batch.LayoutReport      `json:"layout,omitempty" yaml:"layout,omitempty"`
	SBOM       *sbom.SBOMInfo           `json:"sbom,omitempty" yaml:"sbom,omitempty"`
}

// NewDocument builds the structured report for result
func NewDocument(result *batch.Result, sbomInfo *sbom.SBOMInfo) *Document {
	return &Document{
		Tool:       utils.ToolName,
		Version:    utils.Version,
		Target:     result.Target,
		MinVersion: result.MinVersion,
		Passed:     !result.Failed(),
		Summary:    result.Summary,
		Files:      result.Files,
		Layout:     result.Layout,
		SBOM:       sbomInfo,
	}
}

// Render writes result to w in the requested format
func Render(w io.Writer, result *batch.Result, sbomInfo *sbom.SBOMInfo, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return renderJSON(w, NewDocument(result, sbomInfo))
	case FormatYAML:
		return renderYAML(w, NewDocument(result, sbomInfo))
	case FormatText, "":
		return NewTextRenderer(w, opts).Render(result, sbomInfo)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func renderJSON(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

func renderYAML(w io.Writer, doc *Document) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML report: %w", err)
	}
	return nil
}
