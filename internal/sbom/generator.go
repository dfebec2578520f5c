package sbom

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/batch"
)

// Generator builds and writes dependency SBOMs for batch results
type Generator struct {
	extractor ComponentExtractor
	now       func() time.Time
}

// NewGenerator creates a new SBOM generator
func NewGenerator() *Generator {
	return NewGeneratorWithExtractor(NewImportComponentExtractor())
}

// NewGeneratorWithExtractor creates a new SBOM generator with a custom extractor
func NewGeneratorWithExtractor(extractor ComponentExtractor) *Generator {
	return &Generator{
		extractor: extractor,
		now:       time.Now,
	}
}

// Generate creates an SBOM covering every image of result
func (g *Generator) Generate(result *batch.Result, format SBOMFormat) (*SBOM, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result")
	}

	s := NewSBOM(format, g.now())
	s.Metadata.Target = result.Target
	s.Metadata.MinToolset = result.MinVersion.String()

	components, err := g.extractor.ExtractComponents(result.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to extract components: %w", err)
	}
	for _, component := range components {
		s.AddComponent(component)
	}

	s.Metadata.SerialNumber = g.generateSerialNumber(s)

	validation := s.Validate()
	if !validation.Valid {
		return nil, fmt.Errorf("generated SBOM is invalid: %v", validation.Errors)
	}
	return s, nil
}

// Render returns the format-specific JSON for s
func (g *Generator) Render(s *SBOM) ([]byte, error) {
	switch s.Format {
	case CycloneDX:
		return NewCycloneDXGenerator().GenerateJSON(s)
	case SPDX:
		return NewSPDXGenerator().GenerateJSON(s)
	default:
		return nil, fmt.Errorf("unsupported SBOM format: %s", s.Format)
	}
}

// WriteToFile writes s to outputPath, creating the directory if needed, and
// describes what was written
func (g *Generator) WriteToFile(s *SBOM, outputPath string) (*SBOMInfo, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := g.Render(s)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s output: %w", s.Format, err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write SBOM file: %w", err)
	}

	return &SBOMInfo{
		Format:     s.Format,
		Version:    s.Version,
		FilePath:   outputPath,
		Size:       int64(len(data)),
		Components: len(s.Components),
		Generated:  s.GeneratedAt,
		Valid:      g.validateDocument(s).Valid,
	}, nil
}

// GetSupportedFormats returns the SBOM formats this generator supports
func (g *Generator) GetSupportedFormats() []SBOMFormat {
	return []SBOMFormat{CycloneDX, SPDX}
}

func (g *Generator) validateDocument(s *SBOM) ValidationResult {
	switch s.Format {
	case CycloneDX:
		gen := NewCycloneDXGenerator()
		return gen.ValidateSchema(gen.Convert(s))
	case SPDX:
		gen := NewSPDXGenerator()
		return gen.ValidateSchema(gen.Convert(s))
	default:
		return ValidationResult{Errors: []string{"unsupported format"}}
	}
}

// generateSerialNumber derives a UUID-shaped serial from the component set
// and timestamp, so identical inputs at the same instant share a serial
func (g *Generator) generateSerialNumber(s *SBOM) string {
	refs := make([]string, len(s.Components))
	for i, comp := range s.Components {
		refs[i] = comp.BOMRef
	}
	data := fmt.Sprintf("%s:%d", strings.Join(refs, ","), s.GeneratedAt.Unix())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("urn:uuid:%x-%x-%x-%x-%x",
		hash[0:4], hash[4:6], hash[6:8], hash[8:10], hash[10:16])
}
