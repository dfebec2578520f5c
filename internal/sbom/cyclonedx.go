package sbom

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CycloneDXGenerator converts an SBOM to the CycloneDX 1.5 JSON schema
type CycloneDXGenerator struct{}

// NewCycloneDXGenerator creates a new CycloneDX generator
func NewCycloneDXGenerator() *CycloneDXGenerator {
	return &CycloneDXGenerator{}
}

// CycloneDXDocument represents the complete CycloneDX document structure
type CycloneDXDocument struct {
	BOMFormat    string                 `json:"bomFormat"`
	SpecVersion  string                 `json:"specVersion"`
	SerialNumber string                 `json:"serialNumber"`
	Version      int                    `json:"version"`
	Metadata     CycloneDXMetadata      `json:"metadata"`
	Components   []CycloneDXComponent   `json:"components,omitempty"`
	Dependencies []CycloneDXDependency  `json:"dependencies,omitempty"`
	Compositions []CycloneDXComposition `json:"compositions,omitempty"`
}

// CycloneDXMetadata represents the metadata section of CycloneDX
type CycloneDXMetadata struct {
	Timestamp  string              `json:"timestamp"`
	Tools      []CycloneDXTool     `json:"tools"`
	Properties []CycloneDXProperty `json:"properties,omitempty"`
}

// CycloneDXTool represents a tool in CycloneDX format
type CycloneDXTool struct {
	Vendor  string `json:"vendor,omitempty"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// CycloneDXComponent represents a component in CycloneDX format
type CycloneDXComponent struct {
	Type        string              `json:"type"`
	BOMRef      string              `json:"bom-ref"`
	Name        string              `json:"name"`
	Version     string              `json:"version,omitempty"`
	Description string              `json:"description,omitempty"`
	Scope       string              `json:"scope,omitempty"`
	Hashes      []CycloneDXHash     `json:"hashes,omitempty"`
	Properties  []CycloneDXProperty `json:"properties,omitempty"`
}

// CycloneDXHash represents a hash in CycloneDX format
type CycloneDXHash struct {
	Algorithm string `json:"alg"`
	Content   string `json:"content"`
}

// CycloneDXProperty represents a name-value property in CycloneDX format
type CycloneDXProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CycloneDXDependency represents one node of the dependency graph
type CycloneDXDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// CycloneDXComposition represents composition information
type CycloneDXComposition struct {
	Aggregate    string   `json:"aggregate"`
	Assemblies   []string `json:"assemblies,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Convert builds the CycloneDX document for s
func (g *CycloneDXGenerator) Convert(s *SBOM) *CycloneDXDocument {
	doc := &CycloneDXDocument{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.5",
		SerialNumber: s.Metadata.SerialNumber,
		Version:      1,
		Metadata: CycloneDXMetadata{
			Timestamp: s.Metadata.Timestamp,
			Tools: []CycloneDXTool{
				{
					Vendor:  s.Metadata.Tool.Vendor,
					Name:    s.Metadata.Tool.Name,
					Version: s.Metadata.Tool.Version,
				},
			},
			Properties: []CycloneDXProperty{
				{Name: PropertyTarget, Value: s.Metadata.Target.String()},
			},
		},
	}
	if s.Metadata.MinToolset != "" {
		doc.Metadata.Properties = append(doc.Metadata.Properties, CycloneDXProperty{
			Name:  PropertyMinToolset,
			Value: s.Metadata.MinToolset,
		})
	}

	for _, comp := range s.Components {
		doc.Components = append(doc.Components, g.convertComponent(comp))
	}
	doc.Dependencies = g.generateDependencies(s.Components)
	doc.Compositions = g.generateCompositions(s.Components)
	return doc
}

// GenerateJSON renders s as indented CycloneDX JSON
func (g *CycloneDXGenerator) GenerateJSON(s *SBOM) ([]byte, error) {
	return json.MarshalIndent(g.Convert(s), "", "  ")
}

func (g *CycloneDXGenerator) convertComponent(comp Component) CycloneDXComponent {
	out := CycloneDXComponent{
		Type:        string(comp.Type),
		BOMRef:      comp.BOMRef,
		Name:        comp.Name,
		Version:     comp.Version,
		Description: comp.Description,
		Scope:       string(comp.Scope),
	}

	algorithms := make([]string, 0, len(comp.Hashes))
	for alg := range comp.Hashes {
		algorithms = append(algorithms, alg)
	}
	sort.Strings(algorithms)
	for _, alg := range algorithms {
		out.Hashes = append(out.Hashes, CycloneDXHash{Algorithm: alg, Content: comp.Hashes[alg]})
	}

	for _, p := range comp.Properties {
		out.Properties = append(out.Properties, CycloneDXProperty{Name: p.Name, Value: p.Value})
	}
	return out
}

// generateDependencies lists every component that depends on something
func (g *CycloneDXGenerator) generateDependencies(components []Component) []CycloneDXDependency {
	var dependencies []CycloneDXDependency
	for _, comp := range components {
		if len(comp.Dependencies) == 0 {
			continue
		}
		dependencies = append(dependencies, CycloneDXDependency{
			Ref:       comp.BOMRef,
			DependsOn: comp.Dependencies,
		})
	}
	return dependencies
}

// generateCompositions marks the dependency lists of analyzed images as
// complete. Imported modules were not analyzed, so nothing is claimed for them.
func (g *CycloneDXGenerator) generateCompositions(components []Component) []CycloneDXComposition {
	var complete []string
	for _, comp := range components {
		if comp.Property(PropertyImageType) != "" {
			complete = append(complete, comp.BOMRef)
		}
	}
	if len(complete) == 0 {
		return nil
	}
	return []CycloneDXComposition{{Aggregate: "complete", Dependencies: complete}}
}

// ValidateSchema validates the CycloneDX document against the schema
func (g *CycloneDXGenerator) ValidateSchema(doc *CycloneDXDocument) ValidationResult {
	var errors []string

	if doc.BOMFormat != "CycloneDX" {
		errors = append(errors, "bomFormat must be 'CycloneDX'")
	}
	if doc.SpecVersion == "" {
		errors = append(errors, "specVersion is required")
	}
	if doc.SerialNumber == "" {
		errors = append(errors, "serialNumber is required")
	}
	if doc.Version <= 0 {
		errors = append(errors, "version must be positive")
	}

	if len(doc.Metadata.Tools) == 0 {
		errors = append(errors, "at least one tool is required in metadata")
	}
	for i, tool := range doc.Metadata.Tools {
		if tool.Name == "" {
			errors = append(errors, fmt.Sprintf("tool %d: name is required", i))
		}
	}

	bomRefs := make(map[string]bool)
	for i, comp := range doc.Components {
		if comp.BOMRef == "" {
			errors = append(errors, fmt.Sprintf("component %d: bom-ref is required", i))
		} else {
			if bomRefs[comp.BOMRef] {
				errors = append(errors, fmt.Sprintf("duplicate bom-ref: %s", comp.BOMRef))
			}
			bomRefs[comp.BOMRef] = true
		}
		if comp.Name == "" {
			errors = append(errors, fmt.Sprintf("component %d: name is required", i))
		}
		if comp.Type == "" {
			errors = append(errors, fmt.Sprintf("component %d: type is required", i))
		}
	}

	for i, dep := range doc.Dependencies {
		if dep.Ref == "" {
			errors = append(errors, fmt.Sprintf("dependency %d: ref is required", i))
		} else if !bomRefs[dep.Ref] {
			errors = append(errors, fmt.Sprintf("dependency %d: references non-existent component %s", i, dep.Ref))
		}
		for j, depRef := range dep.DependsOn {
			if !bomRefs[depRef] {
				errors = append(errors, fmt.Sprintf("dependency %d.%d: references non-existent component %s", i, j, depRef))
			}
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
