// Package sbom builds a dependency bill of materials from analysis results and
// writes it as CycloneDX or SPDX JSON.
package sbom

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// SBOMFormat represents the format of the SBOM output
type SBOMFormat int

const (
	// CycloneDX format
	CycloneDX SBOMFormat = iota
	// SPDX format
	SPDX
)

// String returns the string representation of the SBOM format
func (f SBOMFormat) String() string {
	switch f {
	case CycloneDX:
		return "CycloneDX"
	case SPDX:
		return "SPDX"
	default:
		return "Unknown"
	}
}

// MarshalText renders the format name in JSON and YAML reports
func (f SBOMFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// FileName is the default output file name for the format
func (f SBOMFormat) FileName() string {
	if f == SPDX {
		return utils.ToolName + ".spdx.json"
	}
	return utils.ToolName + ".cdx.json"
}

// ParseFormat parses the format names accepted in config files and flags
func ParseFormat(s string) (SBOMFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cyclonedx", "cdx", "":
		return CycloneDX, nil
	case "spdx":
		return SPDX, nil
	default:
		return CycloneDX, fmt.Errorf("unsupported SBOM format: %s", s)
	}
}

// SBOM represents a Software Bill of Materials
type SBOM struct {
	Format      SBOMFormat   `json:"format"`
	Version     string       `json:"version"`
	Components  []Component  `json:"components"`
	Metadata    SBOMMetadata `json:"metadata"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// SBOMMetadata contains metadata about the SBOM itself
type SBOMMetadata struct {
	Tool         ToolInfo      `json:"tool"`
	Target       policy.Target `json:"target"`
	MinToolset   string        `json:"min_toolset,omitempty"`
	Timestamp    string        `json:"timestamp"`
	SerialNumber string        `json:"serial_number,omitempty"`
}

// ToolInfo contains information about the tool that generated the SBOM
type ToolInfo struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Component is either an analyzed image or a module one of them imports
type Component struct {
	Type         ComponentType     `json:"type"`
	BOMRef       string            `json:"bom_ref"`
	Name         string            `json:"name"`
	Version      string            `json:"version,omitempty"`
	Description  string            `json:"description,omitempty"`
	Hashes       map[string]string `json:"hashes,omitempty"`
	Scope        ComponentScope    `json:"scope,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Properties   []Property        `json:"properties,omitempty"`
}

// ComponentType represents the type of component
type ComponentType string

const (
	ComponentTypeApplication     ComponentType = "application"
	ComponentTypeFramework       ComponentType = "framework"
	ComponentTypeLibrary         ComponentType = "library"
	ComponentTypeOperatingSystem ComponentType = "operating-system"
)

// ComponentScope represents the scope of the component
type ComponentScope string

const (
	// ScopeRequired marks a module some image hard-links against
	ScopeRequired ComponentScope = "required"
	// ScopeOptional marks a module that is only ever delay-loaded
	ScopeOptional ComponentScope = "optional"
)

// Property represents a name-value property
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Property names attached to components
const (
	PropertyCategory   = "xbdepends:category"
	PropertyLinkage    = "xbdepends:linkage"
	PropertyRule       = "xbdepends:rule"
	PropertyImageType  = "xbdepends:image_type"
	PropertyPath       = "xbdepends:path"
	PropertyTarget     = "xbdepends:target"
	PropertyMinToolset = "xbdepends:min_toolset"
	PropertyPassed     = "xbdepends:passed"
)

// ValidationResult represents the result of SBOM validation
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// SBOMInfo summarizes a written SBOM for the report
type SBOMInfo struct {
	Format     SBOMFormat `json:"format" yaml:"format"`
	Version    string     `json:"version" yaml:"version"`
	FilePath   string     `json:"file_path" yaml:"file_path"`
	Size       int64      `json:"size" yaml:"size"`
	Components int        `json:"components" yaml:"components"`
	Generated  time.Time  `json:"generated" yaml:"generated"`
	Valid      bool       `json:"valid" yaml:"valid"`
}

// bomRef derives a stable reference from a component kind and key
func bomRef(kind, key string) string {
	hash := sha256.Sum256([]byte(kind + ":" + strings.ToLower(key)))
	return fmt.Sprintf("%s-%x", kind, hash[:8])
}

// NewComponent creates a component with the given reference
func NewComponent(componentType ComponentType, ref, name string) Component {
	return Component{
		Type:   componentType,
		BOMRef: ref,
		Name:   name,
	}
}

// AddHash adds a hash to the component
func (c *Component) AddHash(algorithm, value string) {
	if c.Hashes == nil {
		c.Hashes = make(map[string]string)
	}
	c.Hashes[algorithm] = value
}

// AddProperty adds a property to the component
func (c *Component) AddProperty(name, value string) {
	c.Properties = append(c.Properties, Property{
		Name:  name,
		Value: value,
	})
}

// Property returns the value of the named property, or "" when absent
func (c *Component) Property(name string) string {
	for _, p := range c.Properties {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// AddDependency adds a dependency reference once
func (c *Component) AddDependency(ref string) {
	for _, existing := range c.Dependencies {
		if existing == ref {
			return
		}
	}
	c.Dependencies = append(c.Dependencies, ref)
}

// NewSBOM creates an empty SBOM stamped with the given time
func NewSBOM(format SBOMFormat, now time.Time) *SBOM {
	s := &SBOM{
		Format:      format,
		Components:  make([]Component, 0),
		GeneratedAt: now,
		Metadata: SBOMMetadata{
			Tool: ToolInfo{
				Vendor:  "Microsoft",
				Name:    utils.ToolName,
				Version: utils.Version,
			},
			Timestamp: now.UTC().Format(time.RFC3339),
		},
	}
	s.SetVersion()
	return s
}

// AddComponent adds a component to the SBOM
func (s *SBOM) AddComponent(component Component) {
	s.Components = append(s.Components, component)
}

// SetVersion sets the SBOM spec version based on format
func (s *SBOM) SetVersion() {
	switch s.Format {
	case CycloneDX:
		s.Version = "1.5"
	case SPDX:
		s.Version = "2.3"
	default:
		s.Version = "1.0"
	}
}

// FindComponent finds a component by BOM reference
func (s *SBOM) FindComponent(ref string) *Component {
	for i := range s.Components {
		if s.Components[i].BOMRef == ref {
			return &s.Components[i]
		}
	}
	return nil
}

// FindComponentByName finds a component by case-insensitive name
func (s *SBOM) FindComponentByName(name string) *Component {
	for i := range s.Components {
		if strings.EqualFold(s.Components[i].Name, name) {
			return &s.Components[i]
		}
	}
	return nil
}

// FindComponentsByType finds all components of a specific type
func (s *SBOM) FindComponentsByType(componentType ComponentType) []Component {
	var components []Component
	for _, comp := range s.Components {
		if comp.Type == componentType {
			components = append(components, comp)
		}
	}
	return components
}

// Validate checks required fields, reference uniqueness and that every
// dependency names a component of this SBOM
func (s *SBOM) Validate() ValidationResult {
	var errors []string

	if s.Version == "" {
		errors = append(errors, "SBOM version is required")
	}
	if s.Metadata.Tool.Name == "" {
		errors = append(errors, "Tool name is required in metadata")
	}

	bomRefs := make(map[string]bool)
	for i, comp := range s.Components {
		if comp.BOMRef == "" {
			errors = append(errors, fmt.Sprintf("Component %d: bom-ref is required", i))
		} else if bomRefs[comp.BOMRef] {
			errors = append(errors, fmt.Sprintf("Duplicate BOM reference: %s", comp.BOMRef))
		}
		bomRefs[comp.BOMRef] = true

		if comp.Name == "" {
			errors = append(errors, fmt.Sprintf("Component %d: name is required", i))
		}
		if comp.Type == "" {
			errors = append(errors, fmt.Sprintf("Component %d: type is required", i))
		}
	}

	for _, comp := range s.Components {
		for _, dep := range comp.Dependencies {
			if !bomRefs[dep] {
				errors = append(errors, fmt.Sprintf("Component %s: unknown dependency %s", comp.Name, dep))
			}
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
