package sbom

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	spdxDocumentID = "SPDXRef-DOCUMENT"
	noAssertion    = "NOASSERTION"
)

// SPDXGenerator converts an SBOM to the SPDX 2.3 JSON schema
type SPDXGenerator struct{}

// NewSPDXGenerator creates a new SPDX generator
func NewSPDXGenerator() *SPDXGenerator {
	return &SPDXGenerator{}
}

// SPDXDocument represents the complete SPDX document structure
type SPDXDocument struct {
	SPDXVersion       string             `json:"spdxVersion"`
	DataLicense       string             `json:"dataLicense"`
	SPDXID            string             `json:"SPDXID"`
	Name              string             `json:"name"`
	DocumentNamespace string             `json:"documentNamespace"`
	CreationInfo      SPDXCreationInfo   `json:"creationInfo"`
	Packages          []SPDXPackage      `json:"packages"`
	Relationships     []SPDXRelationship `json:"relationships"`
}

// SPDXCreationInfo represents SPDX creation information
type SPDXCreationInfo struct {
	Created  string   `json:"created"`
	Creators []string `json:"creators"`
	Comment  string   `json:"comment,omitempty"`
}

// SPDXPackage represents an SPDX package
type SPDXPackage struct {
	SPDXID                string         `json:"SPDXID"`
	Name                  string         `json:"name"`
	DownloadLocation      string         `json:"downloadLocation"`
	FilesAnalyzed         bool           `json:"filesAnalyzed"`
	LicenseConcluded      string         `json:"licenseConcluded"`
	LicenseDeclared       string         `json:"licenseDeclared"`
	CopyrightText         string         `json:"copyrightText"`
	Description           string         `json:"description,omitempty"`
	Comment               string         `json:"comment,omitempty"`
	VersionInfo           string         `json:"versionInfo,omitempty"`
	PackageFileName       string         `json:"packageFileName,omitempty"`
	Checksums             []SPDXChecksum `json:"checksums,omitempty"`
	PrimaryPackagePurpose string         `json:"primaryPackagePurpose,omitempty"`
}

// SPDXChecksum represents an SPDX checksum
type SPDXChecksum struct {
	Algorithm     string `json:"algorithm"`
	ChecksumValue string `json:"checksumValue"`
}

// SPDXRelationship represents an SPDX relationship
type SPDXRelationship struct {
	SPDXElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
	Comment            string `json:"comment,omitempty"`
}

// Convert builds the SPDX document for s
func (g *SPDXGenerator) Convert(s *SBOM) *SPDXDocument {
	doc := &SPDXDocument{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXID:            spdxDocumentID,
		Name:              fmt.Sprintf("%s-%s", s.Metadata.Tool.Name, s.Metadata.Target),
		DocumentNamespace: g.documentNamespace(s),
		CreationInfo: SPDXCreationInfo{
			Created: s.Metadata.Timestamp,
			Creators: []string{
				fmt.Sprintf("Tool: %s-%s", s.Metadata.Tool.Name, s.Metadata.Tool.Version),
			},
		},
		Packages:      make([]SPDXPackage, 0, len(s.Components)),
		Relationships: make([]SPDXRelationship, 0),
	}
	if s.Metadata.MinToolset != "" {
		doc.CreationInfo.Comment = "Minimum toolset: " + s.Metadata.MinToolset
	}

	for _, comp := range s.Components {
		doc.Packages = append(doc.Packages, g.convertComponentToPackage(comp))
	}
	doc.Relationships = g.generateRelationships(s.Components)
	return doc
}

// GenerateJSON renders s as indented SPDX JSON
func (g *SPDXGenerator) GenerateJSON(s *SBOM) ([]byte, error) {
	return json.MarshalIndent(g.Convert(s), "", "  ")
}

func (g *SPDXGenerator) convertComponentToPackage(comp Component) SPDXPackage {
	pkg := SPDXPackage{
		SPDXID:                packageID(comp.BOMRef),
		Name:                  comp.Name,
		DownloadLocation:      noAssertion,
		FilesAnalyzed:         false,
		LicenseConcluded:      noAssertion,
		LicenseDeclared:       noAssertion,
		CopyrightText:         noAssertion,
		Description:           comp.Description,
		VersionInfo:           comp.Version,
		Checksums:             g.convertChecksums(comp.Hashes),
		PrimaryPackagePurpose: g.mapComponentTypeToPurpose(comp.Type),
	}
	if comp.Property(PropertyImageType) != "" {
		pkg.PackageFileName = comp.Name
	}

	var notes []string
	for _, p := range comp.Properties {
		notes = append(notes, p.Name+"="+p.Value)
	}
	pkg.Comment = strings.Join(notes, "; ")
	return pkg
}

// convertChecksums maps "SHA-256" style names to SPDX algorithm names
func (g *SPDXGenerator) convertChecksums(hashes map[string]string) []SPDXChecksum {
	var checksums []SPDXChecksum
	for alg, value := range hashes {
		checksums = append(checksums, SPDXChecksum{
			Algorithm:     strings.ToUpper(strings.ReplaceAll(alg, "-", "")),
			ChecksumValue: value,
		})
	}
	sort.Slice(checksums, func(i, j int) bool {
		return checksums[i].Algorithm < checksums[j].Algorithm
	})
	return checksums
}

// mapComponentTypeToPurpose maps component types to SPDX package purposes
func (g *SPDXGenerator) mapComponentTypeToPurpose(componentType ComponentType) string {
	switch componentType {
	case ComponentTypeApplication:
		return "APPLICATION"
	case ComponentTypeLibrary:
		return "LIBRARY"
	case ComponentTypeFramework:
		return "FRAMEWORK"
	case ComponentTypeOperatingSystem:
		return "OPERATING-SYSTEM"
	default:
		return "OTHER"
	}
}

// generateRelationships has the document describe each analyzed image and each
// image depend on what it imports. Delay-loaded edges carry a comment.
func (g *SPDXGenerator) generateRelationships(components []Component) []SPDXRelationship {
	relationships := make([]SPDXRelationship, 0)
	scopes := make(map[string]ComponentScope, len(components))
	for _, comp := range components {
		scopes[comp.BOMRef] = comp.Scope
	}

	for _, comp := range components {
		if comp.Property(PropertyImageType) == "" {
			continue
		}
		relationships = append(relationships, SPDXRelationship{
			SPDXElementID:      spdxDocumentID,
			RelationshipType:   "DESCRIBES",
			RelatedSPDXElement: packageID(comp.BOMRef),
		})
	}

	for _, comp := range components {
		for _, dep := range comp.Dependencies {
			rel := SPDXRelationship{
				SPDXElementID:      packageID(comp.BOMRef),
				RelationshipType:   "DEPENDS_ON",
				RelatedSPDXElement: packageID(dep),
			}
			if scopes[dep] == ScopeOptional {
				rel.Comment = "delay-load"
			}
			relationships = append(relationships, rel)
		}
	}
	return relationships
}

func (g *SPDXGenerator) documentNamespace(s *SBOM) string {
	id := strings.TrimPrefix(s.Metadata.SerialNumber, "urn:uuid:")
	if id == "" {
		id = fmt.Sprintf("%d", s.GeneratedAt.Unix())
	}
	return fmt.Sprintf("https://spdx.org/spdxdocs/%s-%s", sanitizeID(s.Metadata.Tool.Name), id)
}

func packageID(ref string) string {
	return "SPDXRef-Package-" + sanitizeID(ref)
}

// sanitizeID sanitizes a string to be used as an SPDX ID
func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return '-'
	}, id)
}

// ValidateSchema validates the SPDX document against the schema
func (g *SPDXGenerator) ValidateSchema(doc *SPDXDocument) ValidationResult {
	var errors []string

	if doc.SPDXVersion == "" {
		errors = append(errors, "spdxVersion is required")
	} else if !strings.HasPrefix(doc.SPDXVersion, "SPDX-") {
		errors = append(errors, "spdxVersion must start with 'SPDX-'")
	}
	if doc.DataLicense != "CC0-1.0" {
		errors = append(errors, "dataLicense must be 'CC0-1.0'")
	}
	if doc.SPDXID != spdxDocumentID {
		errors = append(errors, "SPDXID must be 'SPDXRef-DOCUMENT'")
	}
	if doc.Name == "" {
		errors = append(errors, "name is required")
	}
	if doc.DocumentNamespace == "" {
		errors = append(errors, "documentNamespace is required")
	}

	if doc.CreationInfo.Created == "" {
		errors = append(errors, "creationInfo.created is required")
	} else if _, err := time.Parse(time.RFC3339, doc.CreationInfo.Created); err != nil {
		errors = append(errors, "creationInfo.created must be in RFC3339 format")
	}
	if len(doc.CreationInfo.Creators) == 0 {
		errors = append(errors, "at least one creator is required")
	}

	spdxIDs := map[string]bool{doc.SPDXID: true}
	for i, pkg := range doc.Packages {
		if pkg.SPDXID == "" {
			errors = append(errors, fmt.Sprintf("package %d: SPDXID is required", i))
		} else {
			if spdxIDs[pkg.SPDXID] {
				errors = append(errors, fmt.Sprintf("duplicate SPDXID: %s", pkg.SPDXID))
			}
			spdxIDs[pkg.SPDXID] = true
		}
		if pkg.Name == "" {
			errors = append(errors, fmt.Sprintf("package %d: name is required", i))
		}
		if pkg.DownloadLocation == "" {
			errors = append(errors, fmt.Sprintf("package %d: downloadLocation is required", i))
		}
	}

	for i, rel := range doc.Relationships {
		if !spdxIDs[rel.SPDXElementID] {
			errors = append(errors, fmt.Sprintf("relationship %d: references non-existent SPDX ID %s", i, rel.SPDXElementID))
		}
		if rel.RelationshipType == "" {
			errors = append(errors, fmt.Sprintf("relationship %d: relationshipType is required", i))
		}
		if !spdxIDs[rel.RelatedSPDXElement] {
			errors = append(errors, fmt.Sprintf("relationship %d: references non-existent SPDX ID %s", i, rel.RelatedSPDXElement))
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
