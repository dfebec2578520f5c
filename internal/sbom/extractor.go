package sbom

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// ComponentExtractor turns analysis results into SBOM components
type ComponentExtractor interface {
	ExtractComponents(results []*checks.AnalysisResult) ([]Component, error)
}

// ImportComponentExtractor emits one component per analyzed image followed by
// one per imported module. An import that names another analyzed image links
// to that image instead of producing a module component.
type ImportComponentExtractor struct {
	// HashFiles adds a SHA-256 of each image file
	HashFiles bool
}

// NewImportComponentExtractor creates an extractor that hashes image files
func NewImportComponentExtractor() *ImportComponentExtractor {
	return &ImportComponentExtractor{HashFiles: true}
}

type moduleEntry struct {
	name     string
	category policy.Category
	rule     string
	hard     bool
}

// ExtractComponents builds the components for every image that was parsed.
// Failed and skipped files contribute nothing.
func (e *ImportComponentExtractor) ExtractComponents(results []*checks.AnalysisResult) ([]Component, error) {
	var images []Component
	byName := make(map[string]int)

	var analyzed []*checks.AnalysisResult
	for _, r := range results {
		if r == nil || r.Failure != nil || r.Skipped || r.Image == nil {
			continue
		}
		comp, err := e.imageComponent(r)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(filepath.Base(r.Path))
		if _, ok := byName[key]; !ok {
			byName[key] = len(images)
		}
		images = append(images, comp)
		analyzed = append(analyzed, r)
	}

	modules := make(map[string]*moduleEntry)
	for i, r := range analyzed {
		for _, m := range r.Modules {
			key := strings.ToLower(m.Name)
			if j, ok := byName[key]; ok {
				images[i].AddDependency(images[j].BOMRef)
				continue
			}

			entry, ok := modules[key]
			if !ok {
				entry = &moduleEntry{name: m.Name, category: m.Category, rule: m.Rule}
				modules[key] = entry
			}
			entry.hard = entry.hard || !m.DelayLoad
			images[i].AddDependency(bomRef("module", key))
		}
	}

	keys := make([]string, 0, len(modules))
	for key := range modules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	components := images
	for _, key := range keys {
		components = append(components, moduleComponent(key, modules[key]))
	}
	return components, nil
}

func (e *ImportComponentExtractor) imageComponent(r *checks.AnalysisResult) (Component, error) {
	componentType := ComponentTypeApplication
	if r.Image.Type == peimage.TypeDLL {
		componentType = ComponentTypeLibrary
	}

	comp := NewComponent(componentType, bomRef("image", r.Path), filepath.Base(r.Path))
	comp.Scope = ScopeRequired
	comp.Description = fmt.Sprintf("PE32+ %s image", r.Image.Type)

	if e.HashFiles {
		hash, err := fileHash(r.Path)
		if err != nil {
			return Component{}, fmt.Errorf("failed to hash %s: %w", r.Path, err)
		}
		comp.AddHash("SHA-256", hash)
	}

	comp.AddProperty(PropertyImageType, string(r.Image.Type))
	comp.AddProperty(PropertyPath, r.Path)
	comp.AddProperty(PropertyTarget, r.Target.String())
	if label := r.MinVersion.String(); label != "" {
		comp.AddProperty(PropertyMinToolset, label)
	}
	comp.AddProperty(PropertyPassed, fmt.Sprintf("%t", r.Passed))
	return comp, nil
}

func moduleComponent(key string, m *moduleEntry) Component {
	comp := NewComponent(componentTypeFor(m.category), bomRef("module", key), m.name)

	linkage := "DLoad"
	comp.Scope = ScopeOptional
	if m.hard {
		linkage = "DLL"
		comp.Scope = ScopeRequired
	}

	comp.AddProperty(PropertyCategory, m.category.String())
	comp.AddProperty(PropertyLinkage, linkage)
	if m.rule != "" {
		comp.AddProperty(PropertyRule, m.rule)
	}
	return comp
}

func componentTypeFor(c policy.Category) ComponentType {
	switch c {
	case policy.CategoryOS, policy.CategoryGameOS:
		return ComponentTypeOperatingSystem
	case policy.CategoryCRT, policy.CategoryD3D, policy.CategoryGDK, policy.CategoryDXSDK, policy.CategoryVendor:
		return ComponentTypeFramework
	default:
		return ComponentTypeLibrary
	}
}

func fileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
