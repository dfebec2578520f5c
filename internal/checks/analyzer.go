package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/peimage"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

// Options configures an Analyzer
type Options struct {
	// Target is the declared platform; TargetUnspecified enables inference.
	Target policy.Target
	// Retail turns development-only modules into errors.
	Retail bool
	// Probe overrides the lookup for user modules next to the image.
	Probe policy.Probe
}

func (o Options) probeFor(path string) policy.Probe {
	if o.Probe != nil {
		return o.Probe
	}
	return FileProbe(filepath.Dir(path))
}

// ImageSummary is the header information reported for a parsed image
type ImageSummary struct {
	Type             peimage.ImageType `json:"type" yaml:"type"`
	Linker           string            `json:"linker" yaml:"linker"`
	OS               string            `json:"os" yaml:"os"`
	Subsystem        uint16            `json:"subsystem" yaml:"subsystem"`
	SubsystemVersion string            `json:"subsystem_version" yaml:"subsystem_version"`
	DynamicBase      bool              `json:"dynamic_base" yaml:"dynamic_base"`
	NXCompat         bool              `json:"nx_compat" yaml:"nx_compat"`
}

func summarizeImage(img *peimage.Image) *ImageSummary {
	return &ImageSummary{
		Type:             img.Type(),
		Linker:           fmt.Sprintf("%d.%02d", img.MajorLinkerVersion, img.MinorLinkerVersion),
		OS:               fmt.Sprintf("%d.%02d", img.MajorOperatingSystemVersion, img.MinorOperatingSystemVersion),
		Subsystem:        img.Subsystem,
		SubsystemVersion: fmt.Sprintf("%d.%02d", img.MajorSubsystemVersion, img.MinorSubsystemVersion),
		DynamicBase:      img.DynamicBase(),
		NXCompat:         img.NXCompat(),
	}
}

// Failure describes why an image could not be analyzed
type Failure struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	err     error
}

// Err returns the underlying error
func (f *Failure) Err() error {
	return f.err
}

func newFailure(err error) *Failure {
	return &Failure{Kind: peimage.KindOf(err).String(), Message: err.Error(), err: err}
}

// AnalysisResult is the outcome of analyzing one image
type AnalysisResult struct {
	Path           string         `json:"path" yaml:"path"`
	Image          *ImageSummary  `json:"image,omitempty" yaml:"image,omitempty"`
	Modules        []ModuleInfo   `json:"modules" yaml:"modules"`
	Target         policy.Target  `json:"target" yaml:"target"`
	TargetInferred bool           `json:"target_inferred" yaml:"target_inferred"`
	MinVersion     ToolsetVersion `json:"min_toolset" yaml:"min_toolset"`
	Diagnostics    []Diagnostic   `json:"diagnostics" yaml:"diagnostics"`
	Checks         []CheckResult  `json:"checks,omitempty" yaml:"checks,omitempty"`
	Summary        CheckSummary   `json:"summary" yaml:"summary"`
	Passed         bool           `json:"passed" yaml:"passed"`
	Skipped        bool           `json:"skipped" yaml:"skipped"`
	Failure        *Failure       `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Failed reports whether the image counts against the exit status: a
// failing verdict or a structural failure. Skipped images never fail.
func (r *AnalysisResult) Failed() bool {
	return !r.Skipped && !r.Passed
}

// UnresolvedModules returns the lower-case names of Unknown modules, split by linkage
func (r *AnalysisResult) UnresolvedModules() (hard, delay []string) {
	for _, m := range r.Modules {
		if m.Category != policy.CategoryUnknown {
			continue
		}
		name := strings.ToLower(m.Name)
		if m.DelayLoad {
			delay = append(delay, name)
		} else {
			hard = append(hard, name)
		}
	}
	return hard, delay
}

// Analyzer runs the registered checks over images
type Analyzer struct {
	opts   Options
	runner *CheckRunner
}

// NewAnalyzer creates an analyzer running the default checks
func NewAnalyzer(opts Options) *Analyzer {
	return NewAnalyzerWithRegistry(opts, DefaultRegistry())
}

// NewAnalyzerWithRegistry creates an analyzer running the checks in registry
func NewAnalyzerWithRegistry(opts Options, registry *CheckRegistry) *Analyzer {
	return &Analyzer{opts: opts, runner: NewCheckRunner(registry)}
}

// AnalyzeFile reads path in full and analyzes it
func (an *Analyzer) AnalyzeFile(path string) *AnalysisResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return &AnalysisResult{
			Path:    path,
			Target:  an.opts.Target,
			Failure: &Failure{Kind: "IO", Message: err.Error(), err: err},
		}
	}
	return an.AnalyzeBytes(path, data)
}

// AnalyzeBytes analyzes an image already in memory. path names the image in
// the result and locates user modules next to it.
func (an *Analyzer) AnalyzeBytes(path string, data []byte) *AnalysisResult {
	result := &AnalysisResult{Path: path, Target: an.opts.Target}

	img, err := peimage.Parse(data)
	if err != nil {
		if peimage.IsSoftSkip(err) {
			result.Skipped = true
			result.Diagnostics = []Diagnostic{infof("Only scans x64 binaries, skipping")}
			return result
		}
		result.Failure = newFailure(err)
		return result
	}
	result.Image = summarizeImage(img)

	imports, err := peimage.ReadImports(img)
	if err != nil {
		result.Failure = newFailure(err)
		return result
	}

	a := newAnalysis(path, img, imports, an.opts)
	checks, err := an.runner.RunAll(a)

	result.Modules = a.Modules
	result.Target = a.Target
	result.TargetInferred = a.TargetInferred
	result.MinVersion = a.MinVersion
	result.Diagnostics = a.Diagnostics
	result.Checks = checks
	result.Summary = calculateSummary(checks)

	if err != nil {
		result.Failure = newFailure(err)
		return result
	}
	result.Passed = !HasErrors(result.Diagnostics)
	return result
}
