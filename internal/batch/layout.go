package batch

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
)

const layoutCheck = "layout"

// LayoutReport is the outcome of cross-checking a batch as a deployment layout
type LayoutReport struct {
	// Missing are unresolved hard-linked modules absent from the batch
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	// MissingDelayLoad are unresolved delay-loaded modules absent from the batch
	MissingDelayLoad []string `json:"missing_delay_load,omitempty" yaml:"missing_delay_load,omitempty"`
	// OtherFolder are unresolved modules present in the batch but not next to their importer
	OtherFolder []string `json:"other_folder,omitempty" yaml:"other_folder,omitempty"`
	// MissingRuntime are Visual C++ redistributable modules the batch lacks
	MissingRuntime []string `json:"missing_runtime,omitempty" yaml:"missing_runtime,omitempty"`

	Diagnostics []checks.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Accumulator gathers what the layout check needs from every file of a batch.
// It is not safe for concurrent use; feed it after the workers finish.
type Accumulator struct {
	found        map[string]bool
	missing      map[string]bool
	missingDelay map[string]bool
	minVersion   checks.ToolsetVersion
	inferred     policy.Target
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		found:        make(map[string]bool),
		missing:      make(map[string]bool),
		missingDelay: make(map[string]bool),
	}
}

// Add records one file. Files that failed to parse or were skipped contribute
// nothing.
func (a *Accumulator) Add(r *checks.AnalysisResult) {
	if r == nil || r.Failure != nil || r.Skipped {
		return
	}

	a.found[strings.ToLower(filepath.Base(r.Path))] = true

	hard, delay := r.UnresolvedModules()
	for _, name := range hard {
		a.missing[name] = true
	}
	for _, name := range delay {
		a.missingDelay[name] = true
	}

	if r.MinVersion.Known() {
		a.minVersion = a.minVersion.Max(r.MinVersion)
	}
	if r.TargetInferred && a.inferred == policy.TargetUnspecified {
		a.inferred = r.Target
	}
}

// Found reports whether a file with the given base name was analyzed
func (a *Accumulator) Found(name string) bool {
	return a.found[strings.ToLower(name)]
}

// MinVersion is the newest toolset required by any file
func (a *Accumulator) MinVersion() checks.ToolsetVersion {
	return a.minVersion
}

// InferredTarget is the first target inferred from a file, in input order
func (a *Accumulator) InferredTarget() policy.Target {
	return a.inferred
}

// Layout cross-checks the batch. Unresolved modules that no file of the batch
// provides are errors; ones provided from another folder are a warning. The
// redistributable runtime modules the batch needs are required on console
// targets and only warned about otherwise.
func (a *Accumulator) Layout(target policy.Target) *LayoutReport {
	report := &LayoutReport{}
	add := func(sev checks.Severity, msg, module string) {
		report.Diagnostics = append(report.Diagnostics, checks.Diagnostic{
			Severity: sev,
			Check:    layoutCheck,
			Message:  msg,
			Module:   module,
		})
	}

	if len(a.missing) == 0 {
		add(checks.SeverityInfo, "No unidentified user DLLs encountered in layout", "")
	}

	for _, name := range sortedKeys(a.missing) {
		if a.found[name] {
			report.OtherFolder = append(report.OtherFolder, name)
			continue
		}
		report.Missing = append(report.Missing, name)
		add(checks.SeverityError, "Could not locate these DLLs in the layout", name)
	}
	for _, name := range sortedKeys(a.missingDelay) {
		if a.found[name] {
			report.OtherFolder = append(report.OtherFolder, name)
			continue
		}
		report.MissingDelayLoad = append(report.MissingDelayLoad, name)
		add(checks.SeverityError, "Could not locate these Delay Load DLLs in the layout", name)
	}
	if len(report.OtherFolder) > 0 {
		add(checks.SeverityWarning, "Some user DLLs were found in other folders. May not be found at runtime.", "")
	}

	report.MissingRuntime = checks.MissingRedistFiles(a.found, a.minVersion)
	if len(report.MissingRuntime) > 0 {
		if target.Console() {
			add(checks.SeverityError, "Missing Visual C/C++ Runtime DLLs in layout", "")
		} else {
			add(checks.SeverityWarning, "This project relies on finding the Visual C/C++ Runtime installed on the machine", "")
		}
	}

	if a.found["ucrtbase.dll"] {
		add(checks.SeverityWarning, "'ucrtbase.dll' is not required in the layout; already included in the OS", "ucrtbase.dll")
	}

	return report
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
