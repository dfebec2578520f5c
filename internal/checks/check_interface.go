package checks

import (
	"fmt"
)

// DependencyCheck defines the interface that all dependency checks must implement
type DependencyCheck interface {
	// ID returns the unique identifier for this check (e.g., "module-policy")
	ID() string

	// Description returns a detailed description of what this check validates
	Description() string

	// Execute runs the check against an analysis in progress. Checks may
	// update shared state on the analysis for checks registered after them.
	Execute(a *Analysis) CheckResult
}

// CheckStatus represents the possible outcomes of a check
type CheckStatus string

const (
	StatusPass  CheckStatus = "pass"
	StatusFail  CheckStatus = "fail"
	StatusSkip  CheckStatus = "skip"
	StatusError CheckStatus = "error"
)

// CheckResult contains the outcome of a check execution
type CheckResult struct {
	ID          string                 `json:"id" yaml:"id"`
	Description string                 `json:"description" yaml:"description"`
	Status      CheckStatus            `json:"status" yaml:"status"`
	Message     string                 `json:"message,omitempty" yaml:"message,omitempty"`
	Diagnostics []Diagnostic           `json:"-" yaml:"-"`
	Error       error                  `json:"-" yaml:"-"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func newResult(c DependencyCheck) CheckResult {
	return CheckResult{
		ID:          c.ID(),
		Description: c.Description(),
		Metadata:    make(map[string]interface{}),
	}
}

func (r *CheckResult) add(d Diagnostic) {
	d.Check = r.ID
	r.Diagnostics = append(r.Diagnostics, d)
}

// finish derives the status from the diagnostics collected so far
func (r *CheckResult) finish() CheckResult {
	if r.Status == StatusError || r.Status == StatusSkip {
		return *r
	}
	r.Status = StatusPass
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			r.Status = StatusFail
			break
		}
	}
	return *r
}

// CheckRegistry keeps checks in registration order. Later checks may depend
// on state recorded by earlier ones, so order is significant.
type CheckRegistry struct {
	checks []DependencyCheck
	index  map[string]int
}

// NewCheckRegistry creates a new check registry
func NewCheckRegistry() *CheckRegistry {
	return &CheckRegistry{
		index: make(map[string]int),
	}
}

// DefaultRegistry returns the checks run for every image, in order
func DefaultRegistry() *CheckRegistry {
	return mustRegister(
		&ImageSecurityCheck{},
		&ImportSummaryCheck{},
		&ModulePolicyCheck{},
		&CRTRuntimeCheck{},
		&ImportSymbolsCheck{},
		&ToolsetVersionCheck{},
		&UnresolvedModulesCheck{},
	)
}

// mustRegister builds a registry from checks and panics on a duplicate ID
func mustRegister(checks ...DependencyCheck) *CheckRegistry {
	r := NewCheckRegistry()
	for _, c := range checks {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a check to the registry
func (r *CheckRegistry) Register(check DependencyCheck) error {
	if _, exists := r.index[check.ID()]; exists {
		return fmt.Errorf("check %s already registered", check.ID())
	}
	r.index[check.ID()] = len(r.checks)
	r.checks = append(r.checks, check)
	return nil
}

// Get retrieves a check by ID
func (r *CheckRegistry) Get(id string) (DependencyCheck, bool) {
	i, exists := r.index[id]
	if !exists {
		return nil, false
	}
	return r.checks[i], true
}

// List returns all registered checks in registration order
func (r *CheckRegistry) List() []DependencyCheck {
	return append([]DependencyCheck(nil), r.checks...)
}

// CheckRunner executes registered checks over one analysis
type CheckRunner struct {
	registry *CheckRegistry
}

// NewCheckRunner creates a new check runner
func NewCheckRunner(registry *CheckRegistry) *CheckRunner {
	return &CheckRunner{
		registry: registry,
	}
}

// CheckSummary contains summary statistics for the checks run on one image
type CheckSummary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Errors  int `json:"errors" yaml:"errors"`
}

// RunAll executes every registered check in order. Diagnostics are appended
// to the analysis as each check finishes. A check reporting StatusError
// stops the run and its error is returned.
func (r *CheckRunner) RunAll(a *Analysis) ([]CheckResult, error) {
	checks := r.registry.List()
	results := make([]CheckResult, 0, len(checks))

	for _, check := range checks {
		result := check.Execute(a)
		results = append(results, result)
		a.Diagnostics = append(a.Diagnostics, result.Diagnostics...)

		if result.Status == StatusError {
			return results, fmt.Errorf("%s: %w", check.ID(), result.Error)
		}
	}

	return results, nil
}

// calculateSummary calculates summary statistics from check results
func calculateSummary(results []CheckResult) CheckSummary {
	summary := CheckSummary{Total: len(results)}

	for _, result := range results {
		switch result.Status {
		case StatusPass:
			summary.Passed++
		case StatusFail:
			summary.Failed++
		case StatusSkip:
			summary.Skipped++
		case StatusError:
			summary.Errors++
		}
	}

	return summary
}
