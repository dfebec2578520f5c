package checks

import (
	"fmt"
	"strings"
)

// Severity of a finding
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// MarshalText renders the severity label in JSON and YAML reports
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity is the inverse of String, ignoring case
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(s) {
	case "INFO":
		return SeverityInfo, nil
	case "WARNING":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", s)
}

// Diagnostic is one user-facing finding. Module and Symbol locate the
// offending dependency when the finding concerns one.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Check    string   `json:"check" yaml:"check"`
	Message  string   `json:"message" yaml:"message"`
	Module   string   `json:"module,omitempty" yaml:"module,omitempty"`
	Symbol   string   `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

func (d Diagnostic) String() string {
	s := d.Severity.String() + ": " + d.Message
	switch {
	case d.Module != "" && d.Symbol != "":
		s += " (" + d.Module + "!" + d.Symbol + ")"
	case d.Module != "":
		s += " (" + d.Module + ")"
	case d.Symbol != "":
		s += " (" + d.Symbol + ")"
	}
	return s
}

func errorf(format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func infof(format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) forModule(name string) Diagnostic {
	d.Module = name
	return d
}

// HasErrors reports whether any diagnostic is an error
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
