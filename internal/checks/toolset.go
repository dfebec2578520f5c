package checks

import (
	"strings"
)

// ToolsetVersion is the oldest Visual C++ toolset whose runtime satisfies an
// image's CRT imports. Values are ordered from oldest to newest requirement.
type ToolsetVersion int

const (
	ToolsetUnknown ToolsetVersion = iota
	ToolsetVS2017
	ToolsetVS2017Update7
	ToolsetVS2019
	ToolsetVS2019Update2
	ToolsetVS2019Update8
	// ToolsetIgnore marks an image that is itself a runtime module
	ToolsetIgnore
)

var toolsetLabels = map[ToolsetVersion]string{
	ToolsetUnknown:       "",
	ToolsetVS2017:        "VS 2017 (15.0)",
	ToolsetVS2017Update7: "VS 2017 (15.7)",
	ToolsetVS2019:        "VS 2019 (16.0)",
	ToolsetVS2019Update2: "VS 2019 (16.2)",
	ToolsetVS2019Update8: "VS 2019 (16.8)",
	ToolsetIgnore:        "",
}

// String returns the toolset label, or "" when there is no requirement to report
func (v ToolsetVersion) String() string {
	return toolsetLabels[v]
}

// Known reports whether v names a concrete toolset
func (v ToolsetVersion) Known() bool {
	return v > ToolsetUnknown && v < ToolsetIgnore
}

// MarshalText renders the label in JSON and YAML reports
func (v ToolsetVersion) MarshalText() ([]byte, error) {
	switch v {
	case ToolsetUnknown:
		return []byte("unknown"), nil
	case ToolsetIgnore:
		return []byte("ignore"), nil
	}
	return []byte(v.String()), nil
}

// Max returns the newer of v and o. ToolsetIgnore is sticky.
func (v ToolsetVersion) Max(o ToolsetVersion) ToolsetVersion {
	if v == ToolsetIgnore || o == ToolsetIgnore {
		return ToolsetIgnore
	}
	if o > v {
		return o
	}
	return v
}

// sideCarModules map runtime module names to the toolset that introduced them
var sideCarModules = map[string]ToolsetVersion{
	"vcruntime140.dll":         ToolsetVS2017,
	"msvcp140.dll":             ToolsetVS2017,
	"vccorlib140.dll":          ToolsetVS2017,
	"msvcp140_1.dll":           ToolsetVS2017,
	"msvcp140_2.dll":           ToolsetVS2017Update7,
	"vcruntime140_1.dll":       ToolsetVS2019,
	"msvcp140_codecvt_ids.dll": ToolsetVS2019Update2,
	"msvcp140_atomic_wait.dll": ToolsetVS2019Update8,
}

// frameHandler4 is only exported by runtimes built with VS 2019 or later
const frameHandler4 = "__CxxFrameHandler4"

// sideCarVersion returns the toolset implied by a runtime module name
func sideCarVersion(name string) ToolsetVersion {
	return sideCarModules[strings.ToLower(name)]
}

// redistFiles lists, per toolset, the runtime modules a deployment layout must
// carry in addition to those of every older toolset.
var redistFiles = []struct {
	since ToolsetVersion
	files []string
}{
	{ToolsetVS2017, []string{"vcruntime140.dll", "msvcp140.dll", "msvcp140_1.dll"}},
	{ToolsetVS2017Update7, []string{"msvcp140_2.dll"}},
	{ToolsetVS2019, []string{"vcruntime140_1.dll"}},
	{ToolsetVS2019Update2, []string{"msvcp140_codecvt_ids.dll"}},
	{ToolsetVS2019Update8, []string{"msvcp140_atomic_wait.dll"}},
}

// MissingRedistFiles returns the runtime modules required by min that are not
// in found. found holds lower-case base names. Nothing is required when min
// is unknown or ToolsetIgnore.
func MissingRedistFiles(found map[string]bool, min ToolsetVersion) []string {
	if !min.Known() {
		return nil
	}

	var missing []string
	for _, tier := range redistFiles {
		if tier.since > min {
			break
		}
		for _, f := range tier.files {
			if !found[f] {
				missing = append(missing, f)
			}
		}
	}
	return missing
}
