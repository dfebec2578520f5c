// Package policy holds the curated module tables and the ordered rules that
// classify an imported module name for a target platform.
package policy

import (
	"fmt"
	"strings"
)

// Category is the policy classification assigned to an imported module
type Category int

const (
	CategoryUnknown Category = iota
	CategoryOS
	CategoryGameOS
	CategoryD3D
	CategoryCRT
	CategoryGDK
	CategoryDXSDK
	CategoryVendor
	CategoryUser
)

var categoryLabels = map[Category]string{
	CategoryUnknown: "???",
	CategoryOS:      "OS",
	CategoryGameOS:  "GameOS",
	CategoryD3D:     "D3D",
	CategoryCRT:     "CRT",
	CategoryGDK:     "GDK",
	CategoryDXSDK:   "DXSDK",
	CategoryVendor:  "IHV",
	CategoryUser:    "User",
}

// String returns the short label printed next to each module
func (c Category) String() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryUnknown]
}

// MarshalText renders the label in JSON and YAML reports
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Target is the platform family an image is validated against
type Target int

const (
	TargetUnspecified Target = iota
	TargetXboxOne
	TargetScarlett
	TargetPC
)

var targetNames = map[Target]string{
	TargetUnspecified: "unspecified",
	TargetXboxOne:     "xboxone",
	TargetScarlett:    "scarlett",
	TargetPC:          "pc",
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return targetNames[TargetUnspecified]
}

// MarshalText renders the target name in JSON and YAML reports
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Console reports whether t is one of the console platforms
func (t Target) Console() bool {
	return t == TargetXboxOne || t == TargetScarlett
}

// ParseTarget accepts the names used on the command line and in config files.
// An empty string and "auto" both select TargetUnspecified.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "unspecified":
		return TargetUnspecified, nil
	case "xboxone":
		return TargetXboxOne, nil
	case "scarlett":
		return TargetScarlett, nil
	case "pc":
		return TargetPC, nil
	default:
		return TargetUnspecified, fmt.Errorf("unknown target %q (want auto, xboxone, scarlett or pc)", s)
	}
}
