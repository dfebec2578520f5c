package policy

import "regexp"

// Patterns are matched case-insensitively anywhere in the module name.
var (
	// API set and extension contracts of the OS
	apiSetPattern = regexp.MustCompile(`(?i)(api|ext)-ms-win-([A-Za-z0-9]*-)*l[0-9]+-[0-9]+-[0-9]+\.dll`)

	// CRT modules that ship with the OS itself
	osCRTPattern = regexp.MustCompile(`(?i)((api-ms-win-crt-([A-Za-z0-9]*-)*l[0-9]+-[0-9]+-[0-9]+)|msvcrt|ucrtbase)\.dll`)

	mfcDebugPattern   = regexp.MustCompile(`(?i)mfcm?[0-9]+u?d\.dll`)
	mfcReleasePattern = regexp.MustCompile(`(?i)((mfcm?[0-9]+u?)|(mfc[0-9]+[A-Za-z]{3}))\.dll`)

	// Visual C++ runtime debug modules, including the debug Universal CRT
	crtDebugPattern = regexp.MustCompile(`(?i)(((concrt|msvcp|vccorlib|vcruntime|vcamp|vcomp)[0-9]+(_[0-9])?d(_[A-Za-z_]*)?)|(libomp[0-9]+d\.x86_64)|ucrtbased|vcruntime140_threadsd)\.dll`)

	// Visual C++ runtime release modules. ucrtbase.dll belongs to the OS.
	crtReleasePattern = regexp.MustCompile(`(?i)(((concrt|msvcp|msvcr|vccorlib|vcruntime|vcamp|vcomp)[0-9]+(_[0-9])?(_[A-Za-z_]+)?)|(libomp[0-9]+\.x86_64))\.dll`)

	// Xbox transport tooling
	xtfPattern = regexp.MustCompile(`(?i)xtf[A-Za-z]+\.dll`)

	// New-style components such as Windows.Foo.Bar.dll
	winComponentPattern = regexp.MustCompile(`(?i)Windows\.[A-Za-z\.]+\.dll`)
)

// IsCRTDebug reports whether name is a debug Visual C++ runtime module
func IsCRTDebug(name string) bool {
	return crtDebugPattern.MatchString(name)
}

// IsCRTRelease reports whether name is a release Visual C++ runtime module
func IsCRTRelease(name string) bool {
	return crtReleasePattern.MatchString(name)
}

// IsOSCRT reports whether name is a CRT module that ships with the OS
func IsOSCRT(name string) bool {
	return osCRTPattern.MatchString(name)
}
