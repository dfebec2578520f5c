package utils

import (
	"fmt"
	"runtime"
)

var (
	// Version information - set via ldflags during build
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// ToolName is the program name used in banners and generated documents
const ToolName = "xbdepends"

// GetVersionString returns a formatted version string
func GetVersionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// Banner is the logo line printed before a text report
func Banner() string {
	return fmt.Sprintf("Microsoft (R) Xbox Binary Dependencies Tool %s [%s/%s]", Version, runtime.GOOS, runtime.GOARCH)
}
