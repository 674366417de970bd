// Package misc keeps build time information.
package misc

import (
	"path/filepath"
	"runtime/debug"
	"strings"
)

// set by linker: -X fsxc/misc.version=... -X fsxc/misc.githash=...
var (
	version = "dev"
	githash = ""
	appName = "fsxc"
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git commit the program was built from. When not set at
// link time it falls back to VCS information recorded by the go tool.
func GetGitHash() string {
	if len(githash) > 0 {
		return githash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

// GetAppName returns program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

// SetAppNameFromArgs allows wrappers (renamed binaries) to keep their own name
// in logs.
func SetAppNameFromArgs(arg0 string) {
	name := strings.TrimSuffix(filepath.Base(arg0), filepath.Ext(arg0))
	if len(name) > 0 {
		appName = name
	}
}
