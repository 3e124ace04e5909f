// Package version holds the build identity of the compiler.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the compiler.
	Version = "0.1.0"

	// GitCommit is the commit the compiler was built from.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// ArtifactVersion is the producer version stamped on every artifact:
// "<semver>+<commit>", or the bare semver when the commit is unknown.
// Artifacts whose version differs are recompiled.
func ArtifactVersion() string {
	if GitCommit == "" {
		return Version
	}
	return Version + "+" + GitCommit
}

// Colored renders Version with one colour per component.
func Colored() string {
	parts := strings.SplitN(Version, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
}

// Long is the multi-line description printed by `nargo version`.
func Long() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "nargo version = %s\n", Colored())
	commit := GitCommit
	if commit == "" {
		commit = "unknown"
	}
	fmt.Fprintf(&sb, "git commit = %s\n", commit)
	if BuildDate != "" {
		fmt.Fprintf(&sb, "build date = %s\n", BuildDate)
	}
	return sb.String()
}
