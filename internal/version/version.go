// Package version holds build metadata, set with -ldflags -X.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of blop.
	Version = "0.1.0-dev"

	// GitCommit is the commit the binary was built from, if known.
	GitCommit = ""

	// BuildDate is an ISO-8601 build timestamp, if known.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Pretty renders v with each version component colored. Colors follow
// color.NoColor.
func Pretty(v string) string {
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	return fmt.Sprintf("%s.%s.%s%s",
		majorColor.Sprint(parts[0]), minorColor.Sprint(parts[1]), patchColor.Sprint(parts[2]), suffix)
}

// String returns the plain version, or "dev" when unset.
func String() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	return "dev"
}
