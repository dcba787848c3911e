package version

import (
	"fmt"

	"github.com/blang/semver/v4"
)

// PsymVersion indicates what version of psym the binary belongs to
var PsymVersion string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// Semver parses PsymVersion, tolerating a leading "v".
func Semver() (semver.Version, error) {
	return semver.ParseTolerant(PsymVersion)
}

// String returns a pretty string concatenation of PsymVersion and GitCommit
func String() string {
	v := PsymVersion
	if parsed, err := Semver(); err == nil {
		v = parsed.String()
	} else if v == "" {
		v = "unknown"
	}
	return fmt.Sprintf("psym version: %s\n  git commit: %s\n", v, GitCommit)
}
