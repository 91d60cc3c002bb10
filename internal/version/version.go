// Package version exposes build metadata stamped via -ldflags.
package version

var (
	// Version is the release tag; "dev" for local builds.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = ""
	// Dirty is "true" when the working tree had local changes.
	Dirty = "false"
)

// String renders the stamped metadata as a single line.
func String() string {
	s := Version + " (" + Commit
	if Dirty == "true" {
		s += "-dirty"
	}
	s += ")"
	if Date != "" {
		s += " built " + Date
	}
	return s
}
