// Package buildinfo carries the firmware version stamped in by the linker:
//
//	-ldflags "-X receiver/internal/buildinfo.Version=0.2.0 -X receiver/internal/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

var (
	Version = "0.1.0"
	Commit  = ""
	Date    = ""
)

// Short is the version shown on the splash header and in the boot banner.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "":
		return "dev-" + Commit
	default:
		return "dev"
	}
}

// String is the long form used by the host window title.
func String() string {
	s := Short()
	if Commit != "" && Version != "" && Version != "dev" {
		s += " (" + Commit + ")"
	}
	if Date != "" {
		s += " built " + Date
	}
	return s
}
