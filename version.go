package wptl

import "runtime/debug"

// Name is the application name, also used as the User-Agent product token.
const Name = "wptl"

// Release metadata. Set with
//
//	go build -ldflags "-X github.com/ZaguanLabs/wptl.Version=0.2.0 -X github.com/ZaguanLabs/wptl.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

// Commit returns GitCommit, falling back to the VCS revision the Go
// toolchain stamped into the binary.
func Commit() string {
	if GitCommit != "" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return ""
}

// FullVersion returns Version with the short commit appended when known,
// e.g. "0.1.0+3f2a9c1".
func FullVersion() string {
	c := Commit()
	if len(c) > 7 {
		c = c[:7]
	}
	if c == "" {
		return Version
	}
	return Version + "+" + c
}

// UserAgent is sent with every request to the destination site.
func UserAgent() string {
	return Name + "/" + Version
}
