package main

import (
	"runtime/debug"

	"github.com/marcus/studysync/cmd"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// buildVersion prefers an injected version, then the module version from
// `go install`, then the VCS revision.
func buildVersion(v string) string {
	if v != "" && v != "dev" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return v
	}
	rev = rev[:min(len(rev), 12)]
	if dirty {
		return "devel+" + rev + "+dirty"
	}
	return "devel+" + rev
}

func main() {
	cmd.SetVersion(buildVersion(Version))
	cmd.Execute()
}
