// Command bulkren renames many files as one staged, undoable operation.
//
// Release builds stamp the version through the linker:
//
//	go build -ldflags "-X main.version=v1.2.0 -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%Y-%m-%d)" ./cmd/bulkren
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/danieljhkim/bulkren/internal/cli"
)

// Set with -ldflags "-X main.<name>=...".
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersion(versionString(version, commit, date, readBuildInfo))

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// versionString joins the stamped fields. Unstamped builds installed with
// go install fall back to the module version and VCS revision.
func versionString(version, commit, date string, info func() (*debug.BuildInfo, bool)) string {
	if version == "dev" && commit == "" && info != nil {
		if bi, ok := info(); ok {
			if v := bi.Main.Version; v != "" && v != "(devel)" {
				version = v
			}
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}

	switch {
	case commit != "" && date != "":
		return fmt.Sprintf("%s (%s, %s)", version, commit, date)
	case commit != "":
		return fmt.Sprintf("%s (%s)", version, commit)
	default:
		return version
	}
}

func readBuildInfo() (*debug.BuildInfo, bool) {
	return debug.ReadBuildInfo()
}
