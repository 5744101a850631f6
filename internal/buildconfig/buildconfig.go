package buildconfig

import (
	"fmt"
	"runtime"
)

// Name identifies the service in logs, version output and MCP handshakes.
const Name = "abstractor"

// Set via -ldflags "-X github.com/Harshitk-cp/abstractor/internal/buildconfig.version=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo is served by GET /version.
func VersionInfo() map[string]string {
	return map[string]string{
		"name":       Name,
		"version":    version,
		"commit":     commit,
		"build_date": date,
		"go_version": runtime.Version(),
	}
}

// String is the one-line form printed by the CLI.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", Name, version, commit, date, runtime.Version())
}
