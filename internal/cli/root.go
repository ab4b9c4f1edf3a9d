package cli

import (
	"context"
	"os"

	"github.com/matzehuels/riskflow/pkg/buildinfo"
)

// SetVersion overrides the build information displayed by --version.
// Release builds normally inject it via ldflags into pkg/buildinfo; this is
// for callers that embed the CLI.
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// Execute runs the riskflow CLI and returns an error if any command fails.
//
// Logging goes to stderr at the config file's log_level (info when unset);
// --verbose (-v) forces debug. The logger is attached to the command context
// and is reachable from every command via loggerFromContext.
func Execute(ctx context.Context) error {
	return New(os.Stderr, LogInfo).RootCommand().ExecuteContext(ctx)
}
