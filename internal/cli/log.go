// Package cli implements the riskflow command-line interface.
//
// The CLI reads model files (JSON or TOML), computes how component failures
// propagate, and presents the result as ranked tables, rendered diagrams or an
// interactive browser. It also runs the HTTP API and manages snapshots and the
// result cache. Commands are built with cobra; logging uses charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - analyze: Rank vertices by total risk
//   - render: Generate SVG, PNG, PDF, DOT or JSON output
//   - inspect: Browse contributions and propagation paths interactively
//   - serve: Run the HTTP API for live graphs
//   - snapshot: Save, list, restore and delete stored models
//   - cache: Manage the analysis and render cache
//
// # Configuration
//
// Defaults are read from $XDG_CONFIG_HOME/riskflow/config.toml, or the file
// named by --config. Flags override config values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/matzehuels/riskflow/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/riskflow/pkg/errors"
)

// newLogger writes to w at level with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLogLevel reads the log_level config key. Empty means info.
func parseLogLevel(s string) (log.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LogInfo, nil
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return LogInfo, errors.New(errors.ErrCodeInvalidInput,
			"unknown log level %q (must be one of: debug, info, warn, error)", s)
	}
	return level, nil
}

// applyLogLevel sets the logger level from the config and then from
// --verbose, which always wins. With neither, the level given to New stays.
func (c *CLI) applyLogLevel(verbose bool) error {
	if c.Config.LogLevel == "" && !verbose {
		return nil
	}
	level, err := parseLogLevel(c.Config.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	return nil
}

// progress times one stage of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, e.g.
// "Analyzed vertices=8 edges=9 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
