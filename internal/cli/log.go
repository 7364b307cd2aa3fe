// Package cli implements the mcmeta command-line interface.
//
// The commands mirror upstream metadata into the configured store (sync),
// serve the mirrored documents over HTTP (serve) and manage the local
// response cache (cache). The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - sync: Mirror Mojang and Forge metadata; "sync mojang" and "sync forge" run one source
//   - serve: Serve the mirrored documents, health and Prometheus metrics
//   - cache: Clear or locate the HTTP response cache
//   - config show: Print the effective configuration as TOML
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. With debug_log.enable set, output is also
// appended to debug_log.path/debug_log.prefix.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PrismLauncher/mcmeta/internal/config"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// teeDebugLog appends log output to the configured debug log file. The
// logger level is lowered to the file's level when that is more verbose.
func (c *CLI) teeDebugLog(cfg config.DebugLogConfig) error {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("debug_log.level: %w", err)
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return fmt.Errorf("create debug log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.Path, cfg.Prefix), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	c.debugLog = f
	c.Logger.SetOutput(io.MultiWriter(c.out, f))
	if level < c.Logger.GetLevel() {
		c.Logger.SetLevel(level)
	}
	return nil
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Synced forge (1.234s)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(fmt.Sprintf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond)), keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
