package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildcache/internal/config"
)

// Global holds state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI defines the command tree and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"buildcache.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run        RunCmd        `cmd:"" help:"Run a build invocation through the instant execution cache"`
	Invalidate InvalidateCmd `cmd:"" help:"Drop cache fingerprints so the next run reconfigures"`
	Report     ReportCmd     `cmd:"" help:"Show recent invocations and their problem reports"`
	Watch      WatchCmd      `cmd:"" help:"Watch build inputs and invalidate the cache on change"`
	Daemon     DaemonCmd     `cmd:"" help:"Run the maintenance daemon (report pruning, metrics endpoint)"`
}

// AfterApply runs after flag parsing; sets up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file. The default file name may
// be absent, in which case built-in defaults apply; an explicitly
// given path must exist.
func loadConfig(root *CLI) (*config.Config, error) {
	if _, err := os.Stat(root.Config); os.IsNotExist(err) {
		if root.Config == "buildcache.yaml" {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("configuration file not found: %s", root.Config)
	}
	return config.Load(root.Config)
}
