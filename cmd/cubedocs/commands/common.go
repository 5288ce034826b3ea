package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ultravioletrs/cube-docs/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer // Command output, stdout in production
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file" default:"site.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Docs        string `help:"Docs directory, overrides docs.path" type:"path"`
	Sidebars    string `help:"Sidebars file, overrides docs.sidebar_path" type:"path"`
	VersionName string `name:"version-name" help:"Validate a named docs version from the versions file"`
	Revision    string `short:"r" help:"Read sidebars and docs from a git revision (branch, tag or commit)"`
	Output      string `short:"o" help:"Directory for navigation.json and manifest.json" type:"path"`

	HistoryDB   string `name:"history-db" help:"SQLite run history database, overrides reporting.history_db" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Prometheus textfile written after every run, overrides reporting.metrics_file" type:"path"`
	NATSURL     string `name:"nats-url" help:"NATS server receiving run reports, overrides reporting.nats_url"`
	NATSSubject string `name:"nats-subject" help:"NATS subject for run reports, overrides reporting.nats_subject"`

	Validate ValidateCmd `cmd:"" default:"withargs" help:"Validate configuration, sidebars and links"`
	Nav      NavCmd      `cmd:"" help:"Print the rendered navigation"`
	Links    LinksCmd    `cmd:"" help:"Check navigation and prose links and print findings"`
	Init     InitCmd     `cmd:"" help:"Write the example site configuration and sidebars"`
	Watch    WatchCmd    `cmd:"" help:"Revalidate on file changes and on a schedule"`
	History  HistoryCmd  `cmd:"" help:"List recorded runs"`
}

// AfterApply runs after flag parsing; set up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	setupLogging(level, config.LogFormatText)
	return nil
}

// applyLogging switches to the configured level and format unless
// --verbose was given.
func (c *CLI) applyLogging(cfg *config.SiteConfig) {
	if c.Verbose || cfg == nil {
		return
	}
	setupLogging(slogLevel(cfg.Logging.Level), cfg.Logging.Format)
}

func setupLogging(level slog.Level, format config.LogFormat) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
