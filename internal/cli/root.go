// Package cli implements the dlf command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf/internal/config"
	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/source"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Format     string // "text" | "json" | "csv"

	// Set by the root command before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "csv"}

// NewRootCommand creates the root command of the dlf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dlf",
		Short: "Decode DLF data logger runs",
		Long: `dlf decodes the binary time-series logs written by the data logger firmware.

A run is a directory (or upload service URL) holding meta.dlf, polled.dlf and
event.dlf. Runs can be inspected, decoded to text, JSON or CSV, followed while
the logger is still writing, and ingested into a SQLite store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default $"+config.EnvVar+")")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "log format (text|json)")
	flags.StringVar(&opts.Format, "format", "text", "output format ("+strings.Join(ValidFormats, "|")+")")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewFollowCommand(opts))
	cmd.AddCommand(NewIngestCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewPackCommand(opts))

	return cmd
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFile(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return WrapExitError(ExitUsage, "load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitUsage, "invalid configuration", err)
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return WrapExitError(ExitUsage, "create logger", err)
	}

	o.Config = cfg
	o.Logger = logger

	return nil
}

// openSource resolves the run named by the first argument, falling back to the
// configured source. URLs select an HTTPSource, anything else a run directory.
func (o *RootOptions) openSource(args []string) (source.Source, string, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	switch {
	case isURL(target):
		return o.httpSource(target)
	case target != "":
		return source.NewDirSource(target), target, nil
	case o.Config.Source.URL != "":
		return o.httpSource(o.Config.Source.URL)
	case o.Config.Source.Dir != "":
		return source.NewDirSource(o.Config.Source.Dir), o.Config.Source.Dir, nil
	default:
		return nil, "", NewExitError(ExitUsage, "no run given: pass a run directory or URL, or set source.dir in the config")
	}
}

func (o *RootOptions) httpSource(url string) (source.Source, string, error) {
	cfg := o.Config.Source
	opts := []source.HTTPOption{
		source.WithCompression(o.Config.Compression()),
		source.WithTimeout(cfg.Timeout),
		source.WithRetries(cfg.Retries),
	}
	if cfg.Token != "" {
		opts = append(opts, source.WithHeader("Authorization", "Bearer "+cfg.Token))
	}

	src, err := source.NewHTTPSource(url, opts...)
	if err != nil {
		return nil, "", WrapExitError(ExitUsage, "create http source", err)
	}

	return src, url, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
