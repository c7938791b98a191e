package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mibstore/internal/config"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	dbPath  string
	verbose bool

	cfg     config.Config
	cfgUsed string
)

var rootCmd = &cobra.Command{
	Use:   "mibstore",
	Short: "Pluggable containers and the DISMAN expression table",
	Long: `mibstore selects container implementations by name from a factory
registry and keeps DISMAN expression table rows in them, persisted to a
local SQLite database.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mibstore/config.yaml, then ~/.config/mibstore/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"path to the expression database (overrides storage.db_path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"copy log output to stderr")
}

// state holds what setup built for the running command.
var state struct {
	logCleanup  func()
	cancelLog   context.CancelFunc
	tracer      *tracing.Provider
	commandSpan func(error)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}
	if err := initLogging(cmd.ErrOrStderr()); err != nil {
		return err
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	state.tracer = tp

	ctx, span := tracing.Start(cmd.Context(), tp.Tracer(), tracing.SpanPrefixCommand+cmd.Name())
	span.SetAttributes(attribute.String(tracing.AttrCommand, cmd.CommandPath()))
	cmd.SetContext(ctx)
	state.commandSpan = func(err error) { tracing.End(span, err) }

	log.Debug(log.CatConfig, "Command starting", "command", cmd.CommandPath(), "config", cfgUsed)
	return nil
}

// teardown ends the command span with the command's outcome and releases
// what setup built. It runs even when the command failed.
func teardown(cmdErr error) error {
	if state.commandSpan != nil {
		state.commandSpan(cmdErr)
		state.commandSpan = nil
	}
	var err error
	if state.tracer != nil {
		err = state.tracer.Shutdown(context.Background())
		state.tracer = nil
	}
	if state.cancelLog != nil {
		state.cancelLog()
		state.cancelLog = nil
	}
	if state.logCleanup != nil {
		state.logCleanup()
		state.logCleanup = nil
	}
	return err
}

// initConfig loads the config file. When no file exists anywhere a default
// one is written to the user config directory.
func initConfig() error {
	loaded, used, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if used == "" && cfgFile == "" {
		path := config.DefaultConfigPath()
		if writeErr := config.WriteDefaultConfig(path); writeErr == nil {
			used = path
		}
		// If write fails, just continue with defaults (no config file)
	}
	if dbPath != "" {
		loaded.Storage.DBPath = config.ExpandHome(dbPath)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg, cfgUsed = loaded, used
	return nil
}

func initLogging(stderr io.Writer) error {
	level, _ := log.ParseLevel(cfg.Log.Level)

	switch {
	case cfg.Log.Enabled:
		cleanup, err := log.Init(cfg.Log.Path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		state.logCleanup = cleanup
		if verbose {
			ctx, cancel := context.WithCancel(context.Background())
			state.cancelLog = cancel
			go copyLog(ctx, stderr)
		}
	case verbose:
		state.logCleanup = log.InitWriter(stderr)
	default:
		return nil
	}
	log.SetMinLevel(level)
	return nil
}

// copyLog streams file log entries to w until ctx is done.
func copyLog(ctx context.Context, w io.Writer) {
	l := log.NewListener(ctx)
	if l == nil {
		return
	}
	for {
		ev, ok := l.Next()
		if !ok {
			return
		}
		_, _ = io.WriteString(w, ev.Payload)
	}
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if terr := teardown(err); err == nil {
		err = terr
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
