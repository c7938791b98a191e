package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mibstore/internal/config"
	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/httpapi"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/presentation"
	"github.com/zjrosen/mibstore/internal/watcher"
)

var (
	agentAddr    string
	agentRefresh time.Duration
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Serve the registry and expression table over HTTP",
	Long: `Load the expression table and serve prometheus metrics, the factory
catalog and the table over HTTP. The config file is watched and its aliases
re-registered when it changes. With --refresh the table is reloaded from the
database on that interval. SIGINT or SIGTERM stops the agent.`,
	Args: cobra.NoArgs,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().StringVar(&agentAddr, "metrics-addr", "", "listen address (default: metrics.addr)")
	agentCmd.Flags().DurationVar(&agentRefresh, "refresh", 0, "reload rows from the database on this interval (0 disables)")
	rootCmd.AddCommand(agentCmd)
}

// agent owns the app and is the only goroutine touching it. HTTP handlers
// read the snapshots it publishes.
type agent struct {
	app     *app
	handler *httpapi.Handler
	aliases map[string]string
}

func runAgent(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := agentAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	ag := &agent{
		app:     a,
		handler: httpapi.NewHandler(a.metrics.Handler()),
		aliases: maps.Clone(cfg.Registry.Aliases),
	}
	defer func() {
		if err := ag.app.Close(); err != nil {
			log.ErrorErr(log.CatRegistry, "Agent shutdown incomplete", err)
		}
	}()

	srv, err := httpapi.Listen(addr, ag.handler)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", srv.Addr())

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	runErr := ag.run(ctx, cfgUsed, agentRefresh, serveErr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	log.Info(log.CatHTTP, "Agent stopped")
	return runErr
}

// run publishes a snapshot and then applies config reloads, registry
// changes and refreshes until ctx is done or the server fails.
func (ag *agent) run(ctx context.Context, configPath string, refresh time.Duration, serveErr <-chan error) error {
	ag.publish()

	var reload <-chan struct{}
	if configPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(configPath))
		if err != nil {
			return err
		}
		if reload, err = w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	var tick <-chan time.Time
	if refresh > 0 {
		t := time.NewTicker(refresh)
		defer t.Stop()
		tick = t.C
	}

	changes := ag.app.reg.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serveErr:
			return err
		case <-reload:
			ag.reloadConfig(configPath)
		case <-tick:
			if err := ag.refresh(ctx); err != nil {
				log.ErrorErr(log.CatTable, "Refresh failed", err)
			}
		case ev, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			log.Debug(log.CatRegistry, "Registry changed", "type", ev.Type, "name", ev.Payload.Name)
			ag.publish()
		}
	}
}

func (ag *agent) reloadConfig(path string) {
	loaded, _, err := config.Load(path)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Config reload failed", err, "path", path)
		return
	}
	if err := loaded.Validate(); err != nil {
		log.ErrorErr(log.CatConfig, "Reloaded config is invalid", err, "path", path)
		return
	}
	if err := ag.setAliases(loaded.Registry.Aliases); err != nil {
		log.ErrorErr(log.CatConfig, "Aliases partially applied", err)
	}
	ag.publish()
}

// setAliases resets aliases that are gone and registers the rest. A
// removed alias that Init also registers goes back to its built-in target.
func (ag *agent) setAliases(next map[string]string) error {
	var errs []error
	for alias := range ag.aliases {
		if _, ok := next[alias]; ok {
			continue
		}
		if err := ag.app.reg.ResetAlias(alias); err != nil {
			errs = append(errs, err)
		}
	}
	if err := applyAliases(ag.app.reg, next); err != nil {
		errs = append(errs, err)
	}
	ag.aliases = maps.Clone(next)
	log.Info(log.CatConfig, "Aliases reloaded", "count", len(next))
	return errors.Join(errs...)
}

// refresh swaps the table for one loaded from the database.
func (ag *agent) refresh(ctx context.Context) error {
	rows, err := ag.app.repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	fresh, err := exprtable.New(ag.app.reg, cfg.Registry.DefaultType, cfg.Registry.IndexType,
		exprtable.WithRowsRecorder(ag.app.metrics))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fresh.Add(row); err != nil {
			_, _ = fresh.Close()
			ag.app.metrics.SetTableRows(ag.app.table.Len())
			return err
		}
	}
	if _, err := ag.app.table.Close(); err != nil {
		log.ErrorErr(log.CatTable, "Freeing previous table failed", err)
	}
	ag.app.table = fresh
	ag.app.metrics.SetTableRows(fresh.Len())
	ag.publish()
	return nil
}

func (ag *agent) snapshot() *httpapi.Snapshot {
	return &httpapi.Snapshot{
		Factories:   presentation.FromRegistryEntries(ag.app.reg.Entries()),
		Aliases:     presentation.FromAliases(ag.aliases),
		Expressions: presentation.FromRows(ag.app.table.Rows()),
		TakenAt:     time.Now(),
	}
}

func (ag *agent) publish() {
	ag.handler.Publish(ag.snapshot())
}
