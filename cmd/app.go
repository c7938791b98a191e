package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/infrastructure/sqlite"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/metrics"
	"github.com/zjrosen/mibstore/internal/registry"
)

// app is the wired runtime a command operates on.
type app struct {
	metrics *metrics.Metrics
	reg     *registry.Registry
	db      *sqlite.DB
	repo    *sqlite.ExpressionRepository
	table   *exprtable.Table
}

// newRegistry builds an initialised registry with the configured aliases.
func newRegistry(m *metrics.Metrics, aliases map[string]string) (*registry.Registry, error) {
	reg := registry.New(registry.WithMetrics(m))
	if err := reg.Init(); err != nil {
		return nil, err
	}
	if err := applyAliases(reg, aliases); err != nil {
		return nil, err
	}
	return reg, nil
}

// applyAliases registers aliases in name order. Every alias is attempted;
// the failures are joined.
func applyAliases(reg *registry.Registry, aliases map[string]string) error {
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)

	var errs []error
	for _, alias := range names {
		if err := reg.RegisterAlias(alias, aliases[alias]); err != nil {
			log.ErrorErr(log.CatRegistry, "Alias not registered", err, "alias", alias)
			errs = append(errs, fmt.Errorf("alias %s: %w", alias, err))
		}
	}
	return errors.Join(errs...)
}

// openApp wires the registry, the database and the expression table, and
// loads every stored row into the table.
func openApp(ctx context.Context) (*app, error) {
	m := metrics.New()
	reg, err := newRegistry(m, cfg.Registry.Aliases)
	if err != nil {
		return nil, err
	}

	opts := []sqlite.Option{}
	if state.tracer != nil {
		opts = append(opts, sqlite.WithTracer(state.tracer.Tracer()))
	}
	db, err := sqlite.NewDB(cfg.Storage.DBPath, opts...)
	if err != nil {
		_, _ = reg.Clear()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	table, err := exprtable.New(reg, cfg.Registry.DefaultType, cfg.Registry.IndexType,
		exprtable.WithRowsRecorder(m))
	if err != nil {
		_ = db.Close()
		_, _ = reg.Clear()
		return nil, err
	}

	a := &app{metrics: m, reg: reg, db: db, repo: db.ExpressionRepository(), table: table}
	if err := a.load(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) load(ctx context.Context) error {
	rows, err := a.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading expressions: %w", err)
	}
	for _, row := range rows {
		if _, err := a.table.Add(row); err != nil {
			return fmt.Errorf("loading %q/%q: %w", row.Owner, row.Name, err)
		}
	}
	log.Debug(log.CatTable, "Expressions loaded", "rows", a.table.Len(),
		"primary", a.table.PrimaryType(), "index", a.table.IndexType())
	return nil
}

// Close frees the table, clears the registry and closes the database.
func (a *app) Close() error {
	_, terr := a.table.Close()
	_, rerr := a.reg.Clear()
	derr := a.db.Close()
	return errors.Join(terr, rerr, derr)
}
