package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/infrastructure/sqlite"
	"github.com/zjrosen/mibstore/internal/log"
	"github.com/zjrosen/mibstore/internal/presentation"
)

var exprFlags struct {
	wait       bool
	expression string
	comment    string
	valueType  string
	delta      int32
	status     string
	format     string
	name       string
	replace    bool
}

var exprCreateCmd = &cobra.Command{
	Use:   "expr:create <owner> <name>",
	Short: "Create an expression row",
	Long: `Create a row with createAndWait, write the given columns, then
activate it with active unless --wait is set.`,
	Args: cobra.ExactArgs(2),
	RunE: runExprCreate,
}

var exprSetCmd = &cobra.Command{
	Use:   "expr:set <owner> <name>",
	Short: "Write columns or the status of an expression row",
	Long: `Write the given columns, then the status when --status is set.
--status destroy removes the row.`,
	Args: cobra.ExactArgs(2),
	RunE: runExprSet,
}

var exprDestroyCmd = &cobra.Command{
	Use:   "expr:destroy <owner> <name>",
	Short: "Destroy an expression row",
	Args:  cobra.ExactArgs(2),
	RunE:  runExprDestroy,
}

var exprListCmd = &cobra.Command{
	Use:   "expr:list",
	Short: "List expression rows in index order",
	Args:  cobra.NoArgs,
	RunE:  runExprList,
}

var exprExportCmd = &cobra.Command{
	Use:   "expr:export [file]",
	Short: "Write nonVolatile rows as expExpressionTable config lines",
	Long: `Write one expExpressionTable line per nonVolatile row. The target
defaults to storage.conf_path, or stdout when that is unset. "-" is stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExprExport,
}

var exprImportCmd = &cobra.Command{
	Use:   "expr:import <file>",
	Short: "Add rows from expExpressionTable config lines",
	Long: `Read expExpressionTable lines and store the rows. Existing rows are
kept and a duplicate fails the import; --replace swaps the stored rows for
the imported ones.`,
	Args: cobra.ExactArgs(1),
	RunE: runExprImport,
}

func init() {
	for _, c := range []*cobra.Command{exprCreateCmd, exprSetCmd} {
		c.Flags().StringVarP(&exprFlags.expression, "expression", "e", "", "expExpression")
		c.Flags().StringVar(&exprFlags.comment, "comment", "", "expExpressionComment")
		c.Flags().StringVarP(&exprFlags.valueType, "value-type", "t", "", "expExpressionValueType, name or number")
		c.Flags().Int32Var(&exprFlags.delta, "delta", 0, "expExpressionDeltaInterval in seconds")
	}
	exprCreateCmd.Flags().BoolVar(&exprFlags.wait, "wait", false, "leave the row notInService")
	exprSetCmd.Flags().StringVarP(&exprFlags.status, "status", "s", "", "expExpressionStatus, name or number")
	exprListCmd.Flags().StringVarP(&exprFlags.format, "format", "f", "table", "output format: table or json")
	exprListCmd.Flags().StringVarP(&exprFlags.name, "name", "n", "", "only rows with this name")
	exprImportCmd.Flags().BoolVar(&exprFlags.replace, "replace", false, "replace every stored row")

	rootCmd.AddCommand(exprCreateCmd, exprSetCmd, exprDestroyCmd, exprListCmd, exprExportCmd, exprImportCmd)
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(a *app) error) (err error) {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func runExprCreate(cmd *cobra.Command, args []string) error {
	owner, name := args[0], args[1]
	return withApp(cmd.Context(), func(a *app) error {
		if err := a.table.SetStatus(owner, name, exprtable.CreateAndWait); err != nil {
			return err
		}
		if err := setColumns(cmd, a.table, owner, name); err != nil {
			return err
		}
		if !exprFlags.wait {
			if err := a.table.SetStatus(owner, name, exprtable.Active); err != nil {
				return err
			}
		}
		return saveRow(cmd, a, owner, name)
	})
}

func runExprSet(cmd *cobra.Command, args []string) error {
	owner, name := args[0], args[1]
	var status exprtable.RowStatus
	if cmd.Flags().Changed("status") {
		s, err := exprtable.ParseRowStatus(exprFlags.status)
		if err != nil {
			return err
		}
		status = s
	}

	return withApp(cmd.Context(), func(a *app) error {
		if _, ok := a.table.Get(owner, name); !ok && status == 0 {
			return fmt.Errorf("%q/%q: %w", owner, name, exprtable.ErrNoSuchName)
		}
		if err := setColumns(cmd, a.table, owner, name); err != nil {
			return err
		}
		if status != 0 {
			if err := a.table.SetStatus(owner, name, status); err != nil {
				return err
			}
		}
		if status == exprtable.Destroy {
			return deleteRow(cmd, a, owner, name)
		}
		return saveRow(cmd, a, owner, name)
	})
}

func runExprDestroy(cmd *cobra.Command, args []string) error {
	owner, name := args[0], args[1]
	return withApp(cmd.Context(), func(a *app) error {
		if err := a.table.SetStatus(owner, name, exprtable.Destroy); err != nil {
			return err
		}
		return deleteRow(cmd, a, owner, name)
	})
}

// setColumns writes each column whose flag was given.
func setColumns(cmd *cobra.Command, t *exprtable.Table, owner, name string) error {
	flags := cmd.Flags()
	if flags.Changed("expression") {
		if err := t.SetExpression(owner, name, exprFlags.expression); err != nil {
			return err
		}
	}
	if flags.Changed("comment") {
		if err := t.SetComment(owner, name, exprFlags.comment); err != nil {
			return err
		}
	}
	if flags.Changed("value-type") {
		v, err := exprtable.ParseValueType(exprFlags.valueType)
		if err != nil {
			return err
		}
		if err := t.SetValueType(owner, name, v); err != nil {
			return err
		}
	}
	if flags.Changed("delta") {
		if err := t.SetDeltaInterval(owner, name, exprFlags.delta); err != nil {
			return err
		}
	}
	return nil
}

func saveRow(cmd *cobra.Command, a *app, owner, name string) error {
	row, ok := a.table.Get(owner, name)
	if !ok {
		return fmt.Errorf("%q/%q: %w", owner, name, exprtable.ErrNoSuchName)
	}
	if err := a.repo.Save(cmd.Context(), row); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s/%s %s\n", owner, name, row.Status)
	return err
}

func deleteRow(cmd *cobra.Command, a *app, owner, name string) error {
	if err := a.repo.Delete(cmd.Context(), owner, name); err != nil {
		// Destroying an absent row succeeds.
		if !errors.Is(err, sqlite.ErrExpressionNotFound) {
			return err
		}
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s/%s destroyed\n", owner, name)
	return err
}

func runExprList(cmd *cobra.Command, _ []string) error {
	format, err := presentation.ParseFormat(exprFlags.format)
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), func(a *app) error {
		rows := a.table.Rows()
		if cmd.Flags().Changed("name") {
			rows = a.table.ByName(exprFlags.name)
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatExpressions(presentation.FromRows(rows), format)
	})
}

func runExprExport(cmd *cobra.Command, args []string) error {
	target := cfg.Storage.ConfPath
	if len(args) == 1 {
		target = args[0]
	}

	return withApp(cmd.Context(), func(a *app) error {
		if target == "" || target == "-" {
			_, err := a.table.Store(cmd.OutOrStdout())
			return err
		}
		f, err := os.Create(target) //nolint:gosec // G304: path comes from the command line or config
		if err != nil {
			return fmt.Errorf("creating %s: %w", target, err)
		}
		n, err := a.table.Store(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		log.Info(log.CatTable, "Expressions exported", "path", target, "rows", n)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, target)
		return err
	})
}

func runExprImport(cmd *cobra.Command, args []string) error {
	rows, err := readLinesFile(args[0])
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app) error {
		if exprFlags.replace {
			return replaceRows(cmd, a, rows)
		}
		for _, row := range rows {
			if _, err := a.table.Add(row); err != nil {
				return fmt.Errorf("importing %q/%q: %w", row.Owner, row.Name, err)
			}
			if err := a.repo.Save(cmd.Context(), row); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows\n", len(rows))
		return err
	})
}

// replaceRows checks rows in a fresh table before swapping them in.
func replaceRows(cmd *cobra.Command, a *app, rows []*exprtable.Row) error {
	fresh, err := exprtable.New(a.reg, cfg.Registry.DefaultType, cfg.Registry.IndexType)
	if err != nil {
		return err
	}
	defer func() { _, _ = fresh.Close() }()
	for _, row := range rows {
		if _, err := fresh.Add(row); err != nil {
			return fmt.Errorf("importing %q/%q: %w", row.Owner, row.Name, err)
		}
	}
	if err := a.repo.ReplaceAll(cmd.Context(), fresh.Rows()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "replaced with %d rows\n", fresh.Len())
	return err
}

func readLinesFile(path string) ([]*exprtable.Row, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	rows, err := exprtable.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
