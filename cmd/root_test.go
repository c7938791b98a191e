package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mibstore/internal/config"
	"github.com/zjrosen/mibstore/internal/container"
	"github.com/zjrosen/mibstore/internal/exprtable"
	"github.com/zjrosen/mibstore/internal/presentation"
)

// isolate points HOME and the working directory at a temp dir and returns a
// database path inside it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	return filepath.Join(home, "data", "mibstore.db")
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// === Unit Tests: config bootstrap ===

func TestInitConfig_WritesDefaultConfig(t *testing.T) {
	isolate(t)

	_, err := execute(t, "registry:find", "binary_array")
	require.NoError(t, err)

	require.FileExists(t, config.DefaultConfigPath())
	require.Equal(t, config.DefaultConfigPath(), cfgUsed)
}

func TestInitConfig_InvalidConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	path := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry:\n  default_type: \":\"\n"), 0600))

	_, err := execute(t, "--config", path, "registry:list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "registry.default_type")
}

// === Unit Tests: registry commands ===

func TestRegistryFind(t *testing.T) {
	isolate(t)

	tests := []struct {
		list string
		want string
	}{
		{"binary_array", "binary_array"},
		{"table_container", "binary_array"},
		{"nope:linked_list", "sorted_singly_linked_list"},
		{"fifo:binary_array", "fifo"},
	}
	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			out, err := execute(t, "registry:find", tt.list)
			require.NoError(t, err)
			require.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestRegistryFind_NotFound(t *testing.T) {
	isolate(t)

	_, err := execute(t, "registry:find", "missing:also_missing")
	require.ErrorIs(t, err, container.ErrFactoryNotFound)
}

func TestRegistryList_JSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "registry:list", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Factories []presentation.FactoryDTO `json:"factories"`
		Aliases   []presentation.AliasDTO   `json:"aliases"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	byName := map[string]presentation.FactoryDTO{}
	for _, f := range got.Factories {
		byName[f.Name] = f
	}
	require.Contains(t, byName, "binary_array")
	require.False(t, byName["binary_array"].Alias)
	require.True(t, byName["table_container"].Alias)
	require.Equal(t, "binary_array", byName["table_container"].Factory)
	require.Empty(t, got.Aliases)
}

func TestRegistryList_BadFormat(t *testing.T) {
	isolate(t)

	_, err := execute(t, "registry:list", "--format", "xml")
	require.Error(t, err)
}

func TestRegistryAlias_SavedAndResolved(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(home)
	path := filepath.Join(home, "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))

	out, err := execute(t, "--config", path, "registry:alias", "Fast", "nope:fifo")
	require.NoError(t, err)
	require.Contains(t, out, "fast -> nope:fifo")

	loaded, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"fast": "nope:fifo"}, loaded.Registry.Aliases)

	out, err = execute(t, "--config", path, "registry:find", "fast")
	require.NoError(t, err)
	require.Equal(t, "fifo\n", out)
}

func TestRegistryAlias_UnknownTarget(t *testing.T) {
	isolate(t)

	_, err := execute(t, "registry:alias", "fast", "missing")
	require.ErrorIs(t, err, container.ErrFactoryNotFound)
}

// === Unit Tests: expression commands ===

func listExpressions(t *testing.T, db string, extra ...string) []presentation.ExpressionDTO {
	t.Helper()
	args := append([]string{"--db", db, "expr:list", "--format", "json"}, extra...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	var rows []presentation.ExpressionDTO
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	return rows
}

func TestExpr_Lifecycle(t *testing.T) {
	db := isolate(t)

	out, err := execute(t, "--db", db, "expr:create", "ops", "cpu", "--wait",
		"--expression", "$1+$2", "--value-type", "integer32", "--delta", "30")
	require.NoError(t, err)
	require.Equal(t, "ops/cpu notInService\n", out)

	out, err = execute(t, "--db", db, "expr:set", "ops", "cpu", "--status", "active")
	require.NoError(t, err)
	require.Equal(t, "ops/cpu active\n", out)

	rows := listExpressions(t, db)
	require.Len(t, rows, 1)
	require.Equal(t, "ops", rows[0].Owner)
	require.Equal(t, "$1+$2", rows[0].Expression)
	require.Equal(t, "integer32", rows[0].ValueType)
	require.Equal(t, int32(30), rows[0].DeltaInterval)
	require.Equal(t, "active", rows[0].Status)

	_, err = execute(t, "--db", db, "expr:set", "ops", "cpu", "--status", "notInService")
	require.ErrorIs(t, err, exprtable.ErrInconsistentValue)

	out, err = execute(t, "--db", db, "expr:destroy", "ops", "cpu")
	require.NoError(t, err)
	require.Equal(t, "ops/cpu destroyed\n", out)
	require.Empty(t, listExpressions(t, db))
}

func TestExpr_CreateDuplicate(t *testing.T) {
	db := isolate(t)

	_, err := execute(t, "--db", db, "expr:create", "ops", "cpu")
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "expr:create", "ops", "cpu")
	require.ErrorIs(t, err, exprtable.ErrInconsistentValue)
}

func TestExpr_SetErrors(t *testing.T) {
	db := isolate(t)

	_, err := execute(t, "--db", db, "expr:set", "ops", "missing", "--comment", "x")
	require.ErrorIs(t, err, exprtable.ErrNoSuchName)

	_, err = execute(t, "--db", db, "expr:create", "ops", "cpu")
	require.NoError(t, err)

	_, err = execute(t, "--db", db, "expr:set", "ops", "cpu", "--delta", "90000")
	require.ErrorIs(t, err, exprtable.ErrWrongValue)

	_, err = execute(t, "--db", db, "expr:set", "ops", "cpu", "--status", "bogus")
	require.Error(t, err)
}

func TestExpr_DestroyAbsentSucceeds(t *testing.T) {
	db := isolate(t)

	out, err := execute(t, "--db", db, "expr:destroy", "ops", "ghost")
	require.NoError(t, err)
	require.Contains(t, out, "destroyed")
}

func TestExpr_ListByName(t *testing.T) {
	db := isolate(t)

	for _, args := range [][]string{{"a", "cpu"}, {"b", "cpu"}, {"a", "mem"}} {
		_, err := execute(t, "--db", db, "expr:create", args[0], args[1])
		require.NoError(t, err)
	}

	rows := listExpressions(t, db, "--name", "cpu")
	require.Len(t, rows, 2)
	require.Equal(t, "a", rows[0].Owner)
	require.Equal(t, "b", rows[1].Owner)

	all := listExpressions(t, db)
	require.Len(t, all, 3)
	require.Equal(t, []string{"cpu", "mem", "cpu"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestExpr_ExportImport(t *testing.T) {
	db := isolate(t)
	dir := filepath.Dir(db)

	_, err := execute(t, "--db", db, "expr:create", "ops", "cpu", "--expression", "$1*100")
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "expr:create", "ops", "mem", "--comment", "used memory")
	require.NoError(t, err)

	target := filepath.Join(dir, "expr.conf")
	out, err := execute(t, "--db", db, "expr:export", target)
	require.NoError(t, err)
	require.Contains(t, out, "exported 2 rows")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], `expExpressionTable "ops" "cpu"`))

	other := filepath.Join(dir, "other.db")
	out, err = execute(t, "--db", other, "expr:import", target)
	require.NoError(t, err)
	require.Contains(t, out, "imported 2 rows")

	rows := listExpressions(t, other)
	require.Len(t, rows, 2)
	require.Equal(t, "used memory", rows[1].Comment)

	// Importing again collides with the stored rows.
	_, err = execute(t, "--db", other, "expr:import", target)
	require.ErrorIs(t, err, container.ErrDuplicate)

	// --replace swaps them instead.
	require.NoError(t, os.WriteFile(target, []byte(lines[1]+"\n"), 0600))
	out, err = execute(t, "--db", other, "expr:import", "--replace", target)
	require.NoError(t, err)
	require.Contains(t, out, "replaced with 1 rows")
	rows = listExpressions(t, other)
	require.Len(t, rows, 1)
	require.Equal(t, "mem", rows[0].Name)
}

func TestExpr_ExportToStdout(t *testing.T) {
	db := isolate(t)

	_, err := execute(t, "--db", db, "expr:create", "ops", "cpu")
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "expr:export", "-")
	require.NoError(t, err)
	require.Equal(t, `expExpressionTable "ops" "cpu" "" 1 "" 0 .0.0 0 1 0`+"\n", out)
}

func TestExpr_ImportBadLine(t *testing.T) {
	db := isolate(t)
	path := filepath.Join(t.TempDir(), "bad.conf")
	require.NoError(t, os.WriteFile(path, []byte("expExpressionTable \"a\"\n"), 0600))

	_, err := execute(t, "--db", db, "expr:import", path)
	require.ErrorIs(t, err, exprtable.ErrBadLine)
}
