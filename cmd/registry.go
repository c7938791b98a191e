package cmd

import (
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/mibstore/internal/config"
	"github.com/zjrosen/mibstore/internal/container"
	"github.com/zjrosen/mibstore/internal/metrics"
	"github.com/zjrosen/mibstore/internal/presentation"
	"github.com/zjrosen/mibstore/internal/registry"
)

var registryFormat string

var registryListCmd = &cobra.Command{
	Use:   "registry:list",
	Short: "List registered container factories",
	Long: `List every name in the factory registry after the built-in factories
and the configured aliases are registered. Aliases are shown faint.`,
	Args: cobra.NoArgs,
	RunE: runRegistryList,
}

var registryFindCmd = &cobra.Command{
	Use:   "registry:find <colon-list>",
	Short: "Resolve a colon separated list of container types",
	Long: `Resolve a preference list such as "table_container:binary_array".
The first name that is registered wins. The command fails when no name in
the list is registered.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegistryFind,
}

var registryAliasCmd = &cobra.Command{
	Use:   "registry:alias <alias> <colon-list>",
	Short: "Add an alias to the config file",
	Long: `Bind a new name to whatever the colon list resolves to and save it
under registry.aliases in the config file. Alias names are lowercased.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegistryAlias,
}

func init() {
	for _, c := range []*cobra.Command{registryListCmd, registryFindCmd} {
		c.Flags().StringVarP(&registryFormat, "format", "f", "table", "output format: table or json")
	}
	rootCmd.AddCommand(registryListCmd, registryFindCmd, registryAliasCmd)
}

// withRegistry runs fn against a registry built from the loaded config and
// clears it afterwards.
func withRegistry(fn func(reg *registry.Registry) error) error {
	reg, err := newRegistry(metrics.New(), cfg.Registry.Aliases)
	if err != nil {
		return err
	}
	defer func() { _, _ = reg.Clear() }()
	return fn(reg)
}

func runRegistryList(cmd *cobra.Command, _ []string) error {
	format, err := presentation.ParseFormat(registryFormat)
	if err != nil {
		return err
	}
	return withRegistry(func(reg *registry.Registry) error {
		factories := presentation.FromRegistryEntries(reg.Entries())
		aliases := presentation.FromAliases(cfg.Registry.Aliases)
		f := presentation.NewFormatter(cmd.OutOrStdout())

		if format == presentation.FormatJSON {
			return f.FormatJSON(struct {
				Factories []presentation.FactoryDTO `json:"factories"`
				Aliases   []presentation.AliasDTO   `json:"aliases"`
			}{factories, aliases})
		}
		if err := f.FormatFactories(factories, format); err != nil {
			return err
		}
		if len(aliases) == 0 {
			return nil
		}
		return f.FormatAliases(aliases, format)
	})
}

func runRegistryFind(cmd *cobra.Command, args []string) error {
	format, err := presentation.ParseFormat(registryFormat)
	if err != nil {
		return err
	}
	list := args[0]
	return withRegistry(func(reg *registry.Registry) error {
		f, ok := reg.FindFactory(list)
		if !ok {
			return fmt.Errorf("%q: %w", list, container.ErrFactoryNotFound)
		}
		dto := presentation.ResolveDTO{List: list, Factory: f.Name(), Product: f.Product()}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatResolve(dto, format)
	})
}

func runRegistryAlias(cmd *cobra.Command, args []string) error {
	alias, target := strings.ToLower(args[0]), args[1]
	if alias == "" || strings.Contains(alias, ":") {
		return fmt.Errorf("invalid alias name %q", args[0])
	}
	if err := config.ValidateTypeList("target", target); err != nil {
		return err
	}

	err := withRegistry(func(reg *registry.Registry) error {
		return reg.RegisterAlias(alias, target)
	})
	if err != nil {
		return err
	}

	aliases := maps.Clone(cfg.Registry.Aliases)
	if aliases == nil {
		aliases = map[string]string{}
	}
	aliases[alias] = target

	path := cfgUsed
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.SaveAliases(path, aliases); err != nil {
		return err
	}
	cfg.Registry.Aliases = aliases
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s)\n", alias, target, path)
	return err
}
