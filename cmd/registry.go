package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/presentation"
)

var (
	registryJSON bool
	registryKind string
)

var registryListCmd = &cobra.Command{
	Use:   "registry:list",
	Short: "List the configured registries",
	Long: `List the registries in the order they are consulted and check that each one
answers. Registries found in ~/.acquire/registries follow the configured ones.

Examples:
  acquire registry:list
  acquire registry:list --json | jq '.[] | select(.reachable | not)'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		status := rt.Session().GlobalResolver().Probe(cmd.Context())
		defs := rt.Registries()
		dtos := make([]presentation.RegistryDTO, len(defs))
		for i, def := range defs {
			dtos[i] = presentation.RegistryDTO{
				Name:      def.Name,
				Kind:      def.ResolvedKind(),
				Location:  def.Location,
				Reachable: status[def.Name] == nil,
			}
			if err := status[def.Name]; err != nil {
				dtos[i].Error = err.Error()
			}
		}

		if registryJSON {
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatRegistries(dtos)
		}
		return presentation.ShowRegistries(cmd.OutOrStdout(), dtos)
	},
}

var registryAddCmd = &cobra.Command{
	Use:   "registry:add <name> <location>",
	Short: "Add a registry to the config file",
	Long: `Append a registry to the config file. location is an index file, a directory
holding registry.yaml, or an http(s) URL.

Examples:
  acquire registry:add main ~/registries/main
  acquire registry:add company https://artifacts.example.com/registry.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := config.RegistryConfig{Name: args[0], Kind: registryKind, Location: args[1]}
		path := configPath()
		if err := config.AddRegistry(path, reg, cfg.Registries); err != nil {
			return err
		}
		log.Info(log.CatConfig, "added registry", "registry", reg.Name, "config", path)
		presentation.NewConsole(cmd.ErrOrStderr(), false).Info("Added registry " + reg.Name + " to " + path)
		return nil
	},
}

var registryRemoveCmd = &cobra.Command{
	Use:   "registry:remove <name>",
	Short: "Remove a registry from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.RemoveRegistry(path, args[0], cfg.Registries); err != nil {
			return err
		}
		log.Info(log.CatConfig, "removed registry", "registry", args[0], "config", path)
		presentation.NewConsole(cmd.ErrOrStderr(), false).Info("Removed registry " + args[0] + " from " + path)
		return nil
	},
}

func init() {
	registryListCmd.Flags().BoolVar(&registryJSON, "json", false, "Print registries as JSON")
	registryAddCmd.Flags().StringVar(&registryKind, "kind", "", "Registry kind: file or http (default: inferred from location)")
	rootCmd.AddCommand(registryListCmd, registryAddCmd, registryRemoveCmd)
}

// configPath returns the config file in use, or the user config when none was
// loaded.
func configPath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "acquire", "config.yaml")
}
