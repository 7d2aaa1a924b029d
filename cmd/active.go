package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/presentation"
)

var activeJSON bool

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "List the artifacts active in this session",
	Long: `List the artifacts active in the session named by $ACQUIRE_SESSION.

Without session.persist in the config every invocation starts a fresh session,
so the list is always empty.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		active := rt.Session().ActiveArtifacts()
		if activeJSON {
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatActive(presentation.FromActive(active))
		}
		return presentation.ShowActive(cmd.OutOrStdout(), active)
	},
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate",
	Short: "Deactivate every artifact in this session",
	Long: `Undo the environment changes of every active artifact and empty the session.
The undo is written to $ACQUIRE_POSTSCRIPT like an activation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()

		orch := rt.Orchestrator()
		gone, err := orch.Deactivate(cmd.Context())
		if err != nil {
			return err
		}
		if path := env.Postscript; path != "" {
			shell := activation.ShellFor(path, cfg.Activation.Shell)
			if err := activation.WritePostscript(path, shell, orch.Environment().Diff()); err != nil {
				return err
			}
		}

		rep := presentation.NewConsole(cmd.ErrOrStderr(), false)
		for _, a := range gone {
			rep.Info("Deactivated " + a.Name + "@" + a.Version)
		}
		return nil
	},
}

func init() {
	activeCmd.Flags().BoolVar(&activeJSON, "json", false, "Print active artifacts as JSON")
	rootCmd.AddCommand(activeCmd, deactivateCmd)
}
