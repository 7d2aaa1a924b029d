package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/acquire/internal/acquire"
	"github.com/zjrosen/acquire/internal/matcher"
	"github.com/zjrosen/acquire/internal/presentation"
)

var (
	findCount        int
	findJSON         bool
	findLanguage     string
	findAllLanguages bool
	findProject      string
)

var findCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Search the registries for artifacts",
	Long: `List the artifacts whose name contains query, newest version first.

Examples:
  # Everything the registries offer
  acquire find

  # The three newest cmake versions
  acquire find cmake --count 3

  # Names only, with jq
  acquire find --json | jq -r '.[].name'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().IntVar(&findCount, "count", 1, "Versions to list per artifact")
	findCmd.Flags().BoolVar(&findJSON, "json", false, "Print results as JSON")
	findCmd.Flags().StringVar(&findLanguage, "language", "", "Language variant to list, e.g. en-us")
	findCmd.Flags().BoolVar(&findAllLanguages, "all-languages", false, "List every language variant")
	findCmd.Flags().StringVar(&findProject, "project", "", "Project directory or metadata file (default: nearest acquire.yaml)")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) > 0 {
		query = args[0]
	}

	proj, err := loadProject(findProject)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	res, err := rt.Resolver(proj)
	if err != nil {
		return err
	}

	filter := matcher.LanguageFilter{Language: findLanguage, AllLanguages: findAllLanguages}
	found, err := acquire.Find(cmd.Context(), res, query, findCount, filter)
	reportWarnings(presentation.NewConsole(cmd.ErrOrStderr(), false), res)
	if err != nil {
		return err
	}

	if findJSON {
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatCandidates(presentation.FromCandidates(found))
	}
	return presentation.ShowCandidates(cmd.OutOrStdout(), found)
}
