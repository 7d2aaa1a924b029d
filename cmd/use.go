package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/acquire/internal/acquire"
	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/presentation"
	"github.com/zjrosen/acquire/internal/ui/confirm"
)

var (
	useVersions     []string
	useForce        bool
	useLanguage     string
	useAllLanguages bool
	useProject      string
	useYes          bool
	useWhatIf       bool
	useMSBuildProps string
	useJSON         bool
)

var useCmd = &cobra.Command{
	Use:   "use <artifact>...",
	Short: "Activate artifacts in the current session",
	Long: `Resolve each artifact against the configured registries, show the selected
versions and, once confirmed, activate them into the current session.

An artifact is "name" or "registry:name". --version pairs with the artifacts in
order and must be given once per artifact or not at all.

Examples:
  # Newest cmake and ninja
  acquire use tools/kitware/cmake tools/ninja-build/ninja

  # Pin versions, one --version per artifact
  acquire use tools/kitware/cmake compilers/arm/gcc --version 3.27 --version ">=10 <11"

  # Show what would be activated
  acquire use tools/kitware/cmake --what-if`,
	RunE: runUse,
}

func init() {
	useCmd.Flags().StringArrayVar(&useVersions, "version", nil, "Version constraint for the artifact at the same position (repeatable)")
	useCmd.Flags().BoolVar(&useForce, "force", false, "Overwrite variables owned by other active artifacts")
	useCmd.Flags().StringVar(&useLanguage, "language", "", "Language variant to select, e.g. en-us")
	useCmd.Flags().BoolVar(&useAllLanguages, "all-languages", false, "Accept every language variant")
	useCmd.Flags().StringVar(&useProject, "project", "", "Project directory or metadata file (default: nearest acquire.yaml)")
	useCmd.Flags().BoolVarP(&useYes, "yes", "y", false, "Activate without asking for confirmation")
	useCmd.Flags().BoolVar(&useWhatIf, "what-if", false, "Show the selection without activating anything")
	useCmd.Flags().StringVar(&useMSBuildProps, "msbuild-props", "", "Write build properties to this MSBuild props file")
	useCmd.Flags().BoolVar(&useJSON, "json", false, "Print the selection and outcomes as JSON")
	rootCmd.AddCommand(useCmd)
}

func runUse(cmd *cobra.Command, args []string) error {
	proj, err := loadProject(useProject)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	stderr := cmd.ErrOrStderr()
	use := rt.Use(
		confirm.ForTerminal(os.Stdin, stderr, useYes),
		presentation.NewConsole(stderr, false),
		cmd.OutOrStdout(),
		acquire.Outputs{Postscript: env.Postscript, MSBuildProps: useMSBuildProps},
	)
	use.JSON = useJSON

	req := acquire.Request{
		Inputs:   args,
		Versions: useVersions,
		Options: activation.Options{
			Force:        useForce,
			Language:     useLanguage,
			AllLanguages: useAllLanguages,
		},
		WhatIf: useWhatIf,
	}
	if proj != nil {
		req.Registries = proj.Registries
		req.BaseDir = proj.Dir()
	}

	// Per-artifact progress is shown while debugging; the report follows either way.
	if debugFlag || env.Debug {
		ctx, cancel := context.WithCancel(cmd.Context())
		done := presentation.ShowProgress(stderr, rt.Events().Subscribe(ctx))
		defer func() {
			cancel()
			<-done
		}()
	}

	ok, err := use.Run(cmd.Context(), req)
	if !ok {
		// Run has already reported the details.
		return errors.Join(errReported, err)
	}
	return nil
}
