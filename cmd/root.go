package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/acquire/internal/acquire"
	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/flags"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/paths"
	"github.com/zjrosen/acquire/internal/presentation"
	"github.com/zjrosen/acquire/internal/project"
	"github.com/zjrosen/acquire/internal/resolver"
	"github.com/zjrosen/acquire/internal/tracing"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so the
	// OSC 11 response does not race with the prompt's input loop.
	_ = lipgloss.HasDarkBackground()
}

// errReported marks a failure whose details were already shown to the user.
var errReported = errors.New("command failed")

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	env       config.Env

	logCleanup    func()
	traceProvider *tracing.Provider
)

var rootCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Resolve and activate versioned artifacts",
	Long: `acquire finds artifacts in the configured registries, picks one version per
request and activates it into the current shell session.

The parent shell applies the activation by sourcing the script written to
$ACQUIRE_POSTSCRIPT.`,
	Version:            version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/acquire/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log (path from $ACQUIRE_LOG)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("resolver.timeout", defaults.Resolver.Timeout)
	viper.SetDefault("resolver.concurrency", defaults.Resolver.Concurrency)
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.ttl", defaults.Cache.TTL)
	viper.SetDefault("session.persist", defaults.Session.Persist)
	viper.SetDefault("session.db_path", defaults.Session.DBPath)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", config.DefaultTracesFilePath())
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	home, _ := os.UserHomeDir()
	userConfig := filepath.Join(home, ".config", "acquire", "config.yaml")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .acquire/config.yaml (current directory)
		// 2. ~/.config/acquire/config.yaml (user config)
		if _, err := os.Stat(".acquire/config.yaml"); err == nil {
			viper.SetConfigFile(".acquire/config.yaml")
		} else {
			viper.AddConfigPath(filepath.Dir(userConfig))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the user default.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && home != "" {
			if writeErr := config.WriteDefaultConfig(userConfig); writeErr == nil {
				viper.SetConfigFile(userConfig)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup parses the environment, starts logging and tracing, and validates the
// configuration before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	var err error
	env, err = config.LoadEnv()
	if err != nil {
		return err
	}

	if debugFlag || env.Debug {
		cleanup, err := log.InitWithTeaLog(env.LogPath, "acquire")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "acquire starting", "version", version, "config", viper.ConfigFileUsed())
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tracingCfg := cfg.Tracing
	tracingCfg.FilePath = paths.ExpandHome(tracingCfg.FilePath)
	traceProvider, err = tracing.NewProvider(tracingCfg)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Failed to start tracing", err)
		traceProvider = nil
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	shutdown()
	return nil
}

func shutdown() {
	if traceProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := traceProvider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to flush traces", err)
		}
		traceProvider = nil
	}
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
}

// openRuntime assembles the shared object graph for a subcommand.
func openRuntime(ctx context.Context) (*acquire.Runtime, error) {
	return acquire.Open(ctx, acquire.Deps{
		Config: cfg,
		Env:    env,
		Flags:  flags.New(cfg.Flags),
	})
}

// loadProject returns the project metadata at path, or the nearest one above the
// working directory when path is empty. A missing metadata file is not an error.
func loadProject(path string) (*project.Project, error) {
	if path != "" {
		return project.Discover(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	p, err := project.Discover(wd)
	if errors.Is(err, project.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// reportWarnings shows the registries res had to skip.
func reportWarnings(rep presentation.Reporter, res *resolver.Resolver) {
	for _, w := range res.Warnings() {
		rep.Warn(w.String())
	}
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		presentation.NewConsole(os.Stderr, false).Error(err.Error())
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
