package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/client"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/utils"
)

const (
	appName = "exotargets"
	version = "v1.0.0"
)

var (
	// Global client instance
	globalClient *client.ExoTargetsClient

	cfgFile   string
	verbose   bool
	outputDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Exoplanet target list curation for atmospheric follow-up",
	Long: `exotargets reduces JWST observation catalogues to the planets worth
following up, correlates them with the NASA Exoplanet Archive, ranks archive
planets by their transmission and emission spectroscopy metrics, computes
habitable zone boundaries and prepares observation timelines.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return initializeClient()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Write the default configuration to $HOME/.exotargets/config.yaml, or to
the file given with --config, and create the data and output directories.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		fmt.Printf("Initializing exotargets %s\n", version)

		path := cfgFile
		if path == "" {
			var err error
			if path, err = utils.GetConfigPath(); err != nil {
				return err
			}
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
		}

		config := utils.DefaultConfig()
		if outputDir != "" {
			config.Paths.OutputDir = outputDir
		}
		if err := utils.SaveConfigTo(config, path); err != nil {
			return err
		}
		if err := config.CreateDirectories(); err != nil {
			return err
		}

		fmt.Println("\nNext steps:")
		fmt.Printf("1. Put the observation catalogues into %s\n", config.Paths.DataDir)
		fmt.Printf("2. Reduce them: %s reduce\n", appName)
		fmt.Printf("3. Rank archive planets: %s metrics\n", appName)
		return nil
	},
}

// statusCmd prints the active configuration
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return globalClient.Status()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.exotargets/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides paths.output_dir)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)

	initCmd.Flags().Bool("force", false, "overwrite an existing configuration")
}

// initializeClient loads the configuration, applies the global flags and sets
// up logging and the client
func initializeClient() error {
	config, err := utils.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	if verbose {
		config.Logging.Level = "debug"
	}
	if outputDir != "" {
		config.Paths.OutputDir = outputDir
	}

	if err := logger.Init(logger.Options{
		Level:     config.Logging.Level,
		Format:    config.Logging.Format,
		File:      config.Logging.File,
		Component: appName,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	globalClient, err = client.NewExoTargetsClient(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// printResult writes a short report of a finished analysis to stdout
func printResult(result *types.AnalysisResult) {
	fmt.Printf("=== %s (%s) ===\n", result.Type, result.Status)
	fmt.Printf("Rows: %d\n", result.Rows)
	fmt.Printf("Duration: %v\n", result.Duration)
	for _, f := range result.Metadata.OutputFiles {
		fmt.Printf("Output: %s\n", f)
	}
	keys := make([]string, 0, len(result.Summary))
	for k := range result.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %v\n", k, result.Summary[k])
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
