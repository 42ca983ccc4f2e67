package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxygene76/exotargets/pkg/analysis"
	"github.com/oxygene76/exotargets/pkg/table"
)

// reduceCmd reduces observation catalogues
var reduceCmd = &cobra.Command{
	Use:   "reduce [catalogue.csv...]",
	Short: "Reduce observation catalogues to follow-up targets",
	Long: `Concatenate the catalogues (default: paths.catalogues), keep transit
observations, drop duplicate targets and rows with missing parameters, and keep
planets within the configured radius range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		result, err := globalClient.Reduce(args, file)
		if err != nil {
			return fmt.Errorf("target reduction failed: %w", err)
		}
		printResult(result)
		return nil
	},
}

// correlateCmd matches catalogue targets with the archive
var correlateCmd = &cobra.Command{
	Use:   "correlate [catalogue.csv...]",
	Short: "Correlate catalogue targets with the NASA Exoplanet Archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		result, err := globalClient.Correlate(cmd.Context(), args, file)
		if err != nil {
			return fmt.Errorf("correlation failed: %w", err)
		}
		printResult(result)
		return nil
	},
}

// metricsCmd ranks archive planets by spectroscopy metrics
var metricsCmd = &cobra.Command{
	Use:   "metrics [query.adql]",
	Short: "Compute TSM, ESM and atmospheric signals for archive planets",
	Long: `Run an ADQL query against the archive (default: paths.query_file, or
all transiting planets up to the configured radius), compute the transmission
and emission spectroscopy metrics, transit depth and atmospheric signals, and
write the table sorted by TSM. With --system the rows of one host are printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		system, _ := cmd.Flags().GetString("system")

		var query string
		if len(args) == 1 {
			query = args[0]
		}
		result, err := globalClient.Metrics(cmd.Context(), query, file)
		if err != nil {
			return fmt.Errorf("metrics failed: %w", err)
		}
		printResult(result)

		if system != "" {
			rows, err := globalClient.System(result.Metadata.OutputFiles[0], system)
			if err != nil {
				return err
			}
			fmt.Printf("\n=== %s ===\n", system)
			return table.Write(os.Stdout, rows, '\t')
		}
		return nil
	},
}

// hzCmd writes habitable zone boundaries
var hzCmd = &cobra.Command{
	Use:   "hz",
	Short: "Compute habitable zone boundaries",
	Long: `Write the optimistic and conservative habitable zone boundaries over the
configured temperature and luminosity grid. With --teff and --lum the bounds of
that single star are reported as well, and --sma places a planet against them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		var star *analysis.Star
		if cmd.Flags().Changed("teff") || cmd.Flags().Changed("lum") {
			teff, _ := cmd.Flags().GetFloat64("teff")
			lum, _ := cmd.Flags().GetFloat64("lum")
			if teff <= 0 || lum <= 0 {
				return fmt.Errorf("--teff and --lum must both be positive")
			}
			sma, _ := cmd.Flags().GetFloat64("sma")
			if sma < 0 {
				return fmt.Errorf("--sma must not be negative")
			}
			star = &analysis.Star{Teff: teff, Luminosity: lum, SemiMajorAxis: sma}
		} else if cmd.Flags().Changed("sma") {
			return fmt.Errorf("--sma needs --teff and --lum")
		}

		result, err := globalClient.HZ(file, star)
		if err != nil {
			return fmt.Errorf("habitable zone calculation failed: %w", err)
		}
		printResult(result)
		return nil
	},
}

// scheduleCmd builds the observation timeline
var scheduleCmd = &cobra.Command{
	Use:   "schedule <catalogue.csv>",
	Short: "Build the observation timeline of a catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		result, err := globalClient.Schedule(args[0], file)
		if err != nil {
			return fmt.Errorf("schedule failed: %w", err)
		}
		printResult(result)
		return nil
	},
}

// spectrumCmd converts Eureka! spectra
var spectrumCmd = &cobra.Command{
	Use:   "spectrum <eureka.txt>",
	Short: "Convert a Eureka! spectrum to TauREx input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		result, err := globalClient.Spectrum(args[0], file)
		if err != nil {
			return fmt.Errorf("spectrum conversion failed: %w", err)
		}
		printResult(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(correlateCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(hzCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(spectrumCmd)

	for _, cmd := range []*cobra.Command{reduceCmd, correlateCmd, metricsCmd, hzCmd, scheduleCmd, spectrumCmd} {
		cmd.Flags().StringP("file", "f", "", "output file name (default depends on the command)")
	}

	metricsCmd.Flags().String("system", "", "print the rows of one host star")

	hzCmd.Flags().Float64("teff", 0, "stellar effective temperature [K]")
	hzCmd.Flags().Float64("lum", 0, "stellar luminosity [L☉]")
	hzCmd.Flags().Float64("sma", 0, "planet semi-major axis [AU]")
}
