package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/analysis"
	"github.com/oxygene76/exotargets/pkg/archive"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/table"
	"github.com/oxygene76/exotargets/pkg/utils"
)

// resultsDir holds one JSON record per analysis run, below the output directory
const resultsDir = "results"

// ExoTargetsClient wires the configuration, the archive client and the
// analysis manager together
type ExoTargetsClient struct {
	config   *utils.Config
	archive  *archive.Client
	analyzer *analysis.Manager
}

// NewExoTargetsClient creates a client from config, loading the default
// configuration when config is nil
func NewExoTargetsClient(config *utils.Config) (*ExoTargetsClient, error) {
	if config == nil {
		var err error
		config, err = utils.LoadConfig("")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	arch := archive.NewClient(archive.Config{
		BaseURL:  config.Archive.URL,
		Timeout:  config.Archive.Timeout(),
		CacheTTL: config.Archive.CacheTTL(),
		Table:    config.Archive.Table,
		Columns:  config.Archive.Columns,
	})

	return &ExoTargetsClient{
		config:   config,
		archive:  arch,
		analyzer: analysis.NewManager(arch, config),
	}, nil
}

// Config returns the active configuration
func (c *ExoTargetsClient) Config() *utils.Config {
	return c.config
}

// Reduce runs the target reduction
func (c *ExoTargetsClient) Reduce(catalogues []string, output string) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.Reduce(catalogues, output))
}

// Correlate matches catalogue targets with the archive
func (c *ExoTargetsClient) Correlate(ctx context.Context, catalogues []string, output string) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.Correlate(ctx, catalogues, output))
}

// Metrics computes the spectroscopy metrics of an archive query
func (c *ExoTargetsClient) Metrics(ctx context.Context, queryFile, output string) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.Metrics(ctx, queryFile, output))
}

// System returns one host's rows from a metrics table
func (c *ExoTargetsClient) System(metricsFile, host string) (*table.Table, error) {
	if metricsFile == "" {
		metricsFile = c.config.OutputPath(c.config.Metrics.Output)
	}
	return c.analyzer.System(metricsFile, host)
}

// HZ writes habitable zone curves, with the bounds of star when given
func (c *ExoTargetsClient) HZ(output string, star *analysis.Star) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.HZ(output, star))
}

// Schedule writes the observation timeline of a catalogue
func (c *ExoTargetsClient) Schedule(catalogue, output string) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.Schedule(catalogue, output))
}

// Spectrum converts a Eureka! spectrum for TauREx
func (c *ExoTargetsClient) Spectrum(input, output string) (*types.AnalysisResult, error) {
	return c.run(c.analyzer.Spectrum(input, output))
}

// Status prints the active configuration
func (c *ExoTargetsClient) Status() error {
	path, err := utils.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Printf("=== exotargets status ===\n")
	fmt.Printf("Config file: %s\n", path)
	fmt.Printf("Archive: %s (%s)\n", c.config.Archive.URL, c.config.Archive.Table)
	fmt.Printf("Data directory: %s\n", c.config.Paths.DataDir)
	fmt.Printf("Output directory: %s\n", c.config.Paths.OutputDir)
	fmt.Printf("Catalogues: %v\n", c.config.Paths.Catalogues)
	return nil
}

// run records a finished analysis. Failed results are recorded as well so
// the results directory shows what was attempted.
func (c *ExoTargetsClient) run(result *types.AnalysisResult, err error) (*types.AnalysisResult, error) {
	if result != nil {
		if saveErr := c.saveResults(result); saveErr != nil {
			logger.Named("client").Warn().Err(saveErr).Str("analysis", result.Type).Msg("failed to save analysis result")
		}
	}
	return result, err
}

func (c *ExoTargetsClient) saveResults(result *types.AnalysisResult) error {
	out := *result
	out.Summary = make(map[string]any, len(result.Summary))
	for k, v := range result.Summary {
		// JSON has no NaN
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		out.Summary[k] = v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Join(c.config.Paths.OutputDir, resultsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, result.Type+".json"), data, 0644)
}
