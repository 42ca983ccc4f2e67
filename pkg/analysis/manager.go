package analysis

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/archive"
	"github.com/oxygene76/exotargets/pkg/astronomy/habitable"
	"github.com/oxygene76/exotargets/pkg/astronomy/orbital"
	"github.com/oxygene76/exotargets/pkg/astronomy/spectroscopy"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/schedule"
	"github.com/oxygene76/exotargets/pkg/spectrum"
	"github.com/oxygene76/exotargets/pkg/table"
	"github.com/oxygene76/exotargets/pkg/targets"
	"github.com/oxygene76/exotargets/pkg/utils"
)

// Default output file names, relative to the configured output directory
const (
	ReducedOutput     = "reduced_targets.tsv"
	CorrelationOutput = "epa_correlation.tsv"
	HZOutput          = "hz_bounds.tsv"
	ScheduleOutput    = "schedule_timeline.tsv"
)

// Archive answers ADQL queries against the exoplanet archive
type Archive interface {
	Search(ctx context.Context, adql string) (*table.Table, error)
	QueryPlanets(ctx context.Context, names []string) (*table.Table, error)
}

// Manager handles all analysis operations
type Manager struct {
	archive Archive
	config  *utils.Config
}

// NewManager creates a new analysis manager
func NewManager(archive Archive, config *utils.Config) *Manager {
	if config == nil {
		config = utils.DefaultConfig()
	}
	return &Manager{
		archive: archive,
		config:  config,
	}
}

// Star is a single host for habitable zone bounds. When SemiMajorAxis is
// set the planet's insolation and zone membership are reported too.
type Star struct {
	Teff          float64
	Luminosity    float64
	SemiMajorAxis float64 // AU
}

// Reduce concatenates the catalogues, applies the default reduction and
// writes the surviving targets. Without catalogues the configured ones are
// used.
func (m *Manager) Reduce(catalogues []string, output string) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	if len(catalogues) == 0 {
		catalogues = m.config.Paths.Catalogues
	}
	log.Info().Msgf("Starting target reduction on %d catalogue(s)", len(catalogues))
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisReduce, catalogues...)

	all, err := targets.ReadCatalogues(catalogues...)
	if err != nil {
		return result.Fail(err), fmt.Errorf("failed to load catalogues: %w", err)
	}

	c := m.TargetConstraints()
	result.Metadata.Parameters["type"] = c.Type
	result.Metadata.Parameters["dedup_by"] = c.DedupBy
	result.Metadata.Parameters["tracked"] = c.Tracked
	result.Metadata.Parameters["min_radius"] = c.MinRadius
	result.Metadata.Parameters["max_radius"] = c.MaxRadius

	reduced, err := targets.DefaultPipeline(c).Apply(all)
	if err != nil {
		return result.Fail(err), fmt.Errorf("target reduction failed: %w", err)
	}

	path := m.outputPath(output, ReducedOutput)
	if err := table.WriteFile(path, reduced); err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	result.Summary["input_rows"] = all.Len()
	if radii, err := reduced.Floats(targets.ColRadius); err == nil {
		describe(result.Summary, "radius", radii)
	}

	log.Info().Msgf("Target reduction completed in %v", time.Since(start))
	return result.Complete(reduced.Len()), nil
}

// Correlate queries the archive for every catalogue target and writes the
// correlated table. Plot-ready subsets split at the configured radius are
// written next to it with _small and _large suffixes.
func (m *Manager) Correlate(ctx context.Context, catalogues []string, output string) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	if len(catalogues) == 0 {
		catalogues = m.config.Paths.Catalogues
	}
	log.Info().Msgf("Starting archive correlation on %d catalogue(s)", len(catalogues))
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisCorrelate, catalogues...)

	cat, err := targets.ReadCatalogues(catalogues...)
	if err != nil {
		return result.Fail(err), fmt.Errorf("failed to load catalogues: %w", err)
	}
	names, err := cat.Strings(targets.ColName)
	if err != nil {
		return result.Fail(err), err
	}
	result.Metadata.Query = archive.BuildQuery(names, m.config.Archive.Columns, m.config.Archive.Table)

	arch, err := m.archive.QueryPlanets(ctx, names)
	if err != nil {
		return result.Fail(err), fmt.Errorf("archive query failed: %w", err)
	}

	corr, err := archive.Correlate(cat, arch)
	if err != nil {
		return result.Fail(err), fmt.Errorf("correlation failed: %w", err)
	}
	path := m.outputPath(output, CorrelationOutput)
	if err := table.WriteFile(path, corr); err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	plot, err := targets.CorrelatedPipeline(archive.ColName, []string{archive.ColRadius}).Apply(corr)
	if err != nil {
		return result.Fail(err), err
	}
	small, large, err := archive.SplitByRadius(plot, m.config.Metrics.SplitRadius)
	if err != nil {
		return result.Fail(err), err
	}
	for _, part := range []struct {
		suffix string
		t      *table.Table
	}{{"_small", small}, {"_large", large}} {
		p := withSuffix(path, part.suffix)
		if err := table.WriteFile(p, part.t); err != nil {
			return result.Fail(err), err
		}
		result.AddOutput(p)
	}

	matched, _ := corr.Strings(archive.ColName)
	n := 0
	for _, s := range matched {
		if s != "" {
			n++
		}
	}
	result.Summary["matched"] = n
	result.Summary["unmatched"] = len(matched) - n
	result.Summary["small"] = small.Len()
	result.Summary["large"] = large.Len()

	log.Info().Msgf("Archive correlation completed in %v", time.Since(start))
	return result.Complete(corr.Len()), nil
}

// Metrics runs an ADQL query, computes the spectroscopy metrics for every
// planet and writes the annotated table. Without a query file the configured
// one is read; without either the default transiting-planet query is used.
func (m *Manager) Metrics(ctx context.Context, queryFile, output string) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	if queryFile == "" {
		queryFile = m.config.Paths.QueryFile
	}
	var inputs []string
	if queryFile != "" {
		inputs = append(inputs, queryFile)
	}
	log.Info().Msg("Starting spectroscopy metrics")
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisMetrics, inputs...)

	adql := archive.MetricsQuery(m.config.Archive.Table, m.config.Constraints.MaxRadius)
	if queryFile != "" {
		q, err := archive.ReadQueryFile(queryFile)
		if err != nil {
			return result.Fail(err), err
		}
		adql = q
	}
	result.Metadata.Query = adql

	res, err := m.archive.Search(ctx, adql)
	if err != nil {
		return result.Fail(err), fmt.Errorf("archive query failed: %w", err)
	}
	recs, err := archive.Records(res)
	if err != nil {
		return result.Fail(err), err
	}
	rows := spectroscopy.Apply(recs)
	out, err := spectroscopy.Annotate(res, rows)
	if err != nil {
		return result.Fail(err), err
	}
	if m.config.Metrics.SortByTSM {
		if out, err = spectroscopy.SortByTSM(out); err != nil {
			return result.Fail(err), err
		}
	}

	path := m.outputPath(output, m.config.Metrics.Output)
	if err := table.WriteFile(path, out); err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	filled := 0
	tsm := make([]float64, len(rows))
	esm := make([]float64, len(rows))
	for i, r := range rows {
		if r.EqTemperatureFill {
			filled++
		}
		tsm[i] = r.TSM
		esm[i] = r.ESM
	}
	result.Summary["queried"] = res.Len()
	result.Summary["teq_filled"] = filled
	describe(result.Summary, "tsm", tsm)
	describe(result.Summary, "esm", esm)
	if m.config.Metrics.SortByTSM && out.Len() > 0 {
		names, _ := out.Strings(archive.ColName)
		result.Summary["best_tsm"] = names[0]
	}

	log.Info().Msgf("Spectroscopy metrics completed in %v", time.Since(start))
	return result.Complete(out.Len()), nil
}

// System reads a metrics table written by Metrics and returns the rows of
// one host star
func (m *Manager) System(metricsFile, host string) (*table.Table, error) {
	t, err := table.ReadFile(metricsFile, table.ReadOptions{
		StringColumns: []string{archive.ColName, archive.ColHost, spectroscopy.ColEqFilled},
	})
	if err != nil {
		return nil, err
	}
	return spectroscopy.System(t, host)
}

// HZ writes the boundary curves over the configured grid. When star is set
// its own bounds are added to the summary.
func (m *Manager) HZ(output string, star *Star) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	log.Info().Msg("Starting habitable zone calculation")
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisHZ)

	hz := m.config.HZ
	result.Metadata.Parameters["teff"] = []float64{hz.TeffMin, hz.TeffMax}
	result.Metadata.Parameters["lum"] = []float64{hz.LumMin, hz.LumMax}
	result.Metadata.Parameters["points"] = hz.Points

	grid, err := habitable.PlotableBounds(hz.TeffMin, hz.TeffMax, hz.LumMin, hz.LumMax, hz.Points)
	if err != nil {
		return result.Fail(err), err
	}
	path := m.outputPath(output, HZOutput)
	if err := table.WriteFile(path, grid); err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	if star != nil {
		if !habitable.Calibrated(star.Teff) {
			log.Warn().Float64("teff", star.Teff).Msg("effective temperature outside the calibrated range")
		}
		b := habitable.BoundsAt(star.Teff, star.Luminosity)
		result.Metadata.Parameters["star_teff"] = star.Teff
		result.Metadata.Parameters["star_lum"] = star.Luminosity
		result.Summary[string(habitable.OptimisticInner)] = b.OptimisticInner
		result.Summary[string(habitable.ConservativeInner)] = b.ConservativeInner
		result.Summary[string(habitable.ConservativeOuter)] = b.ConservativeOuter
		result.Summary[string(habitable.OptimisticOuter)] = b.OptimisticOuter
		if star.SemiMajorAxis > 0 {
			result.Metadata.Parameters["planet_sma"] = star.SemiMajorAxis
			result.Summary["insolation"] = orbital.Insolation(star.Luminosity, star.SemiMajorAxis)
			result.Summary["in_conservative_hz"] = b.Contains(star.SemiMajorAxis, false)
			result.Summary["in_optimistic_hz"] = b.Contains(star.SemiMajorAxis, true)
		}
	}

	log.Info().Msgf("Habitable zone calculation completed in %v", time.Since(start))
	return result.Complete(grid.Len()), nil
}

// Schedule explodes the observation dates of a catalogue, selects visits by
// the configured constraints and writes the timeline table
func (m *Manager) Schedule(catalogue, output string) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	log.Info().Msgf("Starting schedule on file: %s", catalogue)
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisSchedule, catalogue)

	t, err := targets.ReadCatalogue(catalogue)
	if err != nil {
		return result.Fail(err), fmt.Errorf("failed to load catalogue: %w", err)
	}
	visits, dates, err := schedule.ExplodeDates(t, targets.ColDates, m.config.Constraints.DateSeparator)
	if err != nil {
		return result.Fail(err), err
	}

	c := m.ScheduleConstraints()
	result.Metadata.Parameters["max_eap"] = *c.MaxEAP
	result.Metadata.Parameters["types"] = c.Types
	result.Metadata.Parameters["max_radius"] = *c.MaxRadius

	sel, selDates, err := schedule.Select(visits, dates, c)
	if err != nil {
		return result.Fail(err), err
	}
	timeline, err := schedule.Timeline(sel, selDates)
	if err != nil {
		return result.Fail(err), err
	}

	path := m.outputPath(output, ScheduleOutput)
	if err := table.WriteFile(path, timeline); err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	scheduled, err := schedule.Targets(sel, selDates)
	if err != nil {
		return result.Fail(err), err
	}
	result.Summary["visits"] = visits.Len()
	result.Summary["selected"] = sel.Len()
	result.Summary["targets"] = len(scheduled)
	if len(selDates) > 0 {
		first, last := selDates[0], selDates[0]
		for _, d := range selDates[1:] {
			if d.Before(first) {
				first = d
			}
			if d.After(last) {
				last = d
			}
		}
		result.Summary["first_visit"] = first.Format(time.DateOnly)
		result.Summary["last_visit"] = last.Format(time.DateOnly)
	}
	for _, tg := range scheduled {
		log.Debug().Str("target", tg.Name).Str("instrument", tg.Instrument).Int("visits", len(tg.Dates)).Msg("scheduled")
	}

	log.Info().Msgf("Schedule completed in %v", time.Since(start))
	return result.Complete(timeline.Len()), nil
}

// Spectrum converts a Eureka! spectrum to the TauREx input format
func (m *Manager) Spectrum(input, output string) (*types.AnalysisResult, error) {
	log := logger.Named("analysis")
	log.Info().Msgf("Starting spectrum conversion on file: %s", input)
	start := time.Now()
	result := types.NewAnalysisResult(types.AnalysisSpectrum, input)

	path := m.outputPath(output, spectrum.OutputName(input))
	n, err := spectrum.ConvertFile(input, path)
	if err != nil {
		return result.Fail(err), err
	}
	result.AddOutput(path)

	log.Info().Msgf("Spectrum conversion completed in %v", time.Since(start))
	return result.Complete(n), nil
}

// TargetConstraints returns the reduction constraints from the configuration
func (m *Manager) TargetConstraints() targets.Constraints {
	c := m.config.Constraints
	return targets.Constraints{
		Type:      c.Type,
		DedupBy:   c.DedupBy,
		Tracked:   c.Tracked,
		MinRadius: c.MinRadius,
		MaxRadius: c.MaxRadius,
	}
}

// ScheduleConstraints returns the visit selection from the configuration
func (m *Manager) ScheduleConstraints() schedule.Constraints {
	c := m.config.Constraints
	maxEAP, maxRadius := c.MaxEAP, c.MaxRadius
	sc := schedule.Constraints{
		MaxEAP:    &maxEAP,
		Types:     c.ScheduleTypes,
		MaxRadius: &maxRadius,
	}
	if c.MinRadius > 0 {
		minRadius := c.MinRadius
		sc.MinRadius = &minRadius
	}
	return sc
}

// outputPath places bare file names in the output directory; paths with a
// directory component are used as given
func (m *Manager) outputPath(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return m.config.OutputPath(name)
}

// describe adds mean and standard deviation of the finite values to summary
func describe(summary map[string]any, key string, vals []float64) {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return
	}
	summary[key+"_mean"] = stat.Mean(finite, nil)
	if len(finite) > 1 {
		summary[key+"_std"] = stat.StdDev(finite, nil)
	}
}

func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
