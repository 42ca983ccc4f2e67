package analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/archive"
	"github.com/oxygene76/exotargets/pkg/astronomy/spectroscopy"
	"github.com/oxygene76/exotargets/pkg/table"
	"github.com/oxygene76/exotargets/pkg/utils"
)

const catalogueCSV = `Target Name,Instrument,Type,Radius [RE],EAP [mon],SMA [au],Teff [K],Observation Date(s) [MM/DD/YY]
GJ 1214 b,MIRI / LRS,Eclipse,2.74,12,0.0149,3250,07/20/22
GJ 1214 b,NIRSpec / G395H,Transit,2.74,12,0.0149,3250,08/01/22
LHS 1140 b,NIRSpec / BOTS,Transit,1.73,0,0.0936,3096,12/01/22; 7/5/23
WASP-39 b,NIRSpec / BOTS,Transit,14.2,0,0.0486,5400,07/10/22
TOI-270 d,NIRSpec / BOTS,Transit,2.13,0,,3506,01/31/23
`

const planetsCSV = `pl_name,pl_orbper,pl_orbsmax,pl_rade,pl_bmasse,pl_eqt,st_teff
GJ 1214 b,1.58040433,0.01490,2.742,8.17,596,3250
LHS 1140 b,24.73694,0.0936,1.730,5.60,,3096
`

const metricsCSV = `pl_name,hostname,pl_orbper,pl_orbsmax,pl_rade,pl_bmasse,pl_eqt,st_teff,st_rad,st_mass,sy_jmag,sy_kmag
P b,P,3.2,0.03,1.3,2.1,500,3500,0.4,0.4,9,8.5
Q b,Q,5.1,0.05,1.3,2.1,,3500,0.4,0.4,8,7.5
R b,R,7.0,0.06,1.8,,400,3400,0.3,0.3,10,9.5
`

type fakeArchive struct {
	result  *table.Table
	err     error
	queries []string
	names   []string
}

func (f *fakeArchive) Search(_ context.Context, adql string) (*table.Table, error) {
	f.queries = append(f.queries, adql)
	if f.err != nil {
		return nil, f.err
	}
	return f.result.Clone(), nil
}

func (f *fakeArchive) QueryPlanets(ctx context.Context, names []string) (*table.Table, error) {
	f.names = names
	return f.Search(ctx, archive.BuildQuery(names, nil, ""))
}

func readTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader(csv), table.ReadOptions{
		StringColumns: []string{archive.ColName, archive.ColHost},
	})
	require.NoError(t, err)
	return tbl
}

func setup(t *testing.T, arch *fakeArchive) (*Manager, *utils.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cat := filepath.Join(dir, "jwst_cycle1.csv")
	require.NoError(t, os.WriteFile(cat, []byte(catalogueCSV), 0644))

	cfg := utils.DefaultConfig()
	cfg.Paths.DataDir = dir
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Paths.Catalogues = []string{cat}
	cfg.HZ.Points = 5
	return NewManager(arch, cfg), cfg, cat
}

func TestReduce(t *testing.T) {
	m, cfg, _ := setup(t, nil)

	res, err := m.Reduce(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 5, res.Summary["input_rows"])
	assert.InDelta(t, 2.235, res.Summary["radius_mean"], 1e-9)
	assert.Equal(t, "Transit", res.Metadata.Parameters["type"])

	require.Len(t, res.Metadata.OutputFiles, 1)
	assert.Equal(t, cfg.OutputPath(ReducedOutput), res.Metadata.OutputFiles[0])

	out, err := table.ReadFile(res.Metadata.OutputFiles[0], table.ReadOptions{StringColumns: []string{"Target Name"}})
	require.NoError(t, err)
	names, _ := out.Strings("Target Name")
	assert.Equal(t, []string{"GJ 1214 b", "LHS 1140 b"}, names)
}

func TestReduceMissingCatalogue(t *testing.T) {
	m, _, _ := setup(t, nil)
	res, err := m.Reduce([]string{filepath.Join(t.TempDir(), "none.csv")}, "")
	require.Error(t, err)
	assert.Equal(t, "failed", res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestCorrelate(t *testing.T) {
	arch := &fakeArchive{result: readTable(t, planetsCSV)}
	m, _, _ := setup(t, arch)

	res, err := m.Correlate(context.Background(), nil, "")
	require.NoError(t, err)

	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 3, res.Summary["matched"])
	assert.Equal(t, 2, res.Summary["unmatched"])
	assert.Equal(t, 3, res.Summary["small"])
	assert.Equal(t, 0, res.Summary["large"])
	assert.Len(t, res.Metadata.OutputFiles, 3)
	assert.True(t, strings.HasSuffix(res.Metadata.OutputFiles[1], "epa_correlation_small.tsv"))
	assert.Contains(t, res.Metadata.Query, "'TOI-270 d'")
	assert.Len(t, arch.names, 5)
	for _, p := range res.Metadata.OutputFiles {
		assert.FileExists(t, p)
	}
}

func TestCorrelateArchiveError(t *testing.T) {
	arch := &fakeArchive{err: types.ErrQuery}
	m, _, _ := setup(t, arch)

	res, err := m.Correlate(context.Background(), nil, "")
	assert.True(t, errors.Is(err, types.ErrQuery))
	assert.Equal(t, "failed", res.Status)
}

func TestMetrics(t *testing.T) {
	arch := &fakeArchive{result: readTable(t, metricsCSV)}
	m, cfg, _ := setup(t, arch)

	res, err := m.Metrics(context.Background(), "", "")
	require.NoError(t, err)

	require.Len(t, arch.queries, 1)
	assert.Equal(t, archive.MetricsQuery(cfg.Archive.Table, cfg.Constraints.MaxRadius), arch.queries[0])
	assert.Equal(t, 3, res.Summary["queried"])
	assert.Equal(t, 1, res.Summary["teq_filled"])
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "Q b", res.Summary["best_tsm"])

	path := cfg.OutputPath(cfg.Metrics.Output)
	out, err := table.ReadFile(path, table.ReadOptions{
		StringColumns: []string{archive.ColName, archive.ColHost, spectroscopy.ColEqFilled},
	})
	require.NoError(t, err)
	tsm, _ := out.Floats(spectroscopy.ColTSM)
	assert.Equal(t, 10.0, tsm[1])
	assert.Greater(t, tsm[0], tsm[1])
	filled, _ := out.Strings(spectroscopy.ColEqFilled)
	assert.Equal(t, []string{"calc", "archive"}, filled)

	sys, err := m.System(path, "P")
	require.NoError(t, err)
	assert.Equal(t, 1, sys.Len())
}

func TestMetricsQueryFile(t *testing.T) {
	arch := &fakeArchive{result: readTable(t, metricsCSV)}
	m, _, _ := setup(t, arch)

	qf := filepath.Join(t.TempDir(), "tsm.adql")
	require.NoError(t, os.WriteFile(qf, []byte("SELECT *\nFROM pscomppars\n"), 0644))
	out := filepath.Join(t.TempDir(), "custom", "metrics.tsv")

	res, err := m.Metrics(context.Background(), qf, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM pscomppars"}, arch.queries)
	assert.Equal(t, []string{qf}, res.Metadata.InputFiles)
	assert.FileExists(t, out)
}

func TestHZ(t *testing.T) {
	m, cfg, _ := setup(t, nil)

	res, err := m.HZ("", &Star{Teff: 5780, Luminosity: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Rows)
	assert.InDelta(t, 0.9813, res.Summary["ci"], 1e-3)
	assert.InDelta(t, 1.6886, res.Summary["co"], 1e-3)
	assert.FileExists(t, cfg.OutputPath(HZOutput))
	assert.NotContains(t, res.Summary, "insolation")

	res, err = m.HZ("", &Star{Teff: 5780, Luminosity: 1, SemiMajorAxis: 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 1.5625, res.Summary["insolation"], 1e-12)
	assert.Equal(t, false, res.Summary["in_conservative_hz"])
	assert.Equal(t, true, res.Summary["in_optimistic_hz"])

	cfg.HZ.Points = 1
	_, err = m.HZ("", nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestSchedule(t *testing.T) {
	m, cfg, cat := setup(t, nil)

	res, err := m.Schedule(cat, "")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Summary["visits"])
	assert.Equal(t, 4, res.Summary["selected"])
	assert.Equal(t, 3, res.Summary["targets"])
	assert.Equal(t, "2022-08-01", res.Summary["first_visit"])
	assert.Equal(t, "2023-07-05", res.Summary["last_visit"])
	assert.Equal(t, 4, res.Rows)
	assert.FileExists(t, cfg.OutputPath(ScheduleOutput))
}

func TestSpectrum(t *testing.T) {
	m, cfg, _ := setup(t, nil)

	in := filepath.Join(t.TempDir(), "wasp39b.txt")
	body := strings.Repeat("# header\n", 10) + "0.85 0.01 0.0213 0.00012 0.00011\n0.87 0.01 0.0215 0.0001 0.00009\n"
	require.NoError(t, os.WriteFile(in, []byte(body), 0644))

	res, err := m.Spectrum(in, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, []string{cfg.OutputPath("wasp39b_spectrum.dat")}, res.Metadata.OutputFiles)
}

func TestDescribe(t *testing.T) {
	s := map[string]any{}
	describe(s, "x", []float64{1, 3, math.NaN()})
	assert.Equal(t, 2.0, s["x_mean"])
	assert.InDelta(t, 1.4142, s["x_std"], 1e-4)

	describe(s, "empty", nil)
	assert.NotContains(t, s, "empty_mean")
}

func TestSystemWithMissingValues(t *testing.T) {
	tbl := table.New()
	require.NoError(t, tbl.SetStrings(archive.ColName, []string{"TOI-178 b", "TOI-178 c", "K2-18 b"}))
	require.NoError(t, tbl.SetFloats(archive.ColKMag, []float64{math.NaN(), 8.7, 8.9}))
	require.NoError(t, tbl.SetStrings(archive.ColHost, []string{"TOI-178", "TOI-178", "K2-18"}))
	require.NoError(t, tbl.SetFloats(spectroscopy.ColTSM, []float64{50, 60, 70}))

	path := filepath.Join(t.TempDir(), "tsm_esm.tsv")
	require.NoError(t, table.WriteFile(path, tbl))

	sys, err := NewManager(nil, nil).System(path, "TOI-178")
	require.NoError(t, err)
	assert.Equal(t, 2, sys.Len())
	tsm, err := sys.Floats(spectroscopy.ColTSM)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 60}, tsm)
}
