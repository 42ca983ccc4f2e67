package habitable

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exotargets/internal/types"
)

func TestParseBoundary(t *testing.T) {
	for in, want := range map[string]Boundary{
		"oi":  OptimisticInner,
		"CI":  ConservativeInner,
		"Co":  ConservativeOuter,
		" oo": OptimisticOuter,
	} {
		got, err := ParseBoundary(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseBoundary("mid")
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestSolarBoundaries(t *testing.T) {
	b := BoundsAt(5780, 1)

	assert.InDelta(t, 0.7503, b.OptimisticInner, 1e-3)
	assert.InDelta(t, 0.9813, b.ConservativeInner, 1e-3)
	assert.InDelta(t, 1.6886, b.ConservativeOuter, 1e-3)
	assert.InDelta(t, 1.7658, b.OptimisticOuter, 1e-3)

	assert.True(t, b.Contains(1.0, false))
	assert.False(t, b.Contains(0.8, false))
	assert.True(t, b.Contains(0.8, true))
}

func TestMDwarfBoundaries(t *testing.T) {
	b := BoundsAt(3000, 0.01)

	assert.InDelta(t, 0.08174, b.OptimisticInner, 1e-4)
	assert.InDelta(t, 0.10755, b.ConservativeInner, 1e-4)
	assert.InDelta(t, 0.20782, b.ConservativeOuter, 1e-4)
	assert.InDelta(t, 0.22094, b.OptimisticOuter, 1e-4)
}

func TestBoundaryOrdering(t *testing.T) {
	for teff := MinCalibratedTeff; teff <= MaxCalibratedTeff; teff += 50 {
		b := BoundsAt(teff, 1)
		assert.LessOrEqual(t, b.OptimisticInner, b.ConservativeInner, "teff %v", teff)
		assert.LessOrEqual(t, b.ConservativeInner, b.ConservativeOuter, "teff %v", teff)
		assert.LessOrEqual(t, b.ConservativeOuter, b.OptimisticOuter, "teff %v", teff)
	}
}

func TestMonotonicInTemperature(t *testing.T) {
	// Hotter stars need more flux to trigger each limit, so at fixed
	// luminosity every boundary moves inward.
	for _, b := range Boundaries {
		prevFlux, err := EffectiveFlux(b, 2600)
		require.NoError(t, err)
		prevDist, err := Distance(b, 2600, 1)
		require.NoError(t, err)
		for teff := 2650.0; teff <= 6000; teff += 50 {
			flux, _ := EffectiveFlux(b, teff)
			dist, _ := Distance(b, teff, 1)
			assert.GreaterOrEqual(t, flux, prevFlux, "%s at %v K", b, teff)
			assert.LessOrEqual(t, dist, prevDist, "%s at %v K", b, teff)
			prevFlux, prevDist = flux, dist
		}
	}
}

func TestUnknownBoundary(t *testing.T) {
	d, err := Distance(Boundary("mid"), 5780, 1)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
	assert.True(t, math.IsNaN(d))

	_, err = EffectiveFlux(Boundary("mid"), 5780)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	d, err = Distance(ConservativeInner, 5780, 1)
	require.NoError(t, err)
	assert.InDelta(t, BoundsAt(5780, 1).ConservativeInner, d, 1e-12)
}

func TestDistances(t *testing.T) {
	d, err := Distances(ConservativeInner, []float64{5780, 3000}, []float64{1, 0.01})
	require.NoError(t, err)
	assert.InDelta(t, 0.9813, d[0], 1e-3)
	assert.InDelta(t, 0.10755, d[1], 1e-4)

	_, err = Distances(ConservativeInner, []float64{5780}, []float64{1, 2})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = Distances(Boundary("xx"), nil, nil)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestCalibrated(t *testing.T) {
	assert.True(t, Calibrated(2600))
	assert.True(t, Calibrated(7200))
	assert.False(t, Calibrated(2599))
	assert.False(t, Calibrated(9000))

	// outside the calibration the fit is still evaluated
	assert.False(t, math.IsNaN(BoundsAt(9000, 10).ConservativeInner))
}

func TestPlotableBounds(t *testing.T) {
	tbl, err := PlotableBounds(2600, 7200, 0.001, 5, 11)
	require.NoError(t, err)

	assert.Equal(t, 11, tbl.Len())
	assert.Equal(t, []string{"teff", "lum", "oi", "ci", "co", "oo"}, tbl.Names())

	teff, err := tbl.Floats("teff")
	require.NoError(t, err)
	assert.Equal(t, 2600.0, teff[0])
	assert.Equal(t, 7200.0, teff[10])
	assert.InDelta(t, 3060.0, teff[1], 1e-9)

	ci, err := tbl.Floats("ci")
	require.NoError(t, err)
	want, err := Distance(ConservativeInner, 2600, 0.001)
	require.NoError(t, err)
	assert.InDelta(t, want, ci[0], 1e-12)

	_, err = PlotableBounds(2600, 7200, 1, 1, 1)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}
