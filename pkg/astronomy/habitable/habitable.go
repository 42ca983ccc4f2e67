// Package habitable computes circumstellar habitable-zone boundaries from the
// Kopparapu et al. (2013, with erratum) fit of effective stellar flux against
// stellar effective temperature.
package habitable

import (
	"math"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/table"
)

// Boundary identifies one of the four habitable-zone edges
type Boundary string

const (
	OptimisticInner   Boundary = "oi" // recent Venus
	ConservativeInner Boundary = "ci" // runaway greenhouse
	ConservativeOuter Boundary = "co" // maximum greenhouse
	OptimisticOuter   Boundary = "oo" // early Mars
)

// Boundaries lists every boundary from the innermost to the outermost
var Boundaries = []Boundary{OptimisticInner, ConservativeInner, ConservativeOuter, OptimisticOuter}

// Temperature range the fit was calibrated on, in K
const (
	MinCalibratedTeff = 2600.0
	MaxCalibratedTeff = 7200.0
	solarTeff         = 5780.0
)

type fit struct {
	sun    float64
	coeffs [4]float64
}

var fits = map[Boundary]fit{
	OptimisticInner:   {1.7763, [4]float64{1.4335e-4, 3.3954e-9, -7.6364e-12, -1.1950e-15}},
	ConservativeInner: {1.0385, [4]float64{1.2456e-4, 1.4612e-8, -7.6345e-12, -1.7511e-15}},
	ConservativeOuter: {0.3507, [4]float64{5.9578e-5, 1.6707e-9, -3.0058e-12, -5.1925e-16}},
	OptimisticOuter:   {0.3207, [4]float64{5.4471e-5, 1.5275e-9, -2.1709e-12, -3.8282e-16}},
}

// ParseBoundary accepts oi, ci, co or oo in any case
func ParseBoundary(s string) (Boundary, error) {
	b := Boundary(strings.ToLower(strings.TrimSpace(s)))
	if _, err := lookup(b); err != nil {
		return "", err
	}
	return b, nil
}

// Bounds holds the four boundary distances of one star, in AU
type Bounds struct {
	OptimisticInner   float64 `json:"oi"`
	ConservativeInner float64 `json:"ci"`
	ConservativeOuter float64 `json:"co"`
	OptimisticOuter   float64 `json:"oo"`
}

// Contains reports whether aAU lies within the conservative or, when
// optimistic is set, the optimistic zone.
func (b Bounds) Contains(aAU float64, optimistic bool) bool {
	if optimistic {
		return aAU >= b.OptimisticInner && aAU <= b.OptimisticOuter
	}
	return aAU >= b.ConservativeInner && aAU <= b.ConservativeOuter
}

func lookup(b Boundary) (fit, error) {
	f, ok := fits[b]
	if !ok {
		return fit{}, errorsmod.Wrapf(types.ErrInvalidArgument, "unknown habitable zone boundary %q", b)
	}
	return f, nil
}

func (f fit) flux(teff float64) float64 {
	t := teff - solarTeff
	return f.sun + f.coeffs[0]*t + f.coeffs[1]*t*t + f.coeffs[2]*t*t*t + f.coeffs[3]*t*t*t*t
}

func (f fit) distance(teff, lum float64) float64 {
	return math.Sqrt(lum / f.flux(teff))
}

// EffectiveFlux returns the stellar flux, relative to the solar constant, at
// which boundary b lies for a star of temperature teff (K).
func EffectiveFlux(b Boundary, teff float64) (float64, error) {
	f, err := lookup(b)
	if err != nil {
		return math.NaN(), err
	}
	return f.flux(teff), nil
}

// Distance returns the distance in AU of boundary b around a star of
// temperature teff (K) and luminosity lum (L☉). Temperatures outside the
// calibrated range are extrapolated.
func Distance(b Boundary, teff, lum float64) (float64, error) {
	f, err := lookup(b)
	if err != nil {
		return math.NaN(), err
	}
	return f.distance(teff, lum), nil
}

// Distances applies Distance elementwise
func Distances(b Boundary, teffs, lums []float64) ([]float64, error) {
	f, err := lookup(b)
	if err != nil {
		return nil, err
	}
	if len(teffs) != len(lums) {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument,
			"%d temperatures but %d luminosities", len(teffs), len(lums))
	}
	out := make([]float64, len(teffs))
	for i := range teffs {
		out[i] = f.distance(teffs[i], lums[i])
	}
	return out, nil
}

// BoundsAt returns all four boundaries of one star
func BoundsAt(teff, lum float64) Bounds {
	return Bounds{
		OptimisticInner:   fits[OptimisticInner].distance(teff, lum),
		ConservativeInner: fits[ConservativeInner].distance(teff, lum),
		ConservativeOuter: fits[ConservativeOuter].distance(teff, lum),
		OptimisticOuter:   fits[OptimisticOuter].distance(teff, lum),
	}
}

// Calibrated reports whether teff is inside the range the fit is valid for
func Calibrated(teff float64) bool {
	return teff >= MinCalibratedTeff && teff <= MaxCalibratedTeff
}

// PlotableBounds samples n stars whose temperature and luminosity both run
// linearly from the minimum to the maximum, and returns a table with columns
// teff, lum, oi, ci, co and oo.
func PlotableBounds(tMin, tMax, lMin, lMax float64, n int) (*table.Table, error) {
	if n < 2 {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument, "need at least 2 samples, got %d", n)
	}
	teffs := floats.Span(make([]float64, n), tMin, tMax)
	lums := floats.Span(make([]float64, n), lMin, lMax)

	t := table.New()
	if err := t.SetFloats("teff", teffs); err != nil {
		return nil, err
	}
	if err := t.SetFloats("lum", lums); err != nil {
		return nil, err
	}
	for _, b := range Boundaries {
		d, err := Distances(b, teffs, lums)
		if err != nil {
			return nil, err
		}
		if err := t.SetFloats(string(b), d); err != nil {
			return nil, err
		}
	}
	return t, nil
}
