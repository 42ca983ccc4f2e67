// Package spectroscopy computes the observability metrics of Kempton et al.
// (2018) and the transit signal estimates used to rank targets for
// atmospheric characterisation.
//
// Inputs use catalogue units (R⊕, M⊕, R☉, AU, K, magnitudes); every
// intermediate is SI. Nothing is guarded: zero or negative inputs yield
// NaN or Inf, which is how missing catalogue values propagate.
package spectroscopy

import (
	"math"

	"github.com/oxygene76/exotargets/pkg/astronomy/units"
)

// Mean molecular weights of the two reference atmospheres
const (
	PrimaryMu   = 2.0  // H2/He dominated
	SecondaryMu = 25.0 // high metallicity / Earth-like
)

const (
	esmNormalisation = 4.29e6
	esmWavelength    = 7.5 * units.Micron
	daysideFactor    = 1.1
	scaleHeights     = 5.0
)

// EquilibriumTemperature returns the zero-albedo, full-redistribution
// equilibrium temperature (K) of a planet at aAU from a star of temperature
// tStar (K) and radius rStar (R☉).
func EquilibriumTemperature(tStar, rStar, aAU float64) float64 {
	return tStar * math.Sqrt(units.SolarRadii(rStar)/units.AstronomicalUnits(aAU)) * math.Pow(0.25, 0.25)
}

// ScaleFactor returns the TSM normalisation for a planet radius in R⊕.
// Planets larger than 10 R⊕ share the sub-Saturn value.
func ScaleFactor(rp float64) float64 {
	switch {
	case rp <= 1.5:
		return 0.190
	case rp <= 2.75:
		return 1.26
	case rp <= 4.0:
		return 1.28
	default:
		return 1.15
	}
}

// TSM returns the transmission spectroscopy metric, rounded to the nearest integer
func TSM(rp, mp, teq, rStar, jmag float64) float64 {
	v := ScaleFactor(rp) * rp * rp * rp * teq / (mp * rStar * rStar) * math.Pow(10, -jmag/5)
	return math.Round(v)
}

// ESM returns the emission spectroscopy metric, rounded to the nearest integer
func ESM(rp, teq, rStar, tStar, kmag float64) float64 {
	ratio := units.PlanckLambda(daysideFactor*teq, esmWavelength) / units.PlanckLambda(tStar, esmWavelength)
	area := units.EarthRadii(rp) / units.SolarRadii(rStar)
	v := esmNormalisation * ratio * area * area * math.Pow(10, -kmag/5)
	return math.Round(v)
}

// TransitDepth returns the transit depth in percent
func TransitDepth(rp, rStar float64) float64 {
	ratio := units.EarthRadii(rp) / units.SolarRadii(rStar)
	return ratio * ratio * 100
}

// SurfaceGravity returns the surface gravity in m s⁻²
func SurfaceGravity(mp, rp float64) float64 {
	r := units.EarthRadii(rp)
	return units.G * units.EarthMasses(mp) / (r * r)
}

// ScaleHeight returns the atmospheric scale height in m
func ScaleHeight(teq, g, mu float64) float64 {
	return units.Boltzmann * teq / (g * mu * units.AtomicMass)
}

// AtmosphericSignal returns the transit depth modulation of five scale
// heights of an atmosphere with mean molecular weight mu, in ppm, rounded to
// the nearest integer.
func AtmosphericSignal(mu, rp, mp, teq, rStar float64) float64 {
	h := ScaleHeight(teq, SurfaceGravity(mp, rp), mu)
	rs := units.SolarRadii(rStar)
	v := scaleHeights * 2 * units.EarthRadii(rp) * h / (rs * rs) * 1e6
	return math.Round(v)
}
