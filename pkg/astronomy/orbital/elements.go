package orbital

import (
	"math"

	"github.com/oxygene76/exotargets/pkg/astronomy/units"
)

// Elements represents the orbital elements an exoplanet catalogue reports.
// Unknown values are NaN.
type Elements struct {
	PeriodDays      float64 // P - orbital period (days)
	SemiMajorAxisAU float64 // a - semi-major axis (AU)
	StellarMass     float64 // M* - host mass (M☉)
}

// SemiMajorAxis returns the semi-major axis in AU from Kepler's third law,
// neglecting the planet mass.
func SemiMajorAxis(periodDays, stellarMass float64) float64 {
	mu := units.G * units.SolarMasses(stellarMass)
	p := units.Days(periodDays)
	a := math.Cbrt(mu * p * p / (4 * math.Pi * math.Pi))
	return units.ToAstronomicalUnits(a)
}

// Period returns the orbital period in days from Kepler's third law
func Period(aAU, stellarMass float64) float64 {
	mu := units.G * units.SolarMasses(stellarMass)
	a := units.AstronomicalUnits(aAU)
	return 2 * math.Pi * math.Sqrt(a*a*a/mu) / units.Day
}

// Insolation returns the bolometric flux received at aAU from a star of
// luminosity lum (L☉), in units of the solar constant.
func Insolation(lum, aAU float64) float64 {
	return lum / (aAU * aAU)
}

// Complete fills a missing semi-major axis or period from the other one when
// the host mass is known. Elements already present are never overwritten.
func (e Elements) Complete() Elements {
	if !known(e.StellarMass) {
		return e
	}
	switch {
	case !known(e.SemiMajorAxisAU) && known(e.PeriodDays):
		e.SemiMajorAxisAU = SemiMajorAxis(e.PeriodDays, e.StellarMass)
	case !known(e.PeriodDays) && known(e.SemiMajorAxisAU):
		e.PeriodDays = Period(e.SemiMajorAxisAU, e.StellarMass)
	}
	return e
}

func known(v float64) bool {
	return !math.IsNaN(v) && v > 0
}
