// Package units holds the physical constants and unit conversions shared by
// the astrophysics packages. Every quantity is SI unless the name says otherwise.
package units

import (
	"math"

	"gonum.org/v1/gonum/unit/constant"
)

// CODATA 2018 values as plain floats
const (
	G          = float64(constant.Gravitational)      // m³ kg⁻¹ s⁻²
	Boltzmann  = float64(constant.Boltzmann)          // J K⁻¹
	Planck     = float64(constant.Planck)             // J s
	Light      = float64(constant.LightSpeedInVacuum) // m s⁻¹
	AtomicMass = float64(constant.AtomicMass)         // kg
)

// IAU 2015 nominal values
const (
	SolarRadius = 6.957e8              // m
	EarthRadius = 6.3781e6             // m, equatorial
	EarthMass   = 5.972167867791379e24 // kg
	SolarMass   = 1.988409870698051e30 // kg
	AU          = 1.495978707e11       // m
	Day         = 86400.0              // s

	Micron = 1e-6 // m
)

// EarthRadii converts Earth radii to metres
func EarthRadii(r float64) float64 { return r * EarthRadius }

// SolarRadii converts solar radii to metres
func SolarRadii(r float64) float64 { return r * SolarRadius }

// EarthMasses converts Earth masses to kilograms
func EarthMasses(m float64) float64 { return m * EarthMass }

// SolarMasses converts solar masses to kilograms
func SolarMasses(m float64) float64 { return m * SolarMass }

// AstronomicalUnits converts AU to metres
func AstronomicalUnits(a float64) float64 { return a * AU }

// ToAstronomicalUnits converts metres to AU
func ToAstronomicalUnits(m float64) float64 { return m / AU }

// Days converts days to seconds
func Days(d float64) float64 { return d * Day }

// PlanckLambda returns the spectral radiance of a black body at temperature
// t (K) and wavelength lambda (m), multiplied by π (W m⁻³).
func PlanckLambda(t, lambda float64) float64 {
	num := 2 * math.Pi * Planck * Light * Light / math.Pow(lambda, 5)
	return num / math.Expm1(Planck*Light/(lambda*Boltzmann*t))
}
