package types

import (
	"math"
	"time"
)

// ObservationType is the kind of a planned observation
type ObservationType string

const (
	Transit ObservationType = "Transit"
	Eclipse ObservationType = "Eclipse"
)

// Target represents one entry of an observation catalogue
type Target struct {
	Name            string          `json:"name"`
	Instrument      string          `json:"instrument"`
	Type            ObservationType `json:"type"`
	RadiusEarth     float64         `json:"radius_earth"`    // R⊕
	EAPMonths       int             `json:"eap_months"`      // exclusive access period
	SemiMajorAxisAU float64         `json:"semi_major_axis"` // AU
	StellarTeffK    float64         `json:"stellar_teff"`    // K
	Cycle           int             `json:"cycle,omitempty"` // proposal cycle, 0 when unknown
	Dates           []time.Time     `json:"dates,omitempty"` // observation dates when known
}

// Measurement is a catalogue value with optional asymmetric error bars and a
// limit flag (1 upper limit, -1 lower limit, 0 measured). Missing values are NaN.
type Measurement struct {
	Value float64 `json:"value"`
	Err1  float64 `json:"err1"`
	Err2  float64 `json:"err2"`
	Limit int     `json:"limit"`
}

// Missing returns a Measurement with every component unset
func Missing() Measurement {
	return Measurement{Value: math.NaN(), Err1: math.NaN(), Err2: math.NaN()}
}

// Valid reports whether the value is present
func (m Measurement) Valid() bool {
	return !math.IsNaN(m.Value)
}

// ArchiveRecord represents one planet/star parameter row from the exoplanet archive
type ArchiveRecord struct {
	PlanetName string `json:"pl_name"`
	HostName   string `json:"hostname"`

	OrbitalPeriod Measurement `json:"pl_orbper"`  // days
	SemiMajorAxis Measurement `json:"pl_orbsmax"` // AU
	Radius        Measurement `json:"pl_rade"`    // R⊕
	Mass          Measurement `json:"pl_masse"`   // M⊕
	EqTemperature Measurement `json:"pl_eqt"`     // K

	StellarTeff   Measurement `json:"st_teff"` // K
	StellarRadius Measurement `json:"st_rad"`  // R☉
	StellarMass   Measurement `json:"st_mass"` // M☉
	JMag          Measurement `json:"sy_jmag"`
	KMag          Measurement `json:"sy_kmag"`
	Distance      Measurement `json:"sy_dist"` // pc
	PlanetCount   int         `json:"sy_pnum"`
}

// MetricRow holds the spectroscopy metrics derived from one ArchiveRecord
type MetricRow struct {
	PlanetName        string  `json:"pl_name"`
	EqTemperature     float64 `json:"pl_eqt"`      // K, value actually used
	EqTemperatureFill bool    `json:"pl_eqt_fill"` // true when computed from stellar parameters
	TSM               float64 `json:"TSM"`
	ESM               float64 `json:"ESM"`
	TransitDepth      float64 `json:"td_perc"`      // percent
	PrimarySignal     float64 `json:"sig_prim_ppm"` // μ = 2
	SecondarySignal   float64 `json:"sig_seco_ppm"` // μ = 25
	PrimaryHeight     float64 `json:"H_prim_km"`    // scale height at μ = 2
	SecondaryHeight   float64 `json:"H_seco_km"`    // scale height at μ = 25
}
