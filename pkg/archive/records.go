package archive

import (
	"math"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/table"
)

// Archive column names
const (
	ColName     = "pl_name"
	ColHost     = "hostname"
	ColPeriod   = "pl_orbper"
	ColSMA      = "pl_orbsmax"
	ColRadius   = "pl_rade"
	ColMass     = "pl_masse"
	ColBestMass = "pl_bmasse"
	ColEqTemp   = "pl_eqt"
	ColTeff     = "st_teff"
	ColStRadius = "st_rad"
	ColStMass   = "st_mass"
	ColJMag     = "sy_jmag"
	ColKMag     = "sy_kmag"
	ColDistance = "sy_dist"
	ColPlanets  = "sy_pnum"
)

// Records projects an archive result table onto records. Only pl_name is
// required; absent parameters are NaN. The mass falls back to pl_bmasse when
// pl_masse is not selected.
func Records(t *table.Table) ([]types.ArchiveRecord, error) {
	names, err := t.Strings(ColName)
	if err != nil {
		return nil, err
	}
	hosts := stringsOrEmpty(t, ColHost)

	massCol := ColMass
	if !t.Has(ColMass) && t.Has(ColBestMass) {
		massCol = ColBestMass
	}

	period := measurements(t, ColPeriod)
	sma := measurements(t, ColSMA)
	radius := measurements(t, ColRadius)
	mass := measurements(t, massCol)
	teq := measurements(t, ColEqTemp)
	teff := measurements(t, ColTeff)
	srad := measurements(t, ColStRadius)
	smass := measurements(t, ColStMass)
	jmag := measurements(t, ColJMag)
	kmag := measurements(t, ColKMag)
	dist := measurements(t, ColDistance)
	pnum := floatsOrNaN(t, ColPlanets)

	recs := make([]types.ArchiveRecord, t.Len())
	for i := range recs {
		recs[i] = types.ArchiveRecord{
			PlanetName:    names[i],
			HostName:      hosts[i],
			OrbitalPeriod: period(i),
			SemiMajorAxis: sma(i),
			Radius:        radius(i),
			Mass:          mass(i),
			EqTemperature: teq(i),
			StellarTeff:   teff(i),
			StellarRadius: srad(i),
			StellarMass:   smass(i),
			JMag:          jmag(i),
			KMag:          kmag(i),
			Distance:      dist(i),
		}
		if !math.IsNaN(pnum[i]) {
			recs[i].PlanetCount = int(pnum[i])
		}
	}
	return recs, nil
}

// measurements returns an accessor for a parameter and its err1, err2 and
// lim companion columns
func measurements(t *table.Table, name string) func(int) types.Measurement {
	val := floatsOrNaN(t, name)
	err1 := floatsOrNaN(t, name+"err1")
	err2 := floatsOrNaN(t, name+"err2")
	lim := floatsOrNaN(t, name+"lim")
	return func(i int) types.Measurement {
		m := types.Measurement{Value: val[i], Err1: err1[i], Err2: err2[i]}
		if !math.IsNaN(lim[i]) {
			m.Limit = int(lim[i])
		}
		return m
	}
}

func floatsOrNaN(t *table.Table, name string) []float64 {
	if vals, err := t.Floats(name); err == nil {
		return vals
	}
	vals := make([]float64, t.Len())
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}

func stringsOrEmpty(t *table.Table, name string) []string {
	if vals, err := t.Strings(name); err == nil {
		return vals
	}
	return make([]string, t.Len())
}
