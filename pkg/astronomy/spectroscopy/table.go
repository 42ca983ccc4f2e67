package spectroscopy

import (
	"math"
	"sort"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/astronomy/orbital"
	"github.com/oxygene76/exotargets/pkg/table"
)

// Output column names, as the archive tooling names them
const (
	ColEqTemperature = "pl_eqt"
	ColEqFilled      = "pl_eqt_fill"
	ColTSM           = "TSM"
	ColESM           = "ESM"
	ColTransitDepth  = "td_perc"
	ColPrimary       = "sig_prim_ppm"
	ColSecondary     = "sig_seco_ppm"
	ColPrimaryH      = "H_prim_km"
	ColSecondaryH    = "H_seco_km"
	ColHost          = "hostname"
)

// Compute derives the metrics of one archive record. A missing equilibrium
// temperature is replaced by EquilibriumTemperature of the host; a missing
// semi-major axis for that is taken from the orbital period when the host
// mass is known.
func Compute(rec types.ArchiveRecord) types.MetricRow {
	row := types.MetricRow{
		PlanetName:    rec.PlanetName,
		EqTemperature: rec.EqTemperature.Value,
	}

	if math.IsNaN(row.EqTemperature) {
		el := orbital.Elements{
			PeriodDays:      rec.OrbitalPeriod.Value,
			SemiMajorAxisAU: rec.SemiMajorAxis.Value,
			StellarMass:     rec.StellarMass.Value,
		}.Complete()
		row.EqTemperature = EquilibriumTemperature(rec.StellarTeff.Value, rec.StellarRadius.Value, el.SemiMajorAxisAU)
		row.EqTemperatureFill = !math.IsNaN(row.EqTemperature)
	}

	rp := rec.Radius.Value
	mp := rec.Mass.Value
	rs := rec.StellarRadius.Value
	teq := row.EqTemperature

	row.TSM = TSM(rp, mp, teq, rs, rec.JMag.Value)
	row.ESM = ESM(rp, teq, rs, rec.StellarTeff.Value, rec.KMag.Value)
	row.TransitDepth = TransitDepth(rp, rs)
	row.PrimarySignal = AtmosphericSignal(PrimaryMu, rp, mp, teq, rs)
	row.SecondarySignal = AtmosphericSignal(SecondaryMu, rp, mp, teq, rs)
	g := SurfaceGravity(mp, rp)
	row.PrimaryHeight = ScaleHeight(teq, g, PrimaryMu) / 1e3
	row.SecondaryHeight = ScaleHeight(teq, g, SecondaryMu) / 1e3
	return row
}

// Apply computes the metrics of every record, preserving order
func Apply(records []types.ArchiveRecord) []types.MetricRow {
	rows := make([]types.MetricRow, len(records))
	for i, rec := range records {
		rows[i] = Compute(rec)
	}
	return rows
}

// Annotate returns a copy of t with the metric columns set from rows, which
// must be aligned with t. The equilibrium temperature column is replaced by
// the value actually used.
func Annotate(t *table.Table, rows []types.MetricRow) (*table.Table, error) {
	n := len(rows)
	teq := make([]float64, n)
	filled := make([]string, n)
	tsm := make([]float64, n)
	esm := make([]float64, n)
	depth := make([]float64, n)
	prim := make([]float64, n)
	seco := make([]float64, n)
	primH := make([]float64, n)
	secoH := make([]float64, n)
	for i, r := range rows {
		teq[i] = r.EqTemperature
		if r.EqTemperatureFill {
			filled[i] = "calc"
		} else {
			filled[i] = "archive"
		}
		tsm[i] = r.TSM
		esm[i] = r.ESM
		depth[i] = r.TransitDepth
		prim[i] = r.PrimarySignal
		seco[i] = r.SecondarySignal
		primH[i] = r.PrimaryHeight
		secoH[i] = r.SecondaryHeight
	}

	out := t.Clone()
	for _, set := range []func() error{
		func() error { return out.SetFloats(ColEqTemperature, teq) },
		func() error { return out.SetStrings(ColEqFilled, filled) },
		func() error { return out.SetFloats(ColTSM, tsm) },
		func() error { return out.SetFloats(ColESM, esm) },
		func() error { return out.SetFloats(ColTransitDepth, depth) },
		func() error { return out.SetFloats(ColPrimary, prim) },
		func() error { return out.SetFloats(ColSecondary, seco) },
		func() error { return out.SetFloats(ColPrimaryH, primH) },
		func() error { return out.SetFloats(ColSecondaryH, secoH) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SortByTSM drops rows without a TSM and orders the rest by descending TSM.
// Ties keep their input order.
func SortByTSM(t *table.Table) (*table.Table, error) {
	tsm, err := t.Floats(ColTSM)
	if err != nil {
		return nil, err
	}
	idx := make([]int, 0, len(tsm))
	for i, v := range tsm {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return tsm[idx[a]] > tsm[idx[b]]
	})
	return t.Take(idx), nil
}

// System returns the rows of one host star
func System(t *table.Table, host string) (*table.Table, error) {
	hosts, err := t.Strings(ColHost)
	if err != nil {
		return nil, err
	}
	return t.Filter(func(i int) bool { return hosts[i] == host }), nil
}
