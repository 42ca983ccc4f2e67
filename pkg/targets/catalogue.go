package targets

import (
	"math"
	"strconv"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/table"
)

var stringColumns = []string{ColName, ColInstrument, ColType, ColDates}

// ReadCatalogue reads an observation catalogue. Empty cells in numeric
// columns become 0, so a missing value reads as the validity sentinel.
func ReadCatalogue(path string) (*table.Table, error) {
	t, err := table.ReadFile(path, table.ReadOptions{
		StringColumns: stringColumns,
		FloatColumns:  []string{ColEAP},
	})
	if err != nil {
		return nil, err
	}
	logger.Named("targets").Info().Str("file", path).Int("rows", t.Len()).Msg("catalogue loaded")
	return t.FillMissing(0), nil
}

// ReadCatalogues reads and concatenates several catalogues
func ReadCatalogues(paths ...string) (*table.Table, error) {
	tables := make([]*table.Table, 0, len(paths))
	for _, p := range paths {
		t, err := ReadCatalogue(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return Concat(tables...)
}

// Concat joins catalogues, for example those of several proposal cycles
func Concat(tables ...*table.Table) (*table.Table, error) {
	return table.Concat(tables...)
}

// WithCycle returns a copy of t tagged with a proposal cycle column
func WithCycle(t *table.Table, cycle int) (*table.Table, error) {
	vals := make([]float64, t.Len())
	for i := range vals {
		vals[i] = float64(cycle)
	}
	out := t.Clone()
	if err := out.SetFloats(ColCycle, vals); err != nil {
		return nil, err
	}
	return out, nil
}

// Rows projects a catalogue onto target rows. Name, type and radius are
// required; instrument, EAP, semi-major axis, temperature and cycle are
// read when present.
func Rows(t *table.Table) ([]types.Target, error) {
	names, err := t.Strings(ColName)
	if err != nil {
		return nil, err
	}
	kinds, err := t.Strings(ColType)
	if err != nil {
		return nil, err
	}
	radius, err := t.Floats(ColRadius)
	if err != nil {
		return nil, err
	}
	instr := optionalStrings(t, ColInstrument)
	eap := optionalFloats(t, ColEAP)
	sma := optionalFloats(t, ColSMA)
	teff := optionalFloats(t, ColTeff)
	cycle := optionalFloats(t, ColCycle)

	rows := make([]types.Target, t.Len())
	for i := range rows {
		eapMonths, err := wholeMonths(eap[i])
		if err != nil {
			return nil, errorsmod.Wrapf(err, "row %d (%s)", i+1, names[i])
		}
		rows[i] = types.Target{
			Name:            names[i],
			Instrument:      instr[i],
			Type:            types.ObservationType(kinds[i]),
			RadiusEarth:     radius[i],
			EAPMonths:       eapMonths,
			SemiMajorAxisAU: sma[i],
			StellarTeffK:    teff[i],
		}
		if !math.IsNaN(cycle[i]) {
			rows[i].Cycle = int(cycle[i])
		}
	}
	return rows, nil
}

func wholeMonths(v float64) (int, error) {
	if math.IsNaN(v) {
		return 0, nil
	}
	if v != math.Trunc(v) || v < 0 {
		return 0, errorsmod.Wrapf(types.ErrParse, "EAP %s is not a whole number of months", strconv.FormatFloat(v, 'g', -1, 64))
	}
	return int(v), nil
}

func optionalStrings(t *table.Table, name string) []string {
	if vals, err := t.Strings(name); err == nil {
		return vals
	}
	return make([]string, t.Len())
}

func optionalFloats(t *table.Table, name string) []float64 {
	if vals, err := t.Floats(name); err == nil {
		return vals
	}
	vals := make([]float64, t.Len())
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}
