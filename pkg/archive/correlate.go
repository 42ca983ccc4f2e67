package archive

import (
	"math"

	"github.com/oxygene76/exotargets/pkg/table"
	"github.com/oxygene76/exotargets/pkg/targets"
)

// Correlate builds one row per catalogue row holding its target name,
// instrument and type followed by every archive column. Archive values are
// copied into the rows whose target name equals pl_name; rows without a match
// keep NaN or empty cells.
func Correlate(catalogue, archive *table.Table) (*table.Table, error) {
	out, err := catalogue.Select(targets.ColName, targets.ColInstrument, targets.ColType)
	if err != nil {
		return nil, err
	}
	catNames, _ := out.Strings(targets.ColName)
	archNames, err := archive.Strings(ColName)
	if err != nil {
		return nil, err
	}

	// row in archive for each catalogue row, last match wins
	match := make([]int, out.Len())
	byName := make(map[string]int, len(archNames))
	for j, n := range archNames {
		byName[n] = j
	}
	for i, n := range catNames {
		j, ok := byName[n]
		if !ok {
			j = -1
		}
		match[i] = j
	}

	for _, name := range archive.Names() {
		col, _ := archive.Column(name)
		if col.Kind == table.Float {
			vals := make([]float64, out.Len())
			for i, j := range match {
				if j < 0 {
					vals[i] = math.NaN()
				} else {
					vals[i] = col.Floats[j]
				}
			}
			err = out.SetFloats(name, vals)
		} else {
			vals := make([]string, out.Len())
			for i, j := range match {
				if j >= 0 {
					vals[i] = col.Strings[j]
				}
			}
			err = out.SetStrings(name, vals)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SplitByRadius separates correlated rows at maxRadius (R⊕): rows at or below
// go to the first table, larger ones to the second. Rows without a radius are
// in neither.
func SplitByRadius(t *table.Table, maxRadius float64) (small, large *table.Table, err error) {
	small, err = targets.AtMost(ColRadius, maxRadius).Apply(t)
	if err != nil {
		return nil, nil, err
	}
	large, err = targets.Above(ColRadius, maxRadius).Apply(t)
	if err != nil {
		return nil, nil, err
	}
	return small, large, nil
}
