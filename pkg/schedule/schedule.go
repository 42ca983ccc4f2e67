// Package schedule turns the observation-date lists of a catalogue into one
// row per planned visit and orders them for timeline plots.
package schedule

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/table"
	"github.com/oxygene76/exotargets/pkg/targets"
)

// DateLayout parses catalogue dates written MM/DD/YY, with or without
// leading zeros
const DateLayout = "1/2/06"

// LongRange marks visits that slipped into the next cycle without a date
const LongRange = "Long Range"

// Timeline output columns
const (
	ColLabel   = "Label"
	ColPrimary = "Primary Instrument"
	ColDate    = "Date"
	ColPublic  = "Public Date"
	ColVisits  = "Visits"

	isoDate       = "2006-01-02"
	instrumentSep = " / "
)

// ExplodeDates splits every cell of column on sep and returns one row per
// date, along with the parsed dates aligned to the returned rows. Tokens are
// trimmed; Long Range entries are dropped and logged. The exploded column
// holds the single trimmed token.
func ExplodeDates(t *table.Table, column, sep string) (*table.Table, []time.Time, error) {
	cells, err := t.Strings(column)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Named("schedule")
	names := nameColumn(t)

	var idx []int
	var tokens []string
	var dates []time.Time
	for i, cell := range cells {
		for _, tok := range strings.Split(cell, sep) {
			tok = strings.TrimSpace(tok)
			if tok == LongRange {
				log.Info().Str("target", names[i]).Msg("visit marked as long range, skipped")
				continue
			}
			d, err := time.Parse(DateLayout, tok)
			if err != nil {
				return nil, nil, errorsmod.Wrapf(types.ErrParse, "row %d: observation date %q", i+1, tok)
			}
			idx = append(idx, i)
			tokens = append(tokens, tok)
			dates = append(dates, d)
		}
	}

	out := t.Take(idx)
	if err := out.SetStrings(column, tokens); err != nil {
		return nil, nil, err
	}
	return out, dates, nil
}

// Targets groups selected visits by target name, in first-seen order, and
// collects the dates of each target's visits.
func Targets(t *table.Table, dates []time.Time) ([]types.Target, error) {
	if len(dates) != t.Len() {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument, "%d dates for %d rows", len(dates), t.Len())
	}
	rows, err := targets.Rows(t)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(rows))
	var out []types.Target
	for i, r := range rows {
		j, ok := byName[r.Name]
		if !ok {
			j = len(out)
			byName[r.Name] = j
			r.Dates = nil
			out = append(out, r)
		}
		out[j].Dates = append(out[j].Dates, dates[i])
	}
	return out, nil
}

// Constraints select the visits to schedule. Zero-valued fields are not applied.
type Constraints struct {
	MaxEAP    *float64
	Types     []string
	MinRadius *float64
	MaxRadius *float64
}

// Pipeline returns the selection steps for c
func (c Constraints) Pipeline() targets.Pipeline {
	var steps []targets.Step
	if c.MaxEAP != nil {
		steps = append(steps, targets.AtMost(targets.ColEAP, *c.MaxEAP))
	}
	if len(c.Types) > 0 {
		steps = append(steps, targets.OneOf{Column: targets.ColType, Values: c.Types})
	}
	if c.MinRadius != nil || c.MaxRadius != nil {
		steps = append(steps, targets.RangeFilter{
			Column:       targets.ColRadius,
			Min:          c.MinRadius,
			Max:          c.MaxRadius,
			MinInclusive: true,
			MaxInclusive: true,
		})
	}
	return targets.Pipeline{Steps: steps}
}

// Select filters exploded rows together with their dates
func Select(t *table.Table, dates []time.Time, c Constraints) (*table.Table, []time.Time, error) {
	if len(dates) != t.Len() {
		return nil, nil, errorsmod.Wrapf(types.ErrInvalidArgument, "%d dates for %d rows", len(dates), t.Len())
	}

	// carry the row position through the filters to realign the dates
	tagged := t.Clone()
	pos := make([]float64, t.Len())
	for i := range pos {
		pos[i] = float64(i)
	}
	const posCol = "\x00row"
	if err := tagged.SetFloats(posCol, pos); err != nil {
		return nil, nil, err
	}

	sel, err := c.Pipeline().Apply(tagged)
	if err != nil {
		return nil, nil, err
	}
	kept, _ := sel.Floats(posCol)
	selDates := make([]time.Time, len(kept))
	for i, p := range kept {
		selDates[i] = dates[int(p)]
	}

	out, err := sel.Select(withoutColumn(sel.Names(), posCol)...)
	if err != nil {
		return nil, nil, err
	}
	return out, selDates, nil
}

// Timeline orders visits by target, targets in first-seen order and each
// target's visits by descending date. Every row gets a label "name (visits)",
// the primary instrument, the ISO date and the date the data turns public
// after the exclusive access period.
func Timeline(t *table.Table, dates []time.Time) (*table.Table, error) {
	if len(dates) != t.Len() {
		return nil, errorsmod.Wrapf(types.ErrInvalidArgument, "%d dates for %d rows", len(dates), t.Len())
	}
	names, err := t.Strings(targets.ColName)
	if err != nil {
		return nil, err
	}
	instruments, err := t.Strings(targets.ColInstrument)
	if err != nil {
		return nil, err
	}
	eap := eapMonths(t)

	var order []string
	groups := make(map[string][]int)
	for i, n := range names {
		if _, ok := groups[n]; !ok {
			order = append(order, n)
		}
		groups[n] = append(groups[n], i)
	}

	idx := make([]int, 0, t.Len())
	for _, n := range order {
		g := groups[n]
		sort.SliceStable(g, func(a, b int) bool { return dates[g[a]].After(dates[g[b]]) })
		idx = append(idx, g...)
	}

	n := len(idx)
	labels := make([]string, n)
	primary := make([]string, n)
	obs := make([]string, n)
	public := make([]string, n)
	visits := make([]float64, n)
	for j, i := range idx {
		count := len(groups[names[i]])
		labels[j] = names[i] + " (" + strconv.Itoa(count) + ")"
		primary[j] = PrimaryInstrument(instruments[i])
		obs[j] = dates[i].Format(isoDate)
		public[j] = AddMonths(dates[i], eap[i]).Format(isoDate)
		visits[j] = float64(count)
	}

	out := t.Take(idx)
	for _, set := range []func() error{
		func() error { return out.SetStrings(ColLabel, labels) },
		func() error { return out.SetStrings(ColPrimary, primary) },
		func() error { return out.SetStrings(ColDate, obs) },
		func() error { return out.SetStrings(ColPublic, public) },
		func() error { return out.SetFloats(ColVisits, visits) },
	} {
		if err := set(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PrimaryInstrument returns the first instrument of an entry such as
// "NIRSpec / BOTS"
func PrimaryInstrument(s string) string {
	first, _, _ := strings.Cut(s, instrumentSep)
	return strings.TrimSpace(first)
}

// AddMonths adds whole months, clamping to the last day of the target month
// so that Jan 31 plus one month is Feb 28 or 29.
func AddMonths(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func eapMonths(t *table.Table) []int {
	out := make([]int, t.Len())
	vals, err := t.Floats(targets.ColEAP)
	if err != nil {
		return out
	}
	for i, v := range vals {
		if !math.IsNaN(v) {
			out[i] = int(v)
		}
	}
	return out
}

func nameColumn(t *table.Table) []string {
	if names, err := t.Strings(targets.ColName); err == nil {
		return names
	}
	return make([]string, t.Len())
}

func withoutColumn(names []string, drop string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}
