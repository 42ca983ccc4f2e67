// Package targets reduces observation catalogues to the planets worth
// following up. A reduction is a Pipeline of Steps applied in declared order;
// each step returns a new table, so the input is never modified.
package targets

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/pkg/logger"
	"github.com/oxygene76/exotargets/pkg/table"
)

// Catalogue column vocabulary
const (
	ColName       = "Target Name"
	ColInstrument = "Instrument"
	ColType       = "Type"
	ColRadius     = "Radius [RE]"
	ColEAP        = "EAP [mon]"
	ColSMA        = "SMA [au]"
	ColTeff       = "Teff [K]"
	ColCycle      = "jwst_cycle"
	ColDates      = "Observation Date(s) [MM/DD/YY]"
)

// Constraints parameterise the default reduction
type Constraints struct {
	Type      string
	DedupBy   []string
	Tracked   []string
	MaxRadius float64
	MinRadius float64
}

// DefaultConstraints keeps transiting super-Earths and sub-Neptunes
func DefaultConstraints() Constraints {
	return Constraints{
		Type:      "Transit",
		DedupBy:   []string{ColName},
		Tracked:   []string{ColRadius, ColSMA, ColTeff},
		MaxRadius: 4.0,
		MinRadius: 0.0,
	}
}

// Pipeline is an ordered list of steps
type Pipeline struct {
	Steps []Step
}

// DefaultPipeline returns type filter, dedup, validity, then radius ≤ max and
// radius > min. The type filter must run first: dedup on a mixed table could
// otherwise keep an Eclipse row and hide the Transit row of the same planet.
func DefaultPipeline(c Constraints) Pipeline {
	dedup := c.DedupBy
	if len(dedup) == 0 {
		dedup = []string{ColName}
	}
	return Pipeline{Steps: []Step{
		TypeFilter{Column: ColType, Value: c.Type},
		Dedup{Columns: dedup},
		ValidityFilter{Columns: c.Tracked},
		AtMost(ColRadius, c.MaxRadius),
		Above(ColRadius, c.MinRadius),
	}}
}

// CorrelatedPipeline prepares a catalogue/archive correlation for plotting:
// rows the archive did not match are dropped, one row is kept per target and
// observation type, and rows missing any of the columns are dropped.
func CorrelatedPipeline(matchColumn string, columns []string) Pipeline {
	return Pipeline{Steps: []Step{
		DropMissing{Columns: []string{matchColumn}},
		Dedup{Columns: []string{ColName, ColType}},
		DropMissing{Columns: columns},
	}}
}

// Apply runs every step in order and returns the reduced table
func (p Pipeline) Apply(t *table.Table) (*table.Table, error) {
	log := logger.Named("targets")
	start := time.Now()

	cur := t
	for _, s := range p.Steps {
		before := cur.Len()
		next, err := s.Apply(cur)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "step %q", s.Name())
		}
		log.Debug().Str("step", s.Name()).Int("in", before).Int("out", next.Len()).Msg("applied")
		cur = next
	}
	if cur == t {
		cur = t.Clone()
	}

	log.Info().Int("in", t.Len()).Int("out", cur.Len()).Dur("took", time.Since(start)).Msg("reduction completed")
	return cur, nil
}
