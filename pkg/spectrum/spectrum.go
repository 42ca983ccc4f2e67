// Package spectrum converts transmission spectra reduced with Eureka! into
// the plain text format read by TauREx retrievals.
package spectrum

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/internal/types"
	"github.com/oxygene76/exotargets/pkg/table"
)

// EurekaHeaderLines is the number of header lines in a Eureka! spectrum file
const EurekaHeaderLines = 10

// Eureka! column positions
const (
	colWavelength = 0
	colRp2        = 2
	colErrUp      = 3
	colErrDown    = 4
)

// Point is one spectral bin
type Point struct {
	Wavelength float64 // µm
	Rp2        float64 // (Rp/Rs)²
	ErrUp      float64
	ErrDown    float64
}

// Spectrum is an ordered list of bins
type Spectrum struct {
	Points []Point
}

// Len returns the number of bins
func (s *Spectrum) Len() int {
	return len(s.Points)
}

// ReadEureka parses a whitespace separated Eureka! spectrum after skipping
// skip header lines. Blank lines and lines starting with # are ignored.
func ReadEureka(r io.Reader, skip int) (*Spectrum, error) {
	sc := bufio.NewScanner(r)
	s := &Spectrum{}
	line := 0
	for sc.Scan() {
		line++
		if line <= skip {
			continue
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) <= colErrDown {
			return nil, errorsmod.Wrapf(types.ErrParse, "line %d: expected at least %d columns, got %d",
				line, colErrDown+1, len(fields))
		}
		var p Point
		for _, f := range []struct {
			col int
			dst *float64
		}{
			{colWavelength, &p.Wavelength},
			{colRp2, &p.Rp2},
			{colErrUp, &p.ErrUp},
			{colErrDown, &p.ErrDown},
		} {
			v, err := strconv.ParseFloat(fields[f.col], 64)
			if err != nil {
				return nil, errorsmod.Wrapf(types.ErrParse, "line %d column %d: %q", line, f.col, fields[f.col])
			}
			*f.dst = v
		}
		s.Points = append(s.Points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read spectrum: %w", err)
	}
	return s, nil
}

// WriteTauREx writes one "wavelength \t rp2 \t errup" line per bin
func WriteTauREx(w io.Writer, s *Spectrum) error {
	bw := bufio.NewWriter(w)
	for _, p := range s.Points {
		if _, err := fmt.Fprintf(bw, "%s \t %s \t %s \n",
			table.FormatFloat(p.Wavelength), table.FormatFloat(p.Rp2), table.FormatFloat(p.ErrUp)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ConvertFile reads a Eureka! file and writes the TauREx spectrum to out,
// creating the output directory. It returns the number of bins written.
func ConvertFile(in, out string) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, fmt.Errorf("failed to open spectrum: %w", err)
	}
	defer f.Close()

	s, err := ReadEureka(f, EurekaHeaderLines)
	if err != nil {
		return 0, errorsmod.Wrapf(err, "%s", in)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	o, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := WriteTauREx(o, s); err != nil {
		o.Close()
		return 0, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return s.Len(), o.Close()
}

// OutputName returns the TauREx file name for a Eureka! input, e.g.
// ERS1366_wasp39b.txt becomes ERS1366_wasp39b_spectrum.dat
func OutputName(in string) string {
	base := filepath.Base(in)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_spectrum.dat"
}
