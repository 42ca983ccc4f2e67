package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	errorsmod "cosmossdk.io/errors"

	"github.com/oxygene76/exotargets/internal/types"
)

// ReadOptions control how delimited text is turned into a table
type ReadOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Comment lines start with this rune and are skipped. Zero disables.
	Comment rune
	// StringColumns are kept as strings even when every cell is numeric.
	StringColumns []string
	// FloatColumns must parse as numbers; a bad cell is an ErrParse.
	FloatColumns []string
}

// Read parses delimited text with a header row. A column becomes Float when
// every non-empty cell parses as a number and it has at least one such cell;
// empty float cells are NaN.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.Comment = opts.Comment
	reader.FieldsPerRecord = -1
	// TrimLeadingSpace also eats whitespace delimiters, which would drop
	// empty TSV cells. Cells are trimmed below instead.
	if unicode.IsSpace(reader.Comma) {
		reader.LazyQuotes = true
	} else {
		reader.TrimLeadingSpace = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errorsmod.Wrap(types.ErrParse, err.Error())
	}
	if len(records) == 0 {
		return nil, errorsmod.Wrap(types.ErrParse, "no header row")
	}

	header := records[0]
	rows := records[1:]

	forceString := toSet(opts.StringColumns)
	forceFloat := toSet(opts.FloatColumns)

	t := New()
	for j, rawName := range header {
		name := strings.TrimSpace(rawName)
		cells := make([]string, len(rows))
		for i, rec := range rows {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}

		var err error
		switch {
		case forceString[name]:
			err = t.SetStrings(name, cells)
		case forceFloat[name]:
			var vals []float64
			if vals, err = parseFloats(name, cells); err == nil {
				err = t.SetFloats(name, vals)
			}
		default:
			if vals, ok := inferFloats(cells); ok {
				err = t.SetFloats(name, vals)
			} else {
				err = t.SetStrings(name, cells)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if len(header) > 0 {
		t.rows = len(rows)
	}
	return t, nil
}

// ReadFile reads a table from disk. Files ending in .tsv or .txt are tab
// separated unless opts.Comma says otherwise.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if opts.Comma == 0 {
		opts.Comma = delimiterFor(path)
	}
	t, err := Read(file, opts)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "reading %s", path)
	}
	return t, nil
}

// Write emits the table as delimited text with a header row. NaN is written
// as an empty cell.
func Write(w io.Writer, t *Table, comma rune) error {
	writer := csv.NewWriter(w)
	if comma != 0 {
		writer.Comma = comma
	}

	if err := writer.Write(t.Names()); err != nil {
		return err
	}
	record := make([]string, len(t.columns))
	for i := 0; i < t.rows; i++ {
		for j, c := range t.columns {
			if c.Kind == Float {
				record[j] = FormatFloat(c.Floats[i])
			} else {
				record[j] = c.Strings[i]
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes the table to path, creating parent directories. The
// delimiter follows the file extension.
func WriteFile(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(file, t, delimiterFor(path)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// FormatFloat renders a cell the way Write does
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func delimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt", ".tab":
		return '\t'
	}
	return ','
}

func inferFloats(cells []string) ([]float64, bool) {
	vals := make([]float64, len(cells))
	numeric := false
	for i, s := range cells {
		if s == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
		numeric = true
	}
	return vals, numeric
}

func parseFloats(name string, cells []string) ([]float64, error) {
	vals := make([]float64, len(cells))
	for i, s := range cells {
		if s == "" {
			vals[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errorsmod.Wrapf(types.ErrParse, "column %q row %d: %q", name, i+1, s)
		}
		vals[i] = v
	}
	return vals, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
