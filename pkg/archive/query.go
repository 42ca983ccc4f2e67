package archive

import (
	"fmt"
	"os"
	"strings"
)

// DefaultColumns are the parameters fetched for catalogue correlation
var DefaultColumns = []string{
	"pl_name", "pl_orbper", "pl_orbsmax", "pl_rade", "pl_bmasse", "pl_eqt", "st_teff",
}

// DefaultTable is the planetary systems composite parameters table
const DefaultTable = "pscomppars"

// BuildQuery returns an ADQL query selecting columns from tbl for the named
// planets. Names are deduplicated in order and quoted with embedded single
// quotes doubled.
func BuildQuery(names, columns []string, tbl string) string {
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	if tbl == "" {
		tbl = DefaultTable
	}

	seen := make(map[string]bool, len(names))
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		quoted = append(quoted, "'"+strings.ReplaceAll(n, "'", "''")+"'")
	}

	return fmt.Sprintf("SELECT %s FROM %s WHERE pl_name IN (%s)",
		strings.Join(columns, ", "), tbl, strings.Join(quoted, ","))
}

// ReadQueryFile reads an ADQL query from disk, joining its lines with spaces
func ReadQueryFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	q := strings.ReplaceAll(string(data), "\r\n", " ")
	q = strings.ReplaceAll(q, "\n", " ")
	return strings.TrimSpace(q), nil
}

// MetricsColumns are the parameters the spectroscopy metrics need
var MetricsColumns = []string{
	"pl_name", "hostname", "pl_orbper", "pl_orbsmax", "pl_rade", "pl_bmasse", "pl_eqt",
	"st_teff", "st_rad", "st_mass", "sy_jmag", "sy_kmag", "sy_dist", "sy_pnum",
}

// MetricsQuery selects every transiting planet up to maxRadius (R⊕) with
// the columns in MetricsColumns
func MetricsQuery(tbl string, maxRadius float64) string {
	if tbl == "" {
		tbl = DefaultTable
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE tran_flag = 1 AND pl_rade <= %g",
		strings.Join(MetricsColumns, ", "), tbl, maxRadius)
}
