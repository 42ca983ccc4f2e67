package table

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exotargets/internal/types"
)

const catalogue = `Target Name,Instrument,Type,Radius [RE],EAP [mon]
WASP-39 b,NIRSpec,Transit,14.2,12
LHS 1140 b,NIRISS,Transit,,0
TRAPPIST-1 b,MIRI,Eclipse,1.1,12
`

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(catalogue), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"Target Name", "Instrument", "Type", "Radius [RE]", "EAP [mon]"}, tbl.Names())

	names, err := tbl.Strings("Target Name")
	require.NoError(t, err)
	assert.Equal(t, []string{"WASP-39 b", "LHS 1140 b", "TRAPPIST-1 b"}, names)

	radius, err := tbl.Floats("Radius [RE]")
	require.NoError(t, err)
	assert.Equal(t, 14.2, radius[0])
	assert.True(t, math.IsNaN(radius[1]))

	_, err = tbl.Floats("Type")
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = tbl.Column("Dec")
	assert.True(t, errors.Is(err, types.ErrMissingField))
}

func TestReadOptions(t *testing.T) {
	in := "id\tvalue\n001\t1.5\n002\tbad\n"

	tbl, err := Read(strings.NewReader(in), ReadOptions{Comma: '\t', StringColumns: []string{"id"}})
	require.NoError(t, err)
	ids, err := tbl.Strings("id")
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, ids)

	_, err = Read(strings.NewReader(in), ReadOptions{Comma: '\t', FloatColumns: []string{"value"}})
	assert.True(t, errors.Is(err, types.ErrParse))

	tbl, err = Read(strings.NewReader("# archive dump\na,b\n1,2\n"), ReadOptions{Comment: '#'})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestWriteRoundTrip(t *testing.T) {
	tbl, err := Read(strings.NewReader(catalogue), ReadOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl, '\t'))
	assert.Contains(t, buf.String(), "LHS 1140 b\tNIRISS\tTransit\t\t0\n")

	back, err := Read(&buf, ReadOptions{Comma: '\t'})
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back))
}

func TestWriteFile(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetStrings("pl_name", []string{"a", "b"}))
	require.NoError(t, tbl.SetFloats("TSM", []float64{10, math.NaN()}))

	path := filepath.Join(t.TempDir(), "out", "tsm.tsv")
	require.NoError(t, WriteFile(path, tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pl_name\tTSM\na\t10\nb\t\n", string(data))

	back, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.True(t, tbl.Equal(back))
}

func TestSetLengthMismatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.SetFloats("a", []float64{1, 2}))
	err := tbl.SetFloats("b", []float64{1})
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))

	// replacing the only column may change the length
	require.NoError(t, tbl.SetFloats("a", []float64{1, 2, 3}))
	assert.Equal(t, 3, tbl.Len())
}

func TestTakeFilterSelect(t *testing.T) {
	tbl, err := Read(strings.NewReader(catalogue), ReadOptions{})
	require.NoError(t, err)

	taken := tbl.Take([]int{2, 0})
	names, _ := taken.Strings("Target Name")
	assert.Equal(t, []string{"TRAPPIST-1 b", "WASP-39 b"}, names)

	obs, _ := tbl.Strings("Type")
	transits := tbl.Filter(func(i int) bool { return obs[i] == "Transit" })
	assert.Equal(t, 2, transits.Len())
	assert.Equal(t, 3, tbl.Len())

	sel, err := tbl.Select("Type", "Target Name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Type", "Target Name"}, sel.Names())

	_, err = tbl.Select("nope")
	assert.True(t, errors.Is(err, types.ErrMissingField))
}

func TestFillMissing(t *testing.T) {
	tbl, err := Read(strings.NewReader(catalogue), ReadOptions{})
	require.NoError(t, err)

	filled := tbl.FillMissing(0)
	radius, _ := filled.Floats("Radius [RE]")
	assert.Equal(t, 0.0, radius[1])

	orig, _ := tbl.Floats("Radius [RE]")
	assert.True(t, math.IsNaN(orig[1]))
}

func TestConcat(t *testing.T) {
	a := New()
	require.NoError(t, a.SetStrings("name", []string{"x"}))
	require.NoError(t, a.SetFloats("r", []float64{1}))

	b := New()
	require.NoError(t, b.SetStrings("name", []string{"y", "z"}))
	require.NoError(t, b.SetStrings("cycle", []string{"2", "2"}))

	out, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []string{"name", "r", "cycle"}, out.Names())

	r, _ := out.Floats("r")
	assert.Equal(t, 1.0, r[0])
	assert.True(t, math.IsNaN(r[2]))

	cycle, _ := out.Strings("cycle")
	assert.Equal(t, []string{"", "2", "2"}, cycle)

	c := New()
	require.NoError(t, c.SetStrings("r", []string{"big"}))
	_, err = Concat(a, c)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestReadTSVEmptyCells(t *testing.T) {
	in := "Target Name\tInstrument\tType\tRadius [RE]\tEAP [mon]\tSMA [au]\n" +
		"K2-18 b\tNIRSpec\tTransit\t\t0\t0.1429\n" +
		"LHS 1140 b\tNIRISS\tTransit\t1.73\t12\t0.0946\n"

	tbl, err := Read(strings.NewReader(in), ReadOptions{Comma: '\t'})
	require.NoError(t, err)

	radius, err := tbl.Floats("Radius [RE]")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(radius[0]))
	assert.Equal(t, 1.73, radius[1])

	eap, err := tbl.Floats("EAP [mon]")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 12}, eap)

	sma, err := tbl.Floats("SMA [au]")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1429, 0.0946}, sma)
}
