package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() *Dataset {
	ds := New("WORK", "SAMPLE")
	ds.AddColumn(VariableDef{Name: "NAME", Kind: Character, Label: "Full Name"})
	ds.AddColumn(VariableDef{Name: "SCORE", Kind: Numeric, Decimals: 2})
	ds.AppendRow(Row{StrCell("ada"), NumCell(97.5)})
	ds.AppendRow(Row{StrCell(""), MissingNumCell()})
	return ds
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.sasds")
	ds := buildSample()

	c := BinaryCodec{}
	require.NoError(t, c.Save(path, ds))

	loaded, err := c.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Catalog, loaded.Catalog)
	assert.Equal(t, ds.Rows, loaded.Rows)
}

func TestCSVCodecRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	ds := buildSample()

	c := CSVCodec{}
	require.NoError(t, c.Save(path, ds))

	loaded, err := c.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 2)
	assert.Equal(t, "ada", loaded.Rows[0][0].Str)
	assert.InDelta(t, 97.5, loaded.Rows[0][1].Num, 0.0001)
	assert.True(t, loaded.Rows[1][1].IsMissing())
}
