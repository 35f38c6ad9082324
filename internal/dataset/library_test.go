package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateDatasetLazyLoadsAndCaches(t *testing.T) {
	lib := NewLibrary("WORK", t.TempDir(), ReadWrite, nil)

	ds, err := lib.GetOrCreateDataset("NEW")
	require.NoError(t, err)
	assert.Empty(t, ds.Rows)

	ds.AddColumn(VariableDef{Name: "X", Kind: Numeric})
	ds.AppendRow(Row{NumCell(1)})
	require.NoError(t, lib.SaveDataset("NEW", ds))

	again, err := lib.GetOrCreateDataset("NEW")
	require.NoError(t, err)
	assert.Same(t, ds, again, "second fetch should hit the in-memory cache, not reload from disk")
}

func TestReadOnlyLibraryRejectsWrites(t *testing.T) {
	lib := NewLibrary("REF", t.TempDir(), ReadOnly, nil)
	ds := New("REF", "X")
	err := lib.SaveDataset("X", ds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly")
}

func TestLibraryManagerDefineAndRemove(t *testing.T) {
	mgr := NewLibraryManager()
	lib := NewLibrary("WORK", t.TempDir(), Temporary, nil)
	mgr.DefineLibrary(lib)

	got, ok := mgr.GetLibrary("work")
	require.True(t, ok, "GetLibrary should be case-insensitive")
	assert.Equal(t, lib, got)

	mgr.RemoveLibrary("WORK")
	_, ok = mgr.GetLibrary("WORK")
	assert.False(t, ok)
}

func TestPersistedDatasetSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary("PERM", dir, ReadWrite, nil)

	ds, err := lib.GetOrCreateDataset("PEOPLE")
	require.NoError(t, err)
	ds.AddColumn(VariableDef{Name: "NAME", Kind: Character})
	ds.AddColumn(VariableDef{Name: "AGE", Kind: Numeric})
	ds.AppendRow(Row{StrCell("ada"), NumCell(36)})
	require.NoError(t, lib.SaveDataset("PEOPLE", ds))

	reloaded := NewLibrary("PERM", dir, ReadWrite, nil)
	out, err := reloaded.GetOrCreateDataset("PEOPLE")
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "ada", out.Rows[0][out.FindColumn("NAME")].Str)
	assert.Equal(t, float64(36), out.Rows[0][out.FindColumn("AGE")].Num)
}
