package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var sampleEntries = []Entry{
	{ID: 1, Code: "CEM-50", Name: "Cement OPC 50kg", Category: "Cement", UnitPrice: 410, Unit: "bag"},
	{ID: 2, Code: "STL-12", Name: "Steel Rod 12mm", Category: "Steel", UnitPrice: 65, Unit: "kg"},
	{ID: 3, Code: "SND-01", Name: "River Sand", Category: "Aggregates", UnitPrice: 1200, Unit: "ton"},
}

func TestSearchMatchesNameAndCode(t *testing.T) {
	require.Len(t, Search(sampleEntries, "cement", 0), 1)
	require.Len(t, Search(sampleEntries, "stl-12", 0), 1)
	require.Len(t, Search(sampleEntries, "STEEL", 0), 1)
	require.Empty(t, Search(sampleEntries, "plywood", 0))
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	require.Len(t, Search(sampleEntries, "", 0), 3)
	require.Len(t, Search(sampleEntries, "  ", 0), 3)
}

func TestSearchHonorsLimit(t *testing.T) {
	require.Len(t, Search(sampleEntries, "", 2), 2)
}

func TestMatchIsBidirectional(t *testing.T) {
	// Description contained in the entry name.
	entry, ok := Match(sampleEntries, "sand")
	require.True(t, ok)
	require.Equal(t, int64(3), entry.ID)

	// Entry name contained in the description.
	entry, ok = Match(sampleEntries, "need river sand for foundation")
	require.True(t, ok)
	require.Equal(t, int64(3), entry.ID)

	// Code match inside the description.
	entry, ok = Match(sampleEntries, "2 units of stl-12")
	require.True(t, ok)
	require.Equal(t, int64(2), entry.ID)

	_, ok = Match(sampleEntries, "plywood sheets")
	require.False(t, ok)

	_, ok = Match(sampleEntries, "  ")
	require.False(t, ok)
}

func TestByID(t *testing.T) {
	entry, ok := ByID(sampleEntries, 2)
	require.True(t, ok)
	require.Equal(t, "Steel Rod 12mm", entry.Name)

	_, ok = ByID(sampleEntries, 99)
	require.False(t, ok)
}
