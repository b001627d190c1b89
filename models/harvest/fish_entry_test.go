package harvest_test

import (
	"testing"

	"github.com/CatchLog/harvest-services/models/harvest"
	"github.com/CatchLog/harvest-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateEntries(t *testing.T) {
	entries := []harvest.FishEntry{
		{Species: "red_drum", Count: 2},
		{Species: "flounder", Count: 1},
		{Species: "red_drum", Count: 3},
	}
	counts := harvest.AggregateEntries(entries)
	assert.Equal(t, 5, counts["red_drum"])
	assert.Equal(t, 1, counts["flounder"])
	_, present := counts["speckled_trout"]
	assert.False(t, present)
}

func TestSynthesizeEntries(t *testing.T) {
	counts := map[string]int{
		"red_drum":       2,
		"flounder":       0,
		"speckled_trout": 1,
		"striped_bass":   0,
	}
	entries := harvest.SynthesizeEntries(counts)
	require.Equal(t, 2, len(entries))

	// One entry per non-zero species, in fixed species order.
	assert.Equal(t, "red_drum", entries[0].Species)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, "speckled_trout", entries[1].Species)
	assert.Equal(t, 1, entries[1].Count)

	// Synthesized entries carry no detail beyond the count.
	for _, entry := range entries {
		assert.Empty(t, entry.Lengths)
		assert.Empty(t, entry.TagNumber)
	}
}

func TestSynthesizeEntriesAllZero(t *testing.T) {
	entries := harvest.SynthesizeEntries(map[string]int{"red_drum": 0})
	assert.Empty(t, entries)
}

func TestNormalizeEntriesPrefersItemized(t *testing.T) {
	input := testutil.GetItemizedReportInput()
	entries := harvest.NormalizeEntries(input)
	require.Equal(t, 2, len(entries))
	assert.Equal(t, input.FishEntries, entries)

	// The result is a copy. Mutating it must not touch the input.
	entries[0].Count = 99
	assert.Equal(t, 2, input.FishEntries[0].Count)
}

func TestNormalizeEntriesSynthesizes(t *testing.T) {
	input := testutil.GetReportInput(false)
	require.Empty(t, input.FishEntries)

	entries := harvest.NormalizeEntries(input)
	require.Equal(t, 2, len(entries))
	assert.Equal(t, "red_drum", entries[0].Species)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, "flounder", entries[1].Species)
	assert.Equal(t, 1, entries[1].Count)

	// Aggregating the synthesized entries gives back the original
	// non-zero counts.
	counts := harvest.AggregateEntries(entries)
	assert.Equal(t, input.RedDrumCount, counts["red_drum"])
	assert.Equal(t, input.FlounderCount, counts["flounder"])
}
