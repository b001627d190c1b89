package harvest

import (
	"github.com/CatchLog/harvest-services/constants"
)

// FishEntry is one itemized line of catch detail: a species, how many
// fish, and optionally their lengths and a citation tag number.
type FishEntry struct {
	Species   string    `json:"species"`
	Count     int       `json:"count"`
	Lengths   []float64 `json:"lengths,omitempty"`
	TagNumber string    `json:"tag_number,omitempty"`
}

// AggregateEntries reduces itemized entries to per-species totals.
// Species not present in any entry are omitted from the result.
func AggregateEntries(entries []FishEntry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Species] += entry.Count
	}
	return counts
}

// SynthesizeEntries builds itemized entries from aggregate counts for
// reports that predate itemization. It produces exactly one entry per
// non-zero species, with no lengths or tag number, in constants.Species
// order so output is deterministic. Zero counts never become entries.
func SynthesizeEntries(counts map[string]int) []FishEntry {
	entries := make([]FishEntry, 0, len(counts))
	for _, species := range constants.Species {
		if counts[species] > 0 {
			entries = append(entries, FishEntry{
				Species: species,
				Count:   counts[species],
			})
		}
	}
	return entries
}

// NormalizeEntries returns itemized entries for a report, preferring
// the report's own entries and synthesizing from aggregate counts when
// the report has none. The remote payload always carries itemized
// detail, even for pre-itemization records.
func NormalizeEntries(input *HarvestReportInput) []FishEntry {
	if len(input.FishEntries) > 0 {
		entries := make([]FishEntry, len(input.FishEntries))
		copy(entries, input.FishEntries)
		return entries
	}
	return SynthesizeEntries(input.SpeciesCounts())
}
