// Package pipeline holds the record stages of the dashboard (filter, sort,
// paginate, channel listing) and wires them, together with the metrics
// aggregators, into a memoized derivation graph over store.State.
//
// Every stage is a pure function. Stages never modify their input and may
// return it unchanged; callers must treat every returned slice as read-only.
package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

// Filter keeps the records whose channel contains term (case-insensitive)
// and, when selected is non-empty, whose channel is one of selected. The
// relative order of records is preserved.
func Filter(records []models.Record, term string, selected store.ChannelSet) []models.Record {
	lower := cases.Lower(language.Und)
	needle := lower.String(term)
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if needle != "" && !strings.Contains(lower.String(r.Channel), needle) {
			continue
		}
		if selected.Len() > 0 && !selected.Contains(r.Channel) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort orders records by cfg.Key using a stable sort, so records with equal
// keys keep their input order in both directions. Beyond that no secondary
// key is applied. With no key the input is returned as is.
func Sort(records []models.Record, cfg models.SortConfig) []models.Record {
	if cfg.Key == models.SortNone {
		return records
	}
	compare := comparator(cfg.Key)
	if cfg.Direction == models.Descending {
		asc := compare
		compare = func(a, b models.Record) int { return -asc(a, b) }
	}
	out := slices.Clone(records)
	slices.SortStableFunc(out, compare)
	return out
}

func comparator(key models.SortKey) func(a, b models.Record) int {
	switch key {
	case models.SortID:
		return func(a, b models.Record) int { return a.ID.Compare(b.ID) }
	case models.SortChannel:
		return func(a, b models.Record) int { return cmp.Compare(a.Channel, b.Channel) }
	case models.SortRegion:
		return func(a, b models.Record) int { return cmp.Compare(a.Region, b.Region) }
	case models.SortSpend:
		return func(a, b models.Record) int { return a.Spend.Cmp(b.Spend) }
	case models.SortImpressions:
		return func(a, b models.Record) int { return cmp.Compare(a.Impressions, b.Impressions) }
	case models.SortClicks:
		return func(a, b models.Record) int { return cmp.Compare(a.Clicks, b.Clicks) }
	case models.SortConversions:
		return func(a, b models.Record) int { return cmp.Compare(a.Conversions, b.Conversions) }
	default:
		// unknown columns leave the order untouched
		return func(a, b models.Record) int { return 0 }
	}
}

// Paginate returns page number (1-based) of size records. Pages before the
// first or past the last are empty, never an error.
func Paginate(records []models.Record, number, size int) *models.Page {
	if size <= 0 {
		size = store.DefaultPageSize
	}
	p := &models.Page{
		Records:      []models.Record{},
		Number:       number,
		Size:         size,
		TotalPages:   (len(records) + size - 1) / size,
		TotalRecords: len(records),
	}
	if number < 1 || number > p.TotalPages {
		return p
	}
	start := (number - 1) * size
	end := min(start+size, len(records))
	// capacity-limited so appends by a consumer cannot reach the shared sequence
	p.Records = records[start:end:end]
	return p
}

// UniqueChannels lists every distinct channel in ascending order.
func UniqueChannels(records []models.Record) []string {
	seen := make(map[string]struct{}, 16)
	out := make([]string, 0, 16)
	for _, r := range records {
		if _, ok := seen[r.Channel]; ok {
			continue
		}
		seen[r.Channel] = struct{}{}
		out = append(out, r.Channel)
	}
	slices.Sort(out)
	return out
}
