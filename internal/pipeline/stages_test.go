package pipeline

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

var channelNames = []string{"Search", "Social", "Email", "Display", "Video", "social"}

// fixture builds n records with deliberately repeated channels, regions and
// spends so that every sort key has ties.
func fixture(n int, seed int64) []models.Record {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{
			ID:          models.RecordID(fmt.Sprintf("r%03d", i)),
			Channel:     channelNames[rng.Intn(len(channelNames))],
			Region:      []string{"NA", "EU", "APAC"}[rng.Intn(3)],
			Spend:       decimal.NewFromInt(int64(rng.Intn(5) * 10)),
			Impressions: int64(rng.Intn(4) * 100),
			Clicks:      int64(rng.Intn(3)),
			Conversions: int64(rng.Intn(6)),
		}
	}
	return out
}

func ids(rs []models.Record) []models.RecordID {
	out := make([]models.RecordID, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestFilterMembership(t *testing.T) {
	records := fixture(200, 1)
	cases := []struct {
		term     string
		selected store.ChannelSet
	}{
		{"", store.ChannelSet{}},
		{"soc", store.ChannelSet{}},
		{"SOC", store.ChannelSet{}},
		{"", store.NewChannelSet("Email", "Video")},
		{"o", store.NewChannelSet("Social", "Video", "Email")},
		{"zzz", store.ChannelSet{}},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q/%v", tc.term, tc.selected.Values()), func(t *testing.T) {
			got := Filter(records, tc.term, tc.selected)
			var want []models.RecordID
			for _, r := range records {
				matchesSearch := tc.term == "" || strings.Contains(strings.ToLower(r.Channel), strings.ToLower(tc.term))
				matchesChannel := tc.selected.Len() == 0 || slices.Contains(tc.selected.Values(), r.Channel)
				if matchesSearch && matchesChannel {
					want = append(want, r.ID)
				}
			}
			if want == nil {
				want = []models.RecordID{}
			}
			assert.Equal(t, want, ids(got))
		})
	}
}

func TestFilterSelectionIsCaseSensitive(t *testing.T) {
	records := []models.Record{{ID: "1", Channel: "Social"}, {ID: "2", Channel: "social"}}
	assert.Equal(t, []models.RecordID{"1"}, ids(Filter(records, "", store.NewChannelSet("Social"))))
	assert.Equal(t, []models.RecordID{"1", "2"}, ids(Filter(records, "SOCIAL", store.ChannelSet{})))
}

func TestSortWithoutKeyReturnsInput(t *testing.T) {
	records := fixture(10, 2)
	out := Sort(records, models.SortConfig{Direction: models.Descending})
	assert.Same(t, &records[0], &out[0])
}

func TestSortIsStableInBothDirections(t *testing.T) {
	records := fixture(300, 3)
	position := make(map[models.RecordID]int, len(records))
	for i, r := range records {
		position[r.ID] = i
	}
	for _, key := range models.SortKeys {
		for _, dir := range []models.Direction{models.Ascending, models.Descending} {
			t.Run(string(key)+"/"+string(dir), func(t *testing.T) {
				sorted := Sort(records, models.SortConfig{Key: key, Direction: dir})
				require.Len(t, sorted, len(records))
				compare := comparator(key)
				for i := 1; i < len(sorted); i++ {
					c := compare(sorted[i-1], sorted[i])
					if dir == models.Descending {
						c = -c
					}
					require.LessOrEqual(t, c, 0, "out of order at %d", i)
					if c == 0 {
						require.Less(t, position[sorted[i-1].ID], position[sorted[i].ID], "tie reordered at %d", i)
					}
				}
			})
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	records := fixture(50, 4)
	before := ids(records)
	_ = Sort(records, models.SortConfig{Key: models.SortSpend, Direction: models.Descending})
	assert.Equal(t, before, ids(records))
}

func TestSortNumericNotLexicographic(t *testing.T) {
	records := []models.Record{
		{ID: "a", Spend: decimal.RequireFromString("100")},
		{ID: "b", Spend: decimal.RequireFromString("9.5")},
		{ID: "c", Spend: decimal.RequireFromString("20")},
	}
	out := Sort(records, models.SortConfig{Key: models.SortSpend, Direction: models.Ascending})
	assert.Equal(t, []models.RecordID{"b", "c", "a"}, ids(out))
}

func TestSortByIDNumeric(t *testing.T) {
	var records []models.Record
	require.NoError(t, json.Unmarshal([]byte(`[{"id":2},{"id":10},{"id":"x"},{"id":9}]`), &records))

	asc := Sort(records, models.SortConfig{Key: models.SortID, Direction: models.Ascending})
	assert.Equal(t, []models.RecordID{"2", "9", "10", "x"}, ids(asc))

	desc := Sort(records, models.SortConfig{Key: models.SortID, Direction: models.Descending})
	assert.Equal(t, []models.RecordID{"x", "10", "9", "2"}, ids(desc))
}

func TestSortUnknownKeyKeepsOrder(t *testing.T) {
	records := fixture(20, 5)
	out := Sort(records, models.SortConfig{Key: "ctr", Direction: models.Descending})
	assert.Equal(t, ids(records), ids(out))
}

func TestPaginateConcatenationReproducesInput(t *testing.T) {
	for _, n := range []int{0, 1, 49, 50, 51, 137} {
		records := fixture(n, int64(n))
		first := Paginate(records, 1, 50)
		assert.Equal(t, (n+49)/50, first.TotalPages)
		assert.Equal(t, n, first.TotalRecords)

		var all []models.Record
		for page := 1; page <= first.TotalPages; page++ {
			p := Paginate(records, page, 50)
			assert.LessOrEqual(t, len(p.Records), 50)
			all = append(all, p.Records...)
		}
		assert.Equal(t, ids(records), ids(all), "n=%d", n)
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	records := fixture(120, 6)
	for _, page := range []int{-3, 0, 4, 1000} {
		p := Paginate(records, page, 50)
		assert.NotNil(t, p.Records)
		assert.Empty(t, p.Records, "page %d", page)
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, page, p.Number)
	}
	last := Paginate(records, 3, 50)
	assert.Len(t, last.Records, 20)
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 1, 50)
	assert.Zero(t, p.TotalPages)
	assert.Zero(t, p.TotalRecords)
	assert.Empty(t, p.Records)
}

func TestPaginateAppendCannotClobberSource(t *testing.T) {
	records := fixture(10, 7)
	p := Paginate(records, 1, 5)
	_ = append(p.Records, models.Record{ID: "intruder"})
	assert.NotEqual(t, models.RecordID("intruder"), records[5].ID)
}

func TestUniqueChannels(t *testing.T) {
	records := []models.Record{{Channel: "Social"}, {Channel: "Email"}, {Channel: "Social"}, {Channel: "social"}, {Channel: "Display"}}
	assert.Equal(t, []string{"Display", "Email", "Social", "social"}, UniqueChannels(records))
	assert.Empty(t, UniqueChannels(nil))
}
