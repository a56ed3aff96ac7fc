// Package metrics derives the KPI summary, the per-channel roll-up and the
// top performers from a filtered record set. All functions are pure and
// never modify their input.
package metrics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

const (
	MaxChartChannels = 10
	MaxTopPerformers = 5
)

// Summarize totals spend, conversions and impressions in one pass. AvgCTR is
// conversions over impressions as a percentage, 0 without impressions.
func Summarize(records []models.Record) *models.Summary {
	s := &models.Summary{TotalSpend: decimal.Zero}
	for _, r := range records {
		s.TotalSpend = s.TotalSpend.Add(r.Spend)
		s.TotalConversions += r.Conversions
		s.TotalImpressions += r.Impressions
	}
	s.AvgCTR = models.Rate(s.TotalConversions, s.TotalImpressions)
	return s
}

// AggregateChannels rolls records up per channel (exact, case-sensitive
// names), orders the rows by spend descending and keeps the first
// MaxChartChannels. Channels with equal spend keep first-appearance order.
func AggregateChannels(records []models.Record) []models.ChannelAggregate {
	index := make(map[string]int)
	rows := make([]models.ChannelAggregate, 0)
	for _, r := range records {
		i, ok := index[r.Channel]
		if !ok {
			i = len(rows)
			index[r.Channel] = i
			rows = append(rows, models.ChannelAggregate{Channel: r.Channel, Spend: decimal.Zero})
		}
		row := &rows[i]
		row.Spend = row.Spend.Add(r.Spend)
		row.Conversions += r.Conversions
		row.Impressions += r.Impressions
		row.Clicks += r.Clicks
		row.Records++
	}
	slices.SortStableFunc(rows, func(a, b models.ChannelAggregate) int {
		return b.Spend.Cmp(a.Spend)
	})
	if len(rows) > MaxChartChannels {
		rows = rows[:MaxChartChannels:MaxChartChannels]
	}
	return rows
}

// RankTopPerformers ranks the given channel rows by CTR descending and keeps
// the first MaxTopPerformers. It ranks only what it is given: fed the
// spend-capped chart rows, a low-spend channel outside that cap never shows
// up here however good its CTR.
func RankTopPerformers(rows []models.ChannelAggregate) []models.TopPerformer {
	out := make([]models.TopPerformer, len(rows))
	for i, r := range rows {
		out[i] = models.TopPerformer{ChannelAggregate: r, CTR: models.Rate(r.Conversions, r.Impressions)}
	}
	slices.SortStableFunc(out, func(a, b models.TopPerformer) int {
		return cmp.Compare(b.CTR, a.CTR)
	})
	if len(out) > MaxTopPerformers {
		out = out[:MaxTopPerformers:MaxTopPerformers]
	}
	return out
}
