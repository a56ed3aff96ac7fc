package pipeline

import (
	"github.com/AngelCh415/campaign-dashboard/internal/memo"
	"github.com/AngelCh415/campaign-dashboard/internal/metrics"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

// Node names, as reported to a memo.Observer.
const (
	NodeFiltered = "filtered"
	NodeSorted   = "sorted"
	NodePage     = "page"
	NodeSummary  = "summary"
	NodeChart    = "chart"
	NodeTop      = "top_performers"
	NodeChannels = "channels"
)

type (
	records  = []models.Record
	channels = []models.ChannelAggregate
)

// Pipeline is the derivation graph. Filtered feeds Sorted, Summary and
// Chart; Sorted feeds Page; Chart feeds TopPerformers. Channels reads the
// raw collection only. Each node recomputes only when its own inputs change.
type Pipeline struct {
	filtered *memo.Node3[store.State, records, string, store.ChannelSet, records]
	sorted   *memo.Node2[store.State, records, models.SortConfig, records]
	page     *memo.Node3[store.State, records, int, int, *models.Page]
	summary  *memo.Node1[store.State, records, *models.Summary]
	chart    *memo.Node1[store.State, records, channels]
	top      *memo.Node1[store.State, channels, []models.TopPerformer]
	channels *memo.Node1[store.State, records, []string]
}

func New(opts ...memo.Option) *Pipeline {
	raw := memo.Source(func(s store.State) records { return s.Records })
	term := memo.Source(func(s store.State) string { return s.SearchTerm })
	selected := memo.Source(func(s store.State) store.ChannelSet { return s.SelectedChannels })
	sortCfg := memo.Source(func(s store.State) models.SortConfig { return s.Sort })
	pageNum := memo.Source(func(s store.State) int { return s.CurrentPage })
	pageSize := memo.Source(func(s store.State) int { return s.PageSize })

	p := &Pipeline{}
	p.filtered = memo.Map3[store.State, records, string, store.ChannelSet, records](NodeFiltered,
		raw, memo.SameSlice[models.Record],
		term, memo.Equal[string],
		selected, store.ChannelSet.Equal,
		Filter, opts...)
	p.sorted = memo.Map2[store.State, records, models.SortConfig, records](NodeSorted,
		p.filtered, memo.SameSlice[models.Record],
		sortCfg, memo.Equal[models.SortConfig],
		Sort, opts...)
	p.page = memo.Map3[store.State, records, int, int, *models.Page](NodePage,
		p.sorted, memo.SameSlice[models.Record],
		pageNum, memo.Equal[int],
		pageSize, memo.Equal[int],
		Paginate, opts...)
	p.summary = memo.Map[store.State, records, *models.Summary](NodeSummary, p.filtered, memo.SameSlice[models.Record], metrics.Summarize, opts...)
	p.chart = memo.Map[store.State, records, channels](NodeChart, p.filtered, memo.SameSlice[models.Record], metrics.AggregateChannels, opts...)
	p.top = memo.Map[store.State, channels, []models.TopPerformer](NodeTop, p.chart, memo.SameSlice[models.ChannelAggregate], metrics.RankTopPerformers, opts...)
	p.channels = memo.Map[store.State, records, []string](NodeChannels, raw, memo.SameSlice[models.Record], UniqueChannels, opts...)
	return p
}

func (p *Pipeline) Filtered(s store.State) []models.Record { return p.filtered.Get(s) }

func (p *Pipeline) Sorted(s store.State) []models.Record { return p.sorted.Get(s) }

func (p *Pipeline) Page(s store.State) *models.Page { return p.page.Get(s) }

func (p *Pipeline) Summary(s store.State) *models.Summary { return p.summary.Get(s) }

// ChartData is the spend top 10 channel roll-up.
func (p *Pipeline) ChartData(s store.State) []models.ChannelAggregate { return p.chart.Get(s) }

func (p *Pipeline) TopPerformers(s store.State) []models.TopPerformer { return p.top.Get(s) }

// UniqueChannels ignores every view parameter.
func (p *Pipeline) UniqueChannels(s store.State) []string { return p.channels.Get(s) }
