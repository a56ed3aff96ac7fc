// Package dashboard is the read/write surface the presentation layers use:
// one store, one derivation graph and the snapshot loader behind it.
package dashboard

import (
	"context"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/pipeline"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

// Loader is satisfied by *ingest.Loader.
type Loader interface {
	Load(ctx context.Context) error
	InFlight() bool
}

type Dashboard struct {
	store    *store.Store
	pipeline *pipeline.Pipeline
	loader   Loader
}

// New wires a dashboard. loader may be nil for a dashboard that is fed
// through LoadRecords only.
func New(st *store.Store, p *pipeline.Pipeline, loader Loader) *Dashboard {
	return &Dashboard{store: st, pipeline: p, loader: loader}
}

// Snapshot is every view the dashboard shows, derived from a single State.
type Snapshot struct {
	State         store.State               `json:"state"`
	Page          *models.Page              `json:"page"`
	Summary       *models.Summary           `json:"summary"`
	Chart         []models.ChannelAggregate `json:"chart"`
	TopPerformers []models.TopPerformer     `json:"top_performers"`
	Channels      []string                  `json:"channels"`
}

func (d *Dashboard) State() store.State { return d.store.Snapshot() }

func (d *Dashboard) Page() *models.Page { return d.pipeline.Page(d.State()) }

func (d *Dashboard) Summary() *models.Summary { return d.pipeline.Summary(d.State()) }

func (d *Dashboard) ChartData() []models.ChannelAggregate { return d.pipeline.ChartData(d.State()) }

func (d *Dashboard) TopPerformers() []models.TopPerformer {
	return d.pipeline.TopPerformers(d.State())
}

func (d *Dashboard) UniqueChannels() []string { return d.pipeline.UniqueChannels(d.State()) }

// Snapshot reads the state once and derives every view from it, so the
// parts never mix two different states.
func (d *Dashboard) Snapshot() Snapshot {
	return d.SnapshotOf(d.State())
}

func (d *Dashboard) SnapshotOf(st store.State) Snapshot {
	return Snapshot{
		State:         st,
		Page:          d.pipeline.Page(st),
		Summary:       d.pipeline.Summary(st),
		Chart:         d.pipeline.ChartData(st),
		TopPerformers: d.pipeline.TopPerformers(st),
		Channels:      d.pipeline.UniqueChannels(st),
	}
}

func (d *Dashboard) SetSearchTerm(term string) store.State { return d.store.SetSearchTerm(term) }

func (d *Dashboard) ToggleChannel(name string) store.State { return d.store.ToggleChannel(name) }

func (d *Dashboard) ClearChannels() store.State { return d.store.ClearChannels() }

func (d *Dashboard) SetSortKey(key models.SortKey) store.State { return d.store.SetSortKey(key) }

func (d *Dashboard) SetCurrentPage(n int) store.State { return d.store.SetCurrentPage(n) }

func (d *Dashboard) ResetFilters() store.State { return d.store.ResetFilters() }

// Subscribe forwards to the store; fn sees every published state.
func (d *Dashboard) Subscribe(fn func(store.State)) { d.store.Subscribe(fn) }

// Load runs the configured loader. Without one it fails the load with
// ingest.ErrEmptySource, like a loader with no source would.
func (d *Dashboard) Load(ctx context.Context) error {
	if d.loader == nil {
		d.store.BeginLoad()
		d.store.LoadFailed(ingest.ErrEmptySource.Error())
		return ingest.ErrEmptySource
	}
	return d.loader.Load(ctx)
}

// Loading reports whether a load is underway, either in the state or in
// the loader itself.
func (d *Dashboard) Loading() bool {
	if d.loader != nil && d.loader.InFlight() {
		return true
	}
	return d.State().Loading
}

// LoadRecords swaps in an already decoded collection as one load.
func (d *Dashboard) LoadRecords(records []models.Record) store.State {
	d.store.BeginLoad()
	return d.store.LoadSucceeded(records)
}

// Age is how long ago the current snapshot was loaded, 0 before the first load.
func (d *Dashboard) Age(now time.Time) time.Duration {
	st := d.State()
	if !st.Loaded() {
		return 0
	}
	return now.Sub(st.LoadedAt)
}
