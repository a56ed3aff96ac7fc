package store

import (
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

const (
	DefaultPageSize = 50

	// DefaultLoadError replaces a blank failure message.
	DefaultLoadError = "Failed to load data"
)

// State is one whole, consistent snapshot of the dashboard session. Every
// transition returns a new State; a State is never modified after it has
// been published.
type State struct {
	Records          []models.Record   `json:"-"`
	SearchTerm       string            `json:"search_term"`
	SelectedChannels ChannelSet        `json:"selected_channels"`
	Sort             models.SortConfig `json:"sort"`
	CurrentPage      int               `json:"current_page"`
	PageSize         int               `json:"page_size"`
	Loading          bool              `json:"loading"`
	Error            string            `json:"error,omitempty"`
	LoadedAt         time.Time         `json:"loaded_at,omitzero"`
	Version          uint64            `json:"version"`
}

// Initial is the state of a fresh session: nothing loaded, no filters, no
// sort, page 1.
func Initial(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		Sort:        models.SortConfig{Key: models.SortNone, Direction: models.Ascending},
		CurrentPage: 1,
		PageSize:    pageSize,
	}
}

// Loaded reports whether a snapshot has ever been swapped in.
func (s State) Loaded() bool { return !s.LoadedAt.IsZero() }

func (s State) SetSearchTerm(term string) State {
	s.SearchTerm = term
	s.CurrentPage = 1
	return s
}

func (s State) ToggleChannel(name string) State {
	s.SelectedChannels = s.SelectedChannels.Toggle(name)
	s.CurrentPage = 1
	return s
}

func (s State) ClearChannels() State {
	s.SelectedChannels = ChannelSet{}
	s.CurrentPage = 1
	return s
}

// SetSortKey flips the direction when key is already the active key;
// otherwise it switches to key in ascending order.
func (s State) SetSortKey(key models.SortKey) State {
	if s.Sort.Key == key {
		s.Sort.Direction = s.Sort.Direction.Flip()
	} else {
		s.Sort = models.SortConfig{Key: key, Direction: models.Ascending}
	}
	s.CurrentPage = 1
	return s
}

// SetCurrentPage accepts any value; bounds are applied when paginating.
func (s State) SetCurrentPage(n int) State {
	s.CurrentPage = n
	return s
}

func (s State) ResetFilters() State {
	s.SearchTerm = ""
	s.SelectedChannels = ChannelSet{}
	s.Sort = models.SortConfig{Key: models.SortNone, Direction: models.Ascending}
	s.CurrentPage = 1
	return s
}

func (s State) BeginLoad() State {
	s.Loading = true
	s.Error = ""
	return s
}

// LoadSucceeded swaps in records wholesale. The caller hands ownership of
// the slice to the state.
func (s State) LoadSucceeded(records []models.Record, at time.Time) State {
	s.Records = records
	s.Loading = false
	s.Error = ""
	s.LoadedAt = at
	return s
}

// LoadFailed keeps whatever collection was loaded before.
func (s State) LoadFailed(msg string) State {
	if msg == "" {
		msg = DefaultLoadError
	}
	s.Loading = false
	s.Error = msg
	return s
}
