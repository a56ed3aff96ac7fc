// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"

	"github.com/AngelCh415/campaign-dashboard/internal/dashboard"
	"github.com/AngelCh415/campaign-dashboard/internal/ingest"
	"github.com/AngelCh415/campaign-dashboard/internal/models"
	"github.com/AngelCh415/campaign-dashboard/internal/report"
	"github.com/AngelCh415/campaign-dashboard/internal/store"
)

var (
	accentColor = styles.AdaptiveColor{Light: "#1a73e8", Dark: "#8ab4f8"}
	borderColor = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	errColor    = styles.AdaptiveColor{Light: "1", Dark: "9"}
	goodColor   = styles.AdaptiveColor{Light: "#2e7d32", Dark: "#81c995"}
	warnColor   = styles.AdaptiveColor{Light: "#f57c00", Dark: "#fdd663"}

	titleStyle = styles.NewStyle().Bold(true).Foreground(accentColor)
	dimFg      = styles.NewStyle().Foreground(borderColor)
	selectedFg = styles.NewStyle().Foreground(accentColor).Bold(true)
	errFg      = styles.NewStyle().Foreground(errColor)
	cardStyle  = styles.NewStyle().
			BorderStyle(styles.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			Width(22)
	paneStyle = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)
)

type column struct {
	key   models.SortKey
	title string
	width int
}

// columns follow models.SortKeys so that key N sorts column N.
var columns = []column{
	{models.SortChannel, "Channel", 14},
	{models.SortRegion, "Region", 10},
	{models.SortSpend, "Spend", 14},
	{models.SortImpressions, "Impressions", 13},
	{models.SortClicks, "Clicks", 9},
	{models.SortConversions, "Conversions", 13},
	{models.SortID, "ID", 10},
	{models.SortNone, "CTR", 8},
}

type loadedMsg struct{ err error }

// stateMsg announces a state published outside Update, such as a load
// finishing on another goroutine.
type stateMsg struct{ version uint64 }

type Model struct {
	ctx context.Context
	d   *dashboard.Dashboard
	log *slog.Logger
	now func() time.Time

	table   table.Model
	search  textinput.Model
	spinner spinner.Model
	help    help.Model

	searching bool
	cursor    int
	lastErr   error
	width     int
}

func New(ctx context.Context, d *dashboard.Dashboard, log *slog.Logger) *Model {
	const defaultTableHeight = 12

	ti := textinput.New()
	ti.Prompt = "search: "
	ti.Placeholder = "channel name"
	ti.CharLimit = 64
	ti.SetValue(d.State().SearchTerm)

	t := table.New(
		table.WithColumns(tableColumns(models.SortConfig{})),
		table.WithHeight(defaultTableHeight),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(styles.NormalBorder()).
		BorderForeground(borderColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.Foreground(accentColor).Bold(false)
	t.SetStyles(s)

	m := &Model{
		ctx:     ctx,
		d:       d,
		log:     log,
		now:     time.Now,
		table:   t,
		search:  ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.d.State().Loaded() {
		return m.spinner.Tick
	}
	return tea.Batch(m.spinner.Tick, m.load())
}

// load runs a snapshot load off the UI goroutine. Nil while one is running.
func (m *Model) load() tea.Cmd {
	if m.d.Loading() {
		return nil
	}
	return func() tea.Msg {
		return loadedMsg{err: m.d.Load(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if errors.Is(msg.err, ingest.ErrLoadInProgress) {
			return m, nil
		}
		m.lastErr = msg.err
		if msg.err != nil {
			m.log.Warn("snapshot load failed", slog.String("err", msg.err.Error()))
		}
		m.refresh()
		return m, nil
	case stateMsg:
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		// title, cards, search, footer, channels, panes and help
		m.table.SetHeight(max(3, msg.Height-24))
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Search):
			m.searching = true
			return m, m.search.Focus()
		case key.Matches(msg, keys.Sort):
			i := int(msg.String()[0] - '1')
			m.d.SetSortKey(models.SortKeys[i])
		case key.Matches(msg, keys.Prev):
			if st := m.d.State(); st.CurrentPage > 1 {
				m.d.SetCurrentPage(st.CurrentPage - 1)
			}
		case key.Matches(msg, keys.Next):
			if p := m.d.Page(); p.Number < p.TotalPages {
				m.d.SetCurrentPage(p.Number + 1)
			}
		case key.Matches(msg, keys.ChannelPrev):
			m.moveCursor(-1)
		case key.Matches(msg, keys.ChannelNext):
			m.moveCursor(1)
		case key.Matches(msg, keys.Toggle):
			if ch, ok := m.cursorChannel(); ok {
				m.d.ToggleChannel(ch)
			}
		case key.Matches(msg, keys.Clear):
			m.d.ClearChannels()
		case key.Matches(msg, keys.Reset):
			m.d.ResetFilters()
			m.search.SetValue("")
		case key.Matches(msg, keys.Reload):
			return m, m.load()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, keys.Accept), key.Matches(msg, keys.Cancel):
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.d.State().SearchTerm {
		m.d.SetSearchTerm(v)
		m.refresh()
	}
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	n := len(m.d.UniqueChannels())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

func (m *Model) cursorChannel() (string, bool) {
	chs := m.d.UniqueChannels()
	if m.cursor < 0 || m.cursor >= len(chs) {
		return "", false
	}
	return chs[m.cursor], true
}

// refresh copies the current page into the table.
func (m *Model) refresh() {
	snap := m.d.Snapshot()
	m.table.SetColumns(tableColumns(snap.State.Sort))

	rows := make([]table.Row, len(snap.Page.Records))
	for i, r := range snap.Page.Records {
		rows[i] = table.Row{
			r.Channel,
			r.Region,
			report.Currency(r.Spend),
			report.Count(r.Impressions),
			report.Count(r.Clicks),
			report.Count(r.Conversions),
			string(r.ID),
			report.Percent(r.CTR()),
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
	if m.cursor >= len(snap.Channels) {
		m.cursor = max(0, len(snap.Channels)-1)
	}
}

func tableColumns(sc models.SortConfig) []table.Column {
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		title := c.title
		if c.key != models.SortNone && c.key == sc.Key {
			if sc.Direction == models.Descending {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		out[i] = table.Column{Title: title, Width: c.width}
	}
	return out
}

func (m *Model) View() string {
	snap := m.d.Snapshot()
	st := snap.State

	if m.d.Loading() {
		return styles.JoinVertical(styles.Left,
			m.spinner.View()+" Loading campaign data...",
			m.help.View(keys))
	}
	if st.Error != "" && !st.Loaded() {
		return styles.JoinVertical(styles.Left,
			errFg.Render("Failed to load dashboard"),
			st.Error,
			dimFg.Render("press R to retry"),
			m.help.View(keys))
	}

	header := titleStyle.Render("Campaign Performance")
	if st.Loaded() {
		header += dimFg.Render(fmt.Sprintf("  loaded %s ago", m.d.Age(m.now()).Round(time.Second)))
	}
	lines := []string{header}
	if st.Error != "" {
		lines = append(lines, errFg.Render("reload failed: "+st.Error))
	}

	sum := snap.Summary
	lines = append(lines, styles.JoinHorizontal(styles.Top,
		card("Total Spend", report.Currency(sum.TotalSpend)),
		card("Total Conversions", report.Compact(sum.TotalConversions)),
		card("Total Impressions", report.Compact(sum.TotalImpressions)),
		card("Avg CTR", report.Percent(sum.AvgCTR)),
	))

	if m.searching {
		lines = append(lines, m.search.View())
	} else if st.SearchTerm != "" {
		lines = append(lines, dimFg.Render(fmt.Sprintf("search: %q", st.SearchTerm)))
	}

	if len(snap.Page.Records) == 0 {
		lines = append(lines, dimFg.Render("No data found"))
	} else {
		lines = append(lines, m.table.View())
	}
	lines = append(lines, footer(snap.Page))
	lines = append(lines, m.channelStrip(snap))
	lines = append(lines, styles.JoinHorizontal(styles.Top, chartPane(snap.Chart), topPane(snap.TopPerformers)))
	lines = append(lines, m.help.View(keys))
	return styles.JoinVertical(styles.Left, lines...)
}

func card(label, value string) string {
	return cardStyle.Render(dimFg.Render(label) + "\n" + titleStyle.Render(value))
}

func footer(p *models.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d of %d records  ", len(p.Records), p.TotalRecords)
	for _, n := range PageNumbers(p.Number, p.TotalPages) {
		switch {
		case n == Ellipsis:
			b.WriteString(" … ")
		case n == p.Number:
			b.WriteString(selectedFg.Render(fmt.Sprintf("[%d]", n)))
		default:
			fmt.Fprintf(&b, " %d ", n)
		}
	}
	return b.String()
}

func (m *Model) channelStrip(snap dashboard.Snapshot) string {
	sel := snap.State.SelectedChannels
	parts := make([]string, 0, len(snap.Channels)+1)
	for i, ch := range snap.Channels {
		label := ch
		if sel.Contains(ch) {
			label = selectedFg.Render("●" + ch)
		}
		if i == m.cursor {
			label = "›" + label
		}
		parts = append(parts, label)
	}
	status := "All channels"
	if n := sel.Len(); n == 1 {
		status = "1 channel selected"
	} else if n > 1 {
		status = fmt.Sprintf("%d channels selected", n)
	}
	parts = append(parts, dimFg.Render("("+status+")"))
	return strings.Join(parts, "  ")
}

func chartPane(rows []models.ChannelAggregate) string {
	lines := []string{titleStyle.Render("Spend by channel")}
	if len(rows) == 0 {
		lines = append(lines, dimFg.Render("No data available"))
	}
	for _, r := range rows {
		bar := report.Bar(r.Spend, rows[0].Spend, 24)
		lines = append(lines, fmt.Sprintf("%-12s %-24s %s", r.Channel, selectedFg.Render(bar), report.Currency(r.Spend)))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func topPane(rows []models.TopPerformer) string {
	lines := []string{titleStyle.Render("Top performers")}
	if len(rows) == 0 {
		lines = append(lines, dimFg.Render("No data available"))
	}
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. %-12s %s  %s conv", i+1, r.Channel, ctrStyle(r.CTR).Render(report.Percent(r.CTR)), report.Count(r.Conversions)))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func ctrStyle(ctr float64) styles.Style {
	switch {
	case ctr >= 5:
		return styles.NewStyle().Foreground(goodColor)
	case ctr >= 3:
		return styles.NewStyle().Foreground(warnColor)
	}
	return errFg
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, d *dashboard.Dashboard, log *slog.Logger, altScreen bool) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(New(ctx, d, log), opts...)
	// Send blocks until the event loop reads it, and transitions made inside
	// Update run on that loop.
	d.Subscribe(func(st store.State) { go p.Send(stateMsg{version: st.Version}) })
	_, err := p.Run()
	return err
}
