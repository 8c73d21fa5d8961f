// Package tui provides the interactive surface: pick a ticker and a date
// range, fetch on demand, and read the result off a copy-friendly table.
package tui

import (
	"fmt"
	"time"

	"StockFetch/internal/advisory"
	"StockFetch/internal/config"
	"StockFetch/internal/fetcher"
	"StockFetch/internal/model"
	"StockFetch/internal/provider"
	"StockFetch/internal/render"
	"StockFetch/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sidebarStyle  = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder(), false, true, false, false)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Focus targets, cycled with tab.
const (
	focusTickers = iota
	focusStart
	focusEnd
	focusTable
	focusCount
)

// Messages
type (
	fetchResultMsg struct {
		query      model.Query
		series     model.PriceSeries
		advisories []advisory.Message
	}
	invalidQueryMsg struct{ err error }
)

// Model is the TUI state.
type Model struct {
	cfg        *config.Config
	provider   provider.Provider
	session    *session.Cache
	log        zerolog.Logger
	labels     render.Labels
	maxRetries int

	cursor     int // selected ticker in the catalog
	startInput textinput.Model
	endInput   textinput.Model
	results    table.Model
	spin       spinner.Model

	focus      int
	loading    bool
	fetched    bool
	status     string
	statusErr  bool
	advisories []advisory.Message
	width      int
	height     int
}

// NewModel builds the initial state: first catalog entry selected, the
// default range ending today.
func NewModel(cfg *config.Config, prov provider.Provider, cache *session.Cache, log zerolog.Logger) *Model {
	today := time.Now()
	start := today.AddDate(0, 0, -cfg.DefaultRangeDays)

	si := textinput.New()
	si.Placeholder = model.DateLayout
	si.SetValue(start.Format(model.DateLayout))
	si.CharLimit = len(model.DateLayout)
	si.Width = 12

	ei := textinput.New()
	ei.Placeholder = model.DateLayout
	ei.SetValue(today.Format(model.DateLayout))
	ei.CharLimit = len(model.DateLayout)
	ei.Width = 12

	labels := render.Labels{Date: cfg.Output.DateLabel, Close: cfg.Output.CloseLabel}
	rt := table.New(
		table.WithColumns([]table.Column{
			{Title: labels.Date, Width: 14},
			{Title: labels.Close, Width: 12},
		}),
		table.WithHeight(16),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	return &Model{
		cfg:        cfg,
		provider:   prov,
		session:    cache,
		log:        log,
		labels:     labels,
		maxRetries: cfg.Fetch.MaxRetries,
		startInput: si,
		endInput:   ei,
		results:    rt,
		spin:       sp,
		status:     "Ready",
	}
}

// Init implements tea.Model. The first fetch runs on load, like the
// original tool.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.startFetch())
}

// startFetch validates the inputs and kicks off a fetch command. Validation
// failures never reach the provider.
func (m *Model) startFetch() tea.Cmd {
	q, err := m.buildQuery()
	if err != nil {
		return func() tea.Msg { return invalidQueryMsg{err} }
	}
	m.loading = true
	m.status = fmt.Sprintf("Fetching %s...", q.Symbol)
	m.statusErr = false

	prov, retries, log := m.provider, m.maxRetries, m.log
	return func() tea.Msg {
		col := &advisory.Collector{}
		f := fetcher.New(prov, col, retries, log)
		series := f.Fetch(q)
		return fetchResultMsg{query: q, series: series, advisories: col.Messages()}
	}
}

func (m *Model) buildQuery() (model.Query, error) {
	start, err := time.Parse(model.DateLayout, m.startInput.Value())
	if err != nil {
		return model.Query{}, fmt.Errorf("start date: want %s", model.DateLayout)
	}
	end, err := time.Parse(model.DateLayout, m.endInput.Value())
	if err != nil {
		return model.Query{}, fmt.Errorf("end date: want %s", model.DateLayout)
	}
	q := model.Query{Symbol: m.cfg.Tickers[m.cursor].Symbol, Start: start, End: end}
	if err := q.Validate(); err != nil {
		return model.Query{}, err
	}
	return q, nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc":
			if m.focus != focusStart && m.focus != focusEnd {
				return m, tea.Quit
			}
		case "tab":
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + focusCount - 1) % focusCount)
			return m, nil
		case "enter":
			if !m.loading && m.focus != focusTable {
				return m, m.startFetch()
			}
			return m, nil
		case "up", "k":
			if m.focus == focusTickers {
				if m.cursor > 0 {
					m.cursor--
				}
				return m, nil
			}
		case "down", "j":
			if m.focus == focusTickers {
				if m.cursor < len(m.cfg.Tickers)-1 {
					m.cursor++
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 10; h > 4 {
			m.results.SetHeight(h)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case invalidQueryMsg:
		m.status = msg.err.Error()
		m.statusErr = true
		return m, nil

	case fetchResultMsg:
		m.loading = false
		m.fetched = true
		m.advisories = msg.advisories
		m.session.Put(msg.query, msg.series)
		rows := make([]table.Row, len(msg.series))
		for i, p := range msg.series {
			rows[i] = table.Row{p.Date, p.Close.StringFixed(2)}
		}
		m.results.SetRows(rows)
		if len(msg.series) == 0 {
			m.status = "No data, or no trading days in the selected range."
			m.statusErr = true
		} else {
			m.status = render.Summary(msg.query, msg.series)
			m.statusErr = false
		}
		return m, nil
	}

	// Route remaining input to the focused widget.
	switch m.focus {
	case focusStart:
		var cmd tea.Cmd
		m.startInput, cmd = m.startInput.Update(msg)
		cmds = append(cmds, cmd)
	case focusEnd:
		var cmd tea.Cmd
		m.endInput, cmd = m.endInput.Update(msg)
		cmds = append(cmds, cmd)
	case focusTable:
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(f int) {
	m.focus = f
	m.startInput.Blur()
	m.endInput.Blur()
	m.results.Blur()
	switch f {
	case focusStart:
		m.startInput.Focus()
	case focusEnd:
		m.endInput.Focus()
	case focusTable:
		m.results.Focus()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var side string
	side += titleStyle.Render("Parameters") + "\n\n"
	for i, t := range m.cfg.Tickers {
		line := fmt.Sprintf("  %s (%s)", t.Name, t.Symbol)
		if i == m.cursor {
			line = selectedStyle.Render(fmt.Sprintf("> %s (%s)", t.Name, t.Symbol))
		}
		side += line + "\n"
	}
	side += "\n"
	side += dimStyle.Render("Start") + " " + m.startInput.View() + "\n"
	side += dimStyle.Render("End  ") + " " + m.endInput.View() + "\n\n"
	side += dimStyle.Render("tab: focus • enter: fetch • q: quit")

	var main string
	main += titleStyle.Render("Historical daily closes") + "\n\n"
	if m.loading {
		main += m.spin.View() + " " + m.status + "\n"
	} else if m.statusErr {
		main += errorStyle.Render(m.status) + "\n"
	} else {
		main += statusStyle.Render(m.status) + "\n"
	}
	for _, a := range m.advisories {
		if a.Level == advisory.Error {
			main += errorStyle.Render("! "+a.Text) + "\n"
		} else {
			main += warnStyle.Render("! "+a.Text) + "\n"
		}
	}
	if m.fetched && len(m.results.Rows()) > 0 {
		main += "\n" + m.results.View() + "\n"
		main += dimStyle.Render("Select rows with your terminal and copy straight into a spreadsheet.")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebarStyle.Render(side), lipgloss.NewStyle().Padding(1, 2).Render(main))
}

// Run starts the interactive surface.
func Run(cfg *config.Config, prov provider.Provider, cache *session.Cache, log zerolog.Logger) error {
	p := tea.NewProgram(NewModel(cfg, prov, cache, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
