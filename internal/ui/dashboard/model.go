package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/sheets"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5B4FC")).Bold(true).Padding(1, 0)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4F46E5")).Padding(0, 1)
	itemStyle     = lipgloss.NewStyle().Padding(0, 1)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	totalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5B4FC")).Bold(true).Padding(1, 0, 0, 0)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#6366F1")).Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")).Padding(0, 1)
)

// maxCell caps how wide a single cell is drawn.
const maxCell = 32

// SheetReader returns every row of the registration sheet behind a link.
type SheetReader interface {
	Rows(ctx context.Context, link string) ([][]string, error)
}

type eventsLoadedMsg struct {
	Events []api.Event
	Err    error
}

type sheetLoadedMsg struct {
	EventID string
	Rows    [][]string
	Err     error
}

// Model is the club dashboard: pick one of the club's events and see the
// registrations collected in its linked sheet.
type Model struct {
	clubName string
	events   []api.Event
	cursor   int
	selected string // event whose sheet is shown

	rows          [][]string
	loadingEvents bool
	loadingSheet  bool
	err           string

	client *api.Client
	reader SheetReader
	width  int
	height int
}

// New creates the dashboard. reader may be nil when no API key is
// configured; picking an event then reports sheets.ErrNoAPIKey.
func New(clubName string, client *api.Client, reader SheetReader) Model {
	return Model{
		clubName:      clubName,
		loadingEvents: true,
		client:        client,
		reader:        reader,
	}
}

// Init loads the club's events.
func (m Model) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		events, err := client.MyEvents(context.Background())
		return eventsLoadedMsg{Events: events, Err: err}
	}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Selected returns the event whose registrations are shown.
func (m Model) Selected() string {
	return m.selected
}

// Total is the number of registrations, the header row excluded.
func (m Model) Total() int {
	return max(len(m.rows)-1, 0)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		m.loadingEvents = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.events = msg.Events
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}
		return m, nil

	case sheetLoadedMsg:
		if msg.EventID != m.selected {
			return m, nil
		}
		m.loadingSheet = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			m.rows = nil
			return m, nil
		}
		m.rows = msg.Rows
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.events)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			return m, m.pick()
		case "r":
			if m.selected != "" {
				return m, m.load(m.selected)
			}
		}
	}
	return m, nil
}

// pick shows the registrations for the event under the cursor.
func (m *Model) pick() tea.Cmd {
	if m.cursor >= len(m.events) {
		return nil
	}
	return m.load(m.events[m.cursor].ID)
}

func (m *Model) load(eventID string) tea.Cmd {
	var link string
	for _, ev := range m.events {
		if ev.ID == eventID {
			link = ev.GoogleSheetLink
		}
	}
	m.selected = eventID
	m.rows = nil
	m.err = ""

	// No sheet linked means nothing to show, not an error.
	if link == "" {
		return nil
	}
	if m.reader == nil {
		m.err = sheets.ErrNoAPIKey.Error()
		return nil
	}
	if _, ok := sheets.SpreadsheetID(link); !ok {
		m.err = sheets.ErrInvalidLink.Error()
		return nil
	}

	m.loadingSheet = true
	reader := m.reader
	return func() tea.Msg {
		rows, err := reader.Rows(context.Background(), link)
		return sheetLoadedMsg{EventID: eventID, Rows: rows, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	name := m.clubName
	if name == "" {
		name = "Club"
	}
	sb.WriteString(titleStyle.Render(name + " Dashboard"))
	sb.WriteString("\n")

	switch {
	case m.loadingEvents:
		sb.WriteString(hintStyle.Render("Loading your events..."))
		return sb.String()
	case len(m.events) == 0 && m.err == "":
		sb.WriteString(hintStyle.Render("You have not created any events yet."))
		return sb.String()
	}

	sb.WriteString(labelStyle.Render("Select an Event:"))
	sb.WriteString("\n")
	for i, ev := range m.events {
		line := ev.Title
		if ev.ID == m.selected {
			line = "▸ " + line
		}
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(itemStyle.Render(line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	switch {
	case m.err != "":
		sb.WriteString(errorStyle.Render(m.err))
	case m.loadingSheet:
		sb.WriteString(hintStyle.Render("Fetching registrations..."))
	case len(m.rows) > 0:
		sb.WriteString(m.renderTable())
		sb.WriteString("\n")
		sb.WriteString(totalStyle.Render(fmt.Sprintf("Total Registrations: %d", m.Total())))
	case m.selected != "":
		sb.WriteString(hintStyle.Render("No registration data found."))
	}
	sb.WriteString("\n\n")
	sb.WriteString(hintStyle.Render("j/k move | enter show registrations | r reload | esc back"))
	return sb.String()
}

func (m Model) renderTable() string {
	clip := func(row []string) []string {
		out := make([]string, len(row))
		for i, c := range row {
			out[i] = render.Truncate(render.SingleLine(c), maxCell)
		}
		return out
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563"))).
		Headers(clip(m.rows[0])...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range m.rows[1:] {
		t.Row(clip(r)...)
	}
	return t.Render()
}
