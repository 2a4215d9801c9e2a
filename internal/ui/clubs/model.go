package clubs

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true).Padding(1, 0)
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3"))
	aboutStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	selectedStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#818CF8")).PaddingLeft(1)
	itemStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// Model is the clubs directory.
type Model struct {
	clubs       []api.Club
	selectedIdx int
	loading     bool
	err         string
	client      *api.Client
	width       int
	height      int
}

func New(client *api.Client) Model {
	return Model{loading: true, client: client}
}

// Init loads the clubs.
func (m Model) Init() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		clubs, err := client.ListClubs(context.Background())
		return messages.ClubsLoadedMsg{Clubs: clubs, Err: err}
	}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ClubsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		} else {
			m.clubs = msg.Clubs
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx < len(m.clubs)-1 {
				m.selectedIdx++
			}
		case "k", "up":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "o", "enter":
			if m.selectedIdx < len(m.clubs) && m.clubs[m.selectedIdx].Website != "" {
				site := m.clubs[m.selectedIdx].Website
				return m, func() tea.Msg {
					return messages.StatusMsg{Text: "Opening: " + site}
				}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.loading {
		return titleStyle.Render("Loading clubs...")
	}
	if m.err != "" {
		return titleStyle.Render("Error: " + m.err)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Clubs"))
	sb.WriteString("\n")
	if len(m.clubs) == 0 {
		sb.WriteString("\n  No clubs yet.\n")
		return sb.String()
	}

	width := m.width - 6
	for i, c := range m.clubs {
		var entry strings.Builder
		entry.WriteString(nameStyle.Render(c.ClubName))
		if c.Website != "" {
			entry.WriteString(linkStyle.Render("  " + c.Website))
		}
		if c.Description != "" {
			entry.WriteString("\n")
			entry.WriteString(aboutStyle.Render(render.ToText(c.Description, width)))
		}
		if i == m.selectedIdx {
			sb.WriteString(selectedStyle.Render(entry.String()))
		} else {
			sb.WriteString(itemStyle.Render(entry.String()))
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}
