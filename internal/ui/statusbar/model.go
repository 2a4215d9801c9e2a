package statusbar

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	barStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1E1B4B")).
			Foreground(lipgloss.Color("#FFFFFF"))

	activeTabStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#4F46E5")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3730A3")).
				Foreground(lipgloss.Color("#C7D2FE")).
				Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1E1B4B")).
			Foreground(lipgloss.Color("#22C55E")).
			Padding(0, 1)

	notifyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#DC2626")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	statusTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1E1B4B")).
			Foreground(lipgloss.Color("#AAAAAA")).
			Padding(0, 1)

	errorTextStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1E1B4B")).
			Foreground(lipgloss.Color("#F87171")).
			Padding(0, 1)
)

// Model is the status bar at the bottom of the screen.
type Model struct {
	width       int
	activeTab   messages.Tab
	snap        session.Snapshot
	unreadCount int
	statusText  string
	statusErr   bool
}

func New() Model {
	return Model{activeTab: messages.TabAll}
}

func (m *Model) SetSize(w int) {
	m.width = w
}

func (m *Model) SetActiveTab(t messages.Tab) {
	m.activeTab = t
}

// SetSnapshot updates the user shown on the right.
func (m *Model) SetSnapshot(s session.Snapshot) {
	m.snap = s
}

func (m *Model) SetUnread(count int) {
	m.unreadCount = count
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isErr bool) {
	m.statusText = text
	m.statusErr = isErr
}

// Tabs returns the tabs available to role. My Events is only for clubs.
func Tabs(role api.Role) []messages.Tab {
	tabs := []messages.Tab{messages.TabAll, messages.TabRegistered}
	if role == api.RoleClub {
		tabs = []messages.Tab{messages.TabAll, messages.TabMine}
	}
	return tabs
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	var tabsStr string
	for _, t := range Tabs(m.snap.Role) {
		if t == m.activeTab {
			tabsStr += activeTabStyle.Render(t.String())
		} else {
			tabsStr += inactiveTabStyle.Render(t.String())
		}
	}

	var right string
	if m.unreadCount > 0 {
		right += notifyStyle.Render(fmt.Sprintf(" %d ", m.unreadCount))
	}
	switch {
	case m.snap.Initializing:
		right += statusTextStyle.Render("checking session…")
	case m.snap.Identity != nil:
		right += userStyle.Render(fmt.Sprintf("%s (%s)", m.snap.Identity.DisplayName(), m.snap.Role))
	default:
		right += statusTextStyle.Render("L:login")
	}
	if m.statusText != "" {
		if m.statusErr {
			right += errorTextStyle.Render(m.statusText)
		} else {
			right += statusTextStyle.Render(m.statusText)
		}
	}

	tabsWidth := lipgloss.Width(tabsStr)
	rightWidth := lipgloss.Width(right)
	gap := m.width - tabsWidth - rightWidth
	if gap < 0 {
		gap = 0
	}
	mid := barStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}
