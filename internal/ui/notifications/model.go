package notifications

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true).Padding(1, 0)
	notifStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#312E81")).Padding(0, 1)
	authorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true)
	unreadDotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
)

const pageSize = 50

// Model is the notifications view.
type Model struct {
	notifications []cache.Notification
	selectedIdx   int
	db            *cache.DB
	width         int
	height        int
}

func New(db *cache.DB) Model {
	return Model{db: db}
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Load refreshes the list from the database.
func (m *Model) Load() {
	list, err := m.db.ListNotifications(pageSize)
	if err != nil {
		return
	}
	m.notifications = list
	if m.selectedIdx >= len(list) {
		m.selectedIdx = 0
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.NewNotificationMsg:
		m.Load()
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx < len(m.notifications)-1 {
				m.selectedIdx++
			}
		case "k", "up":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "enter":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.notifications) {
				n := m.notifications[m.selectedIdx]
				m.db.MarkNotificationRead(n.ID)
				m.notifications[m.selectedIdx].Read = true
				unread := m.db.UnreadNotificationCount()
				return m, tea.Batch(
					func() tea.Msg { return messages.NewNotificationMsg{UnreadCount: unread} },
					func() tea.Msg { return messages.OpenEventMsg{EventID: n.EventID} },
				)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Notifications"))
	sb.WriteString("\n")

	if len(m.notifications) == 0 {
		sb.WriteString("\n  No notifications yet.\n")
		return sb.String()
	}

	for i, n := range m.notifications {
		var line strings.Builder

		if !n.Read {
			line.WriteString(unreadDotStyle.Render("● "))
		} else {
			line.WriteString("  ")
		}

		line.WriteString(authorStyle.Render(n.PostedBy))
		title := n.EventTitle
		if title == "" {
			title = "an event"
		}
		line.WriteString(metaStyle.Render(fmt.Sprintf(" posted on %s %s", title, render.TimeAgo(n.CreatedAt))))
		line.WriteString("\n")
		if n.Preview != "" {
			line.WriteString("  " + previewStyle.Render(render.Truncate(n.Preview, 80)))
		}

		entry := line.String()
		if i == m.selectedIdx {
			entry = selectedStyle.Render(entry)
		} else {
			entry = notifStyle.Render(entry)
		}
		sb.WriteString(entry + "\n")
	}

	return sb.String()
}
