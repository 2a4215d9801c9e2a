package announce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("#312E81")).Padding(0, 1)
	itemStyle     = lipgloss.NewStyle().Padding(0, 1)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type focus int

const (
	focusMessage focus = iota
	focusFile
	focusList
)

type announcementsLoadedMsg struct {
	EventID       string
	Announcements []api.Announcement
	Err           error
}

type announcementDeletedMsg struct {
	ID  string
	Err error
}

// Model is the announcement composer for one of a club's events. It also
// lists what was already posted so it can be deleted.
type Model struct {
	eventID    string
	eventTitle string
	textarea   textarea.Model
	fileInput  textinput.Model
	focused    focus

	posted        []api.Announcement
	selectedIdx   int
	confirmDelete bool

	client     *api.Client
	err        string
	submitting bool
	width      int
	height     int
}

// New creates a composer for eventID.
func New(eventID, eventTitle string, client *api.Client) Model {
	ta := textarea.New()
	ta.Placeholder = "Write an announcement..."
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(6)

	fi := textinput.New()
	fi.Placeholder = "/path/to/attachment (optional)"
	fi.Width = 60

	return Model{
		eventID:    eventID,
		eventTitle: eventTitle,
		textarea:   ta,
		fileInput:  fi,
		client:     client,
	}
}

// Init loads the announcements already posted.
func (m Model) Init() tea.Cmd {
	return m.loadPosted()
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	tw := w - 4
	if tw > 100 {
		tw = 100
	}
	m.textarea.SetWidth(tw)
	m.fileInput.Width = tw - 2
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() == "y" && m.selectedIdx < len(m.posted) {
				return m, m.deleteSelected()
			}
			return m, nil
		}
		switch msg.String() {
		case "tab":
			m.focused = (m.focused + 1) % 3
			return m, m.updateFocus()
		case "shift+tab":
			m.focused = (m.focused + 2) % 3
			return m, m.updateFocus()
		case "ctrl+s":
			return m, m.submit()
		}
		if m.focused == focusList {
			switch msg.String() {
			case "j", "down":
				if m.selectedIdx < len(m.posted)-1 {
					m.selectedIdx++
				}
			case "k", "up":
				if m.selectedIdx > 0 {
					m.selectedIdx--
				}
			case "x", "d":
				if len(m.posted) > 0 {
					m.confirmDelete = true
				}
			}
			return m, nil
		}

	case messages.AnnouncementPostedMsg:
		if msg.EventID != m.eventID {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.textarea.Reset()
		m.fileInput.Reset()
		return m, m.loadPosted()

	case announcementsLoadedMsg:
		if msg.EventID != m.eventID {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.posted = msg.Announcements
		if m.selectedIdx >= len(m.posted) {
			m.selectedIdx = max(len(m.posted)-1, 0)
		}
		return m, nil

	case announcementDeletedMsg:
		if msg.Err != nil {
			m.err = "Failed to delete announcement: " + msg.Err.Error()
			return m, nil
		}
		return m, m.loadPosted()
	}

	var cmd tea.Cmd
	switch m.focused {
	case focusMessage:
		m.textarea, cmd = m.textarea.Update(msg)
	case focusFile:
		m.fileInput, cmd = m.fileInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateFocus() tea.Cmd {
	m.textarea.Blur()
	m.fileInput.Blur()
	switch m.focused {
	case focusMessage:
		return m.textarea.Focus()
	case focusFile:
		return m.fileInput.Focus()
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		m.err = "Message cannot be empty"
		return nil
	}
	if m.submitting {
		return nil
	}
	m.submitting = true
	m.err = ""

	client := m.client
	eventID := m.eventID
	path := strings.TrimSpace(m.fileInput.Value())
	return func() tea.Msg {
		var file *api.Upload
		if path != "" {
			f, err := os.Open(path)
			if err != nil {
				return messages.AnnouncementPostedMsg{EventID: eventID, Err: fmt.Errorf("opening attachment: %w", err)}
			}
			defer f.Close()
			file = &api.Upload{Filename: filepath.Base(path), Content: f}
		}
		err := client.PostAnnouncement(context.Background(), eventID, text, file)
		return messages.AnnouncementPostedMsg{EventID: eventID, Err: err}
	}
}

func (m Model) loadPosted() tea.Cmd {
	client := m.client
	eventID := m.eventID
	return func() tea.Msg {
		anns, err := client.ListAnnouncements(context.Background(), eventID)
		return announcementsLoadedMsg{EventID: eventID, Announcements: anns, Err: err}
	}
}

func (m Model) deleteSelected() tea.Cmd {
	client := m.client
	id := m.posted[m.selectedIdx].ID
	return func() tea.Msg {
		err := client.DeleteAnnouncement(context.Background(), id)
		return announcementDeletedMsg{ID: id, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Announce: " + m.eventTitle))
	sb.WriteString("\n\n")
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.fileInput.View())
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString("Posting...")
	} else if m.confirmDelete {
		sb.WriteString(errorStyle.Render("Delete this announcement? (y/n)"))
	} else {
		sb.WriteString(hintStyle.Render("Tab to switch | Ctrl+S to post | x to delete (in list) | Esc to cancel"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(titleStyle.Render(fmt.Sprintf("Posted (%d)", len(m.posted))))
	sb.WriteString("\n")
	for i, a := range m.posted {
		line := render.Truncate(render.SingleLine(a.Message), 80)
		if ts := render.TimeAgo(a.CreatedAt); ts != "" {
			line += metaStyle.Render("  " + ts)
		}
		if m.focused == focusList && i == m.selectedIdx {
			sb.WriteString(selectedStyle.Render(line))
		} else {
			sb.WriteString(itemStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, sb.String())
}
