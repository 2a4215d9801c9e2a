package eventview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/cache"
	"github.com/fragmede/campusevents/internal/config"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/session"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true).Padding(1, 0, 0, 0)
	metaStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3"))
	bodyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5B4FC")).Bold(true)
	posterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true)
	registeredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true)
	actionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4F46E5")).Padding(0, 1)
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// ErrNoForm is reported when a student tries to register for an event
// that has no registration form.
var ErrNoForm = errors.New("no registration form provided for this event")

// Model is the event detail view.
type Model struct {
	eventID       string
	event         *api.Event
	announcements []api.Announcement
	loading       bool
	err           string
	registering   bool
	snap          session.Snapshot

	viewport viewport.Model
	client   *api.Client
	cache    *cache.DB
	cfg      config.Config
	width    int
	height   int
}

// New creates the detail view for eventID.
func New(eventID string, cfg config.Config, client *api.Client, db *cache.DB, snap session.Snapshot) Model {
	return Model{
		eventID:  eventID,
		loading:  true,
		snap:     snap,
		viewport: viewport.New(0, 0),
		client:   client,
		cache:    db,
		cfg:      cfg,
	}
}

// Init loads the event and its announcements.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h
	m.refresh()
}

// SetSnapshot updates the registration state shown for the event.
func (m *Model) SetSnapshot(s session.Snapshot) {
	m.snap = s
	m.refresh()
}

// EventID returns the event being shown.
func (m Model) EventID() string {
	return m.eventID
}

// Event returns the loaded event, or nil while loading.
func (m Model) Event() *api.Event {
	return m.event
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.EventLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		} else {
			m.err = ""
			m.event = msg.Event
			m.announcements = msg.Announcements
		}
		m.refresh()
		return m, nil

	case messages.RegisterResultMsg:
		if msg.EventID != m.eventID {
			return m, nil
		}
		m.registering = false
		m.refresh()
		return m, nil

	case messages.AnnouncementPostedMsg:
		if msg.EventID == m.eventID && msg.Err == nil {
			return m, m.load()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "R":
			return m, m.register()
		case "o":
			if m.event != nil && m.event.FormLink != "" {
				link := m.event.FormLink
				return m, func() tea.Msg {
					return messages.StatusMsg{Text: "Opening: " + link}
				}
			}
			return m, nil
		case "a":
			if m.event != nil && m.snap.Role == api.RoleClub {
				id, title := m.event.ID, m.event.Title
				return m, func() tea.Msg {
					return messages.OpenAnnounceMsg{EventID: id, EventTitle: title}
				}
			}
			return m, nil
		case "r":
			m.loading = true
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

// register opens the event's form and records the registration with the
// backend. Only students register; an event without a form cannot be
// registered for.
func (m *Model) register() tea.Cmd {
	ev := m.event
	switch {
	case ev == nil || m.registering:
		return nil
	case !m.snap.LoggedIn():
		return func() tea.Msg { return messages.OpenLoginMsg{} }
	case m.snap.Role != api.RoleStudent:
		return status("Only students can register for events", true)
	case m.snap.IsRegistered(ev.ID):
		return status("Already registered", false)
	case ev.FormLink == "":
		return status(ErrNoForm.Error(), true)
	}

	m.registering = true
	m.refresh()
	client := m.client
	id, link := ev.ID, ev.FormLink
	return tea.Batch(
		func() tea.Msg { return messages.StatusMsg{Text: "Opening: " + link} },
		func() tea.Msg {
			err := client.RegisterForEvent(context.Background(), id)
			return messages.RegisterResultMsg{EventID: id, Err: err}
		},
	)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return messages.StatusMsg{Text: text, IsError: isErr}
	}
}

func (m Model) load() tea.Cmd {
	id := m.eventID
	client := m.client
	db := m.cache
	ttl := m.cfg.EventListTTL
	return func() tea.Msg {
		ctx := context.Background()
		ev, err := findEvent(ctx, id, client, db, ttl)
		if err != nil {
			return messages.EventLoadedMsg{Err: err}
		}
		anns, err := client.ListAnnouncements(ctx, id)
		if err != nil {
			anns = nil
		}
		return messages.EventLoadedMsg{Event: ev, Announcements: anns}
	}
}

func findEvent(ctx context.Context, id string, client *api.Client, db *cache.DB, ttl time.Duration) (*api.Event, error) {
	if events, fresh, _ := db.GetEventList(cache.ListAll, ttl); fresh {
		for i := range events {
			if events[i].ID == id {
				return &events[i], nil
			}
		}
	}
	return client.GetEvent(ctx, id)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
}

func (m Model) render() string {
	if m.loading && m.event == nil {
		return titleStyle.Render("Loading event...")
	}
	if m.err != "" {
		return titleStyle.Render("Error: " + m.err)
	}
	if m.event == nil {
		return titleStyle.Render("Event not found")
	}

	width := m.width - 4
	if width > 100 {
		width = 100
	}

	ev := m.event
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(ev.Title))
	sb.WriteString("\n")
	sb.WriteString(metaStyle.Render(fmt.Sprintf("%s • %s • %s",
		orTBD(ev.Venue, "Venue TBD"), render.FormatEventDate(ev.Date), render.FormatEventTime(ev.Time))))
	sb.WriteString("\n\n")

	if ev.Description != "" {
		sb.WriteString(bodyStyle.Render(render.ToText(ev.Description, width)))
		sb.WriteString("\n\n")
	}
	if ev.FormLink != "" {
		sb.WriteString(metaStyle.Render("Form: " + ev.FormLink))
		sb.WriteString("\n\n")
	}

	switch {
	case m.snap.Role == api.RoleStudent && m.snap.IsRegistered(ev.ID):
		sb.WriteString(registeredStyle.Render("✓ Already Registered"))
	case m.registering:
		sb.WriteString(metaStyle.Render("Registering..."))
	case m.snap.Role != api.RoleClub:
		sb.WriteString(actionStyle.Render("R  Register Now"))
	default:
		sb.WriteString(actionStyle.Render("a  Post Announcement"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(sectionStyle.Render("Announcements"))
	sb.WriteString("\n")
	if len(m.announcements) == 0 {
		sb.WriteString(hintStyle.Render("  No announcements yet."))
		sb.WriteString("\n")
	}
	for _, a := range m.announcements {
		sb.WriteString("\n")
		sb.WriteString(posterStyle.Render(a.PosterName()))
		if ts := render.TimeAgo(a.CreatedAt); ts != "" {
			sb.WriteString(metaStyle.Render(" • " + ts))
		}
		sb.WriteString("\n")
		sb.WriteString(bodyStyle.Render(render.ToText(a.Message, width)))
		sb.WriteString("\n")
		if a.File != "" {
			sb.WriteString(metaStyle.Render("Attachment: " + a.File))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(hintStyle.Render("R register | o open form | a announce (clubs) | r refresh | esc back"))
	return sb.String()
}

func orTBD(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
