package createevent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/render"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Width(12)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
)

type field int

const (
	fieldTitle field = iota
	fieldDescription
	fieldVenue
	fieldDate
	fieldTime
	fieldFormLink
	fieldSheetLink
	fieldImage
	numFields
)

var labels = [numFields]string{"title", "description", "venue", "date", "time", "form link", "sheet link", "image"}

// Model is the create event form for clubs.
type Model struct {
	inputs     [numFields]textinput.Model
	focused    field
	client     *api.Client
	err        string
	submitting bool
	width      int
	height     int
}

// New creates an empty form.
func New(client *api.Client) Model {
	placeholders := [numFields]string{
		"Event title",
		"What is happening",
		"Where (e.g. LT-1)",
		"YYYY-MM-DD",
		"HH:MM",
		"https://forms.gle/... (students register here)",
		"https://docs.google.com/spreadsheets/... (optional)",
		"/path/to/poster.png (optional)",
	}
	limits := [numFields]int{120, 2000, 120, 10, 5, 512, 512, 1024}

	m := Model{client: client}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = 60
		m.inputs[i] = in
	}
	m.inputs[fieldTitle].Focus()
	return m
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	fw := w - 18
	if fw > 80 {
		fw = 80
	}
	for i := range m.inputs {
		m.inputs[i].Width = fw
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.focused = (m.focused + 1) % numFields
			return m, m.updateFocus()
		case "shift+tab", "up":
			m.focused = (m.focused + numFields - 1) % numFields
			return m, m.updateFocus()
		case "ctrl+s":
			return m, m.submit()
		}

	case messages.EventCreatedMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) value(f field) string {
	return strings.TrimSpace(m.inputs[f].Value())
}

// Validate checks the form and returns the event to create.
func (m *Model) Validate() (api.NewEvent, error) {
	ev := api.NewEvent{
		Title:           m.value(fieldTitle),
		Description:     m.value(fieldDescription),
		Venue:           m.value(fieldVenue),
		Date:            m.value(fieldDate),
		Time:            m.value(fieldTime),
		FormLink:        m.value(fieldFormLink),
		GoogleSheetLink: m.value(fieldSheetLink),
	}
	switch {
	case ev.Title == "":
		return ev, fmt.Errorf("title is required")
	case ev.Venue == "":
		return ev, fmt.Errorf("venue is required")
	case ev.Date == "":
		return ev, fmt.Errorf("date is required")
	}
	if _, ok := render.ParseEventDate(ev.Date); !ok {
		return ev, fmt.Errorf("date must look like 2026-10-20")
	}
	return ev, nil
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	ev, err := m.Validate()
	if err != nil {
		m.err = err.Error()
		return nil
	}
	m.submitting = true
	m.err = ""

	client := m.client
	imagePath := m.value(fieldImage)
	return func() tea.Msg {
		var image *api.Upload
		if imagePath != "" {
			f, err := os.Open(imagePath)
			if err != nil {
				return messages.EventCreatedMsg{Err: fmt.Errorf("opening image: %w", err)}
			}
			defer f.Close()
			image = &api.Upload{Filename: filepath.Base(imagePath), Content: f}
		}
		created, err := client.CreateEvent(context.Background(), ev, image)
		return messages.EventCreatedMsg{Event: created, Err: err}
	}
}

func (m *Model) updateFocus() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[m.focused].Focus()
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Create Event"))
	sb.WriteString("\n\n")

	for i := range m.inputs {
		sb.WriteString(labelStyle.Render(labels[i]) + " " + m.inputs[i].View())
		sb.WriteString("\n\n")
	}

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString("Creating...")
	} else {
		sb.WriteString(hintStyle.Render("Tab to switch fields | Ctrl+S to create | Esc to cancel"))
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
