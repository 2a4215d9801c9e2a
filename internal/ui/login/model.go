package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/campusevents/internal/api"
	"github.com/fragmede/campusevents/internal/ui/messages"
)

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	roleOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#4F46E5")).Padding(0, 1)
	roleOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B8FA3")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#818CF8")).Bold(true).
			Padding(1, 0)
)

// Mode selects between logging in and creating an account.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// Model is the login and account registration form.
type Model struct {
	mode       Mode
	nameInput  textinput.Model
	emailInput textinput.Model
	passInput  textinput.Model
	role       api.Role
	focusIndex int
	err        string
	submitting bool
	client     *api.Client
	width      int
	height     int
}

// New creates the form in login mode.
func New(client *api.Client) Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "full name or club name"
	nameInput.Width = 30

	emailInput := textinput.New()
	emailInput.Placeholder = "you@college.edu"
	emailInput.Width = 30

	passInput := textinput.New()
	passInput.Placeholder = "password"
	passInput.EchoMode = textinput.EchoPassword
	passInput.Width = 30

	m := Model{
		nameInput:  nameInput,
		emailInput: emailInput,
		passInput:  passInput,
		role:       api.RoleStudent,
		client:     client,
	}
	m.updateFocus()
	return m
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Mode returns the current form mode.
func (m Model) Mode() Mode {
	return m.mode
}

// inputs returns the visible inputs in tab order.
func (m *Model) inputs() []*textinput.Model {
	if m.mode == ModeRegister {
		return []*textinput.Model{&m.nameInput, &m.emailInput, &m.passInput}
	}
	return []*textinput.Model{&m.emailInput, &m.passInput}
}

func (m *Model) updateFocus() {
	for i, in := range m.inputs() {
		if i == m.focusIndex {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	if m.mode == ModeLogin {
		m.nameInput.Blur()
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.focusIndex = (m.focusIndex + 1) % len(m.inputs())
			m.updateFocus()
			return m, nil
		case "shift+tab", "up":
			n := len(m.inputs())
			m.focusIndex = (m.focusIndex + n - 1) % n
			m.updateFocus()
			return m, nil
		case "ctrl+r":
			if m.role == api.RoleStudent {
				m.role = api.RoleClub
			} else {
				m.role = api.RoleStudent
			}
			return m, nil
		case "ctrl+n":
			if m.mode == ModeLogin {
				m.mode = ModeRegister
			} else {
				m.mode = ModeLogin
			}
			m.focusIndex = 0
			m.err = ""
			m.updateFocus()
			return m, nil
		case "enter":
			return m, m.submit()
		}

	case messages.LoginResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	in := m.inputs()[m.focusIndex]
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	name := strings.TrimSpace(m.nameInput.Value())
	email := strings.TrimSpace(m.emailInput.Value())
	password := m.passInput.Value()
	if email == "" || password == "" {
		m.err = "Email and password required"
		return nil
	}
	if m.mode == ModeRegister && name == "" {
		m.err = "Name required"
		return nil
	}
	m.submitting = true
	m.err = ""

	client := m.client
	role := m.role
	if m.mode == ModeRegister {
		return func() tea.Msg {
			resp, err := client.Register(context.Background(), api.NewAccount{Name: name, Email: email, Password: password, Role: role})
			return messages.LoginResultMsg{Resp: resp, Err: err}
		}
	}
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), api.Credentials{Email: email, Password: password, Role: role})
		return messages.LoginResultMsg{Resp: resp, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder

	title := "Welcome Back"
	if m.mode == ModeRegister {
		title = "Create an Account"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	if m.mode == ModeRegister {
		sb.WriteString(labelStyle.Render("Name:"))
		sb.WriteString("\n")
		sb.WriteString(m.nameInput.View())
		sb.WriteString("\n\n")
	}
	sb.WriteString(labelStyle.Render("Email:"))
	sb.WriteString("\n")
	sb.WriteString(m.emailInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(labelStyle.Render("Password:"))
	sb.WriteString("\n")
	sb.WriteString(m.passInput.View())
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("Role: "))
	for _, r := range []api.Role{api.RoleStudent, api.RoleClub} {
		if r == m.role {
			sb.WriteString(roleOnStyle.Render(string(r)))
		} else {
			sb.WriteString(roleOffStyle.Render(string(r)))
		}
	}
	sb.WriteString("\n\n")

	if m.err != "" {
		sb.WriteString(errorStyle.Render(m.err))
		sb.WriteString("\n\n")
	}

	if m.submitting {
		if m.mode == ModeRegister {
			sb.WriteString("Creating account...")
		} else {
			sb.WriteString("Logging in...")
		}
	} else {
		other := "register"
		if m.mode == ModeRegister {
			other = "log in instead"
		}
		sb.WriteString(focusedStyle.Render("Enter") + " to submit, " +
			focusedStyle.Render("Ctrl+R") + " role, " +
			focusedStyle.Render("Ctrl+N") + " " + other + ", " +
			focusedStyle.Render("Esc") + " to cancel")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}
