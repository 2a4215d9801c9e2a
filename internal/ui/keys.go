package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	Back      key.Binding
	Help      key.Binding
	Enter     key.Binding
	Refresh   key.Binding
	Login     key.Binding
	Logout    key.Binding
	Notify    key.Binding
	Clubs     key.Binding
	Create    key.Binding
	Dashboard key.Binding
	Announce  key.Binding
	Register  key.Binding
	OpenForm  key.Binding
	Delete    key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Tab1      key.Binding
	Tab2      key.Binding
	Filter    key.Binding
	Submit    key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
	Logout:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "logout")),
	Notify:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notifications")),
	Clubs:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clubs")),
	Create:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create event")),
	Dashboard: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "registrations dashboard")),
	Announce:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "announce")),
	Register:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "register")),
	OpenForm:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete event")),
	NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Tab1:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all events")),
	Tab2:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "registered / mine")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.NextTab, k.Login, k.Notify, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.Back, k.Refresh, k.Filter, k.Quit},
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2},
		{k.Login, k.Logout, k.Notify, k.Clubs, k.Help},
		{k.Register, k.OpenForm, k.Create, k.Announce, k.Delete, k.Dashboard, k.Submit},
	}
}
