package shell

import "github.com/charmbracelet/bubbles/key"

// listKeys holds key bindings while the contact list has focus.
type listKeys struct {
	Up     key.Binding
	Down   key.Binding
	Remove key.Binding
	Search key.Binding
	Add    key.Binding
	Reload key.Binding
	Tab    key.Binding
	Quit   key.Binding
}

// ShortHelp returns the list bindings for the help bar.
func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Remove, k.Search, k.Add, k.Reload, k.Quit}
}

// FullHelp returns the list bindings grouped for expanded help.
func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Remove},
		{k.Search, k.Add, k.Reload},
		{k.Tab, k.Quit},
	}
}

// inputKeys holds key bindings while the search field or a form field has focus.
type inputKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Save   key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns the input bindings for the help bar.
func (k inputKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Save, k.Back, k.Quit}
}

// FullHelp returns the input bindings grouped for expanded help.
func (k inputKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Submit},
		{k.Save, k.Back, k.Quit},
	}
}

// confirmKeys holds key bindings for the removal confirmation screen.
type confirmKeys struct {
	Yes key.Binding
	No  key.Binding
}

// ShortHelp returns the confirm bindings for the help bar.
func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}

// FullHelp returns the confirm bindings grouped for expanded help.
func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Yes, k.No}}
}

// ListKeyMap returns the key bindings for list focus.
func ListKeyMap() listKeys {
	return listKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// InputKeyMap returns the key bindings for the search field and form fields.
// Submit is only meaningful in the form; in the search field enter returns
// focus to the list.
func InputKeyMap() inputKeys {
	return inputKeys{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next/add"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "add contact"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to list"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ConfirmKeyMap returns the key bindings for the confirmation screen.
func ConfirmKeyMap() confirmKeys {
	return confirmKeys{
		Yes: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y/enter", "confirm"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "cancel"),
		),
	}
}
