package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/smileynet/contactbook/internal/contact"
)

// DefaultStatusTimeout is how long a status message stays visible.
const DefaultStatusTimeout = 4 * time.Second

// Messages shown without calling the store.
const (
	msgRequired  = "First name and phone number are required."
	msgNoneShown = "Please select a contact to remove."
)

// fixedRows is the number of lines the view uses outside the list body:
// title, search, list border, three form rows, status, help, and spacing.
const fixedRows = 12

// status is the transient message under the form.
type status struct {
	text string
	ok   bool
	seq  int
}

// Model is the root Bubble Tea model for the terminal shell. It holds no
// contact state beyond the last List() result; every mutation reloads it.
type Model struct {
	store Store
	log   zerolog.Logger

	mode    Mode
	focus   Focus
	search  textinput.Model
	fields  [3]textinput.Model // first, last, phone
	lines   []string
	loadErr error
	cursor  int // Index into visible().
	confirm confirmState
	status  status

	statusTimeout time.Duration
	width         int
	height        int
	help          help.Model

	listKeys    listKeys
	inputKeys   inputKeys
	confirmKeys confirmKeys
}

// ModelOption configures optional Model dependencies.
type ModelOption func(*Model)

// WithStatusTimeout sets how long status messages stay visible.
func WithStatusTimeout(d time.Duration) ModelOption {
	return func(m *Model) {
		if d > 0 {
			m.statusTimeout = d
		}
	}
}

// WithLogger sets the logger for shell events.
func WithLogger(l zerolog.Logger) ModelOption {
	return func(m *Model) {
		m.log = l.With().Str("component", "shell").Logger()
	}
}

// NewModel creates a shell Model in browse mode with the list focused.
func NewModel(store Store, opts ...ModelOption) Model {
	m := Model{
		store:         store,
		log:           zerolog.Nop(),
		mode:          ModeBrowse,
		focus:         FocusList,
		search:        newInput("Search contacts..."),
		statusTimeout: DefaultStatusTimeout,
		help:          help.New(),
		listKeys:      ListKeyMap(),
		inputKeys:     InputKeyMap(),
		confirmKeys:   ConfirmKeyMap(),
	}
	m.fields[0] = newInput("First name")
	m.fields[1] = newInput("Last name")
	m.fields[2] = newInput("Phone number")
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 64
	return ti
}

// loadContacts returns a tea.Cmd that re-reads the contact file.
func loadContacts(s Store) tea.Cmd {
	return func() tea.Msg {
		lines, err := s.List()
		return ContactsMsg{Lines: lines, Err: err}
	}
}

// addContact returns a tea.Cmd that calls Store.Add.
func addContact(s Store, first, last, phone string) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Op: OpAdd, Result: s.Add(first, last, phone)}
	}
}

// removeContact returns a tea.Cmd that calls Store.Remove.
func removeContact(s Store, line string) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Op: OpRemove, Result: s.Remove(line)}
	}
}

// Init loads the contact list.
func (m Model) Init() tea.Cmd {
	return loadContacts(m.store)
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ContactsMsg:
		m.lines = msg.Lines
		m.loadErr = msg.Err
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("loading contacts failed")
		}
		m.clampCursor()
		return m, nil

	case ResultMsg:
		return m.applyResult(msg)

	case clearStatusMsg:
		if msg.seq == m.status.seq {
			m.status.text = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == ModeConfirm {
			return m.handleConfirmKey(msg)
		}
		return m.handleBrowseKey(msg)
	}

	return m, nil
}

// applyResult shows the mutation outcome and reloads the list. A failed add
// keeps the form so the user can correct it.
func (m Model) applyResult(msg ResultMsg) (tea.Model, tea.Cmd) {
	res := msg.Result
	ev := m.log.Info()
	if !res.OK() {
		ev = m.log.Warn().Err(res.Err)
	}
	ev.Str("op", string(msg.Op)).Str("outcome", string(res.Outcome)).Msg(res.Message)

	m, statusCmd := m.withStatus(res.Message, res.OK())
	if msg.Op == OpAdd && !res.OK() {
		return m, statusCmd
	}
	if msg.Op == OpAdd {
		for i := range m.fields {
			m.fields[i].Reset()
		}
		m = m.withFocus(FocusFirst)
	}
	return m, tea.Batch(statusCmd, loadContacts(m.store))
}

// withStatus sets the status line and schedules its expiry. A later message
// bumps the sequence so an earlier expiry leaves it in place.
func (m Model) withStatus(text string, ok bool) (Model, tea.Cmd) {
	m.status.seq++
	m.status.text = text
	m.status.ok = ok
	seq := m.status.seq
	return m, tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmKeys.Yes):
		line := m.confirm.line
		m.mode = ModeBrowse
		m.confirm = confirmState{}
		return m, removeContact(m.store, line)
	case key.Matches(msg, m.confirmKeys.No):
		m.mode = ModeBrowse
		m.confirm = confirmState{}
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyTab {
		return m.withFocus(Focus((int(m.focus) + 1) % focusCount)), nil
	}
	if msg.Type == tea.KeyShiftTab {
		return m.withFocus(Focus((int(m.focus) + focusCount - 1) % focusCount)), nil
	}

	switch m.focus {
	case FocusList:
		return m.handleListKey(msg)
	case FocusSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleFormKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visible()
	switch {
	case key.Matches(msg, m.listKeys.Up):
		if len(visible) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(visible) - 1
			}
		}
	case key.Matches(msg, m.listKeys.Down):
		if len(visible) > 0 {
			m.cursor++
			if m.cursor >= len(visible) {
				m.cursor = 0
			}
		}
	case key.Matches(msg, m.listKeys.Remove):
		line, ok := m.Selected()
		if !ok {
			return m.withStatus(msgNoneShown, false)
		}
		m.mode = ModeConfirm
		m.confirm = confirmState{line: line}
	case key.Matches(msg, m.listKeys.Search):
		return m.withFocus(FocusSearch), nil
	case key.Matches(msg, m.listKeys.Add):
		return m.withFocus(FocusFirst), nil
	case key.Matches(msg, m.listKeys.Reload):
		return m, loadContacts(m.store)
	case key.Matches(msg, m.listKeys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.inputKeys.Back) || key.Matches(msg, m.inputKeys.Submit) {
		return m.withFocus(FocusList), nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.clampCursor()
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.inputKeys.Back):
		return m.withFocus(FocusList), nil
	case key.Matches(msg, m.inputKeys.Save):
		return m.submit()
	case key.Matches(msg, m.inputKeys.Submit):
		if m.focus == FocusPhone {
			return m.submit()
		}
		return m.withFocus(m.focus + 1), nil
	}

	idx := int(m.focus - FocusFirst)
	var cmd tea.Cmd
	m.fields[idx], cmd = m.fields[idx].Update(msg)
	return m, cmd
}

// submit validates the form locally and dispatches Store.Add.
func (m Model) submit() (tea.Model, tea.Cmd) {
	first := strings.TrimSpace(m.fields[0].Value())
	last := strings.TrimSpace(m.fields[1].Value())
	phone := strings.TrimSpace(m.fields[2].Value())
	if first == "" || phone == "" {
		return m.withStatus(msgRequired, false)
	}
	return m, addContact(m.store, first, last, phone)
}

// withFocus moves keyboard focus, blurring every other input.
func (m Model) withFocus(f Focus) Model {
	m.focus = f
	m.search.Blur()
	for i := range m.fields {
		m.fields[i].Blur()
	}
	switch f {
	case FocusSearch:
		m.search.Focus()
	case FocusFirst, FocusLast, FocusPhone:
		m.fields[int(f-FocusFirst)].Focus()
	}
	return m
}

// visible returns the loaded lines that match the search text.
func (m Model) visible() []string {
	return contact.Filter(m.lines, strings.TrimSpace(m.search.Value()))
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the highlighted visible line, if any.
func (m Model) Selected() (string, bool) {
	visible := m.visible()
	if len(visible) == 0 || m.cursor >= len(visible) {
		return "", false
	}
	return visible[m.cursor], true
}

// Status returns the current status text.
func (m Model) Status() string {
	return m.status.text
}

// View renders the shell.
func (m Model) View() string {
	if m.mode == ModeConfirm {
		body := m.confirm.View()
		return lipgloss.JoinVertical(lipgloss.Left, body, "", m.help.View(HelpBindings(m.mode, m.focus)))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Contact Manager"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")

	border := UnfocusedBorder()
	if m.focus == FocusList {
		border = FocusedBorder()
	}
	if m.width > 2 {
		border = border.Width(m.width - 2)
	}
	b.WriteString(border.Render(m.viewList()))
	b.WriteString("\n")

	labels := [3]string{"First Name:", "Last Name:", "Phone Number:"}
	for i, f := range m.fields {
		fmt.Fprintf(&b, "%s%s\n", labelStyle.Render(labels[i]), f.View())
	}

	b.WriteString(StatusText(m.status.text, m.status.ok))
	b.WriteString("\n")
	b.WriteString(m.help.View(HelpBindings(m.mode, m.focus)))
	return b.String()
}

// viewList renders the visible lines, scrolled so the cursor stays on screen.
func (m Model) viewList() string {
	if m.loadErr != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.loadErr))
	}
	visible := m.visible()
	if len(m.lines) == 0 {
		return dimStyle.Render("No contacts.")
	}
	if len(visible) == 0 {
		return dimStyle.Render("No matches.")
	}

	rows := len(visible)
	if m.height > 0 {
		rows = m.height - fixedRows
		if rows < 3 {
			rows = 3
		}
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(visible) {
		end = len(visible)
	}

	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == m.cursor && m.focus == FocusList {
			out = append(out, selectedStyle.Render(CursorMarker+visible[i]))
			continue
		}
		out = append(out, "  "+visible[i])
	}
	return strings.Join(out, "\n")
}
