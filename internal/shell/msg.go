// Package shell implements the interactive terminal contact manager: a search
// field, the contact list, an add form, and a confirmation screen for removal.
package shell

import "github.com/smileynet/contactbook/internal/contact"

// Mode represents the current shell screen.
type Mode int

const (
	ModeBrowse  Mode = iota // List, search, and form are shown.
	ModeConfirm             // Waiting for the user to confirm a removal.
)

// Focus identifies which widget receives key input in browse mode.
// Tab cycles in declaration order.
type Focus int

const (
	FocusSearch Focus = iota
	FocusList
	FocusFirst
	FocusLast
	FocusPhone

	focusCount = int(FocusPhone) + 1
)

// Op names the store mutation a ResultMsg belongs to.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// --- Consumer-side interfaces ---

// Store is the contact persistence the shell drives.
type Store interface {
	Add(first, last, phone string) contact.Result
	Remove(line string) contact.Result
	List() ([]string, error)
}

// --- tea.Msg types ---

// ContactsMsg carries the result of a Store.List() reload.
type ContactsMsg struct {
	Lines []string
	Err   error
}

// ResultMsg carries the result of a store mutation.
type ResultMsg struct {
	Op     Op
	Result contact.Result
}

// clearStatusMsg expires the status line set with the matching sequence number.
type clearStatusMsg struct {
	seq int
}
