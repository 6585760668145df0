package shell

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/contact"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// newTestModel returns a model over a fresh file-backed store with a short
// status timeout so tick commands return quickly.
func newTestModel(t *testing.T, seed ...[3]string) (Model, *contact.Store) {
	t.Helper()
	store := contact.NewStore(filepath.Join(t.TempDir(), "contacts.txt"))
	for _, c := range seed {
		if res := store.Add(c[0], c[1], c[2]); !res.OK() {
			t.Fatalf("seed Add(%v) = %+v", c, res)
		}
	}
	m := NewModel(store, WithStatusTimeout(time.Millisecond))
	m = apply(t, m, m.Init()())
	return m, store
}

// apply feeds msg to m and returns the updated Model, discarding the Cmd.
func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// send feeds msg to m and returns the updated Model and Cmd.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText sends each rune of s as its own key press.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// drain executes cmd and feeds every resulting message back into m.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range execBatch(t, cmd) {
		m = apply(t, m, msg)
	}
	return m
}

// failingStore is a Store whose List always fails.
type failingStore struct{}

func (failingStore) Add(string, string, string) contact.Result { return contact.Result{} }
func (failingStore) Remove(string) contact.Result              { return contact.Result{} }
func (failingStore) List() ([]string, error)                   { return nil, errors.New("disk on fire") }
