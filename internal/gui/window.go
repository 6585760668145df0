// Package gui implements the desktop contact manager window on fyne.
package gui

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/smileynet/contactbook/internal/contact"
)

const (
	AppID    = "com.smileynet.contactbook"
	AppTitle = "Contact Manager"
)

// Store is the contact persistence the window drives.
type Store interface {
	Add(first, last, phone string) contact.Result
	Remove(line string) contact.Result
	List() ([]string, error)
}

// ConfirmFunc asks the user a yes/no question and reports the answer to cb.
type ConfirmFunc func(title, message string, cb func(bool))

// Window holds the widgets of the contact manager. Like the terminal shell it
// keeps no contact state beyond the last List() result.
type Window struct {
	win           fyne.Window
	store         Store
	log           zerolog.Logger
	confirm       ConfirmFunc
	statusTimeout time.Duration

	lines    []string
	visible  []string
	selected int

	search    *widget.Entry
	list      *widget.List
	first     *widget.Entry
	last      *widget.Entry
	phone     *widget.Entry
	status    *widget.Label
	statusSeq int
}

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger for window events.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Window) {
		w.log = l.With().Str("component", "gui").Logger()
	}
}

// WithConfirm replaces the confirmation dialog.
func WithConfirm(fn ConfirmFunc) Option {
	return func(w *Window) {
		w.confirm = fn
	}
}

// WithStatusTimeout sets how long status messages stay visible.
func WithStatusTimeout(d time.Duration) Option {
	return func(w *Window) {
		if d > 0 {
			w.statusTimeout = d
		}
	}
}

// New builds the widgets for win. Call Content to obtain the layout and
// Refresh to load the contacts.
func New(win fyne.Window, store Store, opts ...Option) *Window {
	w := &Window{
		win:           win,
		store:         store,
		log:           zerolog.Nop(),
		statusTimeout: 4 * time.Second,
		selected:      -1,
	}
	w.confirm = func(title, message string, cb func(bool)) {
		dialog.ShowConfirm(title, message, cb, w.win)
	}
	for _, opt := range opts {
		opt(w)
	}

	w.search = widget.NewEntry()
	w.search.SetPlaceHolder("Search contacts...")

	w.list = widget.NewList(
		func() int { return len(w.visible) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(w.visible) {
				obj.(*widget.Label).SetText(w.visible[id])
			}
		},
	)
	w.list.OnSelected = w.selectRow
	w.list.OnUnselected = func(widget.ListItemID) { w.selected = -1 }
	w.search.OnChanged = func(string) { w.applyFilter() }

	w.first = widget.NewEntry()
	w.last = widget.NewEntry()
	w.phone = widget.NewEntry()
	w.status = widget.NewLabel("")

	return w
}

// Content returns the window layout: search on top, the list filling the
// middle, and the remove button, add form, and status line at the bottom.
func (w *Window) Content() fyne.CanvasObject {
	form := widget.NewForm(
		widget.NewFormItem("First Name:", w.first),
		widget.NewFormItem("Last Name:", w.last),
		widget.NewFormItem("Phone Number:", w.phone),
	)
	bottom := container.NewVBox(
		widget.NewButton("Remove Selected Contact", w.RemoveSelected),
		form,
		widget.NewButton("Add Contact", w.Add),
		w.status,
	)
	return container.NewBorder(w.search, bottom, nil, nil, w.list)
}

// Refresh reloads every contact from the store and reapplies the search.
func (w *Window) Refresh() {
	lines, err := w.store.List()
	if err != nil {
		w.log.Warn().Err(err).Msg("loading contacts failed")
		w.setStatus(fmt.Sprintf("File Error: %v", err))
		lines = nil
	}
	w.lines = lines
	w.applyFilter()
}

// Add validates the form and appends the contact. On success the form is
// cleared and the list reloaded.
func (w *Window) Add() {
	first := strings.TrimSpace(w.first.Text)
	last := strings.TrimSpace(w.last.Text)
	phone := strings.TrimSpace(w.phone.Text)
	if first == "" || phone == "" {
		w.setStatus("First name and phone number are required.")
		return
	}

	res := w.store.Add(first, last, phone)
	w.logResult("add", res)
	w.setStatus(res.Message)
	if !res.OK() {
		return
	}
	w.first.SetText("")
	w.last.SetText("")
	w.phone.SetText("")
	w.Refresh()
}

// RemoveSelected asks for confirmation and removes the selected contact.
func (w *Window) RemoveSelected() {
	if w.selected < 0 || w.selected >= len(w.visible) {
		w.setStatus("Please select a contact to remove.")
		return
	}
	line := w.visible[w.selected]
	w.confirm("Confirm Deletion", fmt.Sprintf("Are you sure you want to remove '%s'?", line), func(ok bool) {
		if !ok {
			return
		}
		res := w.store.Remove(line)
		w.logResult("remove", res)
		w.setStatus(res.Message)
		w.Refresh()
	})
}

// Visible returns the lines currently shown.
func (w *Window) Visible() []string {
	return append([]string(nil), w.visible...)
}

// Status returns the current status text.
func (w *Window) Status() string {
	return w.status.Text
}

func (w *Window) selectRow(id widget.ListItemID) {
	w.selected = id
}

// applyFilter recomputes the visible rows from the search text. Selection
// is dropped because row indices change.
func (w *Window) applyFilter() {
	w.visible = contact.Filter(w.lines, strings.TrimSpace(w.search.Text))
	w.selected = -1
	w.list.UnselectAll()
	w.list.Refresh()
}

// setStatus shows text and clears it after the status timeout unless a newer
// message replaced it first.
func (w *Window) setStatus(text string) {
	w.statusSeq++
	seq := w.statusSeq
	w.status.SetText(text)
	time.AfterFunc(w.statusTimeout, func() {
		fyne.Do(func() {
			if seq == w.statusSeq {
				w.status.SetText("")
			}
		})
	})
}

func (w *Window) logResult(op string, res contact.Result) {
	ev := w.log.Info()
	if !res.OK() {
		ev = w.log.Warn().Err(res.Err)
	}
	ev.Str("op", op).Str("outcome", string(res.Outcome)).Msg(res.Message)
}
