package shell

import (
	"strings"
	"testing"
)

func TestConfirmState_View(t *testing.T) {
	// Given: a pending removal
	cs := confirmState{line: "Ana Lee: 555-1111"}

	// When: rendered
	got := stripANSI(cs.View())

	// Then: the title, question, and both choices are shown
	for _, want := range []string{
		"Confirm Deletion",
		"Are you sure you want to remove 'Ana Lee: 555-1111'?",
		"[y/Enter] Confirm",
		"[n/Esc] Cancel",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("confirm view missing %q:\n%s", want, got)
		}
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
		want string
	}{
		{"empty renders nothing", "", true, ""},
		{"success keeps text", "Contact 'Ana' added.", true, "Contact 'Ana' added."},
		{"failure keeps text", "Phone number 555 already exists.", false, "Phone number 555 already exists."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripANSI(StatusText(tt.text, tt.ok)); got != tt.want {
				t.Errorf("StatusText(%q, %v) = %q, want %q", tt.text, tt.ok, got, tt.want)
			}
		})
	}
}

func TestBorders_Differ(t *testing.T) {
	// Given: focused and unfocused borders
	focused := FocusedBorder()
	unfocused := UnfocusedBorder()

	// Then: both draw a border but with different colors
	if focused.GetBorderStyle() != unfocused.GetBorderStyle() {
		t.Error("focused and unfocused borders should share the rounded shape")
	}
	if focused.GetBorderTopForeground() == unfocused.GetBorderTopForeground() {
		t.Error("focused border color should differ from unfocused")
	}
}
