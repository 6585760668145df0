package shell

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given mode and focus,
// providing context-aware help bar content.
func HelpBindings(mode Mode, focus Focus) help.KeyMap {
	if mode == ModeConfirm {
		return ConfirmKeyMap()
	}
	if focus == FocusList {
		return ListKeyMap()
	}
	return InputKeyMap()
}
