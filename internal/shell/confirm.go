package shell

import (
	"fmt"
	"strings"
)

// confirmState holds the line awaiting removal confirmation.
type confirmState struct {
	line string
}

// View renders the confirmation screen.
func (cs confirmState) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Confirm Deletion"))
	fmt.Fprintf(&b, "\n\nAre you sure you want to remove '%s'?", cs.line)
	b.WriteString("\n\n  [y/Enter] Confirm   [n/Esc] Cancel")
	return b.String()
}
