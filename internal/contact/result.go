package contact

import "errors"

// Outcome is the kind of result a store mutation produced.
type Outcome string

const (
	OutcomeAdded     Outcome = "added"
	OutcomeRemoved   Outcome = "removed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFileError Outcome = "file_error"
)

// Sentinel errors carried in Result.Err so callers can use errors.Is.
var (
	ErrDuplicate = errors.New("contact: duplicate phone number")
	ErrNotFound  = errors.New("contact: contact file not found")
	ErrInvalid   = errors.New("contact: first name and phone number are required")
)

// Result reports the outcome of Add or Remove. Failures are never returned as
// a bare error: Message is always a human-readable status line and Err holds
// the wrapped cause for anything that is not OK.
type Result struct {
	Outcome Outcome
	Message string
	Line    string // Formatted record that was added, or trimmed line that was removed.
	Count   int    // Lines dropped by Remove.
	Err     error
}

// OK reports whether the mutation took effect.
func (r Result) OK() bool {
	return r.Outcome == OutcomeAdded || r.Outcome == OutcomeRemoved
}
