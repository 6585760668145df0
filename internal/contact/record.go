// Package contact implements the flat-file contact store: one record per
// line, formatted as "<first> <last>: <phone>".
package contact

import (
	"fmt"
	"strings"
)

// phoneSep separates the name part of a stored line from the phone number.
const phoneSep = ": "

// Record is a single contact entry.
type Record struct {
	First string
	Last  string
	Phone string
}

// String formats the record as it is persisted. An empty last name leaves a
// trailing space before the colon ("Ana : 555-1111").
func (r Record) String() string {
	return fmt.Sprintf("%s %s%s%s", r.First, r.Last, phoneSep, r.Phone)
}

// Name returns the display name used in status messages.
func (r Record) Name() string {
	return strings.TrimSpace(r.First + " " + r.Last)
}

// ParseLine splits a stored line back into a Record. The phone is everything
// after the last ": ", the first name everything before the first space.
// Returns false when the line has no phone separator.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	idx := strings.LastIndex(line, phoneSep)
	if idx < 0 {
		return Record{}, false
	}
	name := line[:idx]
	first, last, _ := strings.Cut(name, " ")
	return Record{
		First: first,
		Last:  strings.TrimSpace(last),
		Phone: strings.TrimSpace(line[idx+len(phoneSep):]),
	}, true
}

// Matches reports whether line contains query, ignoring case.
// An empty query matches every line.
func Matches(line, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(query))
}

// Filter returns the lines that match query, preserving order.
func Filter(lines []string, query string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if Matches(l, query) {
			out = append(out, l)
		}
	}
	return out
}
