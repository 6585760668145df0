package contact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DuplicateCheck selects how Add detects an existing phone number.
type DuplicateCheck string

const (
	// CheckContent treats the phone as a duplicate when it appears anywhere
	// in the file, including inside another record's name.
	CheckContent DuplicateCheck = "content"
	// CheckField compares only the phone field of each parsed record.
	CheckField DuplicateCheck = "field"
)

// Store persists contacts in a single text file. The file is the only source
// of truth: every call re-reads it and nothing is cached between calls.
// A Store assumes a single writer; it does no locking.
type Store struct {
	path  string
	check DuplicateCheck
	mode  os.FileMode
	log   zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDuplicateCheck sets the duplicate detection mode. Unknown modes fall
// back to CheckContent.
func WithDuplicateCheck(c DuplicateCheck) StoreOption {
	return func(s *Store) {
		if c == CheckField {
			s.check = CheckField
			return
		}
		s.check = CheckContent
	}
}

// WithLogger sets the logger used for mutation and failure events.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l.With().Str("component", "contact-store").Logger()
	}
}

// WithFileMode sets the permission bits used when the file is created.
func WithFileMode(m os.FileMode) StoreOption {
	return func(s *Store) {
		s.mode = m
	}
}

// NewStore creates a Store backed by the file at path. Neither the file nor
// its directory needs to exist yet.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:  path,
		check: CheckContent,
		mode:  0o644,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Add appends a record for first, last, phone unless the phone number is
// already present. The parent directory and file are created on demand.
func (s *Store) Add(first, last, phone string) Result {
	rec := Record{
		First: strings.TrimSpace(first),
		Last:  strings.TrimSpace(last),
		Phone: strings.TrimSpace(phone),
	}
	if rec.First == "" || rec.Phone == "" {
		return Result{
			Outcome: OutcomeInvalid,
			Message: "First name and phone number are required.",
			Err:     ErrInvalid,
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return s.fileError("creating directory", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, s.mode)
	if err != nil {
		return s.fileError("opening", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		_ = f.Close()
		return s.fileError("reading", err)
	}

	if s.containsPhone(string(content), rec.Phone) {
		_ = f.Close()
		s.log.Debug().Str("phone", rec.Phone).Msg("duplicate phone rejected")
		return Result{
			Outcome: OutcomeDuplicate,
			Message: fmt.Sprintf("Phone number %s already exists.", rec.Phone),
			Err:     fmt.Errorf("%w: %s", ErrDuplicate, rec.Phone),
		}
	}

	line := rec.String()
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return s.fileError("writing", err)
	}
	if err := f.Close(); err != nil {
		return s.fileError("closing", err)
	}

	s.log.Debug().Str("line", line).Msg("contact added")
	return Result{
		Outcome: OutcomeAdded,
		Message: fmt.Sprintf("Contact '%s' added.", rec.Name()),
		Line:    line,
	}
}

// Remove drops every line whose trimmed text equals the trimmed input and
// rewrites the file with the remaining lines in their original order.
// A missing file reports OutcomeNotFound and is not created.
func (s *Store) Remove(line string) Result {
	target := strings.TrimSpace(line)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{
				Outcome: OutcomeNotFound,
				Message: "Contact file not found.",
				Err:     fmt.Errorf("%w: %s", ErrNotFound, s.path),
			}
		}
		return s.fileError("reading", err)
	}

	var kept strings.Builder
	dropped := 0
	for _, raw := range strings.SplitAfter(string(data), "\n") {
		if raw == "" {
			continue
		}
		if strings.TrimSpace(raw) == target {
			dropped++
			continue
		}
		kept.WriteString(raw)
	}

	if err := os.WriteFile(s.path, []byte(kept.String()), s.mode); err != nil {
		return s.fileError("writing", err)
	}

	s.log.Debug().Str("line", target).Int("dropped", dropped).Msg("contact removed")
	return Result{
		Outcome: OutcomeRemoved,
		Message: fmt.Sprintf("Contact '%s' removed.", target),
		Line:    target,
		Count:   dropped,
	}
}

// List returns every non-blank line in file order with surrounding
// whitespace trimmed. A missing file yields an empty list.
func (s *Store) List() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("contact: opening %s: %w", s.path, err)
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("contact: reading %s: %w", s.path, err)
	}
	return lines, nil
}

// Search returns the listed lines containing query, ignoring case.
func (s *Store) Search(query string) ([]string, error) {
	lines, err := s.List()
	if err != nil {
		return nil, err
	}
	return Filter(lines, query), nil
}

func (s *Store) containsPhone(content, phone string) bool {
	if s.check != CheckField {
		return strings.Contains(content, phone)
	}
	for _, l := range strings.Split(content, "\n") {
		rec, ok := ParseLine(l)
		if ok && rec.Phone == phone {
			return true
		}
	}
	return false
}

// fileError converts an I/O failure into a FileError result.
func (s *Store) fileError(action string, err error) Result {
	s.log.Warn().Err(err).Str("action", action).Str("path", s.path).Msg("contact file error")
	return Result{
		Outcome: OutcomeFileError,
		Message: fmt.Sprintf("File Error: %v", err),
		Err:     fmt.Errorf("contact: %s %s: %w", action, s.path, err),
	}
}
