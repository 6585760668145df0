package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/contact"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	k, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Bind(&cli.Globals))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

func newTempStore(t *testing.T, seed ...[3]string) *contact.Store {
	t.Helper()
	store := contact.NewStore(filepath.Join(t.TempDir(), "contact_manager", "contacts.txt"))
	for _, c := range seed {
		if res := store.Add(c[0], c[1], c[2]); !res.OK() {
			t.Fatalf("seed Add(%v) = %+v", c, res)
		}
	}
	return store
}

func TestFeature_CLIParsing(t *testing.T) {
	t.Run("version flag prints version commit and date", func(t *testing.T) {
		// Given: a CLI parser with version, commit, and date fields
		var cli CLI
		var buf bytes.Buffer
		versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
		k, err := kong.New(&cli,
			kong.Vars{"version": versionStr},
			kong.Writers(&buf, &buf),
			kong.Exit(func(int) { panic(errExitCalled) }),
		)
		if err != nil {
			t.Fatal(err)
		}

		// When: --version flag is passed
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic from --version flag")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, errExitCalled) {
				panic(r)
			}

			// Then: version, commit, and date are all present in output
			output := buf.String()
			for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
				if !strings.Contains(output, want) {
					t.Errorf("version output = %q, want to contain %q", output, want)
				}
			}
		}()
		_, _ = k.Parse([]string{"--version"})
	})

	t.Run("no arguments selects the shell command", func(t *testing.T) {
		// Given a CLI parser
		var cli CLI
		k := newParser(t, &cli)

		// When no command is given
		kctx, err := k.Parse([]string{})
		if err != nil {
			t.Fatal(err)
		}

		// Then the default shell command is selected
		if kctx.Command() != "shell" {
			t.Errorf("got command %q, want %q", kctx.Command(), "shell")
		}
	})

	t.Run("add takes first and phone with optional last", func(t *testing.T) {
		// Given a CLI parser
		var cli CLI
		k := newParser(t, &cli)

		// When add is invoked with the global --file flag
		kctx, err := k.Parse([]string{"--file", "/tmp/c.txt", "add", "Ana", "555-1111", "--last", "Lee"})
		if err != nil {
			t.Fatal(err)
		}

		// Then the positional args, flag, and global are populated
		if !strings.HasPrefix(kctx.Command(), "add") {
			t.Errorf("got command %q, want add", kctx.Command())
		}
		if cli.Add.First != "Ana" || cli.Add.Phone != "555-1111" || cli.Add.Last != "Lee" {
			t.Errorf("Add = %+v", cli.Add)
		}
		if cli.File != "/tmp/c.txt" {
			t.Errorf("File = %q, want /tmp/c.txt", cli.File)
		}
	})

	t.Run("remove accepts --yes", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"remove", "Ana Lee: 555-1111", "-y"}); err != nil {
			t.Fatal(err)
		}
		if cli.Remove.Line != "Ana Lee: 555-1111" || !cli.Remove.Yes {
			t.Errorf("Remove = %+v", cli.Remove)
		}
	})

	t.Run("add without phone is rejected", func(t *testing.T) {
		var cli CLI
		k := newParser(t, &cli)

		if _, err := k.Parse([]string{"add", "Ana"}); err == nil {
			t.Error("expected parse error for missing phone")
		}
	})
}

func TestFeature_AddCommand(t *testing.T) {
	t.Run("prints the added message", func(t *testing.T) {
		// Given an empty store
		store := newTempStore(t)
		var out bytes.Buffer

		// When a contact is added
		err := (&AddCmd{First: "Ana", Last: "Lee", Phone: "555-1111"}).run(&out, store)

		// Then it succeeds and prints the store message
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := out.String(); got != "Contact 'Ana Lee' added.\n" {
			t.Errorf("output = %q", got)
		}
		lines, _ := store.List()
		if !reflect.DeepEqual(lines, []string{"Ana Lee: 555-1111"}) {
			t.Errorf("lines = %q", lines)
		}
	})

	t.Run("duplicate phone exits with outcome code", func(t *testing.T) {
		// Given a store already holding the phone
		store := newTempStore(t, [3]string{"Ana", "Lee", "555-1111"})

		// When the same phone is added again
		err := (&AddCmd{First: "Cy", Phone: "555-1111"}).run(&bytes.Buffer{}, store)

		// Then the duplicate is reported with exit code 1
		if !errors.Is(err, contact.ErrDuplicate) {
			t.Fatalf("err = %v, want ErrDuplicate", err)
		}
		if err.Error() != "Phone number 555-1111 already exists." {
			t.Errorf("message = %q", err.Error())
		}
		if code := exitCode(err); code != exitOutcome {
			t.Errorf("exitCode = %d, want %d", code, exitOutcome)
		}
	})

	t.Run("blank first name is invalid", func(t *testing.T) {
		store := newTempStore(t)

		err := (&AddCmd{First: "  ", Phone: "555"}).run(&bytes.Buffer{}, store)

		if !errors.Is(err, contact.ErrInvalid) {
			t.Fatalf("err = %v, want ErrInvalid", err)
		}
		if _, statErr := os.Stat(store.Path()); !errors.Is(statErr, os.ErrNotExist) {
			t.Error("invalid add should not create the file")
		}
	})
}

func TestFeature_RemoveCommand(t *testing.T) {
	seed := [][3]string{{"Ana", "Lee", "555-1111"}, {"Bo", "Ray", "555-2222"}}

	tests := []struct {
		name      string
		cmd       RemoveCmd
		stdin     string
		wantLines []string
		wantOut   string
		wantErr   error
	}{
		{
			name:      "yes flag skips prompt",
			cmd:       RemoveCmd{Line: "Ana Lee: 555-1111", Yes: true},
			wantLines: []string{"Bo Ray: 555-2222"},
			wantOut:   "Contact 'Ana Lee: 555-1111' removed.\n",
		},
		{
			name:      "confirmed prompt removes",
			cmd:       RemoveCmd{Line: "  Bo Ray: 555-2222 "},
			stdin:     "y\n",
			wantLines: []string{"Ana Lee: 555-1111"},
			wantOut:   "Contact 'Bo Ray: 555-2222' removed.\n",
		},
		{
			name:      "declined prompt keeps file",
			cmd:       RemoveCmd{Line: "Ana Lee: 555-1111"},
			stdin:     "n\n",
			wantLines: []string{"Ana Lee: 555-1111", "Bo Ray: 555-2222"},
			wantOut:   "Cancelled.\n",
		},
		{
			name:      "empty stdin declines",
			cmd:       RemoveCmd{Line: "Ana Lee: 555-1111"},
			wantLines: []string{"Ana Lee: 555-1111", "Bo Ray: 555-2222"},
			wantOut:   "Cancelled.\n",
		},
		{
			name:      "no matching line",
			cmd:       RemoveCmd{Line: "Zed: 000", Yes: true},
			wantLines: []string{"Ana Lee: 555-1111", "Bo Ray: 555-2222"},
			wantErr:   errNoMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a store with two contacts
			store := newTempStore(t, seed...)
			var out bytes.Buffer

			// When remove runs
			err := tt.cmd.run(&out, strings.NewReader(tt.stdin), store)

			// Then the error, output, and remaining lines match
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantOut != "" && !strings.HasSuffix(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want suffix %q", out.String(), tt.wantOut)
			}
			lines, _ := store.List()
			if !reflect.DeepEqual(lines, tt.wantLines) {
				t.Errorf("lines = %q, want %q", lines, tt.wantLines)
			}
		})
	}

	t.Run("missing file reports not found", func(t *testing.T) {
		store := newTempStore(t)

		err := (&RemoveCmd{Line: "Ana Lee: 555-1111", Yes: true}).run(&bytes.Buffer{}, strings.NewReader(""), store)

		if !errors.Is(err, contact.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if code := exitCode(err); code != exitOutcome {
			t.Errorf("exitCode = %d, want %d", code, exitOutcome)
		}
	})
}

func TestFeature_ListAndSearch(t *testing.T) {
	store := newTempStore(t, [3]string{"Ana", "Lee", "555-1111"}, [3]string{"Bo", "Ray", "555-2222"})

	t.Run("list prints every line in file order", func(t *testing.T) {
		var out bytes.Buffer
		if err := (&ListCmd{}).run(&out, store); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != "Ana Lee: 555-1111\nBo Ray: 555-2222\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("search ignores case", func(t *testing.T) {
		var out bytes.Buffer
		if err := (&SearchCmd{Query: "RAY"}).run(&out, store); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != "Bo Ray: 555-2222\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("list of missing file prints nothing", func(t *testing.T) {
		var out bytes.Buffer
		if err := (&ListCmd{}).run(&out, newTempStore(t)); err != nil {
			t.Fatal(err)
		}
		if out.Len() != 0 {
			t.Errorf("output = %q, want empty", out.String())
		}
	})
}

func TestFeature_ShellCommand(t *testing.T) {
	t.Run("run returns error when not a TTY", func(t *testing.T) {
		// Given a ShellCmd
		cmd := &ShellCmd{}

		// When run is called with isTTY=false
		err := cmd.run(false, nil)

		// Then an error mentioning "terminal" is returned
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "terminal") {
			t.Errorf("error = %q, want to contain 'terminal'", err)
		}
	})

	t.Run("run executes tea program when TTY", func(t *testing.T) {
		cmd := &ShellCmd{}
		mock := &mockTeaRunner{}

		if err := cmd.run(true, mock); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mock.ran {
			t.Error("tea program was not run")
		}
	})

	t.Run("run returns tea program error", func(t *testing.T) {
		cmd := &ShellCmd{}
		mock := &mockTeaRunner{err: fmt.Errorf("tea: terminal error")}

		err := cmd.run(true, mock)

		if err == nil || !strings.Contains(err.Error(), "tea: terminal error") {
			t.Errorf("error = %v, want tea error", err)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("file flag overrides config and env", func(t *testing.T) {
		// Given a home config and an env override
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Chdir(t.TempDir())
		t.Setenv("CONTACTBOOK_FILE", "/from/env.txt")
		t.Setenv("CONTACTBOOK_DUPLICATE_CHECK", "")
		writeFile(t, filepath.Join(home, ".config", "contactbook", "config.yaml"), "store:\n  duplicate_check: field\n")

		// When config is loaded with --file
		cfg, err := loadConfig(&Globals{File: "/from/flag.txt"})

		// Then the flag wins and the home layer still applies
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Store.Path != "/from/flag.txt" {
			t.Errorf("Store.Path = %q, want /from/flag.txt", cfg.Store.Path)
		}
		if cfg.Store.DuplicateCheck != "field" {
			t.Errorf("DuplicateCheck = %q, want field", cfg.Store.DuplicateCheck)
		}
	})

	t.Run("project config overrides home config", func(t *testing.T) {
		home := t.TempDir()
		project := t.TempDir()
		t.Setenv("HOME", home)
		t.Chdir(project)
		t.Setenv("CONTACTBOOK_FILE", "")
		writeFile(t, filepath.Join(home, ".config", "contactbook", "config.yaml"), "store:\n  path: /home.txt\n")
		writeFile(t, filepath.Join(project, ".contactbook.yaml"), "store:\n  path: /project.txt\n")

		cfg, err := loadConfig(&Globals{})
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Store.Path != "/project.txt" {
			t.Errorf("Store.Path = %q, want /project.txt", cfg.Store.Path)
		}
	})

	t.Run("missing --config file is an error", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())

		_, err := loadConfig(&Globals{Config: filepath.Join(t.TempDir(), "nope.yaml")})
		if err == nil {
			t.Fatal("expected error for missing --config file")
		}
		if code := exitCode(err); code != exitSetup {
			t.Errorf("exitCode = %d, want %d", code, exitSetup)
		}
	})

	t.Run("invalid duplicate check fails validation", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())
		t.Setenv("CONTACTBOOK_DUPLICATE_CHECK", "fuzzy")

		if _, err := loadConfig(&Globals{}); err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"duplicate", &outcomeError{res: contact.Result{Outcome: contact.OutcomeDuplicate}}, exitOutcome},
		{"not found", &outcomeError{res: contact.Result{Outcome: contact.OutcomeNotFound}}, exitOutcome},
		{"invalid", &outcomeError{res: contact.Result{Outcome: contact.OutcomeInvalid}}, exitOutcome},
		{"file error", &outcomeError{res: contact.Result{Outcome: contact.OutcomeFileError}}, exitSetup},
		{"no match", fmt.Errorf("remove: %w", errNoMatch), exitOutcome},
		{"setup", errors.New("config: boom"), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// mockTeaRunner stubs tea program execution for ShellCmd testing.
type mockTeaRunner struct {
	ran bool
	err error
}

func (m *mockTeaRunner) Run() (tea.Model, error) {
	m.ran = true
	return nil, m.err
}

// Compile-time check: mockTeaRunner satisfies teaRunner.
var _ teaRunner = (*mockTeaRunner)(nil)

// Compile-time check: contact.Store satisfies storeOps.
var _ storeOps = (*contact.Store)(nil)
