package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/smileynet/contactbook/internal/config"
	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/gui"
	"github.com/smileynet/contactbook/internal/logging"
	"github.com/smileynet/contactbook/internal/shell"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Additional config file, applied after the user and project configs." type:"path"`
	File   string `help:"Contact file to use instead of the configured store.path." short:"f" type:"path"`
}

// CLI is the top-level command structure for contactbook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Shell   ShellCmd         `cmd:"" default:"1" help:"Open the terminal contact manager."`
	Window  WindowCmd        `cmd:"" help:"Open the desktop contact manager window."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Remove  RemoveCmd        `cmd:"" help:"Remove a contact by its full line."`
	List    ListCmd          `cmd:"" help:"Print every contact."`
	Search  SearchCmd        `cmd:"" help:"Print contacts containing a query, ignoring case."`
}

// storeOps is the subset of contact.Store the line commands use.
type storeOps interface {
	Add(first, last, phone string) contact.Result
	Remove(line string) contact.Result
	List() ([]string, error)
	Search(query string) ([]string, error)
}

var errNoMatch = errors.New("no contact matched")

// outcomeError reports a store operation that did not succeed.
type outcomeError struct {
	res contact.Result
}

func (e *outcomeError) Error() string { return e.res.Message }
func (e *outcomeError) Unwrap() error { return e.res.Err }

// session holds what every command needs once config is resolved.
type session struct {
	cfg   *config.Config
	store *contact.Store
	log   zerolog.Logger
	close func() error
}

// loadConfig loads layered config from user and project paths, then the
// --config layer, env overrides and the --file flag.
func loadConfig(g *Globals) (*config.Config, error) {
	if g.Config != "" {
		if _, err := os.Stat(g.Config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/contactbook/config.yaml"),
		".contactbook.yaml",
		g.Config,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.File != "" {
		cfg.Store.Path = g.File
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open resolves config, the logger and the store. Log output without a
// configured log.file goes to logOut.
func (g *Globals) open(logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.Open(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	store := contact.NewStore(cfg.Store.Path,
		contact.WithDuplicateCheck(contact.DuplicateCheck(cfg.Store.DuplicateCheck)),
		contact.WithLogger(log),
	)
	log.Debug().Str("path", cfg.Store.Path).Str("duplicate_check", cfg.Store.DuplicateCheck).Msg("store opened")
	return &session{cfg: cfg, store: store, log: log, close: closeLog}, nil
}

// --- Shell command ---

// ShellCmd opens the terminal contact manager.
type ShellCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds the store and launches the terminal shell.
func (s *ShellCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("shell: requires a terminal (TTY); use list, search, add or remove instead")
	}

	// The TUI owns stdout, so logs only go to log.file when one is set.
	sess, err := g.open(nil)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer func() { _ = sess.close() }()

	m := shell.NewModel(sess.store,
		shell.WithStatusTimeout(sess.cfg.UI.StatusTimeout),
		shell.WithLogger(sess.log),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	return s.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (s *ShellCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("shell: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- Window command ---

// WindowCmd opens the desktop contact manager.
type WindowCmd struct{}

// Run builds the store and shows the fyne window until it is closed.
func (c *WindowCmd) Run(g *Globals) error {
	sess, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	defer func() { _ = sess.close() }()

	a := app.NewWithID(gui.AppID)
	win := a.NewWindow(gui.AppTitle)
	w := gui.New(win, sess.store,
		gui.WithStatusTimeout(sess.cfg.UI.StatusTimeout),
		gui.WithLogger(sess.log),
	)
	win.SetContent(w.Content())
	win.Resize(fyne.NewSize(float32(sess.cfg.UI.WindowWidth), float32(sess.cfg.UI.WindowHeight)))
	w.Refresh()
	win.ShowAndRun()
	return nil
}

// --- Line commands ---

// AddCmd appends a contact.
type AddCmd struct {
	First string `arg:"" help:"First name."`
	Phone string `arg:"" help:"Phone number."`
	Last  string `help:"Last name." short:"l"`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	sess, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer func() { _ = sess.close() }()
	return c.run(os.Stdout, sess.store)
}

func (c *AddCmd) run(w io.Writer, store storeOps) error {
	res := store.Add(c.First, c.Last, c.Phone)
	if !res.OK() {
		return &outcomeError{res: res}
	}
	_, _ = fmt.Fprintln(w, res.Message)
	return nil
}

// RemoveCmd deletes every contact line equal to LINE.
type RemoveCmd struct {
	Line string `arg:"" help:"Full contact line, e.g. \"Ana Lee: 555-1111\"."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

// Run executes the remove command.
func (c *RemoveCmd) Run(g *Globals) error {
	sess, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	defer func() { _ = sess.close() }()
	return c.run(os.Stdout, os.Stdin, sess.store)
}

func (c *RemoveCmd) run(w io.Writer, in io.Reader, store storeOps) error {
	line := strings.TrimSpace(c.Line)
	if !c.Yes && !confirm(w, in, fmt.Sprintf("Are you sure you want to remove '%s'?", line)) {
		_, _ = fmt.Fprintln(w, "Cancelled.")
		return nil
	}

	res := store.Remove(line)
	if !res.OK() {
		return &outcomeError{res: res}
	}
	if res.Count == 0 {
		return fmt.Errorf("remove: %w: %q", errNoMatch, line)
	}
	_, _ = fmt.Fprintln(w, res.Message)
	return nil
}

// confirm prints question and reports whether the reply starts with y.
func confirm(w io.Writer, in io.Reader, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [y/N] ", question)
	reply, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && reply == "" {
		return false
	}
	reply = strings.ToLower(strings.TrimSpace(reply))
	return reply == "y" || reply == "yes"
}

// ListCmd prints every contact.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	sess, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer func() { _ = sess.close() }()
	return c.run(os.Stdout, sess.store)
}

func (c *ListCmd) run(w io.Writer, store storeOps) error {
	lines, err := store.List()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	printLines(w, lines)
	return nil
}

// SearchCmd prints contacts containing QUERY.
type SearchCmd struct {
	Query string `arg:"" help:"Text to look for, ignoring case."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	sess, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer func() { _ = sess.close() }()
	return c.run(os.Stdout, sess.store)
}

func (c *SearchCmd) run(w io.Writer, store storeOps) error {
	lines, err := store.Search(c.Query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	printLines(w, lines)
	return nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		_, _ = fmt.Fprintln(w, l)
	}
}

const (
	exitSuccess = 0
	exitOutcome = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var oe *outcomeError
	if errors.As(err, &oe) {
		if oe.res.Outcome == contact.OutcomeFileError {
			return exitSetup
		}
		return exitOutcome
	}
	if errors.Is(err, errNoMatch) {
		return exitOutcome
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactbook"),
		kong.Description("A minimal flat-file contact manager."),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
