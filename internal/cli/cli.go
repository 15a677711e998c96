package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/amirbrooks/chatterbox/internal/command"
	"github.com/amirbrooks/chatterbox/internal/config"
	"github.com/amirbrooks/chatterbox/internal/fsutil"
	"github.com/amirbrooks/chatterbox/internal/store"
	"github.com/amirbrooks/chatterbox/internal/task"
	"github.com/amirbrooks/chatterbox/internal/ui"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitInternal = 10
)

const corruptionNotice = "Save file is corrupted! Corrupted tasks have been deleted."

type GlobalFlags struct {
	Root       string
	ConfigPath string
	DataFile   string
	TUI        bool
	Quiet      bool
	Verbose    bool
}

// env is everything a command needs once the data file is open.
type env struct {
	gf     GlobalFlags
	cfg    config.Config
	store  *store.Store
	tasks  *task.List
	d      *command.Dispatcher
	report store.LoadReport
	logger *log.Logger
}

func (e *env) Close() error {
	return e.store.Close()
}

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return ExitUsage
	}

	cmd := ""
	var cmdArgs []string
	if len(rest) > 0 {
		cmd = rest[0]
		cmdArgs = rest[1:]
	}

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "config", "cfg":
		return cmdConfig(gf, cmdArgs)
	case "export":
		return cmdExport(gf, cmdArgs)
	case "":
		return cmdSession(gf)
	default:
		return cmdOnce(gf, rest)
	}
}

func printHelp() {
	fmt.Fprint(stdout, `chatterbox: line-oriented task manager backed by a flat file

Usage:
  chatterbox [global flags]                 interactive session (bye to quit)
  chatterbox [global flags] <command> ...   run one command and exit

Global flags:
  --root <path>    Store root (default: ~/.chatterbox or CHATTERBOX_ROOT)
  --config <path>  Config file (default: <root>/config.yaml; .toml also accepted)
  --file <path>    Data file for this run (overrides data_file)
  --tui            Full-screen chat instead of the line session
  --quiet          Suppress warnings
  --verbose        Timestamp warnings

Task commands:
  list
  todo <description>
  deadline <description> /by <dd-mm-yyyy HH:mm>
  event <description> /from <start> /to <end>
  mark <n>
  unmark <n>
  delete <n>
  find <text>

Other commands:
  config show
  config set <key> <value>      keys: data_file, bot_name, reject_duplicates
  export [--ndjson] [--dir <path>]
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Globals are only recognised before the first command word so that task
	// text like "todo fix --verbose flag" reaches the dispatcher intact.
	gf := GlobalFlags{Root: config.DefaultRoot()}

	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-h" || a == "--help" {
			break
		}
		name, value, hasValue := strings.Cut(a, "=")
		switch name {
		case "--root", "--config", "--file":
			if !hasValue {
				if i+1 >= len(args) {
					return gf, nil, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			switch name {
			case "--root":
				gf.Root = value
			case "--config":
				gf.ConfigPath = value
			case "--file":
				gf.DataFile = value
			}
		case "--tui":
			gf.TUI = true
		case "--quiet":
			gf.Quiet = true
		case "--verbose":
			gf.Verbose = true
		case "--":
			i++
			return finishGlobalFlags(gf), args[i:], nil
		default:
			return gf, nil, fmt.Errorf("unknown flag: %s", a)
		}
	}
	if gf.Quiet && gf.Verbose {
		return gf, nil, errors.New("--quiet and --verbose are mutually exclusive")
	}
	return finishGlobalFlags(gf), args[i:], nil
}

func finishGlobalFlags(gf GlobalFlags) GlobalFlags {
	gf.Root = fsutil.ExpandHome(gf.Root)
	if gf.ConfigPath == "" {
		gf.ConfigPath = filepath.Join(gf.Root, config.DefaultFileName)
	}
	return gf
}

func newLogger(gf GlobalFlags) *log.Logger {
	if gf.Quiet {
		return log.New(io.Discard, "", 0)
	}
	flags := 0
	if gf.Verbose {
		flags = log.Ltime
	}
	return log.New(stderr, "chatterbox: ", flags)
}

// open loads config, opens and loads the data file and wires the dispatcher.
func open(gf GlobalFlags) (*env, error) {
	cfg, _, err := config.Load(gf.ConfigPath)
	if err != nil {
		return nil, err
	}
	path := cfg.DataPath(gf.Root)
	if gf.DataFile != "" {
		path = fsutil.ExpandHome(gf.DataFile)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	logger := newLogger(gf)
	tasks := task.NewList()
	report, err := st.Load(tasks)
	if err != nil {
		// The list must match the file line for line.
		_ = st.Close()
		return nil, fmt.Errorf("load %s: %w", st.Path(), err)
	}
	if report.Corrupted() {
		logger.Printf("dropped %d corrupt line(s) from %s", report.Dropped, st.Path())
	}
	d := command.New(tasks, st,
		command.WithLogger(logger),
		command.WithRejectDuplicates(cfg.RejectDuplicates),
	)
	return &env{gf: gf, cfg: cfg, store: st, tasks: tasks, d: d, report: report, logger: logger}, nil
}

func openOrExit(gf GlobalFlags, name string) (*env, int) {
	e, err := open(gf)
	if err == nil {
		return e, ExitOK
	}
	fmt.Fprintf(stderr, "%s: %v\n", name, err)
	switch {
	case errors.Is(err, store.ErrLocked):
		return nil, ExitConflict
	case errors.Is(err, config.ErrInvalid):
		return nil, ExitUsage
	default:
		return nil, ExitInternal
	}
}

func cmdOnce(gf GlobalFlags, args []string) int {
	e, code := openOrExit(gf, args[0])
	if e == nil {
		return code
	}
	defer e.Close()

	if e.report.Corrupted() {
		fmt.Fprintln(stderr, corruptionNotice)
	}
	if !e.d.IsCommand(args[0]) {
		fmt.Fprintf(stderr, "Invalid Command! Known commands: %s\n", strings.Join(e.d.Commands(), ", "))
		return ExitUsage
	}
	reply, err := e.d.Execute(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitCodeFor(err)
	}
	fmt.Fprintln(stdout, strings.TrimRight(reply, "\n"))
	return ExitOK
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, command.ErrIndex):
		return ExitNotFound
	case errors.Is(err, command.ErrDuplicate), errors.Is(err, store.ErrLocked):
		return ExitConflict
	case errors.Is(err, command.ErrUsage), errors.Is(err, command.ErrUnknownCommand), errors.Is(err, command.ErrDateFormat):
		return ExitUsage
	default:
		return ExitInternal
	}
}

func cmdSession(gf GlobalFlags) int {
	e, code := openOrExit(gf, "session")
	if e == nil {
		return code
	}
	defer e.Close()

	notice := ""
	if e.report.Corrupted() {
		notice = corruptionNotice
	}
	if gf.TUI {
		if err := ui.Run(e.d, e.cfg.BotName, notice); err != nil {
			fmt.Fprintln(stderr, "tui:", err)
			return ExitInternal
		}
		return ExitOK
	}
	if err := runSession(stdin, stdout, e.d, e.cfg.BotName, notice); err != nil {
		fmt.Fprintln(stderr, "session:", err)
		return ExitInternal
	}
	return ExitOK
}

func cmdConfig(gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: chatterbox config <show|set> ...")
		return ExitUsage
	}
	switch args[0] {
	case "show":
		return cmdConfigShow(gf)
	case "set":
		return cmdConfigSet(gf, args[1:])
	default:
		fmt.Fprintln(stderr, "Usage: chatterbox config <show|set> ...")
		return ExitUsage
	}
}

func cmdConfigShow(gf GlobalFlags) int {
	cfg, exists, err := config.Load(gf.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "config show:", err)
		return ExitUsage
	}
	w := tabwriter.NewWriter(stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	fmt.Fprintf(w, "root\t%s\n", gf.Root)
	fmt.Fprintf(w, "config_path\t%s\n", gf.ConfigPath)
	fmt.Fprintf(w, "exists\t%t\n", exists)
	for _, k := range config.Keys {
		fmt.Fprintf(w, "%s\t%s\n", k, cfg.Get(k))
	}
	fmt.Fprintf(w, "data_path\t%s\n", cfg.DataPath(gf.Root))
	_ = w.Flush()
	return ExitOK
}

func cmdConfigSet(gf GlobalFlags, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(stderr, "Usage: chatterbox config set <key> <value>")
		return ExitUsage
	}
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(strings.Join(args[1:], " "))
	cfg, _, err := config.Load(gf.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "config set:", err)
		return ExitUsage
	}
	if err := cfg.Set(key, value); err != nil {
		fmt.Fprintln(stderr, "config set:", err)
		return ExitUsage
	}
	if err := cfg.Save(gf.ConfigPath); err != nil {
		fmt.Fprintln(stderr, "config set:", err)
		return ExitInternal
	}
	if !gf.Quiet {
		fmt.Fprintf(stdout, "Updated %s\n", key)
	}
	return ExitOK
}
