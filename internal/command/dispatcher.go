package command

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/amirbrooks/chatterbox/internal/task"
)

// Mirror receives every list mutation after it has been applied in memory.
// *store.Store implements it.
type Mirror interface {
	Append(t *task.Task) error
	UpdateCompletion(index int, completed bool) error
	DeleteLine(index int) error
}

type handlerFunc func(args string) (string, error)

// Dispatcher maps a command keyword to its handler. It owns no I/O beyond the
// Mirror; replies are returned to the caller.
type Dispatcher struct {
	tasks            *task.List
	mirror           Mirror
	logger           *log.Logger
	rejectDuplicates bool
	handlers         map[string]handlerFunc
}

type Option func(*Dispatcher)

func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRejectDuplicates refuses new tasks whose kind and description match a listed task.
func WithRejectDuplicates(on bool) Option {
	return func(d *Dispatcher) { d.rejectDuplicates = on }
}

func New(tasks *task.List, mirror Mirror, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tasks:  tasks,
		mirror: mirror,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.handlers = map[string]handlerFunc{
		"list":     d.list,
		"mark":     d.mark,
		"unmark":   d.unmark,
		"todo":     d.addTodo,
		"deadline": d.addDeadline,
		"event":    d.addEvent,
		"delete":   d.delete,
		"find":     d.find,
	}
	return d
}

func (d *Dispatcher) Tasks() *task.List { return d.tasks }

func (d *Dispatcher) IsCommand(keyword string) bool {
	_, ok := d.handlers[strings.ToLower(keyword)]
	return ok
}

// Commands returns the registered keywords, sorted.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs one command line and returns the reply, error text included.
func (d *Dispatcher) Dispatch(line string) string {
	reply, err := d.Execute(line)
	if err != nil {
		return err.Error()
	}
	return reply
}

// Execute runs one command line. A rejected command returns a *ReplyError and
// leaves both the list and the data file untouched.
func (d *Dispatcher) Execute(line string) (string, error) {
	keyword, rest := splitKeyword(line)
	h, ok := d.handlers[strings.ToLower(keyword)]
	if !ok {
		return "", reject(ErrUnknownCommand, "Invalid Command!")
	}
	return h(rest)
}

func splitKeyword(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, isSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

func (d *Dispatcher) list(args string) (string, error) {
	if args != "" {
		return "", reject(ErrUsage, "The list command takes no arguments. Try: list")
	}
	if d.tasks.Size() == 0 {
		return "There are no tasks in your list yet.", nil
	}
	return "Here are the tasks in your list:\n" + d.tasks.RenderAll(), nil
}

func (d *Dispatcher) mark(args string) (string, error) {
	return d.setCompletion("mark", args, true)
}

func (d *Dispatcher) unmark(args string) (string, error) {
	return d.setCompletion("unmark", args, false)
}

func (d *Dispatcher) setCompletion(verb string, args string, completed bool) (string, error) {
	index, err := d.parseIndex(verb, args)
	if err != nil {
		return "", err
	}
	t, _ := d.tasks.Get(index)
	t.SetCompleted(completed)
	d.persist(verb, d.mirror.UpdateCompletion(index, completed))

	header := "OK, I've marked this task as not done yet:"
	if completed {
		header = "Nice! I've marked this task as done:"
	}
	return fmt.Sprintf("%s\n  %s\n%s", header, t, d.countLine()), nil
}

func (d *Dispatcher) delete(args string) (string, error) {
	index, err := d.parseIndex("delete", args)
	if err != nil {
		return "", err
	}
	removed, _ := d.tasks.RemoveAt(index)
	d.persist("delete", d.mirror.DeleteLine(index))
	return fmt.Sprintf("Noted. I've removed this task:\n  %s\n%s", removed, d.countLine()), nil
}

func (d *Dispatcher) addTodo(args string) (string, error) {
	if args == "" {
		return "", reject(ErrUsage, "Uh oh! You forgot to include a description for your todo task! Try again!")
	}
	t, err := task.NewTodo(args)
	if err != nil {
		return "", taskError("todo", err)
	}
	return d.add(t)
}

func (d *Dispatcher) addDeadline(args string) (string, error) {
	if args == "" {
		return "", reject(ErrUsage, "Uh oh! You forgot to include a description for your deadline task! Try again!")
	}
	parts, err := splitDelimited(args, " /by ")
	if err != nil {
		return "", err
	}
	if !allPresent(parts) {
		return "", reject(ErrUsage, "Uh oh! You did not input your deadline task correctly! Try: deadline <description> /by <dd-mm-yyyy HH:mm>")
	}
	t, err := task.NewDeadline(parts[0], parts[1])
	if err != nil {
		return "", taskError("deadline", err)
	}
	return d.add(t)
}

func (d *Dispatcher) addEvent(args string) (string, error) {
	if args == "" {
		return "", reject(ErrUsage, "Uh oh! You forgot to include a description for your event task! Try again!")
	}
	parts, err := splitDelimited(args, " /from ", " /to ")
	if err != nil {
		return "", err
	}
	if !allPresent(parts) {
		return "", reject(ErrUsage, "Uh oh! You did not input your event task correctly! Try: event <description> /from <time> /to <time>")
	}
	t, err := task.NewEvent(parts[0], parts[1], parts[2])
	if err != nil {
		return "", taskError("event", err)
	}
	return d.add(t)
}

func (d *Dispatcher) find(args string) (string, error) {
	if args == "" {
		return "", reject(ErrUsage, "Uh oh! You forgot to include a description to search for! Try again!")
	}
	matches := d.tasks.Search(args)
	if len(matches) == 0 {
		return "There are no items in your list with that description.", nil
	}
	return "Here are the matching tasks in your list:\n" + task.RenderNumbered(matches), nil
}

func (d *Dispatcher) add(t *task.Task) (string, error) {
	if d.rejectDuplicates && d.tasks.Contains(t) {
		return "", reject(ErrDuplicate, fmt.Sprintf("You already have this %s task in your list: %s", t.Kind(), t.Description()))
	}
	d.tasks.Add(t)
	d.persist("add", d.mirror.Append(t))
	return fmt.Sprintf("Got it. I've added this task:\n  %s\n%s", t, d.countLine()), nil
}

// persist logs a failed mirror write. The in-memory list already holds the
// change and stays authoritative for the session.
func (d *Dispatcher) persist(op string, err error) {
	if err != nil {
		d.logger.Printf("%s: could not update data file: %v", op, err)
	}
}

// parseIndex reads exactly one 1-based index and returns it 0-based.
func (d *Dispatcher) parseIndex(verb string, args string) (int, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, reject(ErrUsage, fmt.Sprintf("Invalid input! Try: %s <index>", verb))
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, reject(ErrUsage, fmt.Sprintf("Invalid input! %q is not a number. Try: %s <index>", fields[0], verb))
	}
	size := d.tasks.Size()
	if size == 0 {
		return 0, reject(ErrIndex, fmt.Sprintf("Invalid index! You have no tasks to %s.", verb))
	}
	// err is only an overflow by now
	if err != nil || n < 1 || n > size {
		return 0, reject(ErrIndex, fmt.Sprintf("Invalid index! You can only %s tasks between 1 and %d.", verb, size))
	}
	return n - 1, nil
}

func (d *Dispatcher) countLine() string {
	n := d.tasks.Size()
	if n == 1 {
		return "Now you have 1 task in the list."
	}
	return fmt.Sprintf("Now you have %d tasks in the list.", n)
}

// splitDelimited splits input around each delimiter in order. Every delimiter
// must appear exactly once, and after the previous one.
func splitDelimited(input string, delimiters ...string) ([]string, error) {
	parts := make([]string, 0, len(delimiters)+1)
	rest := input
	for _, delim := range delimiters {
		switch strings.Count(input, delim) {
		case 0:
			return nil, reject(ErrUsage, fmt.Sprintf("Uh oh! You forgot to include the delimiter: %s", strings.TrimSpace(delim)))
		case 1:
		default:
			return nil, reject(ErrUsage, fmt.Sprintf("Uh oh! The delimiter %s can only appear once.", strings.TrimSpace(delim)))
		}
		idx := strings.Index(rest, delim)
		if idx < 0 {
			return nil, reject(ErrUsage, fmt.Sprintf("Uh oh! The delimiters must appear in this order: %s", joinTrimmed(delimiters)))
		}
		parts = append(parts, strings.TrimSpace(rest[:idx]))
		rest = rest[idx+len(delim):]
	}
	return append(parts, strings.TrimSpace(rest)), nil
}

func joinTrimmed(delims []string) string {
	out := make([]string, len(delims))
	for i, d := range delims {
		out[i] = strings.TrimSpace(d)
	}
	return strings.Join(out, " then ")
}

func allPresent(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

func taskError(kind string, err error) error {
	switch {
	case errors.Is(err, task.ErrDateFormat):
		return reject(ErrDateFormat, fmt.Sprintf("Oops! Your deadline format is incorrect! It should be %q. Try again!", task.InputPattern))
	case errors.Is(err, task.ErrInvalid):
		return reject(ErrUsage, fmt.Sprintf("Uh oh! Your %s task cannot contain %q or line breaks. Try again!", kind, strings.TrimSpace(task.FieldSeparator)))
	default:
		return reject(ErrUsage, fmt.Sprintf("Uh oh! Your %s task could not be created: %v", kind, err))
	}
}
