package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Date layouts. InputLayout is what users type and what the data file stores;
// DisplayLayout is only ever rendered, never parsed back.
const (
	InputLayout   = "02-01-2006 15:04"
	DisplayLayout = "Jan 2 2006 15:04"
	InputPattern  = "dd-mm-yyyy HH:mm"
)

// FieldSeparator delimits fields of a persisted record. Task text may not
// contain any "|".
const FieldSeparator = " | "

var (
	ErrInvalid    = errors.New("invalid")
	ErrDateFormat = errors.New("date format")
	ErrOutOfRange = errors.New("index out of range")
)

type Kind int

const (
	Todo Kind = iota
	Deadline
	Event
)

func (k Kind) Symbol() string {
	switch k {
	case Todo:
		return "T"
	case Deadline:
		return "D"
	case Event:
		return "E"
	default:
		return "?"
	}
}

func (k Kind) String() string {
	switch k {
	case Todo:
		return "todo"
	case Deadline:
		return "deadline"
	case Event:
		return "event"
	default:
		return "unknown"
	}
}

// KindFromSymbol maps a record symbol back to its Kind.
func KindFromSymbol(s string) (Kind, bool) {
	switch s {
	case "T":
		return Todo, true
	case "D":
		return Deadline, true
	case "E":
		return Event, true
	default:
		return 0, false
	}
}

// Task is one item in the list. The kind is fixed at construction and decides
// which payload fields are meaningful: due for Deadline, start/end for Event.
type Task struct {
	kind        Kind
	description string
	completed   bool

	due time.Time

	start string
	end   string
}

func NewTodo(description string) (*Task, error) {
	description, err := cleanText("description", description)
	if err != nil {
		return nil, err
	}
	return &Task{kind: Todo, description: description}, nil
}

// NewDeadline parses by with InputLayout and fails with ErrDateFormat when it
// does not match.
func NewDeadline(description, by string) (*Task, error) {
	description, err := cleanText("description", description)
	if err != nil {
		return nil, err
	}
	due, err := ParseDate(by)
	if err != nil {
		return nil, err
	}
	return &Task{kind: Deadline, description: description, due: due}, nil
}

// NewEvent keeps start and end verbatim; they are not interpreted as dates.
func NewEvent(description, start, end string) (*Task, error) {
	description, err := cleanText("description", description)
	if err != nil {
		return nil, err
	}
	start, err = cleanText("start time", start)
	if err != nil {
		return nil, err
	}
	end, err = cleanText("end time", end)
	if err != nil {
		return nil, err
	}
	return &Task{kind: Event, description: description, start: start, end: end}, nil
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(InputLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q does not match %s", ErrDateFormat, s, InputPattern)
	}
	return t, nil
}

func cleanText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	// A lone "|" at a field edge fuses with the separator on disk.
	if strings.ContainsAny(s, "|\r\n") {
		return "", fmt.Errorf("%w: %s may not contain %q or line breaks", ErrInvalid, field, "|")
	}
	return s, nil
}

func (t *Task) Kind() Kind { return t.kind }
func (t *Task) Description() string { return t.description }
func (t *Task) Completed() bool { return t.completed }
func (t *Task) Due() time.Time { return t.due }
func (t *Task) Start() string { return t.start }
func (t *Task) End() string { return t.end }
func (t *Task) MarkCompleted() { t.completed = true }
func (t *Task) MarkIncomplete() { t.completed = false }
func (t *Task) SetCompleted(b bool) { t.completed = b }
func (t *Task) Symbol() string { return t.kind.Symbol() }
func (t *Task) SerializeDue() string { return t.due.Format(InputLayout) }
func (t *Task) RenderDue() string { return t.due.Format(DisplayLayout) }
func (t *Task) StatusIcon() string { return statusIcon(t.completed) }

// SameAs reports whether o has the same kind and description.
func (t *Task) SameAs(o *Task) bool {
	return o != nil && t.kind == o.kind && t.description == o.description
}

func statusIcon(completed bool) string {
	if completed {
		return "X"
	}
	return " "
}

// String renders the canonical display line, e.g. "[D] [ ] Submit report (by: Dec 18 2025 18:00)".
func (t *Task) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", t.Symbol(), t.StatusIcon(), t.description)
	switch t.kind {
	case Deadline:
		fmt.Fprintf(&b, " (by: %s)", t.RenderDue())
	case Event:
		fmt.Fprintf(&b, " (from: %s to: %s)", t.start, t.end)
	}
	return b.String()
}
