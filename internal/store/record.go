package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirbrooks/chatterbox/internal/task"
)

// ErrCorrupt marks a data file line that cannot be turned back into a task.
var ErrCorrupt = errors.New("corrupt record")

const (
	flagDone = "1"
	flagOpen = "0"
)

// EncodeRecord renders t as one data file line, without the trailing newline:
//
//	T | 0 | Read book
//	D | 1 | Submit report | 18-12-2025 18:00
//	E | 0 | Meeting | Mon 2pm | 4pm
func EncodeRecord(t *task.Task) string {
	fields := []string{t.Symbol(), completionFlag(t.Completed()), t.Description()}
	switch t.Kind() {
	case task.Deadline:
		fields = append(fields, t.SerializeDue())
	case task.Event:
		fields = append(fields, t.Start(), t.End())
	}
	return strings.Join(fields, task.FieldSeparator)
}

// DecodeRecord parses a data file line. Any deviation from the record grammar
// returns an error wrapping ErrCorrupt.
func DecodeRecord(line string) (*task.Task, error) {
	fields := strings.Split(line, task.FieldSeparator)
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: want at least 3 fields, got %d", ErrCorrupt, len(fields))
	}
	kind, ok := task.KindFromSymbol(fields[0])
	if !ok {
		return nil, fmt.Errorf("%w: unknown task symbol %q", ErrCorrupt, fields[0])
	}
	completed, err := parseCompletionFlag(fields[1])
	if err != nil {
		return nil, err
	}
	if want := fieldCount(kind); len(fields) != want {
		return nil, fmt.Errorf("%w: %s record wants %d fields, got %d", ErrCorrupt, kind, want, len(fields))
	}

	var t *task.Task
	switch kind {
	case task.Todo:
		t, err = task.NewTodo(fields[2])
	case task.Deadline:
		t, err = task.NewDeadline(fields[2], fields[3])
	case task.Event:
		t, err = task.NewEvent(fields[2], fields[3], fields[4])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	t.SetCompleted(completed)
	return t, nil
}

// setCompletionField rewrites only the flag field of an encoded line.
func setCompletionField(line string, completed bool) (string, error) {
	fields := strings.Split(line, task.FieldSeparator)
	if len(fields) < 2 {
		return line, fmt.Errorf("%w: no completion field", ErrCorrupt)
	}
	fields[1] = completionFlag(completed)
	return strings.Join(fields, task.FieldSeparator), nil
}

func fieldCount(k task.Kind) int {
	switch k {
	case task.Deadline:
		return 4
	case task.Event:
		return 5
	default:
		return 3
	}
}

func completionFlag(completed bool) string {
	if completed {
		return flagDone
	}
	return flagOpen
}

func parseCompletionFlag(s string) (bool, error) {
	switch s {
	case flagDone:
		return true, nil
	case flagOpen:
		return false, nil
	default:
		return false, fmt.Errorf("%w: completion flag %q is not 0 or 1", ErrCorrupt, s)
	}
}
