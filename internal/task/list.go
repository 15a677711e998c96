package task

import (
	"fmt"
	"strings"
)

// List is the ordered in-memory task list. Position i is line i of the data file.
type List struct {
	items []*Task
}

func NewList() *List {
	return &List{}
}

func (l *List) Add(t *Task) bool {
	if t == nil {
		return false
	}
	l.items = append(l.items, t)
	return true
}

func (l *List) Get(index int) (*Task, error) {
	if err := l.checkIndex(index); err != nil {
		return nil, err
	}
	return l.items[index], nil
}

// RemoveAt deletes the task at index and shifts later tasks down by one.
func (l *List) RemoveAt(index int) (*Task, error) {
	if err := l.checkIndex(index); err != nil {
		return nil, err
	}
	removed := l.items[index]
	copy(l.items[index:], l.items[index+1:])
	l.items[len(l.items)-1] = nil
	l.items = l.items[:len(l.items)-1]
	return removed, nil
}

func (l *List) Size() int {
	return len(l.items)
}

// Tasks returns a copy of the backing slice.
func (l *List) Tasks() []*Task {
	out := make([]*Task, len(l.items))
	copy(out, l.items)
	return out
}

// Search returns tasks whose description contains query (case-sensitive), in list order.
func (l *List) Search(query string) []*Task {
	var out []*Task
	for _, t := range l.items {
		if strings.Contains(t.description, query) {
			out = append(out, t)
		}
	}
	return out
}

// Contains reports whether a task of the same kind and description is already listed.
func (l *List) Contains(t *Task) bool {
	for _, it := range l.items {
		if it.SameAs(t) {
			return true
		}
	}
	return false
}

// RenderAll lists every task numbered from 1, one per line. Empty list renders "".
func (l *List) RenderAll() string {
	return RenderNumbered(l.items)
}

func RenderNumbered(tasks []*Task) string {
	var b strings.Builder
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d.%s\n", i+1, t)
	}
	return b.String()
}

func (l *List) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(l.items))
	}
	return nil
}
