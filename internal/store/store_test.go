package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirbrooks/chatterbox/internal/task"
)

func openTemp(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.txt")
	if content != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fileLines(t *testing.T, s *Store) []string {
	t.Helper()
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	text := strings.TrimSuffix(string(b), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	s := openTemp(t, "")
	_, err := os.Stat(s.Path())
	require.NoError(t, err)

	list := task.NewList()
	report, err := s.Load(list)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Size())
	assert.False(t, report.Corrupted())
}

func TestOpenRefusesSecondSession(t *testing.T) {
	s := openTemp(t, "")
	_, err := Open(s.Path())
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, s.Close())
	again, err := Open(s.Path())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestLoadValidFile(t *testing.T) {
	content := "T | 0 | Read book\n" +
		"D | 1 | Submit report | 18-12-2025 18:00\n" +
		"E | 0 | Meeting | Mon 2pm | 4pm\n"
	s := openTemp(t, content)

	list := task.NewList()
	report, err := s.Load(list)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 3}, report)
	require.Equal(t, 3, list.Size())

	d, _ := list.Get(1)
	assert.Equal(t, "[D] [X] Submit report (by: Dec 18 2025 18:00)", d.String())
	e, _ := list.Get(2)
	assert.Equal(t, "[E] [ ] Meeting (from: Mon 2pm to: 4pm)", e.String())

	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, content, string(b))
}

func TestLoadDropsCorruptLines(t *testing.T) {
	content := "T | 0 | Read book\n" +
		"T | 2 | bad flag\n" +
		"D | 0 | bad date | Dec 18 2025 18:00\n" +
		"E | 0 | short event | Mon\n" +
		"X | 0 | unknown\n" +
		"\n" +
		"T | 1 | Write essay\n"
	s := openTemp(t, content)

	list := task.NewList()
	report, err := s.Load(list)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 5, report.Dropped)
	assert.True(t, report.Repaired)
	require.Equal(t, 2, list.Size())

	assert.Equal(t, []string{"T | 0 | Read book", "T | 1 | Write essay"}, fileLines(t, s))

	again := task.NewList()
	report, err = s.Load(again)
	require.NoError(t, err)
	assert.False(t, report.Corrupted())
	assert.Equal(t, 2, again.Size())
}

func TestAppendWritesInputDatePattern(t *testing.T) {
	s := openTemp(t, "")
	d, err := task.NewDeadline("Submit report", "18-12-2025 18:00")
	require.NoError(t, err)
	td, err := task.NewTodo("Read book")
	require.NoError(t, err)
	td.MarkCompleted()

	require.NoError(t, s.Append(d))
	require.NoError(t, s.Append(td))

	assert.Equal(t, []string{
		"D | 0 | Submit report | 18-12-2025 18:00",
		"T | 1 | Read book",
	}, fileLines(t, s))
}

func TestAppendRepairsMissingNewline(t *testing.T) {
	s := openTemp(t, "T | 0 | first")
	td, err := task.NewTodo("second")
	require.NoError(t, err)
	require.NoError(t, s.Append(td))
	assert.Equal(t, []string{"T | 0 | first", "T | 0 | second"}, fileLines(t, s))
}

func TestUpdateCompletion(t *testing.T) {
	s := openTemp(t, "T | 0 | a\nD | 0 | b | 01-01-2026 09:00\nT | 1 | c\n")

	require.NoError(t, s.UpdateCompletion(1, true))
	require.NoError(t, s.UpdateCompletion(2, false))
	assert.Equal(t, []string{
		"T | 0 | a",
		"D | 1 | b | 01-01-2026 09:00",
		"T | 0 | c",
	}, fileLines(t, s))

	err := s.UpdateCompletion(3, true)
	require.ErrorIs(t, err, ErrInconsistent)
}

func TestDeleteLineShiftsFollowingLines(t *testing.T) {
	s := openTemp(t, "T | 0 | a\nT | 0 | b\nT | 0 | c\n")

	require.NoError(t, s.DeleteLine(0))
	assert.Equal(t, []string{"T | 0 | b", "T | 0 | c"}, fileLines(t, s))

	require.NoError(t, s.DeleteLine(1))
	assert.Equal(t, []string{"T | 0 | b"}, fileLines(t, s))

	require.ErrorIs(t, s.DeleteLine(4), ErrInconsistent)
}

func TestRewriteLeavesNoTempFiles(t *testing.T) {
	s := openTemp(t, "T | 0 | a\nT | 0 | b\n")
	require.NoError(t, s.UpdateCompletion(0, true))
	require.NoError(t, s.DeleteLine(1))

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	for _, line := range []string{
		"T | 0 | Read book",
		"D | 1 | Submit report | 18-12-2025 18:00",
		"E | 0 | Meeting | Mon 2pm | 4pm",
	} {
		got, err := DecodeRecord(line)
		require.NoError(t, err, line)
		assert.Equal(t, line, EncodeRecord(got))
	}
}

func TestDecodeRecordRejectsExtraFields(t *testing.T) {
	_, err := DecodeRecord("T | 0 | a | extra")
	require.ErrorIs(t, err, ErrCorrupt)
	_, err = DecodeRecord("D | 0 | a")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadDropsOversizedLine(t *testing.T) {
	huge := strings.Repeat("x", 2<<20)
	s := openTemp(t, "T | 0 | first\n"+huge+"\nT | 1 | "+huge+"\nD | 0 | last | 18-12-2025 18:00\n")

	list := task.NewList()
	report, err := s.Load(list)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 3, Dropped: 1, Repaired: true}, report)

	lines := fileLines(t, s)
	require.Len(t, lines, 3)
	assert.Equal(t, "T | 0 | first", lines[0])
	assert.Equal(t, "T | 1 | "+huge, lines[1])

	require.NoError(t, s.UpdateCompletion(2, true))
	assert.Equal(t, "D | 1 | last | 18-12-2025 18:00", fileLines(t, s)[2])
}

func TestDecodeRecordRejectsPipeAdjacentFields(t *testing.T) {
	for _, line := range []string{
		"D | 0 | pay bill | | 18-12-2025 18:00",
		"E | 0 | party | 7pm | | late",
		"T | 0 | a|b",
		"T | 0 | trailing |",
	} {
		_, err := DecodeRecord(line)
		assert.ErrorIs(t, err, ErrCorrupt, line)
	}
}

func TestEveryKindSurvivesAppendAndLoad(t *testing.T) {
	s := openTemp(t, "")
	todo, err := task.NewTodo("pay bill / rent")
	require.NoError(t, err)
	deadline, err := task.NewDeadline("pay bill !", "18-12-2025 18:00")
	require.NoError(t, err)
	event, err := task.NewEvent("party", "7pm /", "late")
	require.NoError(t, err)
	event.MarkCompleted()
	for _, tk := range []*task.Task{todo, deadline, event} {
		require.NoError(t, s.Append(tk))
	}

	list := task.NewList()
	report, err := s.Load(list)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 3}, report)
	assert.Equal(t, "1.[T] [ ] pay bill / rent\n"+
		"2.[D] [ ] pay bill ! (by: Dec 18 2025 18:00)\n"+
		"3.[E] [X] party (from: 7pm / to: late)\n", list.RenderAll())
}
