package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/amirbrooks/chatterbox/internal/fsutil"
	"github.com/amirbrooks/chatterbox/internal/task"
)

var (
	ErrLocked = errors.New("data file is in use by another session")
	// ErrInconsistent means the data file could not be brought in line with
	// the in-memory list. The list stays authoritative for the session.
	ErrInconsistent = errors.New("task data may be inconsistent")
)

// LoadReport summarises a Load pass.
type LoadReport struct {
	Loaded  int
	Dropped int
	// Repaired is set when dropped lines were removed from the file.
	Repaired bool
}

func (r LoadReport) Corrupted() bool { return r.Dropped > 0 }

// Store mirrors a task.List into a line-per-task file. It is the only code that
// touches the file; every rewrite goes through a temp file and a rename.
type Store struct {
	path string
	lock *flock.Flock
}

// Open prepares the data file at path, creating its directory and an empty
// file if needed, and takes a non-blocking lock on <path>.lock.
func Open(path string) (*Store, error) {
	path = fsutil.ExpandHome(strings.TrimSpace(path))
	if path == "" {
		return nil, errors.New("data file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	lk := flock.New(path + ".lock")
	locked, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		_ = lk.Unlock()
		return nil, err
	}
	_ = f.Close()
	return &Store{path: path, lock: lk}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Load appends every decodable record to list. Undecodable lines are dropped
// and, if there were any, the file is replaced by the clean lines. A missing
// file is a first run and loads nothing.
func (s *Store) Load(list *task.List) (LoadReport, error) {
	var report LoadReport
	lines, err := s.readLines()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, err
	}
	var clean bytes.Buffer
	for _, line := range lines {
		t, err := DecodeRecord(line)
		if err != nil {
			report.Dropped++
			continue
		}
		list.Add(t)
		report.Loaded++
		clean.WriteString(line)
		clean.WriteByte('\n')
	}
	if report.Dropped == 0 {
		return report, nil
	}
	if err := s.swap(clean.Bytes()); err != nil {
		return report, err
	}
	report.Repaired = true
	return report, nil
}

// Append writes t as a new last line.
func (s *Store) Append(t *task.Task) error {
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	defer f.Close()

	prefix, err := missingNewline(f)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	w := bufio.NewWriter(f)
	w.WriteString(prefix)
	w.WriteString(EncodeRecord(t))
	w.WriteByte('\n')
	if err := w.Flush(); err != nil {
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

// UpdateCompletion rewrites the file with the flag of line index set to completed.
func (s *Store) UpdateCompletion(index int, completed bool) error {
	return s.rewrite(index, func(line string) (string, bool, error) {
		updated, err := setCompletionField(line, completed)
		return updated, true, err
	})
}

// DeleteLine rewrites the file without line index; later lines move up by one.
func (s *Store) DeleteLine(index int) error {
	return s.rewrite(index, func(string) (string, bool, error) {
		return "", false, nil
	})
}

// rewrite copies the file line by line, passing line index through edit, and
// swaps the result into place. edit reports whether to keep the line.
func (s *Store) rewrite(index int, edit func(line string) (string, bool, error)) error {
	lines, err := s.readLines()
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInconsistent, s.path, err)
	}
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("%w: line %d not in file of %d lines", ErrInconsistent, index+1, len(lines))
	}
	var buf bytes.Buffer
	for i, line := range lines {
		if i == index {
			updated, keep, err := edit(line)
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrInconsistent, index+1, err)
			}
			if !keep {
				continue
			}
			line = updated
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return s.swap(buf.Bytes())
}

func (s *Store) swap(data []byte) error {
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: replace %s: %v", ErrInconsistent, s.path, err)
	}
	return nil
}

func (s *Store) readLines() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// No line length cap: an oversized line still occupies one position and
	// is dropped by Load like any other corrupt record.
	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// missingNewline returns "\n" when a non-empty file does not end in one.
func missingNewline(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if last[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}
