package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/amirbrooks/chatterbox/internal/fsutil"
	"github.com/amirbrooks/chatterbox/internal/task"
)

// exportedTask is the JSON shape of one task. Due uses the input pattern so an
// export can be fed back through the deadline command.
type exportedTask struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"`
	Symbol      string `json:"symbol"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Due         string `json:"due,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
}

func toExported(i int, t *task.Task) exportedTask {
	out := exportedTask{
		Index:       i + 1,
		Kind:        t.Kind().String(),
		Symbol:      t.Symbol(),
		Completed:   t.Completed(),
		Description: t.Description(),
	}
	switch t.Kind() {
	case task.Deadline:
		out.Due = t.SerializeDue()
	case task.Event:
		out.Start = t.Start()
		out.End = t.End()
	}
	return out
}

func cmdExport(gf GlobalFlags, args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	ndjson := fs.Bool("ndjson", false, "One JSON object per line")
	dir := fs.String("dir", "", "Export directory (default: <root>/exports)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if strings.TrimSpace(*dir) == "" {
		*dir = filepath.Join(gf.Root, "exports")
	}

	e, code := openOrExit(gf, "export")
	if e == nil {
		return code
	}
	defer e.Close()

	items := make([]exportedTask, 0, e.tasks.Size())
	for i, t := range e.tasks.Tasks() {
		items = append(items, toExported(i, t))
	}

	var (
		path string
		err  error
	)
	if *ndjson {
		path, err = writeNDJSONExport(*dir, "tasks", items)
	} else {
		path, err = writeJSONExport(*dir, "tasks", map[string]any{"tasks": items})
	}
	if err != nil {
		fmt.Fprintln(stderr, "export:", err)
		return ExitInternal
	}
	if !gf.Quiet {
		fmt.Fprintln(stdout, "Wrote export to:", path)
	}
	return ExitOK
}

func writeJSONExport(dir, base string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return writeExportFile(dir, base, "json", data)
}

func writeNDJSONExport(dir, base string, items []exportedTask) (string, error) {
	var b strings.Builder
	for _, item := range items {
		line, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return writeExportFile(dir, base, "ndjson", []byte(b.String()))
}

func writeExportFile(dir, base, ext string, data []byte) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("export directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := time.Now().UTC().Format("20060102-150405")
	name := fmt.Sprintf("%s-%s.%s", base, ts, ext)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		name = fmt.Sprintf("%s-%s-%s.%s", base, ts, strings.ToLower(fsutil.NewID()), ext)
		path = filepath.Join(dir, name)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
