// Package fsutil holds the small file helpers shared by the data store, the
// config file and exports.
package fsutil

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var timeNow = func() time.Time { return time.Now().UTC() }

// NewID returns a fresh upper-case ULID.
func NewID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

// ExpandHome resolves a leading "~" to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// WriteFileAtomic writes data to a sibling temp file and renames it over path.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	path = ExpandHome(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), NewID()))
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
