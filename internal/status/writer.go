package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashimangshu/Load-Balancer/internal/backend"
)

const header = "Health Status:"

// Writer persists the backend status snapshot to a text file. Each write
// replaces the previous contents.
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the status file location.
func (w *Writer) Path() string {
	return w.path
}

// Write renders the current registry state and overwrites the status file.
// The file is written to a temp sibling first and renamed into place so
// readers never observe a half-written snapshot.
func (w *Writer) Write(registry *backend.Registry) error {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')
	for _, line := range registry.StatusLines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".status-*")
	if err != nil {
		return fmt.Errorf("create status temp file: %w", err)
	}

	if _, err := tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write status file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close status file: %w", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace status file: %w", err)
	}

	return nil
}
