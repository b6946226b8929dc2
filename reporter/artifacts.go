package reporter

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Writer manages the result files of a single run.
type Writer struct {
	Dir string
}

// NewWriter creates the output directory.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{Dir: dir}, nil
}

// WriteJSON writes an object as indented JSON under the output directory.
func (w *Writer) WriteJSON(name string, value any) (string, error) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}
	return w.WriteBytes(name, payload)
}

func (w *Writer) WriteBytes(name string, data []byte) (string, error) {
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
