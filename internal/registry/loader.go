package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"summaryd/internal/common/fsutil"
)

// Model is a model file discovered on disk.
type Model struct {
	// ID is the file name including extension.
	ID   string
	Path string
}

// modelNotFoundError reports that no model file matched.
type modelNotFoundError struct{ name, dir string }

func (e modelNotFoundError) Error() string {
	if e.name == "" {
		return "no *.gguf model found in " + e.dir
	}
	return fmt.Sprintf("model %q not found in %s", e.name, e.dir)
}

// IsModelNotFound reports whether err indicates a missing model file.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// LoadDir scans a directory for *.gguf files, sorted by file name.
func LoadDir(dir string) ([]Model, error) {
	abs, err := fsutil.AbsPath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []Model
	for _, e := range entries {
		if e.IsDir() { continue }
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") { continue }
		models = append(models, Model{ID: name, Path: filepath.Join(abs, name)})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve returns the model file to load. path may name a file, used as is, or
// a directory, in which case the *.gguf file whose name (with or without the
// extension) equals name is picked. When nothing matches the first file wins.
// An empty directory is a model-not-found error.
func Resolve(path, name string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("model path is empty")
	}
	abs, err := fsutil.AbsPath(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat model path: %w", err)
	}
	if !fi.IsDir() {
		return abs, nil
	}
	models, err := LoadDir(abs)
	if err != nil {
		return "", err
	}
	for _, m := range models {
		if m.ID == name || strings.TrimSuffix(m.ID, ".gguf") == name {
			return m.Path, nil
		}
	}
	if len(models) > 0 {
		return models[0].Path, nil
	}
	return "", modelNotFoundError{name: name, dir: abs}
}
