package lang

import (
	"os"
	"path/filepath"
)

// OSFileLoader resolves include paths against the real filesystem,
// relative to the including file's directory.
type OSFileLoader struct{}

func (OSFileLoader) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileLoader) Resolve(fromFile, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(filepath.Dir(fromFile), rel)
}

// MapFileLoader is an in-memory FileLoader for tests: Files maps a
// virtual path to its contents, and Resolve joins with path.Join-style
// semantics using "/" regardless of host OS.
type MapFileLoader struct {
	Files map[string]string
}

func (m MapFileLoader) Load(path string) ([]byte, error) {
	content, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func (m MapFileLoader) Resolve(fromFile, rel string) string {
	if len(rel) > 0 && rel[0] == '/' {
		return rel
	}
	dir := filepath.ToSlash(filepath.Dir(fromFile))
	if dir == "." {
		return rel
	}
	return dir + "/" + rel
}
