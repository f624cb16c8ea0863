package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore persists artifacts on the local filesystem, one file per artifact
// under root/<scope>/<id>. It survives process restarts and is suitable for
// single-host deployments; use an object store behind the same interface for
// anything distributed.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed artifact store rooted at root. The
// directory is created if it does not exist.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}

	return &FileStore{root: root}, nil
}

// validName rejects identifiers that would escape the store's directory
// layout. Scopes and ids become single path segments, nothing more.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, "/\\")
}

func (f *FileStore) path(scope, id string) (string, error) {
	if !validName(scope) {
		return "", fmt.Errorf("invalid artifact scope %q", scope)
	}

	if !validName(id) {
		return "", fmt.Errorf("invalid artifact id %q", id)
	}

	return filepath.Join(f.root, scope, id), nil
}

// Save writes the artifact bytes to disk, overwriting any previous version.
func (f *FileStore) Save(_ context.Context, scope, id string, data []byte) error {
	path, err := f.path(scope, id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create scope dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	return nil
}

// Get reads the artifact bytes from disk or returns ErrNotFound.
func (f *FileStore) Get(_ context.Context, scope, id string) ([]byte, error) {
	path, err := f.path(scope, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read artifact: %w", err)
	}

	return data, nil
}

// List returns the artifact ids stored for the scope, sorted.
func (f *FileStore) List(_ context.Context, scope string) ([]string, error) {
	if !validName(scope) {
		return nil, fmt.Errorf("invalid artifact scope %q", scope)
	}

	entries, err := os.ReadDir(filepath.Join(f.root, scope))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}

	sort.Strings(ids)

	return ids, nil
}

// Delete removes the artifact file. Deleting a missing artifact is not an
// error.
func (f *FileStore) Delete(_ context.Context, scope, id string) error {
	path, err := f.path(scope, id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete artifact: %w", err)
	}

	return nil
}
