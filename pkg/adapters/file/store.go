package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// AnswerBackend implements ports.AnswerBackend using the local filesystem.
// Each namespace is stored as one JSON object in a configured directory.
type AnswerBackend struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new AnswerBackend with the given base path.
// If basePath is empty, it defaults to ".questline/answers".
func New(basePath string) *AnswerBackend {
	if basePath == "" {
		basePath = filepath.Join(".questline", "answers")
	}
	return &AnswerBackend{BasePath: basePath}
}

func (b *AnswerBackend) path(namespace string) string {
	return filepath.Join(b.BasePath, url.PathEscape(namespace)+".json")
}

// Load reads the namespace file. A missing file is an empty namespace.
func (b *AnswerBackend) Load(ctx context.Context, namespace string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(namespace)
}

func (b *AnswerBackend) read(namespace string) (map[string]string, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	data, err := os.ReadFile(b.path(namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	return values, nil
}

// Put rewrites the namespace file with key set.
func (b *AnswerBackend) Put(ctx context.Context, namespace, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read(namespace)
	if err != nil {
		return err
	}
	values[key] = value
	return b.write(namespace, values)
}

// Clear removes the namespace file.
func (b *AnswerBackend) Clear(ctx context.Context, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := os.Remove(b.path(namespace))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete answers file: %w", err)
	}
	return nil
}

// write persists the namespace atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (b *AnswerBackend) write(namespace string, values map[string]string) error {
	if err := os.MkdirAll(b.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure answers directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(b.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := b.path(namespace)
	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing answers file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
