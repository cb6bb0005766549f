package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Blob is the raw bytes of one persisted document.
type Blob interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// newFileMode is the mode of documents that did not exist before Write.
const newFileMode = 0o644

// FileBlob is a document on the local filesystem.
type FileBlob struct {
	path string
}

// NewFileBlob returns a blob backed by path.
func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

func (b *FileBlob) Name() string { return b.path }

func (b *FileBlob) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	return data, nil
}

// Write replaces the file through a temporary sibling so a failed write
// leaves the original untouched. The replacement keeps the original's
// permission bits.
func (b *FileBlob) Write(ctx context.Context, data []byte) error {
	mode := os.FileMode(newFileMode)
	if info, err := os.Stat(b.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".docedit-*"+filepath.Ext(b.path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}
