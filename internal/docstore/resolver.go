package docstore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/parser"
)

const s3Scheme = "s3://"

// Resolver maps document paths to stores. Plain paths resolve under Root;
// "s3://key" paths resolve against the configured bucket.
type Resolver struct {
	Root string
	S3   *S3Bucket
}

// Blob returns the blob for path without checking its format.
func (r *Resolver) Blob(path string) (Blob, error) {
	if key, ok := strings.CutPrefix(path, s3Scheme); ok {
		if r.S3 == nil {
			return nil, fmt.Errorf("resolve %s: object storage is not configured", path)
		}
		if key == "" {
			return nil, fmt.Errorf("resolve %s: empty object key", path)
		}
		return r.S3.Blob(key), nil
	}
	full, err := r.localPath(path)
	if err != nil {
		return nil, err
	}
	return NewFileBlob(full), nil
}

// Open returns the store for path, chosen by file extension.
func (r *Resolver) Open(path string) (Store, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	blob, err := r.Blob(path)
	if err != nil {
		return nil, err
	}
	if parser.IsEditable(path) {
		return NewDOCXStore(blob), nil
	}
	return NewReadOnlyStore(blob, p), nil
}

// Key returns the canonical spelling of path, so that aliases such as
// "plan.docx" and "./plan.docx" name the same document. Paths that do not
// resolve are returned unchanged.
func (r *Resolver) Key(path string) string {
	if key, ok := strings.CutPrefix(path, s3Scheme); ok {
		return s3Scheme + strings.TrimPrefix(key, "/")
	}
	full, err := r.localPath(path)
	if err != nil {
		return path
	}
	return full
}

// localPath returns the cleaned absolute path for path, which must stay
// inside Root when Root is set.
func (r *Resolver) localPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("resolve: empty document path")
	}
	if r.Root == "" {
		full, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", path, err)
		}
		return full, nil
	}
	root, err := filepath.Abs(r.Root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", r.Root, err)
	}
	full := filepath.Clean(path)
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("resolve %s: path escapes document root", path)
	}
	return full, nil
}
