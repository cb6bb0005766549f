package api

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docedit/internal/parser"
)

// handleDocumentIndex returns the full index of a document.
func (s *Server) handleDocumentIndex(w http.ResponseWriter, r *http.Request) {
	doc := s.documentParam(r, "path")
	sess, err := s.deps.Sessions.Get(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	ix, err := sess.Index(r.Context())
	if err != nil {
		jsonError(w, "failed to index document: "+err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document":   doc,
		"paragraphs": ix.Paragraphs(),
		"outline":    ix.Outline(),
	})
}

// Invalidator drops cached state for a document path.
type Invalidator interface {
	Invalidate(path string)
}

// handleUploadDocument stores a document under the document root, replacing
// any existing file of the same name.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	// Validate before overwriting anything.
	p, _ := parser.ForFile(filename)
	if _, err := p.Parse(bytes.NewReader(data), filename); err != nil {
		jsonError(w, "unreadable document: "+err.Error(), http.StatusBadRequest)
		return
	}

	blob, err := s.deps.Blobs.Blob(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := blob.Write(r.Context(), data); err != nil {
		s.log.Error("upload failed", "filename", filename, "error", err)
		jsonError(w, "failed to store document", http.StatusInternalServerError)
		return
	}
	if inv, ok := s.deps.Sessions.(Invalidator); ok {
		inv.Invalidate(filename)
	}

	s.log.Info("document uploaded", "filename", filename, "bytes", len(data))
	writeJSON(w, http.StatusCreated, map[string]any{
		"path":         filename,
		"bytes":        len(data),
		"content_hash": contentHashHex(data),
	})
}

// contentHashHex computes SHA-256 of content and returns hex string.
func contentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
