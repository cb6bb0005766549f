package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docedit/internal/tools"
)

// handleRunTool runs a read-only tool directly. Write tools are refused here
// so that every document change passes through an approval.
func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !tools.Known(name) {
		jsonError(w, fmt.Sprintf("unknown tool: %s", name), http.StatusNotFound)
		return
	}
	if s.deps.Policy.RequiresApproval(name) {
		jsonError(w, fmt.Sprintf("%s requires approval; start a conversation instead", name), http.StatusForbidden)
		return
	}

	args, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(args) > 0 && !json.Valid(args) {
		jsonError(w, "body must be a JSON object", http.StatusBadRequest)
		return
	}

	ws := &tools.Workspace{Path: s.documentParam(r, "document")}
	writeJSON(w, http.StatusOK, s.deps.Gateway.Run(r.Context(), ws, name, args))
}

func (s *Server) documentParam(r *http.Request, key string) string {
	if doc := r.URL.Query().Get(key); doc != "" {
		return doc
	}
	return s.cfg.DefaultDocument
}
