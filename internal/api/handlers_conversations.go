package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docedit/internal/approval"
	"github.com/dgallion1/docedit/internal/llm"
)

type conversationRequest struct {
	Document string        `json:"document"`
	Messages []llm.Message `json:"messages"`
}

// handleStartConversation runs the agent until it completes or suspends on
// an approval.
func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		jsonError(w, "messages is required", http.StatusBadRequest)
		return
	}
	doc := req.Document
	if doc == "" {
		doc = s.cfg.DefaultDocument
	}

	out, err := s.deps.Runner.Start(r.Context(), doc, req.Messages)
	if err != nil {
		s.log.Error("conversation failed", "document", doc, "error", err)
		jsonError(w, "conversation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type approvalResponse struct {
	Response string `json:"response"`
}

// handleResolveApproval resumes a suspended run with the human's answer.
func (s *Server) handleResolveApproval(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	var req approvalResponse
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.deps.Runner.Resume(r.Context(), token, req.Response)
	if errors.Is(err, approval.ErrTokenNotFound) {
		jsonError(w, "approval not found or already resolved", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("resume failed", "token", token, "error", err)
		jsonError(w, "resume failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
