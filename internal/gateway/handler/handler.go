// Package handler serves the workspace API over HTTP/JSON and streams
// workspace events over WebSocket.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"interiorviz/internal/conversation"
	"interiorviz/internal/gateway/repository/render"
	"interiorviz/internal/gateway/service/export"
	"interiorviz/internal/gateway/service/session"
	"interiorviz/internal/generation"
	"interiorviz/internal/imagecodec"
	"interiorviz/internal/preset"
	"interiorviz/internal/workspace"
)

// ChatFallback is answered when the consultant cannot be reached.
const ChatFallback = "I'm having trouble connecting to the design server right now. Please try again."

type WorkspaceHandler struct {
	sessions *session.Service
	exports  *export.Service
}

func NewWorkspaceHandler(sessions *session.Service, exports *export.Service) *WorkspaceHandler {
	return &WorkspaceHandler{sessions: sessions, exports: exports}
}

func (h *WorkspaceHandler) workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	ws, err := h.sessions.Get(r.PathValue("ws"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ws, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("gateway: %s: %v", code, err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, workspace.ErrInvalidReference),
		errors.Is(err, render.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, preset.ErrUnknownPreset):
		return http.StatusNotFound, "unknown_preset"
	case errors.Is(err, workspace.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, generation.ErrEmptyPrompt),
		errors.Is(err, conversation.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_prompt"
	case errors.Is(err, imagecodec.ErrUnreadableFile):
		return http.StatusBadRequest, "unreadable_file"
	case errors.Is(err, generation.ErrNoActiveView):
		return http.StatusConflict, "no_active_view"
	case errors.Is(err, generation.ErrBatchFailed):
		return http.StatusInternalServerError, "batch_failed"
	case errors.Is(err, generation.ErrNoImageDataReturned):
		return http.StatusBadGateway, "no_image_data"
	case errors.Is(err, generation.ErrInvalidSource):
		return http.StatusUnprocessableEntity, "invalid_source"
	default:
		return http.StatusBadGateway, "upstream"
	}
}

func trimmed(s string) string { return strings.TrimSpace(s) }
