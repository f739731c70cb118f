package handler

import (
	"net/http"

	"interiorviz/internal/generation"
	"interiorviz/internal/preset"
	"interiorviz/internal/workspace"
)

func (h *WorkspaceHandler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]preset.Preset{
		"presets": h.sessions.Presets().All(),
	})
}

type workspaceResponse struct {
	ID       string             `json:"id"`
	Snapshot workspace.Snapshot `json:"snapshot"`
}

func (h *WorkspaceHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ws := h.sessions.Create()
	writeJSON(w, http.StatusCreated, workspaceResponse{ID: ws.ID, Snapshot: ws.Views.Snapshot()})
}

func (h *WorkspaceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{ID: ws.ID, Snapshot: ws.Views.Snapshot()})
}

func (h *WorkspaceHandler) HandleRemoveView(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := ws.Views.RemoveView(r.PathValue("view")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{ID: ws.ID, Snapshot: ws.Views.Snapshot()})
}

func (h *WorkspaceHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var in struct {
		ViewID string `json:"viewId"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := ws.Views.SetActive(trimmed(in.ViewID)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{ID: ws.ID, Snapshot: ws.Views.Snapshot()})
}

type batchResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
	Dropped   []string          `json:"dropped,omitempty"`
}

func toBatchResponse(res generation.BatchResult) batchResponse {
	out := batchResponse{Succeeded: res.Succeeded, Dropped: res.Dropped}
	if out.Succeeded == nil {
		out.Succeeded = []string{}
	}
	if len(res.Failed) > 0 {
		out.Failed = make(map[string]string, len(res.Failed))
		for id, err := range res.Failed {
			out.Failed[id] = string(generation.Classify(err))
		}
	}
	return out
}

type generateResponse struct {
	Mode     generation.Mode     `json:"mode"`
	Batch    *batchResponse      `json:"batch,omitempty"`
	View     *workspace.RoomView `json:"view,omitempty"`
	Snapshot workspace.Snapshot  `json:"snapshot"`
}

// HandleGenerate runs a free-text submission and answers once it settled.
func (h *WorkspaceHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var in struct {
		Prompt     string `json:"prompt"`
		ApplyToAll bool   `json:"applyToAll"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	out, err := ws.Generation.Submit(r.Context(), in.Prompt, in.ApplyToAll)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := generateResponse{Mode: out.Mode, View: out.View, Snapshot: ws.Views.Snapshot()}
	if out.Batch != nil {
		b := toBatchResponse(*out.Batch)
		resp.Batch = &b
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WorkspaceHandler) HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	res, err := ws.Generation.ApplyPreset(r.Context(), r.PathValue("preset"))
	if err != nil {
		writeError(w, err)
		return
	}
	b := toBatchResponse(res)
	writeJSON(w, http.StatusOK, generateResponse{
		Mode:     generation.ModeStyle,
		Batch:    &b,
		Snapshot: ws.Views.Snapshot(),
	})
}

// HandleReset starts the workspace over.
func (h *WorkspaceHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ws, err := h.sessions.Reset(r.PathValue("ws"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaceResponse{ID: ws.ID, Snapshot: ws.Views.Snapshot()})
}
