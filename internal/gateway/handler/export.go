package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"interiorviz/internal/workspace"
)

func (h *WorkspaceHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	v, found := ws.Views.View(r.PathValue("view"))
	if !found {
		writeError(w, fmt.Errorf("%w: %q", workspace.ErrInvalidReference, r.PathValue("view")))
		return
	}
	res, err := h.exports.Export(r.Context(), ws.ID, v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleDownload serves renders kept by the in-memory export store.
func (h *WorkspaceHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	obj, err := h.exports.Open(r.Context(), r.PathValue("ws"), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", obj.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+r.PathValue("name")+`"`)
	_, _ = w.Write(obj.Data)
}
