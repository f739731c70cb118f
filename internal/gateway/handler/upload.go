package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"interiorviz/internal/imagecodec"
	"interiorviz/internal/workspace"
)

const uploadMemory = 32 << 20

type uploadResponse struct {
	Added    []string           `json:"added"`
	Rejected []string           `json:"rejected,omitempty"`
	Snapshot workspace.Snapshot `json:"snapshot"`
}

// HandleUpload accepts one or more images in the multipart field "files".
// Readable files are added even when others in the same request are not.
func (h *WorkspaceHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "files are required", http.StatusBadRequest)
		return
	}
	sources := make([]imagecodec.Source, 0, len(headers))
	for _, fh := range headers {
		sources = append(sources, multipartSource(fh))
	}

	added, err := ws.Views.AddViews(r.Context(), sources)
	resp := uploadResponse{Added: added, Snapshot: ws.Views.Snapshot()}
	if resp.Added == nil {
		resp.Added = []string{}
	}
	if err != nil {
		resp.Rejected = joinedMessages(err)
	}
	if len(added) == 0 && err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func multipartSource(fh *multipart.FileHeader) imagecodec.Source {
	return imagecodec.ReaderSource(fh.Filename, fh.Header.Get("Content-Type"), func() (io.ReadCloser, error) {
		return fh.Open()
	})
}

func joinedMessages(err error) []string {
	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		out := make([]string, 0, len(multi.Unwrap()))
		for _, e := range multi.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
