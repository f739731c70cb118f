package server

import (
	"net/http"

	"interiorviz/internal/gateway/handler"
	"interiorviz/internal/gateway/middleware"
)

func NewMux(workspaces *handler.WorkspaceHandler, events *handler.EventsHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/presets", workspaces.HandlePresets)

	mux.HandleFunc("POST /api/workspaces", workspaces.HandleCreate)
	mux.HandleFunc("GET /api/workspaces/{ws}", workspaces.HandleGet)
	mux.HandleFunc("POST /api/workspaces/{ws}/reset", workspaces.HandleReset)

	mux.HandleFunc("POST /api/workspaces/{ws}/views", workspaces.HandleUpload)
	mux.HandleFunc("DELETE /api/workspaces/{ws}/views/{view}", workspaces.HandleRemoveView)
	mux.HandleFunc("PUT /api/workspaces/{ws}/active", workspaces.HandleSetActive)

	mux.HandleFunc("POST /api/workspaces/{ws}/generate", workspaces.HandleGenerate)
	mux.HandleFunc("POST /api/workspaces/{ws}/presets/{preset}", workspaces.HandleApplyPreset)

	mux.HandleFunc("GET /api/workspaces/{ws}/chat", workspaces.HandleChatHistory)
	mux.HandleFunc("POST /api/workspaces/{ws}/chat", workspaces.HandleChatSend)

	mux.HandleFunc("POST /api/workspaces/{ws}/views/{view}/export", workspaces.HandleExport)
	mux.HandleFunc("GET /api/workspaces/{ws}/exports/{name}", workspaces.HandleDownload)

	// WebSocket
	mux.HandleFunc("GET /api/workspaces/{ws}/ws", events.HandleEventsWS)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return middleware.CORS(mux)
}
