package handler

import (
	"errors"
	"net/http"

	"interiorviz/internal/conversation"
)

type chatResponse struct {
	Reply    *conversation.Message  `json:"reply,omitempty"`
	Messages []conversation.Message `json:"messages"`
	Typing   bool                   `json:"typing"`
	Fallback bool                   `json:"fallback,omitempty"`
}

func (h *WorkspaceHandler) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Messages: ws.Chat.History(), Typing: ws.Chat.IsTyping()})
}

// HandleChatSend forwards one message to the consultant. A failed call is
// answered with the fallback text; the fallback is not added to history.
func (h *WorkspaceHandler) HandleChatSend(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	var in struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	reply, err := ws.Chat.SendMessage(r.Context(), in.Text)
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		writeError(w, err)
		return
	case err != nil:
		fallback := conversation.Message{Role: conversation.RoleAssistant, Text: ChatFallback}
		writeJSON(w, http.StatusOK, chatResponse{
			Reply:    &fallback,
			Messages: ws.Chat.History(),
			Typing:   ws.Chat.IsTyping(),
			Fallback: true,
		})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: &reply, Messages: ws.Chat.History(), Typing: ws.Chat.IsTyping()})
}
