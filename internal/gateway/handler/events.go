package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"interiorviz/internal/gateway/service/session"
	"interiorviz/internal/workspace"
)

const (
	eventsWSWriteWait = 10 * time.Second
	eventsWSPongWait  = 60 * time.Second
	eventsWSPingEvery = (eventsWSPongWait * 9) / 10
)

var eventsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type eventsWSInbound struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"`
}

type eventsWSOutbound struct {
	Type     string              `json:"type"`
	Snapshot *workspace.Snapshot `json:"snapshot,omitempty"`
	Notice   string              `json:"notice,omitempty"`
	ViewID   string              `json:"viewId,omitempty"`
	Typing   *bool               `json:"typing,omitempty"`
	Code     string              `json:"code,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// EventsHandler streams workspace snapshots and notices. Clients may send
// "ping" and "draft" (edit-prompt keystrokes) messages.
type EventsHandler struct {
	sessions *session.Service
}

func NewEventsHandler(sessions *session.Service) *EventsHandler {
	return &EventsHandler{sessions: sessions}
}

func (h *EventsHandler) HandleEventsWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.sessions.Get(r.PathValue("ws"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := eventsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(eventsWSPongWait)); err != nil {
		log.Printf("events ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsWSPongWait))
	})

	writeCh := make(chan eventsWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(eventsWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(eventsWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	events := ws.Views.Subscribe(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				typing := ws.Chat.IsTyping()
				pushEventsWS(writeCh, eventsWSOutbound{
					Type:     string(evt.Kind),
					Snapshot: evt.Snapshot,
					Notice:   evt.Notice,
					ViewID:   evt.ViewID,
					Typing:   &typing,
				})
			}
		}
	}()

	for {
		var in eventsWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch msgType := strings.ToLower(strings.TrimSpace(in.Type)); msgType {
		case "ping":
			pushEventsWS(writeCh, eventsWSOutbound{Type: "pong"})
		case "draft":
			ws.Views.SetEditPrompt(in.Prompt)
		case "":
			pushEventsWS(writeCh, eventsWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "type is required",
			})
		default:
			pushEventsWS(writeCh, eventsWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
	}
}

// pushEventsWS drops the oldest pending message when the writer lags.
func pushEventsWS(writeCh chan eventsWSOutbound, out eventsWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
