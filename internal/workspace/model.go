package workspace

import (
	"errors"
	"fmt"

	"interiorviz/internal/imagecodec"
)

var (
	ErrInvalidReference = errors.New("workspace: unknown view id")
	ErrBusy             = errors.New("workspace: generation already in flight")
	ErrNoActiveView     = errors.New("workspace: no active view")
)

type Mode string

const (
	ModeUpload Mode = "upload"
	ModeEdit   Mode = "edit"
)

// RoomView is one uploaded photo and its latest redesign.
type RoomView struct {
	ID        string                   `json:"id"`
	Original  imagecodec.EmbeddedImage `json:"original"`
	Generated imagecodec.EmbeddedImage `json:"generated,omitempty"`
	IsLoading bool                     `json:"isLoading"`
}

// HasGenerated reports whether a redesign exists.
func (v RoomView) HasGenerated() bool { return !v.Generated.IsZero() }

// Best returns the generated image if present, else the original.
func (v RoomView) Best() imagecodec.EmbeddedImage {
	if v.HasGenerated() {
		return v.Generated
	}
	return v.Original
}

// ViewSummary is RoomView plus its position label.
type ViewSummary struct {
	RoomView
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Snapshot is a consistent copy of the whole workspace.
type Snapshot struct {
	Version    uint64        `json:"version"`
	Mode       Mode          `json:"mode"`
	ActiveID   string        `json:"activeId,omitempty"`
	EditPrompt string        `json:"editPrompt,omitempty"`
	Views      []ViewSummary `json:"views"`
}

// Busy reports whether any view is loading.
func (s Snapshot) Busy() bool {
	for _, v := range s.Views {
		if v.IsLoading {
			return true
		}
	}
	return false
}

func viewLabel(i int) string { return fmt.Sprintf("View %d", i+1) }

type EventKind string

const (
	EventSnapshot EventKind = "snapshot"
	EventNotice   EventKind = "notice"
)

// Event is published to subscribers after every mutation (snapshot) and
// for user-visible alerts (notice).
type Event struct {
	Kind     EventKind `json:"type"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Notice   string    `json:"notice,omitempty"`
	ViewID   string    `json:"viewId,omitempty"`
}
