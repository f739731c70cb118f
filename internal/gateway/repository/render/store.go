// Package render stores exported renders so a client can download or share
// them by URL.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("render not found")

// Object is one exported image.
type Object struct {
	MIMEType string
	Data     []byte
}

// Store persists exported renders under workspace-scoped names.
type Store interface {
	Put(ctx context.Context, workspaceID, name string, obj Object) error
	Get(ctx context.Context, workspaceID, name string) (Object, error)
	// URL returns a download link valid for at least expiry.
	URL(ctx context.Context, workspaceID, name string, expiry time.Duration) (string, error)
	DeleteWorkspace(ctx context.Context, workspaceID string) error
}

func objectKey(workspaceID, name string) (string, error) {
	workspaceID = strings.TrimSpace(workspaceID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if workspaceID == "" {
		return "", fmt.Errorf("workspace id is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return workspaceID + "/" + name, nil
}
