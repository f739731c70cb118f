package render

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps exports in process. Its URLs point back at the gateway
// download route under BaseURL.
type MemoryStore struct {
	BaseURL string

	mu   sync.RWMutex
	data map[string]Object
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		data:    make(map[string]Object),
	}
}

func (s *MemoryStore) Put(_ context.Context, workspaceID, name string, obj Object) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = Object{MIMEType: obj.MIMEType, Data: append([]byte(nil), obj.Data...)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, workspaceID, name string) (Object, error) {
	if s == nil {
		return Object{}, fmt.Errorf("store is nil")
	}
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return Object{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.data[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return Object{MIMEType: obj.MIMEType, Data: append([]byte(nil), obj.Data...)}, nil
}

// URL ignores expiry; entries live until their workspace is deleted.
func (s *MemoryStore) URL(_ context.Context, workspaceID, name string, _ time.Duration) (string, error) {
	key, err := objectKey(workspaceID, name)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	_, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	ws, file, _ := strings.Cut(key, "/")
	return fmt.Sprintf("%s/api/workspaces/%s/exports/%s", s.BaseURL, url.PathEscape(ws), url.PathEscape(file)), nil
}

func (s *MemoryStore) DeleteWorkspace(_ context.Context, workspaceID string) error {
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}
	prefix := workspaceID + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}
