// Package export publishes a view's latest render to the render store and
// returns a download URL for it.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"mime"
	"strings"
	"time"

	"interiorviz/internal/cache/memory"
	"interiorviz/internal/gateway/repository/render"
	"interiorviz/internal/imagecodec"
	"interiorviz/internal/workspace"
)

const (
	defaultExpiry   = time.Hour
	defaultCacheLen = 512
)

type Result struct {
	ViewID   string `json:"viewId"`
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	URL      string `json:"url"`
}

type Service struct {
	store  render.Store
	urls   *memory.LRUTTL[string, string]
	expiry time.Duration
}

// New caches URLs for half the link expiry so a cached link always has
// time left when handed out.
func New(store render.Store, expiry time.Duration) *Service {
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &Service{
		store:  store,
		urls:   memory.NewLRUTTL[string, string](defaultCacheLen, expiry/2),
		expiry: expiry,
	}
}

// Export stores the view's generated image, or its original when nothing
// was generated yet. Exporting the same image twice reuses the object.
func (s *Service) Export(ctx context.Context, workspaceID string, v workspace.RoomView) (Result, error) {
	p, err := imagecodec.StripEnvelope(v.Best())
	if err != nil {
		return Result{}, fmt.Errorf("export view %s: %w", v.ID, err)
	}
	name := objectName(v.ID, p)
	res := Result{ViewID: v.ID, Name: name, MIMEType: p.MIMEType}
	key := cacheKey(workspaceID, name)
	if u, ok := s.urls.Get(key); ok {
		res.URL = u
		return res, nil
	}

	if err := s.store.Put(ctx, workspaceID, name, render.Object{MIMEType: p.MIMEType, Data: p.Data}); err != nil {
		return Result{}, fmt.Errorf("export view %s: %w", v.ID, err)
	}
	u, err := s.store.URL(ctx, workspaceID, name, s.expiry)
	if err != nil {
		return Result{}, fmt.Errorf("export view %s: %w", v.ID, err)
	}
	s.urls.Set(key, u)
	log.Printf("export: stored %s/%s (%d bytes)", workspaceID, name, len(p.Data))
	res.URL = u
	return res, nil
}

// Open reads back an exported render.
func (s *Service) Open(ctx context.Context, workspaceID, name string) (render.Object, error) {
	return s.store.Get(ctx, workspaceID, name)
}

// Forget drops every export of a workspace.
func (s *Service) Forget(ctx context.Context, workspaceID string) error {
	prefix := workspaceID + "/"
	s.urls.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
	return s.store.DeleteWorkspace(ctx, workspaceID)
}

func objectName(viewID string, p imagecodec.Payload) string {
	sum := sha256.Sum256(p.Data)
	ext := ".bin"
	if exts, _ := mime.ExtensionsByType(p.MIMEType); len(exts) > 0 {
		ext = exts[0]
	}
	return fmt.Sprintf("%s-%s%s", viewID, hex.EncodeToString(sum[:6]), ext)
}

func cacheKey(workspaceID, name string) string { return workspaceID + "/" + name }
