package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"interiorviz/internal/gateway/repository/render"
	"interiorviz/internal/imagecodec"
	"interiorviz/internal/workspace"
)

type countingStore struct {
	*render.MemoryStore
	puts int
}

func (c *countingStore) Put(ctx context.Context, ws, name string, obj render.Object) error {
	c.puts++
	return c.MemoryStore.Put(ctx, ws, name, obj)
}

func TestExportPrefersGenerated(t *testing.T) {
	store := &countingStore{MemoryStore: render.NewMemoryStore("")}
	svc := New(store, time.Hour)
	v := workspace.RoomView{
		ID:        "v1",
		Original:  imagecodec.Encode("image/jpeg", []byte("orig")),
		Generated: imagecodec.Encode("image/png", []byte("gen")),
	}
	res, err := svc.Export(context.Background(), "ws1", v)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.MIMEType != "image/png" || !strings.HasPrefix(res.Name, "v1-") || !strings.HasSuffix(res.Name, ".png") {
		t.Fatalf("Export() = %+v", res)
	}
	obj, err := svc.Open(context.Background(), "ws1", res.Name)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(obj.Data) != "gen" {
		t.Fatalf("exported data = %q, want generated image", obj.Data)
	}
	if !strings.HasSuffix(res.URL, "/api/workspaces/ws1/exports/"+res.Name) {
		t.Fatalf("URL = %q", res.URL)
	}
}

func TestExportReusesCachedURL(t *testing.T) {
	store := &countingStore{MemoryStore: render.NewMemoryStore("")}
	svc := New(store, time.Hour)
	v := workspace.RoomView{ID: "v1", Original: imagecodec.Encode("image/jpeg", []byte("orig"))}

	first, err := svc.Export(context.Background(), "ws1", v)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	second, err := svc.Export(context.Background(), "ws1", v)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if first != second || store.puts != 1 {
		t.Fatalf("second export re-uploaded: puts=%d first=%+v second=%+v", store.puts, first, second)
	}

	v.Generated = imagecodec.Encode("image/png", []byte("new"))
	third, err := svc.Export(context.Background(), "ws1", v)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if third.Name == first.Name || store.puts != 2 {
		t.Fatalf("new render not uploaded: %+v", third)
	}
}

func TestForgetDropsExports(t *testing.T) {
	store := &countingStore{MemoryStore: render.NewMemoryStore("")}
	svc := New(store, time.Hour)
	v := workspace.RoomView{ID: "v1", Original: imagecodec.Encode("image/jpeg", []byte("orig"))}
	res, err := svc.Export(context.Background(), "ws1", v)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if err := svc.Forget(context.Background(), "ws1"); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if _, err := svc.Open(context.Background(), "ws1", res.Name); !errors.Is(err, render.ErrNotFound) {
		t.Fatalf("Open() after Forget error = %v", err)
	}
	if _, err := svc.Export(context.Background(), "ws1", v); err != nil || store.puts != 2 {
		t.Fatalf("export after Forget: err=%v puts=%d", err, store.puts)
	}
}

func TestExportInvalidImage(t *testing.T) {
	svc := New(render.NewMemoryStore(""), 0)
	_, err := svc.Export(context.Background(), "ws1", workspace.RoomView{ID: "v1", Original: "broken"})
	if !errors.Is(err, imagecodec.ErrInvalidSource) {
		t.Fatalf("Export() error = %v, want ErrInvalidSource", err)
	}
}
