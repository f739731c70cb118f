package render

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("http://localhost:8080/")
	data := []byte("png-bytes")
	if err := s.Put(ctx, "ws1", "view.png", Object{MIMEType: "image/png", Data: data}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data[0] = 'X'

	obj, err := s.Get(ctx, "ws1", "/view.png")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(obj.Data) != "png-bytes" || obj.MIMEType != "image/png" {
		t.Fatalf("Get() = %+v", obj)
	}

	u, err := s.URL(ctx, "ws1", "view.png", time.Hour)
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if want := "http://localhost:8080/api/workspaces/ws1/exports/view.png"; u != want {
		t.Fatalf("URL() = %q, want %q", u, want)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	if _, err := s.Get(ctx, "ws1", "nope.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.URL(ctx, "ws1", "nope.png", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("URL() error = %v, want ErrNotFound", err)
	}
	if err := s.Put(ctx, " ", "a.png", Object{}); err == nil {
		t.Fatalf("Put() without workspace id succeeded")
	}
}

func TestMemoryStoreDeleteWorkspace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	for _, ws := range []string{"ws1", "ws2"} {
		if err := s.Put(ctx, ws, "a.png", Object{MIMEType: "image/png", Data: []byte("a")}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if err := s.DeleteWorkspace(ctx, "ws1"); err != nil {
		t.Fatalf("DeleteWorkspace() error = %v", err)
	}
	if _, err := s.Get(ctx, "ws1", "a.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ws1 export survived delete: %v", err)
	}
	if _, err := s.Get(ctx, "ws2", "a.png"); err != nil {
		t.Fatalf("ws2 export removed: %v", err)
	}
}
