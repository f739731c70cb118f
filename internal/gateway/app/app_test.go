package app

import (
	"context"
	"testing"
	"time"

	"interiorviz/internal/gateway/config"
	"interiorviz/internal/gateway/repository/render"
)

func TestInitRenderStoreFallsBackToMemory(t *testing.T) {
	cfg := &config.Config{Export: config.ExportConfig{Enabled: true, Endpoint: "minio:9000"}}
	store, err := initRenderStore(cfg)
	if err != nil {
		t.Fatalf("initRenderStore() error = %v", err)
	}
	if _, ok := store.(*render.MemoryStore); !ok {
		t.Fatalf("store = %T, want *render.MemoryStore", store)
	}
}

func TestInitRenderStoreUsesS3(t *testing.T) {
	cfg := &config.Config{Export: config.ExportConfig{
		Enabled:   true,
		Endpoint:  "minio:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "renders",
	}}
	store, err := initRenderStore(cfg)
	if err != nil {
		t.Fatalf("initRenderStore() error = %v", err)
	}
	if _, ok := store.(*render.S3Store); !ok {
		t.Fatalf("store = %T, want *render.S3Store", store)
	}
}

func TestNewWithConfigFake(t *testing.T) {
	cfg := &config.Config{
		Port:          ":0",
		MaxWorkspaces: 4,
		LLM:           config.LLMConfig{Fake: true, RequestTimeout: time.Second},
	}
	a, err := NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error = %v", err)
	}
	if a.server == nil {
		t.Fatalf("server not built")
	}
}
