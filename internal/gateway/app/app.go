package app

import (
	"context"
	"fmt"
	"log"

	"interiorviz/internal/conversation"
	"interiorviz/internal/gateway/config"
	"interiorviz/internal/gateway/handler"
	"interiorviz/internal/gateway/server"
	"interiorviz/internal/gateway/service/export"
	"interiorviz/internal/gateway/service/session"
	"interiorviz/internal/generation"
	"interiorviz/internal/preset"
)

type App struct {
	server *server.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Dependencies
	clients, err := initClients(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	presets, err := preset.LoadOrDefault(cfg.PresetsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	renderStore, err := initRenderStore(cfg)
	if err != nil {
		return nil, err
	}
	exportSvc := export.New(renderStore, cfg.Export.Expiry)

	sessions, err := session.New(session.Deps{
		Images:  clients.images,
		Chat:    clients.chat,
		Presets: presets,
		GenerationOptions: []generation.Option{
			generation.WithRequestTimeout(cfg.LLM.RequestTimeout),
		},
		ChatOptions: []conversation.Option{
			conversation.WithRequestTimeout(cfg.LLM.RequestTimeout),
		},
	}, cfg.MaxWorkspaces)
	if err != nil {
		return nil, err
	}
	sessions.OnClose(session.ForgetExports(exportSvc.Forget))
	log.Printf("sessions: up to %d workspaces, %d presets", cfg.MaxWorkspaces, len(presets.All()))

	// Routing & Server
	mux := server.NewMux(
		handler.NewWorkspaceHandler(sessions, exportSvc),
		handler.NewEventsHandler(sessions),
	)
	return &App{server: server.New(cfg.Port, mux)}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
