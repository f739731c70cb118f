package app

import (
	"context"
	"fmt"
	"log"

	"interiorviz/internal/gateway/config"
	"interiorviz/internal/gateway/repository/render"
	"interiorviz/internal/llm/middleware"
	llmclient "interiorviz/internal/llmClient"
)

type collaborators struct {
	images llmclient.ImageGenerator
	chat   llmclient.ChatClient
}

func initClients(ctx context.Context, cfg config.LLMConfig) (*collaborators, error) {
	if cfg.Fake {
		fake := llmclient.NewFakeClient()
		log.Printf("llm: using %s (no api key or LLM_FAKE set)", fake.Name())
		return &collaborators{
			images: middleware.WithImageLogging(fake, nil),
			chat:   middleware.WithChatLogging(fake, nil),
		}, nil
	}
	gemini, err := llmclient.NewGeminiClient(ctx, cfg.APIKey, cfg.ImageModel, cfg.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	log.Printf("llm: using %s", gemini.Name())
	return &collaborators{
		images: middleware.WithImageLogging(gemini, nil),
		chat:   middleware.WithChatLogging(gemini, nil),
	}, nil
}

func initRenderStore(cfg *config.Config) (render.Store, error) {
	if cfg.Export.CanUseS3() {
		s3Cfg := render.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			Region:    cfg.Export.Region,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			UseSSL:    cfg.Export.UseSSL,
		}
		s3Store, err := render.NewS3Store(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize render s3 store: %w", err)
		}
		log.Printf("render store: s3 bucket=%s endpoint=%s", s3Cfg.Bucket, s3Cfg.Endpoint)
		return s3Store, nil
	}
	if cfg.Export.Enabled {
		log.Printf("render store: using in-memory fallback (s3 config incomplete)")
	}
	return render.NewMemoryStore(cfg.PublicURL), nil
}
