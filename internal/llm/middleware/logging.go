// Package middleware decorates collaborator clients with request logging.
// Every request is a single attempt; nothing here retries or throttles.
package middleware

import (
	"context"
	"log"
	"time"

	llmclient "interiorviz/internal/llmClient"
)

// WithImageLogging logs request size, latency and errors. Provide a custom
// logger or nil to use log.Default().
func WithImageLogging(next llmclient.ImageGenerator, logger *log.Logger) llmclient.ImageGenerator {
	if logger == nil {
		logger = log.Default()
	}
	return &imageLogging{next: next, log: logger}
}

// WithChatLogging is WithImageLogging for chat clients.
func WithChatLogging(next llmclient.ChatClient, logger *log.Logger) llmclient.ChatClient {
	if logger == nil {
		logger = log.Default()
	}
	return &chatLogging{next: next, log: logger}
}

type imageLogging struct {
	next llmclient.ImageGenerator
	log  *log.Logger
}

func (l *imageLogging) Name() string { return l.next.Name() }

func (l *imageLogging) GenerateImage(ctx context.Context, req llmclient.ImageRequest) (llmclient.Image, error) {
	start := time.Now()
	l.log.Printf("image request (%s): %d bytes source, %d bytes prompt", l.next.Name(), len(req.Source.Data), len(req.Prompt))
	out, err := l.next.GenerateImage(ctx, req)
	if err != nil {
		l.log.Printf("image error (%s) after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return out, err
	}
	l.log.Printf("image response (%s) after %s: %d bytes", l.next.Name(), time.Since(start).Round(time.Millisecond), len(out.Data))
	return out, nil
}

type chatLogging struct {
	next llmclient.ChatClient
	log  *log.Logger
}

func (l *chatLogging) Name() string { return l.next.Name() }

func (l *chatLogging) Chat(ctx context.Context, req llmclient.ChatRequest) (string, error) {
	start := time.Now()
	l.log.Printf("chat request (%s): %d turns, %d images", l.next.Name(), len(req.History), len(req.Images))
	out, err := l.next.Chat(ctx, req)
	if err != nil {
		l.log.Printf("chat error (%s) after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
	}
	return out, err
}
