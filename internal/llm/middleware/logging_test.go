package middleware

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	llmclient "interiorviz/internal/llmClient"
)

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }
func (failingGenerator) GenerateImage(context.Context, llmclient.ImageRequest) (llmclient.Image, error) {
	return llmclient.Image{}, llmclient.ErrNoImageData
}

func TestImageLoggingPassesThroughAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	gen := WithImageLogging(llmclient.NewFakeClient(), logger)
	req := llmclient.ImageRequest{
		Source: llmclient.Image{MIMEType: "image/png", Data: []byte("room")},
		Prompt: "boho",
	}
	if _, err := gen.GenerateImage(context.Background(), req); err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if !strings.Contains(buf.String(), "image request (FakeLLM)") {
		t.Fatalf("missing request log: %q", buf.String())
	}

	buf.Reset()
	_, err := WithImageLogging(failingGenerator{}, logger).GenerateImage(context.Background(), req)
	if !errors.Is(err, llmclient.ErrNoImageData) {
		t.Fatalf("error not passed through: %v", err)
	}
	if !strings.Contains(buf.String(), "image error (failing)") {
		t.Fatalf("missing error log: %q", buf.String())
	}
}

func TestChatLogging(t *testing.T) {
	var buf bytes.Buffer
	chat := WithChatLogging(llmclient.NewFakeClient(), log.New(&buf, "", 0))
	if chat.Name() != "FakeLLM" {
		t.Fatalf("Name() = %q", chat.Name())
	}
	if _, err := chat.Chat(context.Background(), llmclient.ChatRequest{Message: "hi"}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !strings.Contains(buf.String(), "chat request (FakeLLM): 0 turns, 0 images") {
		t.Fatalf("missing chat log: %q", buf.String())
	}
}
