package llmclient

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// FakeClient returns deterministic payloads for offline development and
// tests. Generated images echo the source bytes followed by a prompt tag.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }

func (f *FakeClient) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := ValidateParts(ImageParts(req)); err != nil {
		return Image{}, err
	}
	tag := fmt.Sprintf("|redesign:%08x", promptHash(req.Prompt))
	data := append(append([]byte(nil), req.Source.Data...), tag...)
	return Image{MIMEType: req.Source.MIMEType, Data: data}, nil
}

func (f *FakeClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := ValidateParts(ChatParts(req)); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(req.Message)
	return fmt.Sprintf("Looking at %d view(s): %s", len(req.Images), msg), nil
}

func promptHash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
