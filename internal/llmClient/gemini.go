package llmclient

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	DefaultChatModel  = "gemini-3-pro-preview"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself. Logging is applied by middleware.
type GeminiClient struct {
	cli        *genai.Client
	imageModel string
	chatModel  string
}

func NewGeminiClient(ctx context.Context, apiKey, imageModel, chatModel string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	// An empty key lets genai read GEMINI_API_KEY / GOOGLE_API_KEY itself.
	if key := strings.TrimSpace(apiKey); key != "" {
		cfg.APIKey = key
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(imageModel) == "" {
		imageModel = DefaultImageModel
	}
	if strings.TrimSpace(chatModel) == "" {
		chatModel = DefaultChatModel
	}
	return &GeminiClient{cli: cli, imageModel: imageModel, chatModel: chatModel}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.imageModel + "+" + g.chatModel }

// GenerateImage sends the source image and prompt as one user turn and
// returns the first inline image of the first candidate.
func (g *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	parts := ImageParts(req)
	if err := ValidateParts(parts); err != nil {
		return Image{}, err
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.imageModel,
		[]*genai.Content{genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser)},
		nil,
	)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return firstImage(resp)
}

// Chat replays history, then sends images + message as the current turn.
func (g *GeminiClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	parts := ChatParts(req)
	if err := ValidateParts(parts); err != nil {
		return "", err
	}
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genaiRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser))

	var cfg *genai.GenerateContentConfig
	if sys := strings.TrimSpace(req.SystemInstruction); sys != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(sys, genai.RoleUser),
		}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.chatModel, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return responseText(resp), nil
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind() {
		case PartText:
			out = append(out, genai.NewPartFromText(p.Text()))
		case PartImage:
			img := p.Image()
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
		}
	}
	return out
}

func genaiRole(r Role) genai.Role {
	if r == RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func firstImage(resp *genai.GenerateContentResponse) (Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Image{}, ErrNoImageData
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = "image/png"
		}
		return Image{MIMEType: mimeType, Data: part.InlineData.Data}, nil
	}
	return Image{}, ErrNoImageData
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}
