package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoImageData means the model answered without an inline image.
	ErrNoImageData = errors.New("llm: no image data found in response")
	// ErrTransport wraps any API or network level failure.
	ErrTransport = errors.New("llm: transport failure")
	// ErrInvalidPart is returned when a payload part fails validation.
	ErrInvalidPart = errors.New("llm: invalid payload part")
)

// Image is raw image bytes with their mime type.
type Image struct {
	MIMEType string
	Data     []byte
}

// ImageRequest asks for one redesign of Source.
type ImageRequest struct {
	Source Image
	Prompt string
}

// ImageGenerator turns a source image and a prompt into a new image.
// One call is one attempt; callers never retry.
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, req ImageRequest) (Image, error)
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of a conversation.
type Turn struct {
	Role Role
	Text string
}

// ChatRequest carries prior history (without the current message), the
// current message, its context images and the system instruction.
type ChatRequest struct {
	History           []Turn
	Message           string
	Images            []Image
	SystemInstruction string
}

type ChatClient interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (string, error)
}

type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is the closed set of payload parts sent to a model: either text or
// an inline image. Build parts with TextPart and ImagePart.
type Part struct {
	kind  PartKind
	text  string
	image Image
}

func TextPart(text string) Part { return Part{kind: PartText, text: text} }

func ImagePart(img Image) Part { return Part{kind: PartImage, image: img} }

func (p Part) Kind() PartKind { return p.kind }
func (p Part) Text() string   { return p.text }
func (p Part) Image() Image   { return p.image }

// Validate rejects empty text, empty images and non-image mime types.
func (p Part) Validate() error {
	switch p.kind {
	case PartText:
		if strings.TrimSpace(p.text) == "" {
			return fmt.Errorf("%w: empty text", ErrInvalidPart)
		}
	case PartImage:
		if len(p.image.Data) == 0 {
			return fmt.Errorf("%w: empty image data", ErrInvalidPart)
		}
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(p.image.MIMEType)), "image/") {
			return fmt.Errorf("%w: mime type %q is not an image", ErrInvalidPart, p.image.MIMEType)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPart, p.kind)
	}
	return nil
}

// ValidateParts checks every part and requires at least one.
func ValidateParts(parts []Part) error {
	if len(parts) == 0 {
		return fmt.Errorf("%w: no parts", ErrInvalidPart)
	}
	for i, p := range parts {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
	}
	return nil
}

// ImageParts builds the parts of a generation request: source image, then
// the prompt.
func ImageParts(req ImageRequest) []Part {
	return []Part{ImagePart(req.Source), TextPart(req.Prompt)}
}

// ChatParts builds the parts of the current chat turn: context images
// first, then the message text.
func ChatParts(req ChatRequest) []Part {
	parts := make([]Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, ImagePart(img))
	}
	return append(parts, TextPart(req.Message))
}
