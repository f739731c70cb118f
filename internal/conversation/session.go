// Package conversation holds the design-consultant chat of one workspace.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"interiorviz/internal/imagecodec"
	llmclient "interiorviz/internal/llmClient"
)

const (
	GreetingID = "init"
	Greeting   = "Hi! I'm your AI Design Consultant. I can help you find items in your new design, suggest layouts, or answer any interior design questions. How can I help?"

	SystemInstruction = "You are an expert Interior Design Consultant. You have access to photos of the user's space. If multiple photos are provided, treat them as different views of the same or related spaces. You are helpful, creative, and knowledgeable about design styles. Keep answers concise."

	// EmptyReply stands in for a reply without text.
	EmptyReply = "I couldn't generate a response."

	// MaxContextImages caps the views attached to a message. Views beyond
	// the first four are not seen by the consultant.
	MaxContextImages = 4
)

var ErrEmptyMessage = errors.New("conversation: message is required")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ImageSource provides the images the consultant should see, in view order.
type ImageSource interface {
	BestImages(limit int) []imagecodec.EmbeddedImage
}

type Option func(*Session)

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSystemInstruction replaces the consultant persona.
func WithSystemInstruction(text string) Option {
	return func(s *Session) { s.instruction = strings.TrimSpace(text) }
}

// WithRequestTimeout bounds each chat call. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// Session is an append-only message log plus a typing indicator. Sends may
// overlap; each reply is appended when its own call settles.
type Session struct {
	mu       sync.Mutex
	messages []Message
	pending  int

	chat        llmclient.ChatClient
	images      ImageSource
	instruction string
	timeout     time.Duration
	log         *log.Logger
	newID       func() string
}

func NewSession(chat llmclient.ChatClient, images ImageSource, opts ...Option) *Session {
	s := &Session{
		chat:        chat,
		images:      images,
		instruction: SystemInstruction,
		timeout:     2 * time.Minute,
		log:         log.Default(),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.messages = []Message{greeting()}
	return s
}

func greeting() Message {
	return Message{ID: GreetingID, Role: RoleAssistant, Text: Greeting}
}

// SendMessage appends the user message, asks the consultant with the
// current views attached and appends the reply. On failure the typing
// indicator is cleared and no reply is appended. Cancelling ctx does not
// abort a send in flight.
func (s *Session) SendMessage(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	prior := toTurns(s.messages)
	s.messages = append(s.messages, Message{ID: s.newID(), Role: RoleUser, Text: text})
	s.pending++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
	}()

	// A send settles on its own once issued; the caller going away does not
	// abort it.
	ctx = context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.chat.Chat(ctx, llmclient.ChatRequest{
		History:           prior,
		Message:           text,
		Images:            s.contextImages(),
		SystemInstruction: s.instruction,
	})
	if err != nil {
		s.log.Printf("conversation: chat via %s failed: %v", s.chat.Name(), err)
		return Message{}, fmt.Errorf("conversation: send: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = EmptyReply
	}

	msg := Message{ID: s.newID(), Role: RoleAssistant, Text: reply}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return msg, nil
}

// History returns a copy of the log in append order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// IsTyping reports whether any send is in flight.
func (s *Session) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Reset drops every message except the greeting. Replies of sends still in
// flight are appended to the fresh log when they settle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = []Message{greeting()}
}

func (s *Session) contextImages() []llmclient.Image {
	if s.images == nil {
		return nil
	}
	embedded := s.images.BestImages(MaxContextImages)
	out := make([]llmclient.Image, 0, len(embedded))
	for _, img := range embedded {
		p, err := imagecodec.StripEnvelope(img)
		if err != nil {
			s.log.Printf("conversation: skipping context image: %v", err)
			continue
		}
		out = append(out, llmclient.Image{MIMEType: p.MIMEType, Data: p.Data})
	}
	return out
}

func toTurns(msgs []Message) []llmclient.Turn {
	out := make([]llmclient.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := llmclient.RoleUser
		if m.Role == RoleAssistant {
			role = llmclient.RoleAssistant
		}
		out = append(out, llmclient.Turn{Role: role, Text: m.Text})
	}
	return out
}
