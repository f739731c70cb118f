// Package session keeps the live design workspaces of the gateway. Each
// workspace bundles a view store, its generation orchestrator and its
// consultant chat. The registry is bounded; the least recently used
// workspace is evicted when it is full.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"interiorviz/internal/conversation"
	"interiorviz/internal/generation"
	llmclient "interiorviz/internal/llmClient"
	"interiorviz/internal/preset"
	"interiorviz/internal/workspace"
)

const DefaultCapacity = 256

var ErrNotFound = errors.New("session: workspace not found")

type Workspace struct {
	ID        string
	CreatedAt time.Time

	Views      *workspace.Store
	Generation *generation.Orchestrator
	Chat       *conversation.Session
}

// Deps are shared by every workspace.
type Deps struct {
	Images  llmclient.ImageGenerator
	Chat    llmclient.ChatClient
	Presets *preset.Catalog

	GenerationOptions []generation.Option
	ChatOptions       []conversation.Option
}

type Service struct {
	deps  Deps
	cache *lru.Cache[string, *Workspace]

	hookMu  sync.Mutex
	onClose []func(id string)
}

func New(deps Deps, capacity int) (*Service, error) {
	if deps.Images == nil || deps.Chat == nil {
		return nil, fmt.Errorf("session: image and chat clients are required")
	}
	if deps.Presets == nil {
		deps.Presets = preset.Default()
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Service{deps: deps}
	cache, err := lru.NewWithEvict[string, *Workspace](capacity, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("session: init registry: %w", err)
	}
	s.cache = cache
	return s, nil
}

// OnClose registers fn to run after a workspace is deleted or evicted.
func (s *Service) OnClose(fn func(id string)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onClose = append(s.onClose, fn)
}

func (s *Service) Create() *Workspace {
	views := workspace.NewStore()
	ws := &Workspace{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Views:      views,
		Generation: generation.New(views, s.deps.Images, s.deps.Presets, s.deps.GenerationOptions...),
		Chat:       conversation.NewSession(s.deps.Chat, views, s.deps.ChatOptions...),
	}
	s.cache.Add(ws.ID, ws)
	log.Printf("session: created workspace %s (%d live)", ws.ID, s.cache.Len())
	return ws
}

// Get returns a workspace and marks it recently used.
func (s *Service) Get(id string) (*Workspace, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	ws, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return ws, nil
}

// Reset starts a workspace over: no views, upload mode and a fresh chat.
func (s *Service) Reset(id string) (*Workspace, error) {
	ws, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	ws.Views.Reset()
	ws.Chat.Reset()
	return ws, nil
}

func (s *Service) Delete(id string) bool {
	return s.cache.Remove(strings.TrimSpace(id))
}

func (s *Service) Len() int { return s.cache.Len() }

func (s *Service) Presets() *preset.Catalog { return s.deps.Presets }

func (s *Service) evicted(id string, ws *Workspace) {
	log.Printf("session: closing workspace %s", id)
	s.hookMu.Lock()
	hooks := append([]func(string){}, s.onClose...)
	s.hookMu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}

// ForgetExports adapts an export purge to OnClose.
func ForgetExports(forget func(ctx context.Context, workspaceID string) error) func(string) {
	return func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := forget(ctx, id); err != nil {
			log.Printf("session: drop exports of %s: %v", id, err)
		}
	}
}
