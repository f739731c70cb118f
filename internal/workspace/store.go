// Package workspace owns the ordered set of room views, the active view
// selector and the edit-prompt draft of one design session.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"interiorviz/internal/imagecodec"
)

const subscriberBuffer = 16

// Store is safe for concurrent use. Every method is one atomic transition.
type Store struct {
	mu         sync.Mutex
	views      []RoomView
	activeID   string
	editPrompt string
	version    uint64

	subs   map[uint64]chan Event
	nextID uint64

	newID func() string
}

func NewStore() *Store {
	return &Store{
		subs:  make(map[uint64]chan Event),
		newID: uuid.NewString,
	}
}

// AddViews decodes every file concurrently and appends one view per
// readable file as soon as its decode completes. The returned ids are in
// append order; unreadable files are reported through the joined error.
func (s *Store) AddViews(ctx context.Context, files []imagecodec.Source) ([]string, error) {
	var (
		mu    sync.Mutex
		added []string
		errs  []error
	)
	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			img, err := imagecodec.Decode(ctx, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			added = append(added, s.Add(img).ID)
			return nil
		})
	}
	_ = g.Wait()
	return added, errors.Join(errs...)
}

// Add appends a view for an already decoded image. The first view of an
// empty store becomes active.
func (s *Store) Add(original imagecodec.EmbeddedImage) RoomView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := RoomView{ID: s.newID(), Original: original}
	s.views = append(s.views, v)
	if s.activeID == "" {
		s.activeID = v.ID
	}
	s.changedLocked()
	return v
}

// RemoveView deletes a view. Removing the active view selects the first
// remaining one; removing the last view returns the store to upload mode.
func (s *Store) RemoveView(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidReference, id)
	}
	s.views = slices.Delete(s.views, idx, idx+1)
	switch {
	case len(s.views) == 0:
		s.activeID = ""
		s.editPrompt = ""
	case s.activeID == id:
		s.activeID = s.views[0].ID
	}
	s.changedLocked()
	return nil
}

// SetActive selects the view shown full-size and targeted by refine.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidReference, id)
	}
	if s.activeID == id {
		return nil
	}
	s.activeID = id
	s.changedLocked()
	return nil
}

// Reset drops every view and returns to the initial state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = nil
	s.activeID = ""
	s.editPrompt = ""
	s.changedLocked()
}

func (s *Store) Views() []RoomView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.views)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *Store) View(id string) (RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return RoomView{}, false
	}
	return s.views[idx], true
}

// Active returns the active view, if any.
func (s *Store) Active() (RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return RoomView{}, false
	}
	return s.views[idx], true
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

// BestImages returns generated-or-original for each view in order, capped
// at limit when limit > 0.
func (s *Store) BestImages(limit int) []imagecodec.EmbeddedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.views)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]imagecodec.EmbeddedImage, 0, n)
	for _, v := range s.views[:n] {
		out = append(out, v.Best())
	}
	return out
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) SetEditPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editPrompt == prompt {
		return
	}
	s.editPrompt = prompt
	s.changedLocked()
}

func (s *Store) EditPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editPrompt
}

func (s *Store) ClearEditPrompt() { s.SetEditPrompt("") }

// BeginGeneration marks every listed view loading and returns their current
// state. It fails without side effects if a view is unknown or already
// loading, so a view never has two generations in flight.
func (s *Store) BeginGeneration(ids []string) ([]RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idxs := make([]int, 0, len(ids))
	for _, id := range ids {
		idx := s.indexLocked(id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidReference, id)
		}
		if s.views[idx].IsLoading {
			return nil, fmt.Errorf("%w: view %q", ErrBusy, id)
		}
		idxs = append(idxs, idx)
	}
	out := make([]RoomView, 0, len(idxs))
	for _, idx := range idxs {
		s.views[idx].IsLoading = true
		out = append(out, s.views[idx])
	}
	if len(idxs) > 0 {
		s.changedLocked()
	}
	return out, nil
}

// BeginGenerationActive marks the active view loading in the same
// transition that resolves it.
func (s *Store) BeginGenerationActive() (RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return RoomView{}, ErrNoActiveView
	}
	if s.views[idx].IsLoading {
		return RoomView{}, fmt.Errorf("%w: view %q", ErrBusy, s.activeID)
	}
	s.views[idx].IsLoading = true
	s.changedLocked()
	return s.views[idx], nil
}

// BeginGenerationAll is BeginGeneration over every current view.
func (s *Store) BeginGenerationAll() ([]RoomView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.views {
		if v.IsLoading {
			return nil, fmt.Errorf("%w: view %q", ErrBusy, v.ID)
		}
	}
	for i := range s.views {
		s.views[i].IsLoading = true
	}
	if len(s.views) > 0 {
		s.changedLocked()
	}
	return slices.Clone(s.views), nil
}

// CompleteGeneration stores a successful result. It reports false when the
// view was removed while the request was in flight.
func (s *Store) CompleteGeneration(id string, generated imagecodec.EmbeddedImage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.views[idx].Generated = generated
	s.views[idx].IsLoading = false
	s.changedLocked()
	return true
}

// FailGeneration clears the loading flag and keeps the previous images.
func (s *Store) FailGeneration(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.views[idx].IsLoading = false
	s.changedLocked()
	return true
}

// ClearLoading resets the loading flag of the listed views, or of every
// view when ids is empty.
func (s *Store) ClearLoading(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.views {
		if !s.views[i].IsLoading {
			continue
		}
		if len(ids) > 0 && !slices.Contains(ids, s.views[i].ID) {
			continue
		}
		s.views[i].IsLoading = false
		changed = true
	}
	if changed {
		s.changedLocked()
	}
}

func (s *Store) indexLocked(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.views, func(v RoomView) bool { return v.ID == id })
}

func (s *Store) modeLocked() Mode {
	if len(s.views) == 0 {
		return ModeUpload
	}
	return ModeEdit
}

func (s *Store) snapshotLocked() Snapshot {
	out := Snapshot{
		Version:    s.version,
		Mode:       s.modeLocked(),
		ActiveID:   s.activeID,
		EditPrompt: s.editPrompt,
		Views:      make([]ViewSummary, 0, len(s.views)),
	}
	for i, v := range s.views {
		out.Views = append(out.Views, ViewSummary{
			RoomView: v,
			Label:    viewLabel(i),
			Active:   v.ID == s.activeID,
		})
	}
	return out
}
