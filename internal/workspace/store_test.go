package workspace

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"interiorviz/internal/imagecodec"
)

func img(n int) imagecodec.EmbeddedImage {
	return imagecodec.Encode("image/png", []byte(fmt.Sprintf("photo-%d", n)))
}

func TestAddFirstViewBecomesActive(t *testing.T) {
	s := NewStore()
	if s.Mode() != ModeUpload {
		t.Fatalf("initial mode = %s, want upload", s.Mode())
	}
	v1 := s.Add(img(1))
	v2 := s.Add(img(2))
	if got := s.ActiveID(); got != v1.ID {
		t.Fatalf("active = %q, want first view %q", got, v1.ID)
	}
	if s.Mode() != ModeEdit {
		t.Fatalf("mode = %s, want edit", s.Mode())
	}
	views := s.Views()
	if len(views) != 2 || views[0].ID != v1.ID || views[1].ID != v2.ID {
		t.Fatalf("views order mismatch: %+v", views)
	}
	for _, v := range views {
		if v.IsLoading || v.HasGenerated() {
			t.Fatalf("new view should be idle without generated image: %+v", v)
		}
	}
}

func TestAddViewsDecodesEachFileIndependently(t *testing.T) {
	s := NewStore()
	files := []imagecodec.Source{
		imagecodec.BytesSource("a.png", "image/png", []byte("a")),
		imagecodec.BytesSource("broken.png", "image/png", nil),
		imagecodec.BytesSource("b.png", "image/png", []byte("b")),
		imagecodec.BytesSource("c.png", "image/png", []byte("c")),
	}
	ids, err := s.AddViews(context.Background(), files)
	if !errors.Is(err, imagecodec.ErrUnreadableFile) {
		t.Fatalf("AddViews() error = %v, want ErrUnreadableFile", err)
	}
	if len(ids) != 3 {
		t.Fatalf("added %d views, want 3", len(ids))
	}
	views := s.Views()
	if len(views) != 3 {
		t.Fatalf("store has %d views, want 3", len(views))
	}
	for i, v := range views {
		if v.ID != ids[i] {
			t.Fatalf("view %d id = %q, want %q (append order)", i, v.ID, ids[i])
		}
	}
	if s.ActiveID() != ids[0] {
		t.Fatalf("active = %q, want first appended %q", s.ActiveID(), ids[0])
	}
}

func TestRemoveActiveSelectsFirstRemaining(t *testing.T) {
	s := NewStore()
	v1 := s.Add(img(1))
	v2 := s.Add(img(2))
	v3 := s.Add(img(3))
	if err := s.SetActive(v2.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if err := s.RemoveView(v2.ID); err != nil {
		t.Fatalf("RemoveView() error = %v", err)
	}
	if got := s.ActiveID(); got != v1.ID {
		t.Fatalf("active = %q, want %q", got, v1.ID)
	}
	if err := s.RemoveView(v3.ID); err != nil {
		t.Fatalf("RemoveView() error = %v", err)
	}
	if got := s.ActiveID(); got != v1.ID {
		t.Fatalf("removing a non-active view changed active to %q", got)
	}
}

func TestRemoveLastViewResetsToUpload(t *testing.T) {
	s := NewStore()
	v := s.Add(img(1))
	s.SetEditPrompt("warmer lighting")
	if err := s.RemoveView(v.ID); err != nil {
		t.Fatalf("RemoveView() error = %v", err)
	}
	if s.Mode() != ModeUpload {
		t.Fatalf("mode = %s, want upload", s.Mode())
	}
	if _, ok := s.Active(); ok {
		t.Fatalf("active view present on empty store")
	}
	if s.EditPrompt() != "" {
		t.Fatalf("edit prompt survived reset to upload mode")
	}
}

func TestInvalidReferences(t *testing.T) {
	s := NewStore()
	v := s.Add(img(1))
	if err := s.SetActive("missing"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("SetActive() error = %v, want ErrInvalidReference", err)
	}
	if err := s.RemoveView("missing"); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("RemoveView() error = %v, want ErrInvalidReference", err)
	}
	if s.ActiveID() != v.ID {
		t.Fatalf("active changed after invalid reference")
	}
}

func TestActiveAlwaysValidUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewStore()
	seen := map[string]bool{}
	for step := 0; step < 500; step++ {
		views := s.Views()
		switch op := rng.Intn(3); {
		case op == 0 || len(views) == 0:
			v := s.Add(img(step))
			if seen[v.ID] {
				t.Fatalf("id %q reused", v.ID)
			}
			seen[v.ID] = true
		case op == 1:
			_ = s.RemoveView(views[rng.Intn(len(views))].ID)
		default:
			_ = s.SetActive(views[rng.Intn(len(views))].ID)
		}

		views = s.Views()
		active := s.ActiveID()
		if len(views) == 0 {
			if active != "" {
				t.Fatalf("step %d: active %q on empty store", step, active)
			}
			continue
		}
		if !slices.ContainsFunc(views, func(v RoomView) bool { return v.ID == active }) {
			t.Fatalf("step %d: active %q not in store", step, active)
		}
	}
}

func TestBeginGenerationRejectsOverlap(t *testing.T) {
	s := NewStore()
	v1 := s.Add(img(1))
	v2 := s.Add(img(2))
	if _, err := s.BeginGeneration([]string{v1.ID}); err != nil {
		t.Fatalf("BeginGeneration() error = %v", err)
	}
	if _, err := s.BeginGeneration([]string{v2.ID, v1.ID}); !errors.Is(err, ErrBusy) {
		t.Fatalf("BeginGeneration() error = %v, want ErrBusy", err)
	}
	if v, _ := s.View(v2.ID); v.IsLoading {
		t.Fatalf("rejected batch left view 2 loading")
	}
	if _, err := s.BeginGeneration([]string{"gone"}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("BeginGeneration() error = %v, want ErrInvalidReference", err)
	}
}

func TestBeginGenerationActiveFollowsSelection(t *testing.T) {
	s := NewStore()
	if _, err := s.BeginGenerationActive(); !errors.Is(err, ErrNoActiveView) {
		t.Fatalf("BeginGenerationActive() on empty store error = %v, want ErrNoActiveView", err)
	}
	v1 := s.Add(img(1))
	v2 := s.Add(img(2))
	if err := s.SetActive(v2.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	got, err := s.BeginGenerationActive()
	if err != nil {
		t.Fatalf("BeginGenerationActive() error = %v", err)
	}
	if got.ID != v2.ID || !got.IsLoading {
		t.Fatalf("BeginGenerationActive() = %+v, want loading view %q", got, v2.ID)
	}
	if v, _ := s.View(v1.ID); v.IsLoading {
		t.Fatalf("inactive view marked loading")
	}
	if _, err := s.BeginGenerationActive(); !errors.Is(err, ErrBusy) {
		t.Fatalf("second BeginGenerationActive() error = %v, want ErrBusy", err)
	}
}

func TestReconcileResolvesByID(t *testing.T) {
	s := NewStore()
	v1 := s.Add(img(1))
	v2 := s.Add(img(2))
	if _, err := s.BeginGeneration([]string{v1.ID, v2.ID}); err != nil {
		t.Fatalf("BeginGeneration() error = %v", err)
	}
	if err := s.RemoveView(v1.ID); err != nil {
		t.Fatalf("RemoveView() error = %v", err)
	}
	s.Add(img(3))
	if s.CompleteGeneration(v1.ID, img(10)) {
		t.Fatalf("CompleteGeneration() applied result to removed view")
	}
	if !s.CompleteGeneration(v2.ID, img(20)) {
		t.Fatalf("CompleteGeneration() dropped live view")
	}
	views := s.Views()
	if views[0].ID != v2.ID || views[0].Generated != img(20) || views[0].IsLoading {
		t.Fatalf("view 2 not reconciled: %+v", views[0])
	}
	if views[1].HasGenerated() {
		t.Fatalf("result leaked into the view appended later")
	}
}

func TestFailGenerationKeepsPreviousImage(t *testing.T) {
	s := NewStore()
	v := s.Add(img(1))
	_, _ = s.BeginGeneration([]string{v.ID})
	s.CompleteGeneration(v.ID, img(2))
	_, _ = s.BeginGeneration([]string{v.ID})
	if !s.FailGeneration(v.ID) {
		t.Fatalf("FailGeneration() = false for live view")
	}
	got, _ := s.View(v.ID)
	if got.IsLoading || got.Generated != img(2) || got.Original != img(1) {
		t.Fatalf("failure mutated images: %+v", got)
	}
}

func TestBestImagesCapsAndPrefersGenerated(t *testing.T) {
	s := NewStore()
	var ids []string
	for i := 0; i < 6; i++ {
		ids = append(ids, s.Add(img(i)).ID)
	}
	_, _ = s.BeginGeneration([]string{ids[1]})
	s.CompleteGeneration(ids[1], img(100))

	got := s.BestImages(4)
	want := []imagecodec.EmbeddedImage{img(0), img(100), img(2), img(3)}
	if !slices.Equal(got, want) {
		t.Fatalf("BestImages() = %v, want %v", got, want)
	}
	if n := len(s.BestImages(0)); n != 6 {
		t.Fatalf("BestImages(0) returned %d images, want 6", n)
	}
}

func TestSnapshotLabels(t *testing.T) {
	s := NewStore()
	v1 := s.Add(img(1))
	s.Add(img(2))
	snap := s.Snapshot()
	if snap.Views[0].Label != "View 1" || snap.Views[1].Label != "View 2" {
		t.Fatalf("labels = %q, %q", snap.Views[0].Label, snap.Views[1].Label)
	}
	if !snap.Views[0].Active || snap.ActiveID != v1.ID {
		t.Fatalf("active flag not set on first view")
	}
	if snap.Busy() {
		t.Fatalf("idle snapshot reported busy")
	}
}

func TestSubscribeReceivesSnapshotsAndNotices(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.Subscribe(ctx)
	first := readEvent(t, sub)
	if first.Kind != EventSnapshot || first.Snapshot.Mode != ModeUpload {
		t.Fatalf("first event = %+v, want upload snapshot", first)
	}

	v := s.Add(img(1))
	evt := readEvent(t, sub)
	if evt.Kind != EventSnapshot || len(evt.Snapshot.Views) != 1 {
		t.Fatalf("event after Add = %+v", evt)
	}

	s.Notify(v.ID, "Could not refine the image.")
	evt = readEvent(t, sub)
	if evt.Kind != EventNotice || evt.ViewID != v.ID {
		t.Fatalf("notice event = %+v", evt)
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("subscription not closed after cancel")
		}
	}
}

func readEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		if !ok {
			t.Fatalf("subscription closed")
		}
		return evt
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}
