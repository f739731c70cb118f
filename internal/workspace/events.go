package workspace

import (
	"context"
	"strings"
)

// Subscribe streams events until ctx is canceled. The current snapshot is
// delivered first. Slow subscribers lose their oldest pending events.
func (s *Store) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	snap := s.snapshotLocked()
	pushEvent(ch, Event{Kind: EventSnapshot, Snapshot: &snap})
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// Notify publishes a user-visible alert, optionally tied to a view.
func (s *Store) Notify(viewID, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked(Event{Kind: EventNotice, Notice: message, ViewID: viewID})
}

func (s *Store) changedLocked() {
	s.version++
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	s.broadcastLocked(Event{Kind: EventSnapshot, Snapshot: &snap})
}

func (s *Store) broadcastLocked(evt Event) {
	for _, ch := range s.subs {
		pushEvent(ch, evt)
	}
}

func pushEvent(ch chan Event, evt Event) {
	select {
	case ch <- evt:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- evt:
	default:
	}
}
