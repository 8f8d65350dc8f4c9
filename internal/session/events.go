package session

import (
	"sync"
	"time"
)

const subscriberBuffer = 16

// Subscribe returns a channel of session events and a function that ends the
// subscription. Slow subscribers miss events rather than block the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subscribers[id]; ok {
				close(sub)
				delete(s.subscribers, id)
			}
		})
	}
}

func (s *Session) publishLocked(t EventType) {
	if len(s.subscribers) == 0 {
		return
	}
	ev := Event{Type: t, Snapshot: s.snapshotLocked(), At: time.Now()}
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("subscriber %d is full, dropped %s event", id, t)
		}
	}
}
