package session

import (
	"fmt"

	"goinsight/domain/core"
	"goinsight/internal/errors"
)

// GotoPage selects page n and re-derives its specification.
// With no view spaces it does nothing; an index outside [0, count) is rejected.
func (s *Session) GotoPage(n int) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.snapshotLocked(), core.ErrSessionClosed
	}

	count := len(s.viewSpaces)
	if count == 0 {
		return s.snapshotLocked(), nil
	}
	if n < 0 || n >= count {
		return s.snapshotLocked(), errors.WithCode(errors.CodeInvalidInput,
			fmt.Errorf("%w: %d not in [0, %d)", core.ErrPageOutOfRange, n, count))
	}
	s.turnLocked(n)
	return s.snapshotLocked(), nil
}

// Next moves forward one page, wrapping from the last page to the first
func (s *Session) Next() Snapshot {
	return s.step(1)
}

// Previous moves back one page, wrapping from the first page to the last
func (s *Session) Previous() Snapshot {
	return s.step(-1)
}

func (s *Session) step(delta int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.viewSpaces)
	if s.closed || count == 0 {
		return s.snapshotLocked()
	}
	s.turnLocked((s.page + delta + count) % count)
	return s.snapshotLocked()
}

func (s *Session) turnLocked(page int) {
	s.page = page
	s.resynthesizeLocked()
	s.publishLocked(EventPage)
}
