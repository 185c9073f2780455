package engine

import "sync"

// streamLocks hands out one mutex per stream id and forgets it once no
// caller holds or waits on it.
type streamLocks struct {
	mu    sync.Mutex
	locks map[string]*streamLock
}

type streamLock struct {
	mu   sync.Mutex
	refs int
}

func newStreamLocks() *streamLocks {
	return &streamLocks{locks: make(map[string]*streamLock)}
}

// lock blocks until streamID is held and returns the release func.
func (s *streamLocks) lock(streamID string) func() {
	s.mu.Lock()
	l, ok := s.locks[streamID]
	if !ok {
		l = &streamLock{}
		s.locks[streamID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, streamID)
		}
		s.mu.Unlock()
	}
}

func (s *streamLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
