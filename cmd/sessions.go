package cmd

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zalepa/permits/permit"
)

// session is one uploaded dataset. The snapshot is never modified after
// upload; every dashboard request recomputes from it.
type session struct {
	ID       string
	Name     string
	Uploaded time.Time
	Snap     permit.Snapshot
}

// sessionStore keeps at most max sessions, evicting the oldest upload.
type sessionStore struct {
	mu    sync.Mutex
	max   int
	order []string
	byID  map[string]*session
}

func newSessionStore(max int) *sessionStore {
	if max < 1 {
		max = 1
	}
	return &sessionStore{max: max, byID: make(map[string]*session)}
}

// add stores snap and returns the new session plus the id evicted to make
// room for it, if any.
func (s *sessionStore) add(name string, snap permit.Snapshot) (*session, string) {
	sess := &session{ID: uuid.NewString(), Name: name, Uploaded: time.Now(), Snap: snap}

	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted string
	if len(s.order) >= s.max {
		evicted = s.order[0]
		s.order = s.order[1:]
		delete(s.byID, evicted)
	}
	s.order = append(s.order, sess.ID)
	s.byID[sess.ID] = sess
	return sess, evicted
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	return sess, ok
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
