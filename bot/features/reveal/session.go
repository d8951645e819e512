package reveal

import (
	"sync"
	"time"

	"luckydraw/models"
	"luckydraw/service"
)

// Session is one reveal message and the sequencer behind it
type Session struct {
	ID        string
	ActorID   int64
	Mode      models.DisplayMode
	Sequencer *service.RevealSequencer
	Presenter *Presenter
	CreatedAt time.Time
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

func (s *sessionStore) add(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *sessionStore) get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// takeExpired removes and returns sessions created more than ttl before now
func (s *sessionStore) takeExpired(now time.Time, ttl time.Duration) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*Session
	for id, session := range s.sessions {
		if now.Sub(session.CreatedAt) > ttl {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	return expired
}

// takeAll removes and returns every session
func (s *sessionStore) takeAll() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*Session, 0, len(s.sessions))
	for id, session := range s.sessions {
		all = append(all, session)
		delete(s.sessions, id)
	}
	return all
}
