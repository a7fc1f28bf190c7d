package service

import (
	"context"
	"sync"
	"time"

	"github.com/bcnelson/srvadm-console/internal/crud"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sessions maps browser sessions to their workspaces.
type Sessions struct {
	backend     crud.Backend
	idleTimeout time.Duration
	log         *logrus.Entry
	now         func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewSessions creates a session registry. A zero idleTimeout disables eviction.
func NewSessions(backend crud.Backend, idleTimeout time.Duration, log *logrus.Entry) *Sessions {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Sessions{
		backend:     backend,
		idleTimeout: idleTimeout,
		log:         log.WithField("component", "sessions"),
		now:         time.Now,
		workspaces:  make(map[string]*Workspace),
	}
}

// Get returns the workspace for id, if it is still alive.
func (s *Sessions) Get(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if ok {
		ws.Touch(s.now())
	}
	return ws, ok
}

// Create starts a new workspace under a fresh session ID.
func (s *Sessions) Create() (*Workspace, error) {
	id := uuid.New().String()
	ws, err := NewWorkspace(id, s.backend, s.log)
	if err != nil {
		return nil, err
	}
	ws.Touch(s.now())

	s.mu.Lock()
	s.workspaces[id] = ws
	s.mu.Unlock()

	s.log.WithField("workspace", id).Debug("Workspace created")
	return ws, nil
}

// Len returns the number of live workspaces.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

// Sweep evicts workspaces idle longer than the idle timeout and returns how many were removed.
func (s *Sessions) Sweep() int {
	if s.idleTimeout <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, ws := range s.workspaces {
		if ws.LastSeen().Before(cutoff) {
			delete(s.workspaces, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.WithFields(logrus.Fields{"evicted": n, "remaining": s.Len()}).Info("Evicted idle workspaces")
			}
		}
	}
}
