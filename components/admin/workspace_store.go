package admin

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultWorkspaceLifetime is how long an idle workspace is kept.
const DefaultWorkspaceLifetime = 24 * time.Hour

// ErrMissingSession is returned when a workspace is requested without a session id.
var ErrMissingSession = errors.New("admin: session id is required")

// InMemoryWorkspaceStore keeps workspaces in memory, keyed by session id.
// Expired workspaces are reseeded on next access and dropped by Sweep.
type InMemoryWorkspaceStore struct {
	mu       sync.Mutex
	data     map[string]Workspace
	seed     Seed
	lifetime time.Duration
	now      func() time.Time
}

// WorkspaceStoreOption customizes the in-memory store.
type WorkspaceStoreOption func(*InMemoryWorkspaceStore)

// WithWorkspaceSeed sets the data new workspaces start from.
func WithWorkspaceSeed(seed Seed) WorkspaceStoreOption {
	return func(s *InMemoryWorkspaceStore) {
		s.seed = seed.Clone()
	}
}

// WithWorkspaceLifetime sets the idle lifetime. Zero or negative disables expiry.
func WithWorkspaceLifetime(lifetime time.Duration) WorkspaceStoreOption {
	return func(s *InMemoryWorkspaceStore) {
		s.lifetime = lifetime
	}
}

// WithWorkspaceClock overrides the clock (tests).
func WithWorkspaceClock(now func() time.Time) WorkspaceStoreOption {
	return func(s *InMemoryWorkspaceStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemoryWorkspaceStore creates an empty store seeded with DefaultSeed.
func NewInMemoryWorkspaceStore(opts ...WorkspaceStoreOption) *InMemoryWorkspaceStore {
	s := &InMemoryWorkspaceStore{
		data:     make(map[string]Workspace),
		seed:     DefaultSeed(),
		lifetime: DefaultWorkspaceLifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the session's workspace, creating it when missing or expired.
func (s *InMemoryWorkspaceStore) Load(_ context.Context, sessionID string) (Workspace, error) {
	if sessionID == "" {
		return Workspace{}, ErrMissingSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := s.current(sessionID)
	return ws.Clone(), nil
}

// Update applies fn to a copy of the workspace and commits it when fn returns nil.
func (s *InMemoryWorkspaceStore) Update(ctx context.Context, sessionID string, fn func(*Workspace) error) (Workspace, error) {
	if sessionID == "" {
		return Workspace{}, ErrMissingSession
	}
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	working := s.current(sessionID).Clone()
	if err := fn(&working); err != nil {
		return Workspace{}, err
	}
	working.SessionID = sessionID
	working.TouchedAt = s.now()
	s.data[sessionID] = working
	return working.Clone(), nil
}

// Delete drops the session's workspace.
func (s *InMemoryWorkspaceStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Len returns the number of live workspaces.
func (s *InMemoryWorkspaceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Sweep drops expired workspaces and returns how many were removed.
func (s *InMemoryWorkspaceStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, ws := range s.data {
		if s.expired(ws, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *InMemoryWorkspaceStore) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// current must be called with mu held.
func (s *InMemoryWorkspaceStore) current(sessionID string) Workspace {
	now := s.now()
	ws, ok := s.data[sessionID]
	if ok && !s.expired(ws, now) {
		ws.TouchedAt = now
		s.data[sessionID] = ws
		return ws
	}
	ws = NewWorkspace(sessionID, s.seed, now)
	s.data[sessionID] = ws
	return ws
}

func (s *InMemoryWorkspaceStore) expired(ws Workspace, now time.Time) bool {
	if s.lifetime <= 0 {
		return false
	}
	return now.Sub(ws.TouchedAt) > s.lifetime
}
