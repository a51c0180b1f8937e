package race

import (
	"fmt"
	"sync"

	"backend-racehub/internal/shared"
	"backend-racehub/internal/track"

	"github.com/google/uuid"
)

// Registry owns the per-viewer sessions. Sessions are created on demand and
// destroyed explicitly; no state is shared between them.
type Registry struct {
	source track.Source
	runner *Runner

	mu       sync.RWMutex
	sessions map[string]*Session
	onEnd    []func(sessionID string)
}

func NewRegistry(source track.Source, runner *Runner) *Registry {
	return &Registry{
		source:   source,
		runner:   runner,
		sessions: map[string]*Session{},
	}
}

func (r *Registry) Create() *Session {
	s := NewSession(uuid.NewString(), r.source)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, shared.ErrSessionNotFound)
	}
	return s, nil
}

func (r *Registry) Exists(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// OnEnd registers fn to run after a session is ended and its runner stopped.
func (r *Registry) OnEnd(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEnd = append(r.onEnd, fn)
}

// End stops the session's runner, if any, and forgets the session.
func (r *Registry) End(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	hooks := r.onEnd
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", id, shared.ErrSessionNotFound)
	}
	if r.runner != nil {
		r.runner.Stop(id)
	}
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
