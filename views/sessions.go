package views

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry maps browser sessions to their orchestrators.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  func() *Orchestrator
	now      func() time.Time
}

// NewRegistry creates an empty registry. factory builds the orchestrator of a new session.
func NewRegistry(factory func() *Orchestrator) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the orchestrator of an existing session and marks it as used.
func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.orchestrator, true
}

// Create starts a new session.
func (r *Registry) Create() (string, *Orchestrator) {
	id := uuid.NewString()
	o := r.factory()

	r.mu.Lock()
	r.sessions[id] = &session{orchestrator: o, lastSeen: r.now()}
	r.mu.Unlock()

	slog.Debug("Session created", "session_id", id)
	return id, o
}

// GetOrCreate returns the session for id, creating a fresh one if id is unknown.
func (r *Registry) GetOrCreate(id string) (string, *Orchestrator, bool) {
	if id != "" {
		if o, ok := r.Get(id); ok {
			return id, o, false
		}
	}
	newID, o := r.Create()
	return newID, o, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune evicts sessions idle for longer than ttl and cancels their work.
func (r *Registry) Prune(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var evicted []*Orchestrator
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			evicted = append(evicted, s.orchestrator)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, o := range evicted {
		o.Close()
	}
	return len(evicted)
}

// CloseAll cancels the work of every session and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.orchestrator.Close()
	}
}
