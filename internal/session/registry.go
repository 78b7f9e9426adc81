package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrInvalidGameID = errors.New("invalid game id")
	ErrAlreadyOpen   = errors.New("session already open for game")
	ErrNoSession     = errors.New("no session for game")
)

// Registry tracks live sessions by game id. A session leaves the registry
// as soon as its loop exits.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open creates a session and starts its loop under ctx.
func (r *Registry) Open(ctx context.Context, gameID string, opts Options) (*Session, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, ErrInvalidGameID
	}

	r.mu.Lock()
	if _, ok := r.sessions[gameID]; ok {
		r.mu.Unlock()
		return nil, ErrAlreadyOpen
	}
	s := New(gameID, opts)
	r.sessions[gameID] = s
	r.mu.Unlock()

	go func() {
		_ = s.Run(ctx)
	}()
	go func() {
		<-s.Done()
		r.mu.Lock()
		if r.sessions[gameID] == s {
			delete(r.sessions, gameID)
		}
		r.mu.Unlock()
	}()
	return s, nil
}

func (r *Registry) Get(gameID string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[strings.TrimSpace(gameID)]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Remove closes the session and drops it immediately.
func (r *Registry) Remove(gameID string) error {
	gameID = strings.TrimSpace(gameID)
	r.mu.Lock()
	s, ok := r.sessions[gameID]
	if ok {
		delete(r.sessions, gameID)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	s.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the open game ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// CloseAll closes every session and waits for their loops, or for ctx.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	list := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		list = append(list, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range list {
		s.Close()
	}
	for _, s := range list {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
