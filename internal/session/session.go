// Package session holds the document a user is currently asking about.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/embedding/word2vec"
)

var ErrIncomplete = errors.New("session: document, chunks and model must be replaced together")

// Index is a document's chunks together with the model trained on exactly
// those chunks. It is never modified after construction.
type Index struct {
	Document domain.Document
	Chunks   []domain.Chunk
	Model    *word2vec.Model
}

// Session is the single active Index for one user.
type Session struct {
	id      string
	mu      sync.RWMutex
	current *Index
}

func New() *Session { return &Session{id: uuid.NewString()} }

func (s *Session) ID() string { return s.id }

// ReplaceDocument swaps in a new document and its model as one unit.
func (s *Session) ReplaceDocument(doc domain.Document, chunks []domain.Chunk, model *word2vec.Model) error {
	if len(chunks) == 0 || model == nil {
		return ErrIncomplete
	}
	idx := &Index{Document: doc, Chunks: append([]domain.Chunk(nil), chunks...), Model: model}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = idx
	return nil
}

// Current returns the active index, or false when nothing was uploaded yet.
func (s *Session) Current() (*Index, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Reset drops the active document.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Registry keeps one Session per session identity.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open creates a new session with a fresh identity.
func (r *Registry) Open() *Session {
	s := New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
	return s
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close forgets the session for id.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
