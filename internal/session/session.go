// Package session holds the security contexts that adaptors consult when they
// bind to a URL. A Session is passed unchanged from the caller through the
// resolution engine to every candidate factory.
package session

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Well-known context types.
const (
	ContextUserPass = "UserPass"
	ContextSSH      = "SSH"
	ContextToken    = "Token"
	ContextX509     = "X509"
)

// Context is one set of credentials.
type Context struct {
	Type       string
	UserID     string
	UserPass   string
	UserToken  string
	UserKey    string
	Attributes map[string]string
}

// Session is a collection of security contexts identified by a random ID.
// It is safe for concurrent use.
type Session struct {
	id uuid.UUID

	mu       sync.RWMutex
	contexts []Context
}

// New creates an empty session.
func New(contexts ...Context) *Session {
	s := &Session{id: uuid.New()}
	for _, c := range contexts {
		s.AddContext(c)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// AddContext appends a context. Contexts are consulted in insertion order.
func (s *Session) AddContext(c Context) {
	if c.Attributes != nil {
		attrs := make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			attrs[k] = v
		}
		c.Attributes = attrs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = append(s.contexts, c)
}

// Contexts returns a copy of all contexts.
func (s *Session) Contexts() []Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.contexts)
}

// ContextFor returns the first context of the given type. Type comparison is
// case-insensitive.
func (s *Session) ContextFor(contextType string) (Context, bool) {
	if s == nil {
		return Context{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contexts {
		if strings.EqualFold(c.Type, contextType) {
			return c, true
		}
	}
	return Context{}, false
}
