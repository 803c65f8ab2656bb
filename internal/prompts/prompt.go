package prompts

import (
	"fmt"
	"sync"
)

// Prompt is a named system prompt with metadata.
type Prompt struct {
	ID          string
	Content     string
	Description string
	Tags        []string
}

// Registry holds the prompts shipped with the binary.
type Registry struct {
	mu      sync.RWMutex
	prompts map[string]*Prompt
}

var defaultRegistry = &Registry{prompts: make(map[string]*Prompt)}

// DefaultRegistry returns the registry populated by package init.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a prompt, replacing any previous prompt with the same ID.
func (r *Registry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[p.ID] = p
}

// Get retrieves a prompt by ID.
func (r *Registry) Get(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	return p, nil
}

// MustGet panics on a missing prompt; used for prompts registered at init.
func (r *Registry) MustGet(id string) *Prompt {
	p, err := r.Get(id)
	if err != nil {
		panic(err)
	}
	return p
}
