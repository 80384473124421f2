// Package adapter defines the contract every language front end implements,
// and a thread-safe registry for looking one up by language name, alias, or
// file extension.
package adapter

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/oxhq/semgo/internal/ast"
)

// Adapter turns a language's source text into a universal AST. Everything
// downstream of Parse operates only on *ast.Node; no adapter-specific type
// ever crosses this boundary.
type Adapter interface {
	// Language returns the canonical language identifier, e.g. "go".
	Language() string
	// Aliases returns alternate identifiers that should resolve to this
	// adapter, e.g. "golang" for "go".
	Aliases() []string
	// Extensions returns the file extensions (with leading dot) this
	// adapter claims, e.g. ".go".
	Extensions() []string
	// Parse builds a universal AST for source. filePath is recorded on
	// every node's Range and is otherwise opaque to the adapter.
	Parse(source []byte, filePath string) (*ast.Node, error)
}

// Registry resolves an Adapter by language name, alias, or file extension.
type Registry struct {
	mu         sync.RWMutex
	adapters   map[string]Adapter
	aliases    map[string]string
	extensions map[string]string
}

// NewRegistry returns an empty registry; adapters are registered explicitly.
func NewRegistry() *Registry {
	return &Registry{
		adapters:   make(map[string]Adapter),
		aliases:    make(map[string]string),
		extensions: make(map[string]string),
	}
}

// Register adds a. It fails if a is nil, declares no language, or its
// canonical name/aliases/extensions collide with an already-registered
// adapter.
func (r *Registry) Register(a Adapter) error {
	if a == nil || (reflect.ValueOf(a).Kind() == reflect.Ptr && reflect.ValueOf(a).IsNil()) {
		return fmt.Errorf("adapter: cannot register a nil adapter")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lang := a.Language()
	if lang == "" {
		return fmt.Errorf("adapter: must declare a non-empty language")
	}
	if _, exists := r.adapters[lang]; exists {
		return fmt.Errorf("adapter: language %q already registered", lang)
	}
	r.adapters[lang] = a

	for _, alias := range a.Aliases() {
		if alias == "" {
			continue
		}
		if existing, exists := r.aliases[alias]; exists {
			return fmt.Errorf("adapter: alias %q conflicts with %q", alias, existing)
		}
		r.aliases[alias] = lang
	}

	for _, ext := range a.Extensions() {
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		if existing, exists := r.extensions[ext]; exists {
			return fmt.Errorf("adapter: extension %q conflicts with %q", ext, existing)
		}
		r.extensions[ext] = lang
	}

	return nil
}

// Get resolves identifier (canonical name, alias, or extension) to an
// Adapter.
func (r *Registry) Get(identifier string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.adapters[identifier]; ok {
		return a, nil
	}
	if canonical, ok := r.aliases[identifier]; ok {
		if a, ok := r.adapters[canonical]; ok {
			return a, nil
		}
	}
	ext := identifier
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	if canonical, ok := r.extensions[ext]; ok {
		if a, ok := r.adapters[canonical]; ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("adapter: no adapter found for %q", identifier)
}

// ForFile resolves an Adapter from a filename's extension.
func (r *Registry) ForFile(filename string) (Adapter, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return nil, fmt.Errorf("adapter: file %q has no extension", filename)
	}
	return r.Get(ext)
}

// Languages returns every registered canonical language name.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.adapters))
	for lang := range r.adapters {
		out = append(out, lang)
	}
	return out
}
