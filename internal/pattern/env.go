package pattern

import "github.com/oxhq/semgo/internal/ast"

// Binding is one metavariable's captured text and originating node.
type Binding struct {
	Name string
	Text string
	Node *ast.Node
}

// Handle is an opaque snapshot token returned by Env.Snapshot. Restoring to
// a Handle undoes every binding made after the snapshot was taken.
type Handle int

// Env is the metavariable environment threaded through a single match
// attempt. Bindings are insertion-ordered so a snapshot can be undone by
// truncating back to an insertion count, which is far cheaper than copying
// the whole map on every branch of a combinator.
type Env struct {
	order  []string
	values map[string]Binding
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{values: make(map[string]Binding)}
}

// Bind records name as bound to text/node. If name is already bound, the
// new occurrence must agree with the existing binding's text or Bind fails
// and returns false; no state is mutated on failure. This is how repeated
// uses of the same metavariable (including across an Either/All combinator)
// are forced to agree.
func (e *Env) Bind(name, text string, node *ast.Node) bool {
	if existing, ok := e.values[name]; ok {
		return existing.Text == text
	}
	e.values[name] = Binding{Name: name, Text: text, Node: node}
	e.order = append(e.order, name)
	return true
}

// Get looks up a bound metavariable.
func (e *Env) Get(name string) (Binding, bool) {
	b, ok := e.values[name]
	return b, ok
}

// Snapshot returns a handle capturing the current set of bindings.
func (e *Env) Snapshot() Handle {
	return Handle(len(e.order))
}

// Restore undoes every binding made since h was taken.
func (e *Env) Restore(h Handle) {
	for i := len(e.order) - 1; i >= int(h); i-- {
		delete(e.values, e.order[i])
	}
	e.order = e.order[:h]
}

// All returns a copy of every binding currently in scope, keyed by name.
// Used once a match has fully succeeded and its bindings need to be
// reported.
func (e *Env) All() map[string]Binding {
	out := make(map[string]Binding, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}
