// Package matcher implements the structural matching algorithm: post-order
// traversal with maximally-specific match suppression, the combinator
// semantics for Either/All/Any/Inside/NotInside/Not/Regex/NotRegex, and the
// token-structural lockstep walk for compiled simple patterns.
package matcher

import (
	"strings"
	"unicode"

	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/condition"
	"github.com/oxhq/semgo/internal/pattern"
)

// DefaultMaxDepth bounds FindMatches' recursive descent through the tree so
// a pathological tree cannot blow the Go stack; nodes deeper than the limit
// are not visited. It is generous enough never to trigger on real source
// files.
const DefaultMaxDepth = 5000

// MatchResult is one successful, maximally-specific match of a pattern
// against a node, together with the bindings that made it succeed.
type MatchResult struct {
	Node      *ast.Node
	FocusNode *ast.Node
	Bindings  map[string]pattern.Binding
}

// Options tunes a FindMatches run.
type Options struct {
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// FindMatches walks root post-order and returns every maximally-specific
// match of p: if a descendant of a node already matched, that node itself
// is never separately reported, even if it would also match.
func FindMatches(p *pattern.Pattern, root *ast.Node, opts Options) []MatchResult {
	var results []MatchResult
	maxDepth := opts.maxDepth()

	var visit func(node *ast.Node, depth int) bool
	visit = func(node *ast.Node, depth int) bool {
		if node == nil || depth > maxDepth {
			return false
		}
		childMatched := false
		for _, c := range node.Children {
			if visit(c, depth+1) {
				childMatched = true
			}
		}
		if childMatched {
			return true
		}

		env := pattern.NewEnv()
		if !matchNode(p, node, env) {
			return false
		}
		if !evaluateConditions(p, env) {
			return false
		}
		results = append(results, buildResult(p, node, env))
		return true
	}

	visit(root, 0)
	return results
}

func matchNode(p *pattern.Pattern, node *ast.Node, env *pattern.Env) bool {
	if p == nil || node == nil {
		return false
	}
	switch p.Op {
	case pattern.OpSimple:
		return matchSimple(p.Simple, node, env)

	case pattern.OpRegex:
		re, err := p.CompiledRegex()
		if err != nil {
			return false
		}
		return re.MatchString(node.Text)

	case pattern.OpNotRegex:
		re, err := p.CompiledRegex()
		if err != nil {
			return false
		}
		return !re.MatchString(node.Text)

	case pattern.OpEither, pattern.OpAny:
		for _, child := range p.Children {
			snap := env.Snapshot()
			if matchNode(child, node, env) && evaluateConditions(child, env) {
				return true
			}
			env.Restore(snap)
		}
		return false

	case pattern.OpAll:
		snap := env.Snapshot()
		for _, child := range p.Children {
			if !matchNode(child, node, env) || !evaluateConditions(child, env) {
				env.Restore(snap)
				return false
			}
		}
		return true

	case pattern.OpInside:
		return matchesAncestor(p.Inner, node, env)

	case pattern.OpNotInside:
		snap := env.Snapshot()
		if matchesAncestor(p.Inner, node, env) {
			env.Restore(snap)
			return false
		}
		return true

	case pattern.OpNot:
		snap := env.Snapshot()
		if matchNode(p.Inner, node, env) {
			env.Restore(snap)
			return false
		}
		return true

	default:
		return false
	}
}

// matchesAncestor reports whether node itself, or some ancestor of node,
// matches inner, threading the caller's env throughout so a metavariable
// bound elsewhere in the pattern is visible inside inner and, on a
// successful Inside match, the bindings inner contributed remain bound.
// Each failed candidate restores its own snapshot so a miss never leaks
// bindings into the next candidate or the caller.
func matchesAncestor(inner *pattern.Pattern, node *ast.Node, env *pattern.Env) bool {
	for anc := node; anc != nil; anc = anc.Parent() {
		snap := env.Snapshot()
		if matchNode(inner, anc, env) {
			return true
		}
		env.Restore(snap)
	}
	return false
}

func evaluateConditions(p *pattern.Pattern, env *pattern.Env) bool {
	for _, c := range p.Conditions {
		ok, err := condition.Evaluate(c, env, func(sub *pattern.Pattern, n *ast.Node) bool {
			subEnv := pattern.NewEnv()
			return matchNode(sub, n, subEnv)
		})
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func buildResult(p *pattern.Pattern, node *ast.Node, env *pattern.Env) MatchResult {
	focus := node
	bindings := env.All()
	if len(p.Focus) > 0 {
		if b, ok := bindings[p.Focus[0]]; ok {
			if b.Node != nil {
				focus = b.Node
			} else {
				// Token bindings carry no node: focus on the first node of
				// the matched subtree, pre-order, whose text is the bound text.
				node.IterateDescendants(func(d *ast.Node) bool {
					if d.Text == b.Text {
						focus = d
						return false
					}
					return true
				})
			}
		}
	}
	return MatchResult{Node: node, FocusNode: focus, Bindings: bindings}
}

// sourceTokens tokenizes a node's raw text the same way pattern text is
// tokenized, minus metavariable/ellipsis syntax, so the two streams can be
// walked in lockstep by matchTokens.
func sourceTokens(text string) []string {
	var tokens []string
	runes := []rune(text)
	i, n := 0, len(runes)
	for i < n {
		r := runes[i]
		if isSpace(r) {
			i++
			continue
		}
		if strings.ContainsRune(punctuation, r) {
			tokens = append(tokens, string(r))
			i++
			continue
		}
		if isIdentRune(r) {
			start := i
			for i < n && isIdentRune(runes[i]) {
				i++
			}
			tokens = append(tokens, string(runes[start:i]))
			continue
		}
		tokens = append(tokens, string(r))
		i++
	}
	return tokens
}

const punctuation = "(){}[];,.:=<>+-*/%!&|^~?@"

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// matchSimple matches a compiled token-structural pattern against a node's
// own text, requiring the pattern to account for the entire token stream
// (an ellipsis or ellipsis-metavariable absorbs whatever span it needs to).
func matchSimple(cs *pattern.CompiledSimple, node *ast.Node, env *pattern.Env) bool {
	if cs == nil {
		return false
	}
	src := sourceTokens(node.Text)
	return matchTokens(cs.Tokens, 0, src, 0, env)
}

func matchTokens(pat []pattern.Token, pi int, src []string, si int, env *pattern.Env) bool {
	if pi == len(pat) {
		return si == len(src)
	}

	tok := pat[pi]
	switch tok.Kind {
	case pattern.TokLiteral:
		if si >= len(src) || src[si] != tok.Text {
			return false
		}
		return matchTokens(pat, pi+1, src, si+1, env)

	case pattern.TokMetavariable:
		if si >= len(src) {
			return false
		}
		next := pi + 1
		if next < len(pat) && pat[next].Kind == pattern.TokKindConstraint {
			next++
		}
		snap := env.Snapshot()
		if !env.Bind(tok.Text, src[si], nil) {
			env.Restore(snap)
			return false
		}
		if matchTokens(pat, next, src, si+1, env) {
			return true
		}
		env.Restore(snap)
		return false

	case pattern.TokEllipsis, pattern.TokEllipsisMetavariable:
		for k := si; k <= len(src); k++ {
			snap := env.Snapshot()
			if tok.Kind == pattern.TokEllipsisMetavariable {
				text := strings.Join(src[si:k], " ")
				if !env.Bind(tok.Text, text, nil) {
					env.Restore(snap)
					continue
				}
			}
			if matchTokens(pat, pi+1, src, k, env) {
				return true
			}
			env.Restore(snap)
		}
		return false

	case pattern.TokKindConstraint:
		// Orphan constraint with no preceding metavariable token; nothing
		// to check at this granularity, so it is a no-op.
		return matchTokens(pat, pi+1, src, si, env)

	default:
		return false
	}
}
