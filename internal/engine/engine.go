// Package engine is the rule-execution façade: it compiles rules into
// matchable patterns, parses source through the adapter registry, runs the
// matcher and conditions, and assembles a deduplicated, ordered set of
// findings across files and rules.
package engine

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oxhq/semgo/internal/adapter"
	"github.com/oxhq/semgo/internal/matcher"
	"github.com/oxhq/semgo/internal/pattern"
	"github.com/oxhq/semgo/internal/result"
	"github.com/oxhq/semgo/internal/rule"
)

// Engine orchestrates analysis runs against a fixed adapter registry.
type Engine struct {
	registry *adapter.Registry
	maxDepth int
}

// New returns an Engine backed by registry.
func New(registry *adapter.Registry) *Engine {
	return &Engine{registry: registry, maxDepth: matcher.DefaultMaxDepth}
}

// File is one unit of work: a path and its already-read contents.
type File struct {
	Path    string
	Source  []byte
	Lang    string // optional override; defaults to extension-based lookup
}

// AnalyzeFiles runs every applicable rule against every file, in parallel at
// the file level and single-threaded within a file, and returns every
// finding sorted by (file, start_line, start_col, end_line, end_col,
// rule_id) with duplicates (by that same key) removed. ctx is polled before
// each file and between rules so a caller can cancel a run in progress; a
// single rule's match over one file is not interrupted. The first error
// from any file (parse failure, missing adapter, cancellation) ends the run,
// and AnalyzeFiles then returns that error and no findings; a compile error
// in any enabled rule is returned before any file is analyzed.
func (e *Engine) AnalyzeFiles(ctx context.Context, rules []rule.Rule, files []File) ([]result.Finding, error) {
	compiled, err := e.compileRules(rules)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		all     []result.Finding
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range files {
		f := f
		g.Go(func() error {
			findings, err := e.analyzeFile(gctx, compiled, f)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, findings...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return dedupAndSort(all), nil
}

type compiledRule struct {
	rule.Rule
	pattern *pattern.Pattern
}

func (e *Engine) compileRules(rules []rule.Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		p, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, newError(ErrCompile, "", r.ID, "failed to compile rule pattern", err)
		}
		out = append(out, compiledRule{Rule: r, pattern: p})
	}
	return out, nil
}

func (e *Engine) analyzeFile(ctx context.Context, rules []compiledRule, f File) ([]result.Finding, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(ErrCancelled, f.Path, "", "analysis cancelled", err)
	}

	lang := f.Lang
	var a adapter.Adapter
	var err error
	if lang != "" {
		a, err = e.registry.Get(lang)
	} else {
		a, err = e.registry.ForFile(f.Path)
	}
	if err != nil {
		return nil, newError(ErrParse, f.Path, "", "no adapter for file", err)
	}

	root, err := a.Parse(f.Source, f.Path)
	if err != nil {
		return nil, newError(ErrParse, f.Path, "", "failed to parse file", err)
	}

	var findings []result.Finding
	for _, cr := range rules {
		if err := ctx.Err(); err != nil {
			return nil, newError(ErrCancelled, f.Path, cr.ID, "analysis cancelled", err)
		}
		if !cr.AppliesToLanguage(a.Language()) {
			continue
		}

		matches := matcher.FindMatches(cr.pattern, root, matcher.Options{MaxDepth: e.maxDepth})
		for _, m := range matches {
			findings = append(findings, toFinding(cr.Rule, m))
		}
	}
	return findings, nil
}

// messagePlaceholder matches a $NAME reference inside a rule's message
// text: an ASCII letter or underscore followed by ASCII letters, digits or
// underscores.
var messagePlaceholder = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteBindings replaces every $NAME placeholder in message with its
// bound text. A placeholder with no matching binding is left as-is.
func substituteBindings(message string, bindings map[string]string) string {
	return messagePlaceholder.ReplaceAllStringFunc(message, func(ref string) string {
		name := ref[1:]
		if v, ok := bindings[name]; ok {
			return v
		}
		return ref
	})
}

func toFinding(r rule.Rule, m matcher.MatchResult) result.Finding {
	bindings := make(map[string]string, len(m.Bindings))
	for name, b := range m.Bindings {
		bindings[name] = b.Text
	}

	loc := result.FromRange(m.FocusNode.Range)

	f := result.Finding{
		RuleID:     r.ID,
		Message:    substituteBindings(r.Message, bindings),
		Severity:   r.Severity,
		Confidence: r.Confidence,
		Location:   loc,
		Bindings:   bindings,
	}
	if r.Fix != nil {
		f.Fix = r.Fix.Text
	}
	return f
}

func dedupAndSort(findings []result.Finding) []result.Finding {
	seen := make(map[string]struct{}, len(findings))
	out := make([]result.Finding, 0, len(findings))
	for _, f := range findings {
		k := f.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return result.Less(out[i], out[j]) })
	return out
}
