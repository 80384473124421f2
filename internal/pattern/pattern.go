// Package pattern implements the pattern model: the recursive combinator
// tree (Either/All/Any/Inside/NotInside/Not/Regex/NotRegex wrapping a
// compiled simple pattern), the token-structural compiler that turns pattern
// text into a matchable token sequence, and the metavariable environment
// that threads bindings through a match attempt.
package pattern

import (
	"regexp"
	"sync"
)

// Op identifies which combinator (or leaf form) a Pattern node is.
type Op string

const (
	OpSimple    Op = "simple"
	OpEither    Op = "either"
	OpAll       Op = "all"
	OpAny       Op = "any"
	OpInside    Op = "inside"
	OpNotInside Op = "not_inside"
	OpNot       Op = "not"
	OpRegex     Op = "regex"
	OpNotRegex  Op = "not_regex"
)

// ConditionKind identifies which of the recognized condition forms a
// Condition value represents.
type ConditionKind string

const (
	CondMetavariableRegex      ConditionKind = "metavariable-regex"
	CondMetavariablePattern    ConditionKind = "metavariable-pattern"
	CondMetavariableComparison ConditionKind = "metavariable-comparison"
	CondMetavariableName       ConditionKind = "metavariable-name"
	CondMetavariableAnalysis   ConditionKind = "metavariable-analysis"
	CondNodeKind               ConditionKind = "node-kind"
	CondNodeAttribute          ConditionKind = "node-attribute"
)

// Condition is one post-structural-match constraint attached to a Pattern.
// A Pattern only counts as matched once every attached Condition evaluates
// true against the bindings produced by the structural match.
type Condition struct {
	Kind ConditionKind

	Metavariable string

	// metavariable-regex
	Regex string

	// metavariable-pattern
	Pattern  *Pattern
	Language string

	// metavariable-comparison
	Comparator string
	Value      string

	// metavariable-name
	Glob string

	// metavariable-analysis
	Analyzer   string
	MinEntropy *float64
	Charset    string
	ValueType  string

	// node-kind
	KindName string

	// node-attribute
	AttrKey   string
	AttrValue string
}

// Pattern is the recursive pattern tree. Exactly one of the op-specific
// fields below is populated depending on Op.
type Pattern struct {
	Op Op

	// OpSimple
	Simple *CompiledSimple

	// OpRegex / OpNotRegex: raw regex source matched against a node's text.
	RegexSource string
	regexOnce   sync.Once
	compiled    *regexp.Regexp
	regexErr    error

	// OpEither / OpAll / OpAny
	Children []*Pattern

	// OpInside / OpNotInside / OpNot
	Inner *Pattern

	// Focus lists metavariable names whose bound node becomes the reported
	// match location instead of the whole pattern's node. Only the first
	// listed name is used; the others do not affect the reported location.
	Focus []string

	// Conditions are evaluated, in order, after a structural match succeeds.
	Conditions []Condition
}

// CompiledRegex lazily compiles and caches RegexSource. The cache is filled
// once, so a Pattern shared across goroutines can call it concurrently.
func (p *Pattern) CompiledRegex() (*regexp.Regexp, error) {
	p.regexOnce.Do(func() {
		p.compiled, p.regexErr = regexp.Compile(p.RegexSource)
	})
	return p.compiled, p.regexErr
}

// Simple wraps a compiled token-structural pattern as a leaf Pattern.
func Simple(cs *CompiledSimple) *Pattern {
	return &Pattern{Op: OpSimple, Simple: cs}
}

// Either builds a disjunction: the first child that matches wins.
func Either(children ...*Pattern) *Pattern {
	return &Pattern{Op: OpEither, Children: children}
}

// All builds a conjunction over a shared environment: every child must
// match the same node, and bindings accumulate across children.
func All(children ...*Pattern) *Pattern {
	return &Pattern{Op: OpAll, Children: children}
}

// Any is semantically identical to Either for our purposes: the first
// matching child wins. It is kept distinct because rule authors use
// pattern-any to mean "any of these, independently considered" rather than
// "prefer earlier alternatives", though the matcher does not distinguish the
// two at the node level.
func Any(children ...*Pattern) *Pattern {
	return &Pattern{Op: OpAny, Children: children}
}

// Inside wraps inner: a node matches only if the node itself or some
// ancestor matches inner.
func Inside(inner *Pattern) *Pattern {
	return &Pattern{Op: OpInside, Inner: inner}
}

// NotInside wraps inner: a node matches only if neither the node itself nor
// any ancestor matches inner.
func NotInside(inner *Pattern) *Pattern {
	return &Pattern{Op: OpNotInside, Inner: inner}
}

// Not wraps inner: a node matches only if inner does not match that node.
func Not(inner *Pattern) *Pattern {
	return &Pattern{Op: OpNot, Inner: inner}
}

// RegexPattern matches a node's raw text against a regular expression.
func RegexPattern(source string) *Pattern {
	return &Pattern{Op: OpRegex, RegexSource: source}
}

// NotRegexPattern is the negation of RegexPattern.
func NotRegexPattern(source string) *Pattern {
	return &Pattern{Op: OpNotRegex, RegexSource: source}
}
