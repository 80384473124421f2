package engine

import (
	"fmt"

	"github.com/oxhq/semgo/internal/pattern"
	"github.com/oxhq/semgo/internal/rule"
)

// compilePattern turns a rule's declarative pattern spec into a matchable
// pattern.Pattern tree, compiling every leaf pattern string with
// pattern.Compile and every attached condition into a pattern.Condition.
func compilePattern(spec rule.PatternSpec) (*pattern.Pattern, error) {
	p, err := compileForm(wrap(spec))
	if err != nil {
		return nil, err
	}
	p.Focus = spec.Focus
	for _, cs := range spec.Conditions {
		c, err := compileCondition(cs)
		if err != nil {
			return nil, err
		}
		p.Conditions = append(p.Conditions, c)
	}
	return p, nil
}

func compileForm(spec PatternLike) (*pattern.Pattern, error) {
	switch {
	case spec.GetPattern() != "":
		cs, err := pattern.Compile(spec.GetPattern())
		if err != nil {
			return nil, fmt.Errorf("engine: compile pattern %q: %w", spec.GetPattern(), err)
		}
		return pattern.Simple(cs), nil

	case len(spec.GetEither()) > 0:
		children, err := compileChildren(spec.GetEither())
		if err != nil {
			return nil, err
		}
		return pattern.Either(children...), nil

	case len(spec.GetAll()) > 0:
		children, err := compileChildren(spec.GetAll())
		if err != nil {
			return nil, err
		}
		return pattern.All(children...), nil

	case len(spec.GetAny()) > 0:
		children, err := compileChildren(spec.GetAny())
		if err != nil {
			return nil, err
		}
		return pattern.Any(children...), nil

	case spec.GetInside() != nil:
		inner, err := compileForm(wrap(*spec.GetInside()))
		if err != nil {
			return nil, err
		}
		return pattern.Inside(inner), nil

	case spec.GetNotInside() != nil:
		inner, err := compileForm(wrap(*spec.GetNotInside()))
		if err != nil {
			return nil, err
		}
		return pattern.NotInside(inner), nil

	case spec.GetNot() != nil:
		inner, err := compileForm(wrap(*spec.GetNot()))
		if err != nil {
			return nil, err
		}
		return pattern.Not(inner), nil

	case spec.GetRegex() != "":
		return pattern.RegexPattern(spec.GetRegex()), nil

	case spec.GetNotRegex() != "":
		return pattern.NotRegexPattern(spec.GetNotRegex()), nil

	default:
		return nil, fmt.Errorf("engine: pattern spec has no recognized form")
	}
}

func compileChildren(specs []rule.PatternSpec) ([]*pattern.Pattern, error) {
	out := make([]*pattern.Pattern, 0, len(specs))
	for _, s := range specs {
		p, err := compileForm(wrap(s))
		if err != nil {
			return nil, err
		}
		p.Focus = s.Focus
		for _, cs := range s.Conditions {
			c, err := compileCondition(cs)
			if err != nil {
				return nil, err
			}
			p.Conditions = append(p.Conditions, c)
		}
		out = append(out, p)
	}
	return out, nil
}

// PatternLike exposes the recognized pattern-form fields uniformly so
// compileForm can operate without caring whether it started from a
// top-level rule.PatternSpec or a nested one.
type PatternLike interface {
	GetPattern() string
	GetEither() []rule.PatternSpec
	GetAll() []rule.PatternSpec
	GetAny() []rule.PatternSpec
	GetInside() *rule.PatternSpec
	GetNotInside() *rule.PatternSpec
	GetNot() *rule.PatternSpec
	GetRegex() string
	GetNotRegex() string
}

type specWrapper rule.PatternSpec

func wrap(s rule.PatternSpec) PatternLike { return specWrapper(s) }

func (s specWrapper) GetPattern() string              { return s.Pattern }
func (s specWrapper) GetEither() []rule.PatternSpec    { return s.PatternEither }
func (s specWrapper) GetAll() []rule.PatternSpec       { return s.PatternAll }
func (s specWrapper) GetAny() []rule.PatternSpec       { return s.PatternAny }
func (s specWrapper) GetInside() *rule.PatternSpec     { return s.PatternInside }
func (s specWrapper) GetNotInside() *rule.PatternSpec  { return s.PatternNotInside }
func (s specWrapper) GetNot() *rule.PatternSpec        { return s.PatternNot }
func (s specWrapper) GetRegex() string                 { return s.PatternRegex }
func (s specWrapper) GetNotRegex() string               { return s.PatternNotRegex }

func compileCondition(cs rule.ConditionSpec) (pattern.Condition, error) {
	switch {
	case cs.MetavariableRegex != nil:
		return pattern.Condition{
			Kind:         pattern.CondMetavariableRegex,
			Metavariable: cs.MetavariableRegex.Metavariable,
			Regex:        cs.MetavariableRegex.Regex,
		}, nil

	case cs.MetavariablePattern != nil:
		inner, err := compileForm(wrap(cs.MetavariablePattern.Pattern))
		if err != nil {
			return pattern.Condition{}, err
		}
		return pattern.Condition{
			Kind:         pattern.CondMetavariablePattern,
			Metavariable: cs.MetavariablePattern.Metavariable,
			Pattern:      inner,
			Language:     cs.MetavariablePattern.Language,
		}, nil

	case cs.MetavariableComparison != nil:
		return pattern.Condition{
			Kind:         pattern.CondMetavariableComparison,
			Metavariable: cs.MetavariableComparison.Metavariable,
			Comparator:   cs.MetavariableComparison.Comparator,
			Value:        cs.MetavariableComparison.Value,
		}, nil

	case cs.MetavariableName != nil:
		return pattern.Condition{
			Kind:         pattern.CondMetavariableName,
			Metavariable: cs.MetavariableName.Metavariable,
			Glob:         cs.MetavariableName.Glob,
		}, nil

	case cs.MetavariableAnalysis != nil:
		return pattern.Condition{
			Kind:         pattern.CondMetavariableAnalysis,
			Metavariable: cs.MetavariableAnalysis.Metavariable,
			Analyzer:     cs.MetavariableAnalysis.Analyzer,
			MinEntropy:   cs.MetavariableAnalysis.MinEntropy,
			Charset:      cs.MetavariableAnalysis.Charset,
			ValueType:    cs.MetavariableAnalysis.Type,
		}, nil

	case cs.NodeKind != nil:
		return pattern.Condition{Kind: pattern.CondNodeKind, KindName: cs.NodeKind.Kind}, nil

	case cs.NodeAttribute != nil:
		return pattern.Condition{
			Kind:      pattern.CondNodeAttribute,
			AttrKey:   cs.NodeAttribute.Key,
			AttrValue: cs.NodeAttribute.Value,
		}, nil

	default:
		return pattern.Condition{}, fmt.Errorf("engine: condition spec has no recognized form")
	}
}
