// Package condition evaluates the post-structural-match constraints a
// pattern can attach to its bindings: metavariable-regex,
// metavariable-pattern, metavariable-comparison, metavariable-name,
// metavariable-analysis, node-kind and node-attribute.
package condition

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gobwas/glob"

	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/pattern"
)

// SubMatcher lets metavariable-pattern recurse back into the structural
// matcher without condition importing matcher (which would cycle back,
// since matcher needs to call Evaluate).
type SubMatcher func(p *pattern.Pattern, node *ast.Node) bool

// Evaluate runs a single condition against the current bindings. match is
// used only by metavariable-pattern.
func Evaluate(c pattern.Condition, env *pattern.Env, match SubMatcher) (bool, error) {
	switch c.Kind {
	case pattern.CondMetavariableRegex:
		return evalRegex(c, env)
	case pattern.CondMetavariablePattern:
		return evalPattern(c, env, match)
	case pattern.CondMetavariableComparison:
		return evalComparison(c, env)
	case pattern.CondMetavariableName:
		return evalName(c, env)
	case pattern.CondMetavariableAnalysis:
		return evalAnalysis(c, env)
	case pattern.CondNodeKind:
		return evalNodeKind(c, env)
	case pattern.CondNodeAttribute:
		return evalNodeAttribute(c, env)
	default:
		return false, fmt.Errorf("condition: unknown kind %q", c.Kind)
	}
}

func binding(c pattern.Condition, env *pattern.Env) (pattern.Binding, bool) {
	return env.Get(c.Metavariable)
}

func evalRegex(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok {
		return false, nil
	}
	re, err := regexp.Compile(c.Regex)
	if err != nil {
		return false, fmt.Errorf("condition: invalid metavariable-regex %q: %w", c.Regex, err)
	}
	return re.MatchString(b.Text), nil
}

func evalPattern(c pattern.Condition, env *pattern.Env, match SubMatcher) (bool, error) {
	b, ok := binding(c, env)
	if !ok || b.Node == nil {
		return false, nil
	}
	if c.Pattern == nil {
		return false, fmt.Errorf("condition: metavariable-pattern missing pattern")
	}
	if match == nil {
		return false, fmt.Errorf("condition: metavariable-pattern requires a sub-matcher")
	}
	return match(c.Pattern, b.Node), nil
}

func evalComparison(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok {
		return false, nil
	}
	lhsNum, lhsIsNum := parseNumber(b.Text)
	rhsNum, rhsIsNum := parseNumber(c.Value)

	switch c.Comparator {
	case "==", "Equals":
		if lhsIsNum && rhsIsNum {
			return lhsNum == rhsNum, nil
		}
		return b.Text == c.Value, nil
	case "!=", "NotEquals":
		if lhsIsNum && rhsIsNum {
			return lhsNum != rhsNum, nil
		}
		return b.Text != c.Value, nil
	case "Contains":
		return strings.Contains(b.Text, c.Value), nil
	case "StartsWith":
		return strings.HasPrefix(b.Text, c.Value), nil
	case "EndsWith":
		return strings.HasSuffix(b.Text, c.Value), nil
	case "Matches":
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return false, fmt.Errorf("condition: invalid comparison regex %q: %w", c.Value, err)
		}
		return re.MatchString(b.Text), nil
	case ">", "GreaterThan":
		if lhsIsNum && rhsIsNum {
			return lhsNum > rhsNum, nil
		}
		return b.Text > c.Value, nil
	case "<", "LessThan":
		if lhsIsNum && rhsIsNum {
			return lhsNum < rhsNum, nil
		}
		return b.Text < c.Value, nil
	case ">=", "GreaterOrEqual":
		if lhsIsNum && rhsIsNum {
			return lhsNum >= rhsNum, nil
		}
		return b.Text >= c.Value, nil
	case "<=", "LessOrEqual":
		if lhsIsNum && rhsIsNum {
			return lhsNum <= rhsNum, nil
		}
		return b.Text <= c.Value, nil
	default:
		return false, fmt.Errorf("condition: unknown comparator %q", c.Comparator)
	}
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func evalName(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok {
		return false, nil
	}
	g, err := glob.Compile(c.Glob)
	if err != nil {
		return false, fmt.Errorf("condition: invalid metavariable-name glob %q: %w", c.Glob, err)
	}
	return g.Match(b.Text), nil
}

func evalNodeKind(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok || b.Node == nil {
		return false, nil
	}
	return string(b.Node.Kind) == c.KindName, nil
}

func evalNodeAttribute(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok || b.Node == nil {
		return false, nil
	}
	v, present := b.Node.Attribute(c.AttrKey)
	if !present {
		return false, nil
	}
	return v == c.AttrValue, nil
}

// evalAnalysis implements metavariable-analysis: entropy, charset and
// type-shape heuristics over a bound metavariable's text.
func evalAnalysis(c pattern.Condition, env *pattern.Env) (bool, error) {
	b, ok := binding(c, env)
	if !ok {
		return false, nil
	}
	switch c.Analyzer {
	case "entropy":
		e := shannonEntropy(b.Text)
		if c.MinEntropy == nil {
			return false, fmt.Errorf("condition: metavariable-analysis entropy requires min-entropy")
		}
		if c.Charset != "" && !matchesCharset(b.Text, c.Charset) {
			return false, nil
		}
		return e >= *c.MinEntropy, nil
	case "charset":
		return matchesCharset(b.Text, c.Charset), nil
	case "type":
		return matchesType(b.Text, c.ValueType), nil
	default:
		return false, fmt.Errorf("condition: unknown analyzer %q", c.Analyzer)
	}
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	n := float64(total)
	var entropy float64
	for _, count := range freq {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func matchesCharset(s, charset string) bool {
	check := func(pred func(rune) bool) bool {
		for _, r := range s {
			if !pred(r) {
				return false
			}
		}
		return s != ""
	}
	switch charset {
	case "alphanumeric":
		return check(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	case "alphabetic":
		return check(unicode.IsLetter)
	case "numeric":
		return check(unicode.IsDigit)
	case "ascii":
		return check(func(r rune) bool { return r <= unicode.MaxASCII })
	default:
		return false
	}
}

func matchesType(s, typ string) bool {
	switch typ {
	case "string":
		// All bound text is a string at this level, so "string" holds for
		// any text, including text that also fits a shape below.
		return true
	case "number":
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	case "integer":
		_, err := strconv.ParseInt(s, 10, 64)
		return err == nil
	case "boolean":
		return s == "true" || s == "false"
	case "null":
		return s == "null" || s == "nil" || s == "None"
	default:
		return false
	}
}
