package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/pattern"
)

func envWith(name, text string) *pattern.Env {
	env := pattern.NewEnv()
	env.Bind(name, text, &ast.Node{Kind: ast.KindIdentifier, Text: text})
	return env
}

func TestEvalMetavariableRegex(t *testing.T) {
	env := envWith("X", "getSecretKey")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableRegex,
		Metavariable: "X",
		Regex:        `^get[A-Z]`,
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalMetavariableRegexInvalidRegexErrors(t *testing.T) {
	env := envWith("X", "foo")
	_, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableRegex,
		Metavariable: "X",
		Regex:        "(unterminated",
	}, env, nil)
	assert.Error(t, err)
}

func TestEvalComparisonNumeric(t *testing.T) {
	env := envWith("N", "42")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableComparison,
		Metavariable: "N",
		Comparator:   ">",
		Value:        "10",
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalComparisonFallsBackToLexical(t *testing.T) {
	env := envWith("S", "banana")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableComparison,
		Metavariable: "S",
		Comparator:   ">",
		Value:        "apple",
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalMetavariableName(t *testing.T) {
	env := envWith("FN", "handleRequest")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableName,
		Metavariable: "FN",
		Glob:         "handle*",
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalAnalysisEntropy(t *testing.T) {
	minEntropy := 3.0
	env := envWith("SECRET", "aQ9$zK2!mP7xR")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableAnalysis,
		Metavariable: "SECRET",
		Analyzer:     "entropy",
		MinEntropy:   &minEntropy,
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalAnalysisEntropyRejectsLowEntropy(t *testing.T) {
	minEntropy := 3.0
	env := envWith("WORD", "aaaaaaaaaa")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableAnalysis,
		Metavariable: "WORD",
		Analyzer:     "entropy",
		MinEntropy:   &minEntropy,
	}, env, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalAnalysisCharset(t *testing.T) {
	env := envWith("ID", "abc123")
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableAnalysis,
		Metavariable: "ID",
		Analyzer:     "charset",
		Charset:      "alphanumeric",
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalNodeAttribute(t *testing.T) {
	env := pattern.NewEnv()
	node := &ast.Node{Kind: ast.KindFunction, Attributes: map[string]string{"visibility": "public"}}
	env.Bind("F", "f", node)

	ok, err := Evaluate(pattern.Condition{
		Kind:      pattern.CondNodeAttribute,
		Metavariable: "F",
		AttrKey:   "visibility",
		AttrValue: "public",
	}, env, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalMissingBindingIsFalseNotError(t *testing.T) {
	env := pattern.NewEnv()
	ok, err := Evaluate(pattern.Condition{
		Kind:         pattern.CondMetavariableRegex,
		Metavariable: "MISSING",
		Regex:        ".*",
	}, env, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
