package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/semgo/internal/adapter"
	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/rule"
)

// fakeAdapter treats a whole file's source as a single call-kind node so
// engine tests can exercise compile/match/dedup/sort without depending on a
// real tree-sitter grammar.
type fakeAdapter struct {
	lang string
	ext  string
}

func (f fakeAdapter) Language() string     { return f.lang }
func (f fakeAdapter) Aliases() []string    { return nil }
func (f fakeAdapter) Extensions() []string { return []string{f.ext} }

func (f fakeAdapter) Parse(source []byte, path string) (*ast.Node, error) {
	text := strings.TrimSpace(string(source))
	call := &ast.Node{
		Kind: ast.KindCall,
		Text: text,
		Range: ast.Range{
			File:      path,
			StartLine: 1,
			StartCol:  1,
			EndLine:   1,
			EndCol:    len(text) + 1,
		},
	}
	root := &ast.Node{Kind: ast.KindProgram, Children: []*ast.Node{call}}
	root.SetParent()
	return root, nil
}

func newTestRegistry() *adapter.Registry {
	reg := adapter.NewRegistry()
	_ = reg.Register(fakeAdapter{lang: "fake", ext: ".fake"})
	return reg
}

func TestAnalyzeFilesFindsMatch(t *testing.T) {
	eng := New(newTestRegistry())

	r := rule.Rule{
		ID:        "no-md5",
		Languages: []string{"fake"},
		Severity:  rule.SeverityWarning,
		Message:   "do not use md5",
		Pattern:   rule.PatternSpec{Pattern: "md5.Sum(...)"},
		Enabled:   true,
	}

	files := []File{
		{Path: "a.fake", Source: []byte("md5.Sum(data)")},
		{Path: "b.fake", Source: []byte("sha256.Sum(data)")},
	}

	findings, err := eng.AnalyzeFiles(context.Background(), []rule.Rule{r}, files)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "a.fake", findings[0].Location.File)
	assert.Equal(t, "no-md5", findings[0].RuleID)
}

func TestAnalyzeFilesSkipsDisabledRules(t *testing.T) {
	eng := New(newTestRegistry())
	r := rule.Rule{
		ID:        "disabled-rule",
		Languages: []string{"fake"},
		Pattern:   rule.PatternSpec{Pattern: "md5.Sum(...)"},
		Enabled:   false,
	}
	files := []File{{Path: "a.fake", Source: []byte("md5.Sum(data)")}}

	findings, err := eng.AnalyzeFiles(context.Background(), []rule.Rule{r}, files)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestAnalyzeFilesSortsAcrossFiles(t *testing.T) {
	eng := New(newTestRegistry())
	r := rule.Rule{
		ID:        "any-call",
		Languages: []string{"*"},
		Pattern:   rule.PatternSpec{Pattern: "$FN(...)"},
		Enabled:   true,
	}
	files := []File{
		{Path: "z.fake", Source: []byte("foo(1)")},
		{Path: "a.fake", Source: []byte("bar(2)")},
	}

	findings, err := eng.AnalyzeFiles(context.Background(), []rule.Rule{r}, files)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "a.fake", findings[0].Location.File)
	assert.Equal(t, "z.fake", findings[1].Location.File)
}

func TestAnalyzeFilesUnknownAdapterReturnsParseError(t *testing.T) {
	eng := New(newTestRegistry())
	files := []File{{Path: "unknown.xyz", Source: []byte("whatever")}}

	_, err := eng.AnalyzeFiles(context.Background(), nil, files)
	require.Error(t, err)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrParse, ae.Code)
}

func TestAnalyzeFilesRespectsCancelledContext(t *testing.T) {
	eng := New(newTestRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := rule.Rule{ID: "r", Languages: []string{"*"}, Pattern: rule.PatternSpec{Pattern: "$FN(...)"}, Enabled: true}
	files := []File{{Path: "a.fake", Source: []byte("foo(1)")}}

	_, err := eng.AnalyzeFiles(ctx, []rule.Rule{r}, files)
	require.Error(t, err)
	var ae *AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ErrCancelled, ae.Code)
}
