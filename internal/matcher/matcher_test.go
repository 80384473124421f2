package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/semgo/internal/ast"
	"github.com/oxhq/semgo/internal/pattern"
)

func leaf(kind ast.Kind, text string) *ast.Node {
	return &ast.Node{Kind: kind, Text: text}
}

func block(children ...*ast.Node) *ast.Node {
	n := &ast.Node{Kind: ast.KindBlock, Children: children}
	n.SetParent()
	return n
}

func mustCompile(t *testing.T, text string) *pattern.CompiledSimple {
	t.Helper()
	cs, err := pattern.Compile(text)
	require.NoError(t, err)
	return cs
}

func TestFindMatchesLiteral(t *testing.T) {
	root := block(
		leaf(ast.KindCall, "os.Exit(1)"),
		leaf(ast.KindCall, "fmt.Println(1)"),
	)
	p := pattern.Simple(mustCompile(t, "os.Exit(1)"))

	matches := FindMatches(p, root, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "os.Exit(1)", matches[0].Node.Text)
}

func TestFindMatchesSuppressesAncestorWhenDescendantMatches(t *testing.T) {
	inner := leaf(ast.KindCall, "os.Exit(1)")
	outer := &ast.Node{Kind: ast.KindBlock, Text: "os.Exit(1)", Children: []*ast.Node{inner}}
	outer.SetParent()

	p := pattern.Simple(mustCompile(t, "os.Exit(1)"))
	matches := FindMatches(p, outer, Options{})

	require.Len(t, matches, 1)
	assert.Same(t, inner, matches[0].Node)
}

func TestFindMatchesEllipsisCall(t *testing.T) {
	root := block(leaf(ast.KindCall, "db.Query(ctx, query, args)"))
	p := pattern.Simple(mustCompile(t, "db.Query(...)"))

	matches := FindMatches(p, root, Options{})
	require.Len(t, matches, 1)
}

func TestFindMatchesMetavariableReuse(t *testing.T) {
	root := block(
		leaf(ast.KindAssignment, "x = x"),
		leaf(ast.KindAssignment, "x = y"),
	)
	p := pattern.Simple(mustCompile(t, "$X = $X"))

	matches := FindMatches(p, root, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "x = x", matches[0].Node.Text)
	assert.Equal(t, "x", matches[0].Bindings["X"].Text)
}

func TestFindMatchesEither(t *testing.T) {
	root := block(
		leaf(ast.KindCall, "md5.Sum(data)"),
		leaf(ast.KindCall, "sha1.Sum(data)"),
		leaf(ast.KindCall, "sha256.Sum(data)"),
	)
	p := pattern.Either(
		pattern.Simple(mustCompile(t, "md5.Sum(...)")),
		pattern.Simple(mustCompile(t, "sha1.Sum(...)")),
	)

	matches := FindMatches(p, root, Options{})
	assert.Len(t, matches, 2)
}

func TestFindMatchesFocusMetavariable(t *testing.T) {
	arg := &ast.Node{Kind: ast.KindIdentifier, Text: "password", Range: ast.Range{StartLine: 3}}
	call := &ast.Node{Kind: ast.KindCall, Text: "log.Println(password)", Children: []*ast.Node{arg}}
	call.SetParent()
	root := block(call)

	p := pattern.Simple(mustCompile(t, "log.Println($X)"))
	p.Focus = []string{"X"}

	matches := FindMatches(p, root, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, call.Text, matches[0].Node.Text)
	assert.Equal(t, "password", matches[0].FocusNode.Text)
}

func TestFindMatchesNotInsideExcludesEnclosedNodes(t *testing.T) {
	call := leaf(ast.KindCall, "exec.Command(cmd)")
	guarded := &ast.Node{Kind: ast.KindCondition, Text: "if sanitized(cmd) { exec.Command(cmd) }", Children: []*ast.Node{call}}
	plain := leaf(ast.KindCall, "exec.Command(raw)")
	root := &ast.Node{Kind: ast.KindBlock, Children: []*ast.Node{guarded, plain}}
	root.SetParent()

	guard := pattern.Simple(mustCompile(t, "if sanitized(...) { ... }"))
	p := pattern.All(pattern.Simple(mustCompile(t, "exec.Command(...)")), pattern.NotInside(guard))

	matches := FindMatches(p, root, Options{})
	require.Len(t, matches, 1)
	assert.Equal(t, "exec.Command(raw)", matches[0].Node.Text)
}
