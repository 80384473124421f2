// Package python adapts Python source into the universal AST using
// tree-sitter's Python grammar.
package python

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	tspy "github.com/smacker/go-tree-sitter/python"

	"github.com/oxhq/semgo/internal/ast"
)

// Adapter parses Python source files.
type Adapter struct{}

// New returns a Python adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Language() string     { return "python" }
func (a *Adapter) Aliases() []string    { return []string{"py", "py3"} }
func (a *Adapter) Extensions() []string { return []string{".py"} }

var kindByNodeType = map[string]ast.Kind{
	"module":               ast.KindProgram,
	"function_definition":  ast.KindFunction,
	"class_definition":     ast.KindClass,
	"decorated_definition": ast.KindDecorator,
	"assignment":           ast.KindAssignment,
	"import_statement":     ast.KindImport,
	"import_from_statement": ast.KindImport,
	"call":                 ast.KindCall,
	"if_statement":         ast.KindCondition,
	"for_statement":        ast.KindLoop,
	"while_statement":      ast.KindLoop,
	"block":                ast.KindBlock,
	"return_statement":     ast.KindReturn,
	"raise_statement":      ast.KindThrow,
	"try_statement":        ast.KindTryCatch,
	"comment":              ast.KindComment,
	"identifier":           ast.KindIdentifier,
	"string":               ast.KindLiteralString,
	"integer":              ast.KindLiteralInt,
	"float":                ast.KindLiteralFloat,
	"true":                 ast.KindLiteralBool,
	"false":                ast.KindLiteralBool,
	"none":                 ast.KindLiteralNull,
	"binary_operator":      ast.KindBinaryExpr,
	"unary_operator":       ast.KindUnaryExpr,
	"attribute":            ast.KindMemberAccess,
	"parameter":            ast.KindParameter,
}

// Parse parses source into the universal AST.
func (a *Adapter) Parse(source []byte, filePath string) (*ast.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tspy.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("adapter/python: parse %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("adapter/python: parse %s: tree-sitter returned no tree", filePath)
	}

	root := convert(tree.RootNode(), source, filePath)
	root.SetParent()
	return root, nil
}

func convert(n *sitter.Node, source []byte, file string) *ast.Node {
	kind, ok := kindByNodeType[n.Type()]
	if !ok {
		if n.IsNamed() {
			kind = ast.KindBlock
		} else {
			kind = ast.KindUnknown
		}
	}

	out := &ast.Node{
		Kind: kind,
		Text: n.Content(source),
		Range: ast.Range{
			File:      file,
			StartLine: int(n.StartPoint().Row) + 1,
			StartCol:  int(n.StartPoint().Column) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
			EndCol:    int(n.EndPoint().Column) + 1,
			StartByte: int(n.StartByte()),
			EndByte:   int(n.EndByte()),
		},
		Attributes: map[string]string{"node_type": n.Type()},
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convert(child, source, file))
	}

	switch kind {
	case ast.KindIdentifier:
		out.IdentifierName = out.Text
	case ast.KindLiteralString:
		out.LiteralValue = out.Text
	case ast.KindLiteralInt, ast.KindLiteralFloat:
		out.LiteralValue = out.Text
	case ast.KindLiteralBool:
		out.LiteralValue = out.Text == "True"
	case ast.KindLiteralNull:
		out.LiteralValue = nil
	}

	return out
}
