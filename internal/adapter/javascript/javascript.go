// Package javascript adapts JavaScript source into the universal AST using
// tree-sitter's JavaScript grammar.
package javascript

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	tsjs "github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/semgo/internal/ast"
)

// Adapter parses JavaScript source files.
type Adapter struct{}

// New returns a JavaScript adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Language() string     { return "javascript" }
func (a *Adapter) Aliases() []string    { return []string{"js"} }
func (a *Adapter) Extensions() []string { return []string{".js", ".jsx", ".mjs"} }

var kindByNodeType = map[string]ast.Kind{
	"program":                  ast.KindProgram,
	"function_declaration":     ast.KindFunction,
	"function":                ast.KindFunction,
	"arrow_function":          ast.KindFunction,
	"method_definition":       ast.KindMethod,
	"class_declaration":        ast.KindClass,
	"class":                    ast.KindClass,
	"variable_declaration":     ast.KindVariable,
	"lexical_declaration":      ast.KindVariable,
	"import_statement":         ast.KindImport,
	"call_expression":          ast.KindCall,
	"assignment_expression":    ast.KindAssignment,
	"if_statement":             ast.KindCondition,
	"for_statement":            ast.KindLoop,
	"while_statement":          ast.KindLoop,
	"statement_block":          ast.KindBlock,
	"return_statement":         ast.KindReturn,
	"throw_statement":          ast.KindThrow,
	"try_statement":            ast.KindTryCatch,
	"comment":                  ast.KindComment,
	"decorator":                ast.KindDecorator,
	"identifier":               ast.KindIdentifier,
	"property_identifier":      ast.KindIdentifier,
	"string":                   ast.KindLiteralString,
	"template_string":          ast.KindLiteralString,
	"number":                   ast.KindLiteralInt,
	"true":                     ast.KindLiteralBool,
	"false":                    ast.KindLiteralBool,
	"null":                     ast.KindLiteralNull,
	"undefined":                ast.KindLiteralNull,
	"binary_expression":        ast.KindBinaryExpr,
	"unary_expression":         ast.KindUnaryExpr,
	"member_expression":        ast.KindMemberAccess,
	"jsx_element":              ast.KindElement,
	"jsx_self_closing_element":  ast.KindElement,
	"formal_parameters":        ast.KindBlock,
}

// Parse parses source into the universal AST.
func (a *Adapter) Parse(source []byte, filePath string) (*ast.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsjs.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("adapter/javascript: parse %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("adapter/javascript: parse %s: tree-sitter returned no tree", filePath)
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
	case ast.KindLiteralInt:
		out.LiteralValue = out.Text
	case ast.KindLiteralBool:
		out.LiteralValue = out.Text == "true"
	case ast.KindLiteralNull:
		out.LiteralValue = nil
	}

	return out
}
