// Package golang adapts Go source into the universal AST using tree-sitter's
// Go grammar.
package golang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	tsgo "github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/semgo/internal/ast"
)

// Adapter parses Go source files.
type Adapter struct{}

// New returns a Go adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Language() string     { return "go" }
func (a *Adapter) Aliases() []string    { return []string{"golang"} }
func (a *Adapter) Extensions() []string { return []string{".go"} }

// kindByNodeType maps tree-sitter's Go grammar node types onto the
// universal Kind set. Types not present here fall back to KindBlock for
// named container nodes and KindUnknown otherwise.
var kindByNodeType = map[string]ast.Kind{
	"source_file":           ast.KindProgram,
	"function_declaration":  ast.KindFunction,
	"method_declaration":    ast.KindMethod,
	"type_spec":             ast.KindType,
	"type_declaration":      ast.KindType,
	"interface_type":        ast.KindInterface,
	"var_declaration":       ast.KindVariable,
	"short_var_declaration": ast.KindVariable,
	"const_declaration":     ast.KindConstant,
	"field_declaration":     ast.KindField,
	"import_declaration":    ast.KindImport,
	"call_expression":       ast.KindCall,
	"assignment_expression": ast.KindAssignment,
	"if_statement":          ast.KindCondition,
	"for_statement":         ast.KindLoop,
	"block":                 ast.KindBlock,
	"return_statement":      ast.KindReturn,
	"comment":               ast.KindComment,
	"identifier":            ast.KindIdentifier,
	"field_identifier":      ast.KindIdentifier,
	"package_identifier":    ast.KindIdentifier,
	"interpreted_string_literal": ast.KindLiteralString,
	"raw_string_literal":         ast.KindLiteralString,
	"int_literal":                ast.KindLiteralInt,
	"float_literal":               ast.KindLiteralFloat,
	"true":                        ast.KindLiteralBool,
	"false":                       ast.KindLiteralBool,
	"nil":                         ast.KindLiteralNull,
	"binary_expression":           ast.KindBinaryExpr,
	"unary_expression":            ast.KindUnaryExpr,
	"selector_expression":         ast.KindMemberAccess,
	"parameter_declaration":       ast.KindParameter,
}

// Parse parses source into the universal AST.
func (a *Adapter) Parse(source []byte, filePath string) (*ast.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsgo.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("adapter/go: parse %s: %w", filePath, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("adapter/go: parse %s: tree-sitter returned no tree", filePath)
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
	case ast.KindBinaryExpr, ast.KindUnaryExpr:
		// A unary operator is the first child; a binary operator sits
		// between the two operands.
		opIndex := 0
		if kind == ast.KindBinaryExpr {
			opIndex = 1
		}
		if op := n.Child(opIndex); op != nil && !op.IsNamed() {
			out.Operator = op.Content(source)
		}
	case ast.KindLiteralString:
		out.LiteralValue = out.Text
	case ast.KindLiteralInt, ast.KindLiteralFloat:
		out.LiteralValue = out.Text
	case ast.KindLiteralBool:
		out.LiteralValue = out.Text == "true"
	case ast.KindLiteralNull:
		out.LiteralValue = nil
	}

	return out
}
