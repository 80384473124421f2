// Package ast defines the universal, language-neutral syntax tree that every
// adapter produces and every pattern matches against.
package ast

import "fmt"

// Kind is a closed, language-neutral node category. Adapters translate
// language-specific grammar node types into a Kind; the matcher never sees a
// language-specific type name.
type Kind string

const (
	KindProgram Kind = "program"

	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindParameter Kind = "parameter"

	KindVariable   Kind = "variable"
	KindConstant   Kind = "constant"
	KindField      Kind = "field"
	KindAssignment Kind = "assignment"

	KindImport Kind = "import"

	KindCall         Kind = "call"
	KindCondition    Kind = "condition"
	KindLoop         Kind = "loop"
	KindBlock        Kind = "block"
	KindReturn       Kind = "return"
	KindThrow        Kind = "throw"
	KindTryCatch     Kind = "try_catch"
	KindDecorator    Kind = "decorator"
	KindComment      Kind = "comment"

	KindIdentifier    Kind = "identifier"
	KindLiteralString Kind = "literal_string"
	KindLiteralInt    Kind = "literal_int"
	KindLiteralFloat  Kind = "literal_float"
	KindLiteralBool   Kind = "literal_bool"
	KindLiteralNull   Kind = "literal_null"

	KindBinaryExpr    Kind = "binary_expr"
	KindUnaryExpr     Kind = "unary_expr"
	KindMemberAccess  Kind = "member_access"

	KindSelectStatement Kind = "select_statement"
	KindCommand         Kind = "command"
	KindElement         Kind = "element"

	KindUnknown Kind = "unknown"
)

// Range is a half-open byte/line/column span within a single file.
type Range struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	StartByte int
	EndByte   int
}

func (r Range) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", r.File, r.StartLine, r.StartCol, r.EndLine, r.EndCol)
}

// Node is one immutable node in the universal AST. Adapters build a tree of
// Nodes from a language-specific parse tree; nothing downstream of the
// adapter boundary ever inspects a grammar-specific node type again.
type Node struct {
	Kind       Kind
	Text       string
	Children   []*Node
	Range      Range
	Attributes map[string]string

	// LiteralValue is only set when Kind is one of the literal_* kinds.
	LiteralValue any
	// Operator carries the operator text for binary_expr/unary_expr nodes.
	Operator string
	// IdentifierName carries the resolved name of an identifier node,
	// independent of Text (which is the raw source span). The bundled
	// adapters set it only on identifier nodes.
	IdentifierName string

	parent *Node
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// Child returns the i-th direct child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Attribute returns a language-specific attribute by key (e.g. "visibility",
// "async", "receiver"). Adapters populate Attributes; the matcher and
// node-attribute condition read it generically.
func (n *Node) Attribute(key string) (string, bool) {
	if n == nil || n.Attributes == nil {
		return "", false
	}
	v, ok := n.Attributes[key]
	return v, ok
}

// SetParent wires n as the parent of every direct child, and recurses so
// every node below n gets its parent wired too. Adapters call this once on
// the root after building the whole tree.
func (n *Node) SetParent() {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		c.parent = n
		c.SetParent()
	}
}

// IterateDescendants calls fn for n and every descendant, pre-order. Walking
// stops early if fn returns false.
func (n *Node) IterateDescendants(fn func(*Node) bool) {
	if n == nil {
		return
	}
	var walk func(*Node) bool
	walk = func(node *Node) bool {
		if !fn(node) {
			return false
		}
		for _, c := range node.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(n)
}

// Descendants returns every node in the subtree rooted at n, pre-order,
// including n itself.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.IterateDescendants(func(node *Node) bool {
		out = append(out, node)
		return true
	})
	return out
}
