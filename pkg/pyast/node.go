package pyast

import "fmt"

// Kind is the closed set of node kinds known to the analyzer.
type Kind uint8

// Node kinds.
const (
	// KindOther is any construct the analyzer does not model explicitly.
	KindOther Kind = iota
	// KindModule is the root of a file.
	KindModule
	// KindBlock is an indented statement block (function body, if branch, ...).
	KindBlock
	// KindStatement is a single statement inside a module or block.
	KindStatement
	// KindCall is a call expression: callee(args...).
	KindCall
	// KindAttribute is an attribute access: object.attr.
	KindAttribute
	// KindName is a bare identifier.
	KindName
	// KindLiteral is a string, number, boolean or None literal.
	KindLiteral

	kindCount
)

// KindCount is the number of node kinds. Useful for dispatch tables indexed by Kind.
const KindCount = int(kindCount)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindModule:
		return "module"
	case KindBlock:
		return "block"
	case KindStatement:
		return "statement"
	case KindCall:
		return "call"
	case KindAttribute:
		return "attribute"
	case KindName:
		return "name"
	case KindLiteral:
		return "literal"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Position is a 1-based source location. A zero Line means unknown.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position points into the source.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Unpack marks star-unpacked call arguments.
type Unpack uint8

// Argument unpack markers.
const (
	UnpackNone   Unpack = iota
	UnpackList          // *args
	UnpackMapping       // **kwargs
)

// Arg is one call argument in source order.
type Arg struct {
	Keyword string // keyword name; empty for positional and unpacked args
	Unpack  Unpack
	Value   *Node
	Pos     Position
}

// IsKeyword reports whether the argument binds a keyword: either name=value or a
// **mapping unpack.
func (a Arg) IsKeyword() bool {
	return a.Keyword != "" || a.Unpack == UnpackMapping
}

// IsLiteral reports whether the argument value is a literal.
func (a Arg) IsLiteral() bool {
	return a.Value != nil && a.Value.Kind == KindLiteral
}

// Label returns the name used for the argument in messages: the keyword, or the
// unpack operator followed by the value text.
func (a Arg) Label() string {
	switch {
	case a.Keyword != "":
		return a.Keyword
	case a.Unpack == UnpackMapping:
		return "**" + a.Value.Source()
	case a.Unpack == UnpackList:
		return "*" + a.Value.Source()
	default:
		return a.Value.Source()
	}
}

// Node is a syntax tree node.
type Node struct {
	Kind Kind
	Type string // grammar node type, e.g. "expression_statement"
	Text string // rendered source text
	Pos  Position

	Parent   *Node
	Children []*Node // KindModule, KindBlock, KindStatement, KindOther

	// KindCall
	Callee *Node
	Args   []Arg

	// KindAttribute
	Object *Node
	Attr   string

	// KindName
	Name string
}

// Source returns the rendered text, or "" for a nil node.
func (n *Node) Source() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// CalleeName returns the simple name of a call's callee: the identifier for
// f(...), the attribute name for obj.f(...), "" otherwise.
func (n *Node) CalleeName() string {
	if n == nil || n.Kind != KindCall || n.Callee == nil {
		return ""
	}
	switch n.Callee.Kind {
	case KindName:
		return n.Callee.Name
	case KindAttribute:
		return n.Callee.Attr
	default:
		return ""
	}
}

// CalleeAttribute returns the callee when it is an attribute access, nil otherwise.
func (n *Node) CalleeAttribute() *Node {
	if n == nil || n.Kind != KindCall || n.Callee == nil || n.Callee.Kind != KindAttribute {
		return nil
	}
	return n.Callee
}

// EnclosingBlock returns the nearest ancestor module or block.
func (n *Node) EnclosingBlock() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindBlock || p.Kind == KindModule {
			return p
		}
	}
	return nil
}

// File is one parsed source file.
type File struct {
	Path string
	Root *Node
}

// NewFile wraps root as a file and links parent pointers.
func NewFile(path string, root *Node) *File {
	link(root, nil)
	return &File{Path: path, Root: root}
}

func link(n, parent *Node) {
	if n == nil {
		return
	}
	n.Parent = parent
	for _, child := range n.children() {
		link(child, n)
	}
}

// children returns the direct children in traversal order.
func (n *Node) children() []*Node {
	switch n.Kind {
	case KindCall:
		out := make([]*Node, 0, len(n.Args)+1)
		if n.Callee != nil {
			out = append(out, n.Callee)
		}
		for _, a := range n.Args {
			if a.Value != nil {
				out = append(out, a.Value)
			}
		}
		return out
	case KindAttribute:
		if n.Object == nil {
			return nil
		}
		return []*Node{n.Object}
	case KindName, KindLiteral:
		return nil
	default:
		return n.Children
	}
}
