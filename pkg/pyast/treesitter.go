//go:build cgo

package pyast

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ParserAvailable reports whether this build can parse Python source.
const ParserAvailable = true

// Parser wraps tree-sitter for Python parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
	logger *slog.Logger
}

// NewParser creates a new Python parser. A nil logger discards output.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p, logger: logger}
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Parse(ctx, path, src)
}

// Parse parses source and converts the tree-sitter tree into the pyast model.
// Source with syntax errors still yields a tree; the erroneous regions become
// KindOther nodes.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*File, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		p.logger.Debug("syntax errors in source", "path", path)
	}

	c := converter{src: source}
	return NewFile(path, c.node(root)), nil
}

type converter struct {
	src []byte
}

func (c converter) node(n *sitter.Node) *Node {
	if n == nil {
		return nil
	}

	out := &Node{
		Type: n.Type(),
		Text: n.Content(c.src),
		Pos:  position(n),
	}

	switch n.Type() {
	case "module":
		out.Kind = KindModule
		out.Children = c.statements(n)

	case "block":
		out.Kind = KindBlock
		out.Children = c.statements(n)

	case "call":
		out.Kind = KindCall
		out.Callee = c.node(n.ChildByFieldName("function"))
		out.Args = c.arguments(n.ChildByFieldName("arguments"))

	case "attribute":
		out.Kind = KindAttribute
		out.Object = c.node(n.ChildByFieldName("object"))
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			out.Attr = attr.Content(c.src)
		}

	case "identifier":
		out.Kind = KindName
		out.Name = out.Text

	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
		out.Kind = KindLiteral

	case "unary_operator":
		// -1 and +0.5 read as literals
		arg := n.ChildByFieldName("argument")
		if arg != nil && (arg.Type() == "integer" || arg.Type() == "float") {
			out.Kind = KindLiteral
			return out
		}
		out.Kind = KindOther
		out.Children = c.namedChildren(n)

	default:
		out.Kind = KindOther
		out.Children = c.namedChildren(n)
	}

	return out
}

// statements converts the named children of a module or block.
func (c converter) statements(n *sitter.Node) []*Node {
	var stmts []*Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		s := c.node(child)
		if s.Kind == KindOther {
			s.Kind = KindStatement
		} else {
			s = &Node{Kind: KindStatement, Type: child.Type(), Text: s.Text, Pos: s.Pos, Children: []*Node{s}}
		}
		stmts = append(stmts, s)
	}
	return stmts
}

func (c converter) namedChildren(n *sitter.Node) []*Node {
	var children []*Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		children = append(children, c.node(child))
	}
	return children
}

func (c converter) arguments(n *sitter.Node) []Arg {
	if n == nil {
		return nil
	}
	if n.Type() == "generator_expression" {
		return []Arg{{Value: c.node(n), Pos: position(n)}}
	}

	var args []Arg
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		arg := Arg{Pos: position(child)}
		switch child.Type() {
		case "keyword_argument":
			if name := child.ChildByFieldName("name"); name != nil {
				arg.Keyword = name.Content(c.src)
			}
			arg.Value = c.node(child.ChildByFieldName("value"))
		case "dictionary_splat":
			arg.Unpack = UnpackMapping
			arg.Value = c.node(child.NamedChild(0))
		case "list_splat":
			arg.Unpack = UnpackList
			arg.Value = c.node(child.NamedChild(0))
		default:
			arg.Value = c.node(child)
		}
		args = append(args, arg)
	}
	return args
}

func position(n *sitter.Node) Position {
	p := n.StartPoint()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}
