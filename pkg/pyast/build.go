package pyast

import "strings"

// The helpers below assemble trees without a parser. Text is rendered from the
// parts the same way Python source would read.

// Ident returns a name node.
func Ident(name string) *Node {
	return &Node{Kind: KindName, Type: "identifier", Name: name, Text: name}
}

// Lit returns a literal node whose source text is text, e.g. `0.1` or `"lbfgs"`.
func Lit(text string) *Node {
	return &Node{Kind: KindLiteral, Type: "literal", Text: text}
}

// Other returns an opaque expression node with the given source text and children.
func Other(text string, children ...*Node) *Node {
	return &Node{Kind: KindOther, Type: "expression", Text: text, Children: children}
}

// Attr returns obj.name.
func Attr(obj *Node, name string) *Node {
	return &Node{Kind: KindAttribute, Type: "attribute", Object: obj, Attr: name, Text: obj.Source() + "." + name}
}

// Dotted builds a name/attribute chain from a dotted path such as "np.random.seed".
func Dotted(path string) *Node {
	parts := strings.Split(path, ".")
	n := Ident(parts[0])
	for _, p := range parts[1:] {
		n = Attr(n, p)
	}
	return n
}

// Call returns callee(args...).
func Call(callee *Node, args ...Arg) *Node {
	rendered := make([]string, len(args))
	for i, a := range args {
		rendered[i] = renderArg(a)
	}
	return &Node{
		Kind:   KindCall,
		Type:   "call",
		Callee: callee,
		Args:   args,
		Text:   callee.Source() + "(" + strings.Join(rendered, ", ") + ")",
	}
}

// Positional returns a positional argument.
func Positional(value *Node) Arg {
	return Arg{Value: value}
}

// Kw returns a keyword argument name=value.
func Kw(name string, value *Node) Arg {
	return Arg{Keyword: name, Value: value}
}

// Splat returns a **mapping argument.
func Splat(value *Node) Arg {
	return Arg{Unpack: UnpackMapping, Value: value}
}

// Star returns a *sequence argument.
func Star(value *Node) Arg {
	return Arg{Unpack: UnpackList, Value: value}
}

func renderArg(a Arg) string {
	switch {
	case a.Keyword != "":
		return a.Keyword + "=" + a.Value.Source()
	case a.Unpack == UnpackMapping:
		return "**" + a.Value.Source()
	case a.Unpack == UnpackList:
		return "*" + a.Value.Source()
	default:
		return a.Value.Source()
	}
}

// Expr wraps an expression as an expression statement.
func Expr(value *Node) *Node {
	return &Node{Kind: KindStatement, Type: "expression_statement", Text: value.Source(), Children: []*Node{value}}
}

// Assign returns the statement target = value.
func Assign(target string, value *Node) *Node {
	return &Node{
		Kind:     KindStatement,
		Type:     "assignment",
		Text:     target + " = " + value.Source(),
		Children: []*Node{Ident(target), value},
	}
}

// Block returns an indented statement block.
func Block(stmts ...*Node) *Node {
	return &Node{Kind: KindBlock, Type: "block", Children: stmts, Text: joinText(stmts)}
}

// Def returns a function definition statement with the given body statements.
func Def(name string, body ...*Node) *Node {
	block := Block(body...)
	return &Node{
		Kind:     KindStatement,
		Type:     "function_definition",
		Text:     "def " + name + "():\n" + block.Text,
		Children: []*Node{Ident(name), block},
	}
}

// Module returns a module root. Statements without a position are numbered one per
// line in traversal order, and their descendants inherit that line.
func Module(stmts ...*Node) *Node {
	root := &Node{Kind: KindModule, Type: "module", Children: stmts, Text: joinText(stmts)}
	line := 0
	Walk(root, func(n *Node) bool {
		if n.Kind == KindStatement {
			if n.Pos.IsValid() {
				line = n.Pos.Line
			} else {
				line++
				n.Pos = Position{Line: line, Column: 1}
			}
			fillPositions(n, n.Pos)
		}
		return true
	})
	return root
}

// fillPositions gives every unpositioned expression node (and argument) under the
// statement n the position of n. Nested blocks are numbered separately.
func fillPositions(n *Node, pos Position) {
	Walk(n, func(c *Node) bool {
		if c != n && (c.Kind == KindStatement || c.Kind == KindBlock) {
			return false
		}
		if !c.Pos.IsValid() {
			c.Pos = pos
		}
		for i := range c.Args {
			if !c.Args[i].Pos.IsValid() {
				if c.Args[i].Value != nil && c.Args[i].Value.Pos.IsValid() {
					c.Args[i].Pos = c.Args[i].Value.Pos
				} else {
					c.Args[i].Pos = c.Pos
				}
			}
		}
		return true
	})
}

// At sets the node position and returns the node.
func (n *Node) At(line, column int) *Node {
	n.Pos = Position{Line: line, Column: column}
	return n
}

func joinText(stmts []*Node) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.Source()
	}
	return strings.Join(parts, "\n")
}
