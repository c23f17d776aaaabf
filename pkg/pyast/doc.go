// Package pyast provides a small, closed syntax tree model for Python source.
//
// The model only carries what smell rules need: call expressions, attribute access,
// identifiers, literals, and the statement/block structure around them. Every other
// grammar construct is kept as KindOther so traversal still reaches nested calls.
//
// Trees are produced by Parser (tree-sitter backed, requires CGO) or assembled by
// hand with the builder helpers (Call, Attr, Ident, Lit, Kw, ...), which is how
// rule tests construct their inputs:
//
//	file := pyast.NewFile("train.py", pyast.Module(
//		pyast.Expr(pyast.Call(pyast.Attr(pyast.Ident("df"), "dropna"))),
//	))
//
// Trees are read-only once NewFile has linked parents.
package pyast
