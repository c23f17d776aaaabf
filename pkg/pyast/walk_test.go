package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_PreOrder(t *testing.T) {
	seed := Call(Dotted("np.random.seed"), Positional(Lit("0")))
	choice := Call(Dotted("np.random.choice"), Positional(Ident("items")))
	file := NewFile("train.py", Module(Expr(seed), Expr(choice)))

	var calls []string
	file.Inspect(func(n *Node) bool {
		if n.Kind == KindCall {
			calls = append(calls, n.CalleeName())
		}
		return true
	})

	assert.Equal(t, []string{"seed", "choice"}, calls)
}

func TestWalk_CallBeforeArguments(t *testing.T) {
	inner := Call(Ident("load"))
	outer := Call(Ident("LogisticRegression"), Kw("C", inner))
	root := Module(Expr(outer))

	var order []string
	Walk(root, func(n *Node) bool {
		if n.Kind == KindCall {
			order = append(order, n.CalleeName())
		}
		return true
	})

	assert.Equal(t, []string{"LogisticRegression", "load"}, order)
}

func TestWalk_SkipChildren(t *testing.T) {
	root := Module(Def("predict", Expr(Call(Attr(Ident("model"), "fit")))))

	count := 0
	Walk(root, func(n *Node) bool {
		if n.Kind == KindCall {
			count++
		}
		return n.Kind != KindStatement
	})

	assert.Zero(t, count)
	assert.Len(t, CollectCalls(root), 1)
}

func TestNode_CalleeName(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"plain name", Call(Ident("LogisticRegression")), "LogisticRegression"},
		{"attribute", Call(Dotted("sklearn.linear_model.LogisticRegression")), "LogisticRegression"},
		{"subscript callee", Call(Other("models[0]")), ""},
		{"not a call", Ident("x"), ""},
		{"nil callee", &Node{Kind: KindCall}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.CalleeName())
		})
	}
}

func TestBuilders_RenderText(t *testing.T) {
	call := Call(Ident("LogisticRegression"), Kw("C", Lit("0.1")), Kw("solver", Lit(`"liblinear"`)))
	assert.Equal(t, `LogisticRegression(C=0.1, solver="liblinear")`, call.Text)

	splat := Call(Ident("LogisticRegression"), Splat(Ident("param_grid")))
	assert.Equal(t, "LogisticRegression(**param_grid)", splat.Text)
	assert.Equal(t, "**param_grid", splat.Args[0].Label())
	assert.True(t, splat.Args[0].IsKeyword())

	assert.Equal(t, "np.random.choice", Dotted("np.random.choice").Text)
}

func TestModule_AssignsLines(t *testing.T) {
	first := Call(Ident("a"))
	nested := Call(Ident("b"))
	last := Call(Ident("c"), Kw("k", Lit("1")))
	root := Module(Expr(first), Def("f", Expr(nested)), Expr(last))
	NewFile("x.py", root)

	assert.Equal(t, 1, first.Pos.Line)
	assert.Equal(t, 3, nested.Pos.Line)
	assert.Equal(t, 4, last.Pos.Line)
	assert.Equal(t, 4, last.Args[0].Pos.Line)
}

func TestEnclosingBlock(t *testing.T) {
	drop := Call(Attr(Ident("df"), "dropna"))
	body := Expr(drop)
	def := Def("clean", body)
	root := Module(def)
	NewFile("prep.py", root)

	block := drop.EnclosingBlock()
	require.NotNil(t, block)
	assert.Equal(t, KindBlock, block.Kind)
	assert.Same(t, def.Children[1], block)
	assert.Same(t, root, block.EnclosingBlock())
}

func TestKind_String(t *testing.T) {
	for k := Kind(0); int(k) < KindCount; k++ {
		assert.True(t, k.Valid())
		assert.NotContains(t, k.String(), "kind(")
	}
	assert.False(t, Kind(KindCount).Valid())
}
