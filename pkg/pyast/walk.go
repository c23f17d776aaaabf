package pyast

// Walk traverses the tree rooted at node depth-first, pre-order, and calls fn for
// each node. A call is visited before its callee and arguments, and siblings are
// visited in source order. If fn returns false, the node's children are skipped.
func Walk(node *Node, fn func(node *Node) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.children() {
		Walk(child, fn)
	}
}

// Inspect walks every node of the file.
func (f *File) Inspect(fn func(node *Node) bool) {
	if f == nil {
		return
	}
	Walk(f.Root, fn)
}

// CollectCalls returns all call nodes under node in traversal order.
func CollectCalls(node *Node) []*Node {
	var calls []*Node
	Walk(node, func(n *Node) bool {
		if n.Kind == KindCall {
			calls = append(calls, n)
		}
		return true
	})
	return calls
}
