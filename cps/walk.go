package cps

// children returns every direct child subtree of n, independent of which
// fields are meaningful for n.Kind — a single place that knows the full
// shape of Node, so scanning (needsTransform) and rewriting passes don't
// each need their own enumeration of "all the places a child could be."
func children(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	add := func(c *Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	add(n.Expr)
	add(n.Test)
	add(n.Then)
	add(n.Else)
	add(n.Callee)
	add(n.Left)
	add(n.Right)
	add(n.CatchBody)
	add(n.Finally)
	out = append(out, n.Args...)
	out = append(out, n.Body...)
	return out
}

// needsTransform implements spec.md §4.7's needs_transformation fast path:
// a tree containing no async function, await, generator function, yield,
// or for-await-of anywhere within it is returned unchanged by Transform.
func needsTransform(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindAwait, KindYield:
		return true
	case KindFunction:
		if n.IsAsync || n.IsGenerator {
			return true
		}
	case KindForOf:
		if n.IsAsync {
			return true
		}
	}
	for _, c := range children(n) {
		if needsTransform(c) {
			return true
		}
	}
	return false
}

// NeedsTransform is needsTransform's exported form, for callers (the
// evaluator) that want to skip invoking cps entirely on a parsed tree.
func NeedsTransform(n *Node) bool { return needsTransform(n) }

// containsAwait reports whether a statement body contains an await
// expression without descending into nested functions or arrows (an
// await inside a nested function belongs to that function, not
// the enclosing one — ECMAScript's await is only valid directly inside
// its own async function).
func containsAwait(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == KindAwait {
		return true
	}
	if n.Kind == KindFunction || n.Kind == KindArrow {
		return false // a nested function's await belongs to it, not this scope
	}
	for _, c := range children(n) {
		if containsAwait(c) {
			return true
		}
	}
	return false
}
