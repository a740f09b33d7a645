package cps

// Transform implements spec.md §4.7: it rewrites every async function
// reachable from root into a synchronous function returning a `new
// Promise(...)`, splitting each async body at its await expressions into
// a chain of `.then` continuations. Trees that needsTransform finds
// nothing in (no async function, await, generator, or for-await-of) are
// returned unchanged, untouched by the walk below.
//
// Generators/yield are recognized by needsTransform so callers can detect
// them, but this package's seven rewrite rules are all async/await rules;
// a generator function's body is walked for nested async functions and
// otherwise passed through as-is (generator lowering is a distinct,
// unimplemented transform).
func Transform(root *Node) *Node {
	if !needsTransform(root) {
		return root
	}
	t := &transformer{sym: &gensym{}}
	return t.rewrite(root)
}

// transformer holds the state shared across one Transform call: a single
// gensym counter so helper names stay unique across every async function
// and loop encountered during the walk.
type transformer struct {
	sym *gensym
}

// rewrite dispatches on n.Kind: function nodes get the async-transform
// treatment (rule 1), everything else is rebuilt with its children
// rewritten in place so nested functions anywhere in the tree are found.
func (t *transformer) rewrite(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.Kind == KindFunction {
		return t.transformFunction(n)
	}
	return t.rewriteGeneric(n)
}

func (t *transformer) rewriteList(ns []*Node) []*Node {
	if ns == nil {
		return nil
	}
	out := make([]*Node, len(ns))
	for i, c := range ns {
		out[i] = t.rewrite(c)
	}
	return out
}

// rewriteGeneric copies n and recursively rewrites every child slot,
// without otherwise touching n's shape. Used for any node that isn't
// itself a function and isn't part of an async body's statement chain
// (that's transformSeq's job).
func (t *transformer) rewriteGeneric(n *Node) *Node {
	cp := *n
	cp.Expr = t.rewrite(n.Expr)
	cp.Test = t.rewrite(n.Test)
	cp.Then = t.rewrite(n.Then)
	cp.Else = t.rewrite(n.Else)
	cp.Callee = t.rewrite(n.Callee)
	cp.Left = t.rewrite(n.Left)
	cp.Right = t.rewrite(n.Right)
	cp.CatchBody = t.rewrite(n.CatchBody)
	cp.Finally = t.rewrite(n.Finally)
	cp.Args = t.rewriteList(n.Args)
	cp.Body = t.rewriteList(n.Body)
	return &cp
}

// transformFunction implements rule 1. A non-async function is only
// walked for nested async declarations; an async function is rewritten
// into `function f(params){ return new Promise((resolve,reject) => {
// try { body' } catch(e){ reject(e) } }) }`, where body' is produced by
// chaining the transformed body through transformSeq and, when that
// chain ends in a promise expression, attaching a top-level .catch.
func (t *transformer) transformFunction(fn *Node) *Node {
	if !fn.IsAsync {
		return t.rewriteGeneric(fn)
	}

	resolveName := t.sym.next("__resolve")
	rejectName := t.sym.next("__reject")
	ctx := chainCtx{
		resolveName: resolveName,
		rejectName:  rejectName,
		fallthrough_: func() []*Node {
			return []*Node{ExprStmt(Call(Ident(resolveName)))}
		},
	}

	chain := attachCatch(t.transformSeq(fn.Body, 0, ctx), rejectName)

	tryNode := &Node{
		Kind:       KindTry,
		Body:       chain,
		CatchParam: "__e",
		CatchBody:  Block(ExprStmt(Call(Ident(rejectName), Ident("__e")))),
	}
	executor := Arrow([]string{resolveName, rejectName}, tryNode)
	promiseNew := &Node{Kind: KindCall, IsNew: true, Callee: Ident("Promise"), Args: []*Node{executor}}

	return &Node{
		Kind:   KindFunction,
		Name:   fn.Name,
		Params: fn.Params,
		Body:   []*Node{Return(promiseNew)},
	}
}
