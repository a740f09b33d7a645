package cps

// lowerForOf implements rule 4: a for-of (or for-await-of) loop whose
// body contains await is lowered to a recursive thunk so each iteration
// can suspend without blocking the event loop. The iterator is acquired
// once; `__loopCheck` pulls the next result, binds the loop variable
// when not done, runs the (CPS-transformed) body, and otherwise hands
// off to the synthesized after-loop continuation. `break` jumps straight
// to after-loop; `continue`, and falling off the end of an iteration,
// both jump to `__loopResolve`, which simply re-invokes `__loopCheck`.
func (t *transformer) lowerForOf(stmt *Node, remainingRaw []*Node, ctx chainCtx) []*Node {
	iterName := t.sym.next("__iter")
	resultName := t.sym.next("__result")
	checkName := t.sym.next("__loopCheck")
	resolveAgainName := t.sym.next("__loopResolve")
	afterName := t.sym.next("__afterLoop")

	iterInit := &Node{Kind: KindVarDecl, Name: iterName, Expr: Call(Ident("__getIterator"), t.rewrite(stmt.Expr))}

	afterChain := t.buildBranch(nil, false, remainingRaw, ctx)
	afterFn := Func(afterName, false, nil, afterChain...)

	loopCtx := ctx
	loopCtx.breakName = afterName
	loopCtx.continueName = resolveAgainName
	loopCtx.fallthrough_ = func() []*Node {
		return []*Node{Return(Call(Ident(resolveAgainName)))}
	}

	bodyWithBinding := append([]*Node{
		{Kind: KindVarDecl, Name: stmt.Name, Expr: Member(Ident(resultName), "value")},
	}, stmt.Body...)
	bodyChain := t.transformSeq(bodyWithBinding, 0, loopCtx)

	branch := &Node{
		Kind: KindIf,
		Test: Member(Ident(resultName), "done"),
		Then: Block(Return(Call(Ident(afterName)))),
		Else: Block(bodyChain...),
	}

	nextCall := Call(Ident("__iteratorNext"), Ident(iterName))
	thenCb := Arrow([]string{resultName}, branch)
	checkChain := Call(Member(Call(Member(nextCall, "then"), thenCb), "catch"), Ident(ctx.rejectName))

	resolveAgainFn := Func(resolveAgainName, false, nil, Return(Call(Ident(checkName))))
	checkFn := Func(checkName, false, nil, Return(checkChain))

	return []*Node{iterInit, afterFn, resolveAgainFn, checkFn, ExprStmt(Call(Ident(checkName)))}
}

// lowerWhile implements rule 5: the same recursive-thunk lowering as
// for-of, but the "is there more work" test is the loop's own condition
// rather than an iterator's done flag.
func (t *transformer) lowerWhile(stmt *Node, remainingRaw []*Node, ctx chainCtx) []*Node {
	checkName := t.sym.next("__whileCheck")
	resolveAgainName := t.sym.next("__whileResolve")
	afterName := t.sym.next("__afterLoop")

	afterChain := t.buildBranch(nil, false, remainingRaw, ctx)
	afterFn := Func(afterName, false, nil, afterChain...)

	loopCtx := ctx
	loopCtx.breakName = afterName
	loopCtx.continueName = resolveAgainName
	loopCtx.fallthrough_ = func() []*Node {
		return []*Node{Return(Call(Ident(resolveAgainName)))}
	}

	bodyChain := t.transformSeq(stmt.Body, 0, loopCtx)

	checkBody := []*Node{
		{Kind: KindIf, Test: Not(t.rewrite(stmt.Test)), Then: Block(Return(Call(Ident(afterName))))},
	}
	checkBody = append(checkBody, bodyChain...)

	resolveAgainFn := Func(resolveAgainName, false, nil, Return(Call(Ident(checkName))))
	checkFn := Func(checkName, false, nil, checkBody...)

	return []*Node{afterFn, resolveAgainFn, checkFn, ExprStmt(Call(Ident(checkName)))}
}
